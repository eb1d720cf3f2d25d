package services_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/api-sage/bank-account-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/bank-account-ledger/internal/domain"
	"github.com/api-sage/bank-account-ledger/internal/usecase/services"
)

func newTestLedger(t *testing.T) (*services.AccountService, *memory.AccountRepository, domain.Client) {
	t.Helper()

	accounts := memory.NewAccountRepository()
	clients := memory.NewClientRepository()
	clientService := services.NewClientService(clients)

	client, err := clientService.CreateClient(context.Background(), domain.Client{
		FirstName: "Valery",
		LastName:  "Zhmyshenko",
		Email:     "valzhmysh@mail.test",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	return services.NewAccountService(accounts, clientService), accounts, client
}

// seedAccount writes an account straight into the store with the given
// balance and timestamps, bypassing Open so tests control the clock.
func seedAccount(t *testing.T, store *memory.AccountRepository, clientID, number string, balance float64, createdAt, updatedAt time.Time) domain.Account {
	t.Helper()

	account, err := store.Put(context.Background(), domain.Account{
		ClientID:      clientID,
		AccountNumber: number,
		Balance:       balance,
		Status:        domain.AccountStatusActive,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", number, err)
	}
	return account
}

func TestOpenNewAccount(t *testing.T) {
	svc, _, client := newTestLedger(t)

	account, err := svc.Open(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("open account: %v", err)
	}

	if account.ID == "" {
		t.Error("expected store-assigned account id")
	}
	if account.ClientID != client.ID {
		t.Errorf("expected client id %s, got %s", client.ID, account.ClientID)
	}
	if len(account.AccountNumber) != 20 {
		t.Errorf("expected 20-digit account number, got %q", account.AccountNumber)
	}
	for _, ch := range account.AccountNumber {
		if ch < '0' || ch > '9' {
			t.Errorf("account number %q contains non-digit %q", account.AccountNumber, ch)
		}
	}
	if account.Balance != 0 {
		t.Errorf("expected zero starting balance, got %v", account.Balance)
	}
	if account.Status != domain.AccountStatusActive {
		t.Errorf("expected ACTIVE status, got %s", account.Status)
	}
	if !account.CreatedAt.Equal(account.UpdatedAt) {
		t.Error("expected createdAt == updatedAt on a fresh account")
	}
}

func TestOpenUnknownClient(t *testing.T) {
	svc, store, _ := newTestLedger(t)

	_, err := svc.Open(context.Background(), "missing-client")
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}

	all, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no account created, found %d", len(all))
	}
}

func TestOpenedNumbersAreUnique(t *testing.T) {
	svc, _, client := newTestLedger(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		account, err := svc.Open(context.Background(), client.ID)
		if err != nil {
			t.Fatalf("open account %d: %v", i, err)
		}
		if seen[account.AccountNumber] {
			t.Fatalf("account number %s issued twice", account.AccountNumber)
		}
		seen[account.AccountNumber] = true
	}
}

func TestCloseTwice(t *testing.T) {
	svc, _, client := newTestLedger(t)

	account, err := svc.Open(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("open account: %v", err)
	}

	if err := svc.Close(context.Background(), account.AccountNumber); err != nil {
		t.Fatalf("first close: %v", err)
	}

	err = svc.Close(context.Background(), account.AccountNumber)
	if !errors.Is(err, domain.ErrAccountClosed) {
		t.Fatalf("expected ErrAccountClosed on second close, got %v", err)
	}
}

func TestCloseUnknownAccount(t *testing.T) {
	svc, _, _ := newTestLedger(t)

	err := svc.Close(context.Background(), "00000000000000000000")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestApplyBalanceDelta(t *testing.T) {
	svc, _, client := newTestLedger(t)

	account, err := svc.Open(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("open account: %v", err)
	}
	number := account.AccountNumber

	updated, err := svc.ApplyBalanceDelta(context.Background(), number, 200)
	if err != nil {
		t.Fatalf("deposit 200: %v", err)
	}
	if updated.Balance != 200 {
		t.Errorf("expected balance 200, got %v", updated.Balance)
	}

	updated, err = svc.ApplyBalanceDelta(context.Background(), number, -150.01)
	if err != nil {
		t.Fatalf("withdraw 150.01: %v", err)
	}
	if math.Abs(updated.Balance-49.99) > 0.0001 {
		t.Errorf("expected balance 49.99, got %v", updated.Balance)
	}

	_, err = svc.ApplyBalanceDelta(context.Background(), number, -150.01)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	current, err := svc.GetByAccountNumber(context.Background(), number)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if math.Abs(current.Balance-49.99) > 0.0001 {
		t.Errorf("failed withdrawal must not change balance, got %v", current.Balance)
	}
}

func TestApplyBalanceDeltaUnknownAccount(t *testing.T) {
	svc, _, _ := newTestLedger(t)

	_, err := svc.ApplyBalanceDelta(context.Background(), "00000000000000000000", 10)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestClosedAccountVisibility(t *testing.T) {
	svc, _, client := newTestLedger(t)

	account, err := svc.Open(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("open account: %v", err)
	}
	if err := svc.Close(context.Background(), account.AccountNumber); err != nil {
		t.Fatalf("close account: %v", err)
	}

	// Reads treat the closed account as gone.
	if _, err := svc.GetByAccountNumber(context.Background(), account.AccountNumber); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound from read, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), account.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound from read by id, got %v", err)
	}

	recents, err := svc.GetRecent(context.Background(), client.ID, 5)
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	if len(recents) != 0 {
		t.Errorf("closed account must not appear in recents, got %d entries", len(recents))
	}

	results, err := svc.Query(context.Background(), domain.AccountFilter{ClientID: &client.ID})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("closed account must not appear in query results, got %d entries", len(results))
	}

	// Mutations still see it and name the real failure.
	if _, err := svc.ApplyBalanceDelta(context.Background(), account.AccountNumber, 10); !errors.Is(err, domain.ErrAccountClosed) {
		t.Errorf("expected ErrAccountClosed from delta, got %v", err)
	}
}

func TestGetRecent(t *testing.T) {
	svc, store, client := newTestLedger(t)

	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	seedAccount(t, store, client.ID, "num1", 0, base, base.Add(time.Minute))
	seedAccount(t, store, client.ID, "num2", 0, base, base.Add(time.Hour))
	seedAccount(t, store, client.ID, "num3", 0, base, base)

	recents, err := svc.GetRecent(context.Background(), client.ID, 2)
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}

	if len(recents) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(recents))
	}
	if recents[0].AccountNumber != "num2" {
		t.Errorf("expected num2 first, got %s", recents[0].AccountNumber)
	}
	if recents[1].AccountNumber != "num1" {
		t.Errorf("expected num1 second, got %s", recents[1].AccountNumber)
	}
}

func TestGetRecentInvalidLimit(t *testing.T) {
	svc, _, client := newTestLedger(t)

	if _, err := svc.GetRecent(context.Background(), client.ID, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for limit 0, got %v", err)
	}
	if _, err := svc.GetRecent(context.Background(), client.ID, -3); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for negative limit, got %v", err)
	}
}

// Four accounts with balances 50/100/150/200, createdAt offsets of -1..-4
// months and updatedAt offsets of -1..-4 days from a fixed reference instant.
func seedQueryFixture(t *testing.T, store *memory.AccountRepository, clientID string, ref time.Time) {
	t.Helper()
	for i := 1; i <= 4; i++ {
		seedAccount(t, store, clientID,
			"num"+string(rune('0'+i)),
			50*float64(i),
			ref.AddDate(0, -i, 0),
			ref.AddDate(0, 0, -i),
		)
	}
}

func TestQueryAccounts(t *testing.T) {
	svc, store, client := newTestLedger(t)

	ref := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	seedQueryFixture(t, store, client.ID, ref)

	f64 := func(v float64) *float64 { return &v }
	ts := func(v time.Time) *time.Time { return &v }

	cases := []struct {
		name   string
		filter domain.AccountFilter
		want   []string
	}{
		{
			name:   "balance band",
			filter: domain.AccountFilter{BalanceLB: f64(80), BalanceUB: f64(170)},
			want:   []string{"num2", "num3"},
		},
		{
			name: "balance floor and createdAt floor",
			filter: domain.AccountFilter{
				BalanceLB:   f64(60),
				CreatedAtLB: ts(ref.AddDate(0, -2, 0).Add(-time.Hour)),
			},
			want: []string{"num2"},
		},
		{
			name: "client with mixed bounds",
			filter: domain.AccountFilter{
				ClientID:    &client.ID,
				BalanceUB:   f64(160),
				CreatedAtUB: ts(ref.AddDate(0, -1, 0).Add(-time.Hour)),
				UpdatedAtLB: ts(ref.AddDate(0, 0, -5)),
			},
			want: []string{"num2", "num3"},
		},
		{
			name:   "unsatisfiable bounds yield empty result",
			filter: domain.AccountFilter{BalanceLB: f64(170), BalanceUB: f64(80)},
			want:   []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := svc.Query(context.Background(), tc.filter)
			if err != nil {
				t.Fatalf("query: %v", err)
			}

			got := make([]string, 0, len(results))
			for _, account := range results {
				got = append(got, account.AccountNumber)
			}

			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestConcurrentDeposits(t *testing.T) {
	svc, _, client := newTestLedger(t)

	account, err := svc.Open(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("open account: %v", err)
	}

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.ApplyBalanceDelta(context.Background(), account.AccountNumber, 1); err != nil {
				t.Errorf("concurrent deposit: %v", err)
			}
		}()
	}
	wg.Wait()

	current, err := svc.GetByAccountNumber(context.Background(), account.AccountNumber)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if current.Balance != workers {
		t.Errorf("expected balance %d after %d deposits of 1, got %v", workers, workers, current.Balance)
	}
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	svc, _, client := newTestLedger(t)

	account, err := svc.Open(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("open account: %v", err)
	}
	if _, err := svc.ApplyBalanceDelta(context.Background(), account.AccountNumber, 10); err != nil {
		t.Fatalf("fund account: %v", err)
	}

	const workers = 25
	var wg sync.WaitGroup
	var successes sync.Map
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			if _, err := svc.ApplyBalanceDelta(context.Background(), account.AccountNumber, -1); err == nil {
				successes.Store(i, true)
			} else if !errors.Is(err, domain.ErrInsufficientBalance) {
				t.Errorf("unexpected withdrawal error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	succeeded := 0
	successes.Range(func(_, _ any) bool {
		succeeded++
		return true
	})
	if succeeded != 10 {
		t.Errorf("expected exactly 10 withdrawals to succeed, got %d", succeeded)
	}

	current, err := svc.GetByAccountNumber(context.Background(), account.AccountNumber)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if current.Balance < 0 {
		t.Errorf("balance went negative: %v", current.Balance)
	}
	if current.Balance != 0 {
		t.Errorf("expected balance 0, got %v", current.Balance)
	}
}
