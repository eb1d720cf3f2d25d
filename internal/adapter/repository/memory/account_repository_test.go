package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/bank-account-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/bank-account-ledger/internal/domain"
)

func newAccount(clientID, number string) domain.Account {
	now := time.Now().UTC()
	return domain.Account{
		ClientID:      clientID,
		AccountNumber: number,
		Status:        domain.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestPutAssignsIDAndVersion(t *testing.T) {
	repo := memory.NewAccountRepository()

	created, err := repo.Put(context.Background(), newAccount("c1", "num1"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if created.ID == "" {
		t.Error("expected assigned id on insert")
	}
	if created.Version != 1 {
		t.Errorf("expected version 1 on insert, got %d", created.Version)
	}

	fetched, err := repo.GetByAccountNumber(context.Background(), "num1")
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if fetched.ID != created.ID {
		t.Errorf("expected id %s, got %s", created.ID, fetched.ID)
	}
}

func TestPutRejectsDuplicateNumber(t *testing.T) {
	repo := memory.NewAccountRepository()

	if _, err := repo.Put(context.Background(), newAccount("c1", "num1")); err != nil {
		t.Fatalf("put: %v", err)
	}

	_, err := repo.Put(context.Background(), newAccount("c2", "num1"))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate number, got %v", err)
	}
}

func TestPutRejectsStaleVersion(t *testing.T) {
	repo := memory.NewAccountRepository()

	created, err := repo.Put(context.Background(), newAccount("c1", "num1"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	first := created
	first.Balance = 100
	if _, err := repo.Put(context.Background(), first); err != nil {
		t.Fatalf("first update: %v", err)
	}

	stale := created
	stale.Balance = 200
	_, err = repo.Put(context.Background(), stale)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for stale version, got %v", err)
	}

	current, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if current.Balance != 100 {
		t.Errorf("stale write must not land, balance is %v", current.Balance)
	}
}

func TestUpdateKeepsIdentityFields(t *testing.T) {
	repo := memory.NewAccountRepository()

	created, err := repo.Put(context.Background(), newAccount("c1", "num1"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	tampered := created
	tampered.AccountNumber = "other"
	tampered.ClientID = "someone-else"
	tampered.Balance = 5

	updated, err := repo.Put(context.Background(), tampered)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.AccountNumber != "num1" {
		t.Errorf("account number must be immutable, got %s", updated.AccountNumber)
	}
	if updated.ClientID != "c1" {
		t.Errorf("client id must be immutable, got %s", updated.ClientID)
	}
	if updated.Balance != 5 {
		t.Errorf("expected updated balance 5, got %v", updated.Balance)
	}
}

func TestListByClientKeepsInsertionOrder(t *testing.T) {
	repo := memory.NewAccountRepository()

	for _, number := range []string{"num1", "num2", "num3"} {
		if _, err := repo.Put(context.Background(), newAccount("c1", number)); err != nil {
			t.Fatalf("put %s: %v", number, err)
		}
	}
	if _, err := repo.Put(context.Background(), newAccount("c2", "other1")); err != nil {
		t.Fatalf("put other1: %v", err)
	}

	accounts, err := repo.ListByClient(context.Background(), "c1")
	if err != nil {
		t.Fatalf("list by client: %v", err)
	}

	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts for c1, got %d", len(accounts))
	}
	for i, number := range []string{"num1", "num2", "num3"} {
		if accounts[i].AccountNumber != number {
			t.Errorf("position %d: expected %s, got %s", i, number, accounts[i].AccountNumber)
		}
	}
}

func TestGetMissingAccount(t *testing.T) {
	repo := memory.NewAccountRepository()

	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.GetByAccountNumber(context.Background(), "nope"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
