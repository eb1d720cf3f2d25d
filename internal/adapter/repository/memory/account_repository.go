package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/api-sage/bank-account-ledger/internal/domain"
)

// AccountRepository is the in-memory AccountStore. It mirrors the guarantees
// of the postgres store: ids assigned on insert, a unique account number
// index, and a version check on update. List results come back in insertion
// order so callers see deterministic store order.
type AccountRepository struct {
	mu         sync.RWMutex
	byID       map[string]domain.Account
	idByNumber map[string]string
	order      []string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:       make(map[string]domain.Account),
		idByNumber: make(map[string]string),
	}
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return account, nil
}

func (r *AccountRepository) GetByAccountNumber(_ context.Context, accountNumber string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.idByNumber[accountNumber]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return r.byID[id], nil
}

func (r *AccountRepository) ListByClient(_ context.Context, clientID string) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, 0)
	for _, id := range r.order {
		if account := r.byID[id]; account.ClientID == clientID {
			out = append(out, account)
		}
	}
	return out, nil
}

func (r *AccountRepository) ListAll(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *AccountRepository) Put(_ context.Context, account domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == "" {
		if _, taken := r.idByNumber[account.AccountNumber]; taken {
			return domain.Account{}, domain.ErrConflict
		}

		account.ID = uuid.NewString()
		account.Version = 1
		r.byID[account.ID] = account
		r.idByNumber[account.AccountNumber] = account.ID
		r.order = append(r.order, account.ID)
		return account, nil
	}

	existing, ok := r.byID[account.ID]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	if existing.Version != account.Version {
		return domain.Account{}, domain.ErrConflict
	}

	// Identity fields never move on update.
	account.AccountNumber = existing.AccountNumber
	account.ClientID = existing.ClientID
	account.CreatedAt = existing.CreatedAt

	account.Version++
	r.byID[account.ID] = account
	return account, nil
}
