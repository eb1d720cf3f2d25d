package domain

import "context"

// AccountStore is the durable keyed storage the ledger runs on. Lookups see
// every account ever created, closed ones included; visibility policy for
// reads lives in the ledger, not here.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (Account, error)
	ListByClient(ctx context.Context, clientID string) ([]Account, error)
	ListAll(ctx context.Context) ([]Account, error)

	// Put inserts when the account has no id yet (assigning one) and
	// otherwise updates. Inserts enforce account number uniqueness and
	// updates enforce the version check; both failures are ErrConflict.
	Put(ctx context.Context, account Account) (Account, error)
}
