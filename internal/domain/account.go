package domain

import "time"

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusClosed AccountStatus = "CLOSED"
)

// Account is the ledger record for a single client account. Balance is kept
// as a float64, matching the double arithmetic of the upstream system; the
// ledger only ever guarantees that it stays non-negative.
type Account struct {
	ID            string
	ClientID      string
	AccountNumber string
	Balance       float64
	Status        AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Version is bumped by the store on every successful write and checked
	// on update, so concurrent writers surface as ErrConflict instead of
	// silently losing an update.
	Version int64
}

func (a Account) Closed() bool {
	return a.Status == AccountStatusClosed
}
