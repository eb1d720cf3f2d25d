package domain

import "time"

// Client is the identity an account belongs to. The ledger itself only needs
// to know whether a client id resolves; the rest of the record exists for the
// client management endpoints.
type Client struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
