package domain

import "time"

// AccountFilter narrows an account query. Every field is optional; present
// fields are ANDed together. Bounds follow the half-open convention of the
// upstream API: balance is [LB, UB), timestamps are (LB, UB].
type AccountFilter struct {
	ClientID *string

	BalanceLB *float64
	BalanceUB *float64

	CreatedAtLB *time.Time
	CreatedAtUB *time.Time

	UpdatedAtLB *time.Time
	UpdatedAtUB *time.Time
}

func (f AccountFilter) Matches(a Account) bool {
	if f.ClientID != nil && a.ClientID != *f.ClientID {
		return false
	}
	if f.BalanceLB != nil && a.Balance < *f.BalanceLB {
		return false
	}
	if f.BalanceUB != nil && a.Balance >= *f.BalanceUB {
		return false
	}
	if f.CreatedAtLB != nil && !a.CreatedAt.After(*f.CreatedAtLB) {
		return false
	}
	if f.CreatedAtUB != nil && a.CreatedAt.After(*f.CreatedAtUB) {
		return false
	}
	if f.UpdatedAtLB != nil && !a.UpdatedAt.After(*f.UpdatedAtLB) {
		return false
	}
	if f.UpdatedAtUB != nil && a.UpdatedAt.After(*f.UpdatedAtUB) {
		return false
	}
	return true
}
