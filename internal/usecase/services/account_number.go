package services

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/api-sage/bank-account-ledger/internal/domain"
)

const accountNumberLength = 20

// NumberGenerator produces account numbers of 20 uniformly random decimal
// digits. A candidate already present in the store is discarded and a new one
// drawn; with a 10^20 number space the loop terminating is a probabilistic
// assumption, not a guarantee, and the store's uniqueness constraint stays
// authoritative for the rare collision that slips past the check.
type NumberGenerator struct {
	accounts domain.AccountStore
}

func NewNumberGenerator(accounts domain.AccountStore) *NumberGenerator {
	return &NumberGenerator{accounts: accounts}
}

func (g *NumberGenerator) Generate(ctx context.Context) (string, error) {
	for {
		candidate := randomAccountNumber()

		_, err := g.accounts.GetByAccountNumber(ctx, candidate)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		// Candidate is taken, draw again.
	}
}

func randomAccountNumber() string {
	digits := make([]byte, accountNumberLength)
	for i := range digits {
		digits[i] = byte('0' + rand.IntN(10))
	}
	return string(digits)
}
