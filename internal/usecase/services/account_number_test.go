package services_test

import (
	"context"
	"testing"

	"github.com/api-sage/bank-account-ledger/internal/domain"
	"github.com/api-sage/bank-account-ledger/internal/usecase/services"
)

// collidingStore claims every candidate number is taken for the first
// `collisions` lookups, then reports misses.
type collidingStore struct {
	collisions int
	lookups    int
}

func (s *collidingStore) GetByAccountNumber(_ context.Context, _ string) (domain.Account, error) {
	s.lookups++
	if s.lookups <= s.collisions {
		return domain.Account{}, nil
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

func (s *collidingStore) GetByID(_ context.Context, _ string) (domain.Account, error) {
	return domain.Account{}, domain.ErrRecordNotFound
}

func (s *collidingStore) ListByClient(_ context.Context, _ string) ([]domain.Account, error) {
	return nil, nil
}

func (s *collidingStore) ListAll(_ context.Context) ([]domain.Account, error) {
	return nil, nil
}

func (s *collidingStore) Put(_ context.Context, account domain.Account) (domain.Account, error) {
	return account, nil
}

func TestGenerateProducesTwentyDigits(t *testing.T) {
	gen := services.NewNumberGenerator(&collidingStore{})

	number, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(number) != 20 {
		t.Fatalf("expected 20 digits, got %d (%q)", len(number), number)
	}
	for _, ch := range number {
		if ch < '0' || ch > '9' {
			t.Errorf("number %q contains non-digit %q", number, ch)
		}
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	store := &collidingStore{collisions: 3}
	gen := services.NewNumberGenerator(store)

	if _, err := gen.Generate(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if store.lookups != 4 {
		t.Errorf("expected 4 lookups (3 collisions + 1 hit), got %d", store.lookups)
	}
}
