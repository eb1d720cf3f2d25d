package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/api-sage/bank-account-ledger/internal/domain"
	"github.com/api-sage/bank-account-ledger/internal/logger"
)

// maxOpenAttempts bounds persist-time retries when the store rejects a
// generated account number as taken. The generator pre-check makes reaching
// even the second attempt astronomically unlikely.
const maxOpenAttempts = 5

// ClientDirectory resolves a client id to its record or reports
// domain.ErrClientNotFound.
type ClientDirectory interface {
	GetClientByID(ctx context.Context, id string) (domain.Client, error)
}

// AccountService is the account ledger. It owns the invariants of the
// system: non-negative balances, the one-way ACTIVE to CLOSED transition,
// all-time account number uniqueness and closed-account read exclusion.
// Mutations on one account number are serialized through a keyed mutex; the
// store's version check backstops writers outside this process.
type AccountService struct {
	accounts domain.AccountStore
	clients  ClientDirectory
	numbers  *NumberGenerator
	locks    *keyedMutex
}

func NewAccountService(accounts domain.AccountStore, clients ClientDirectory) *AccountService {
	return &AccountService{
		accounts: accounts,
		clients:  clients,
		numbers:  NewNumberGenerator(accounts),
		locks:    newKeyedMutex(),
	}
}

// Open creates a new active account with a zero balance for the given client.
// No account is created and no number is consumed when the client does not
// resolve.
func (s *AccountService) Open(ctx context.Context, clientID string) (domain.Account, error) {
	logger.Info("account service open request", logger.Fields{
		"clientId": clientID,
	})

	if _, err := s.clients.GetClientByID(ctx, clientID); err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			return domain.Account{}, domain.ErrClientNotFound
		}
		logger.Error("account service open client lookup failed", err, logger.Fields{
			"clientId": clientID,
		})
		return domain.Account{}, fmt.Errorf("resolve client: %w", err)
	}

	for attempt := 1; attempt <= maxOpenAttempts; attempt++ {
		number, err := s.numbers.Generate(ctx)
		if err != nil {
			logger.Error("account service open number generation failed", err, logger.Fields{
				"clientId": clientID,
			})
			return domain.Account{}, fmt.Errorf("generate account number: %w", err)
		}

		now := time.Now().UTC()
		created, err := s.accounts.Put(ctx, domain.Account{
			ClientID:      clientID,
			AccountNumber: number,
			Balance:       0,
			Status:        domain.AccountStatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent open won the number; draw a fresh one.
			logger.Info("account service open number collision, retrying", logger.Fields{
				"clientId": clientID,
				"attempt":  attempt,
			})
			continue
		}
		if err != nil {
			logger.Error("account service open persist failed", err, logger.Fields{
				"clientId": clientID,
			})
			return domain.Account{}, fmt.Errorf("persist account: %w", err)
		}

		logger.Info("account service open success", logger.Fields{
			"clientId":      clientID,
			"accountId":     created.ID,
			"accountNumber": created.AccountNumber,
		})
		return created, nil
	}

	return domain.Account{}, domain.ErrConflict
}

// Close moves an account to CLOSED. Closing is terminal: a second close on
// the same number reports ErrAccountClosed and changes nothing.
func (s *AccountService) Close(ctx context.Context, accountNumber string) error {
	logger.Info("account service close request", logger.Fields{
		"accountNumber": accountNumber,
	})

	unlock := s.locks.Lock(accountNumber)
	defer unlock()

	account, err := s.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrAccountNotFound
		}
		logger.Error("account service close lookup failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return fmt.Errorf("get account: %w", err)
	}

	if account.Closed() {
		return domain.ErrAccountClosed
	}

	account.Status = domain.AccountStatusClosed
	account.UpdatedAt = time.Now().UTC()

	if _, err := s.accounts.Put(ctx, account); err != nil {
		logger.Error("account service close persist failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return fmt.Errorf("persist account: %w", err)
	}

	logger.Info("account service close success", logger.Fields{
		"accountNumber": accountNumber,
	})
	return nil
}

// ApplyBalanceDelta is the single balance mutation primitive: deposits pass a
// positive delta, withdrawals a negative one. The only balance invariant
// enforced here is that the resulting balance stays non-negative.
func (s *AccountService) ApplyBalanceDelta(ctx context.Context, accountNumber string, delta float64) (domain.Account, error) {
	logger.Info("account service apply balance delta request", logger.Fields{
		"accountNumber": accountNumber,
		"delta":         delta,
	})

	unlock := s.locks.Lock(accountNumber)
	defer unlock()

	account, err := s.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		logger.Error("account service apply balance delta lookup failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	if account.Closed() {
		return domain.Account{}, domain.ErrAccountClosed
	}

	if account.Balance+delta < 0 {
		return domain.Account{}, domain.ErrInsufficientBalance
	}

	account.Balance += delta
	account.UpdatedAt = time.Now().UTC()

	updated, err := s.accounts.Put(ctx, account)
	if err != nil {
		logger.Error("account service apply balance delta persist failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, fmt.Errorf("persist account: %w", err)
	}

	logger.Info("account service apply balance delta success", logger.Fields{
		"accountNumber": accountNumber,
		"balance":       updated.Balance,
	})
	return updated, nil
}

// GetByID returns the account with the given id. Closed accounts are
// logically gone for reads and report ErrAccountNotFound.
func (s *AccountService) GetByID(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account by id: %w", err)
	}
	if account.Closed() {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (s *AccountService) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	account, err := s.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account by number: %w", err)
	}
	if account.Closed() {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

// GetRecent returns up to limit open accounts of the client, most recently
// updated first. The sort is stable so records sharing an updatedAt keep
// store order.
func (s *AccountService) GetRecent(ctx context.Context, clientID string, limit int) ([]domain.Account, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidArgument)
	}

	accounts, err := s.accounts.ListByClient(ctx, clientID)
	if err != nil {
		logger.Error("account service get recent list failed", err, logger.Fields{
			"clientId": clientID,
		})
		return nil, fmt.Errorf("list accounts by client: %w", err)
	}

	open := accounts[:0:0]
	for _, account := range accounts {
		if !account.Closed() {
			open = append(open, account)
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].UpdatedAt.After(open[j].UpdatedAt)
	})

	if len(open) > limit {
		open = open[:limit]
	}
	return open, nil
}

// Query returns the open accounts matching the filter, in store order. An
// unsatisfiable filter (for example a lower bound above the upper bound)
// simply yields an empty result.
func (s *AccountService) Query(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var accounts []domain.Account
	var err error

	if filter.ClientID != nil {
		accounts, err = s.accounts.ListByClient(ctx, *filter.ClientID)
	} else {
		accounts, err = s.accounts.ListAll(ctx)
	}
	if err != nil {
		logger.Error("account service query list failed", err, nil)
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	matched := make([]domain.Account, 0, len(accounts))
	for _, account := range accounts {
		if account.Closed() {
			continue
		}
		if filter.Matches(account) {
			matched = append(matched, account)
		}
	}
	return matched, nil
}
