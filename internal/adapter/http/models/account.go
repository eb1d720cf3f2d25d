package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/bank-account-ledger/internal/domain"
)

const accountNumberLength = 20

type OpenAccountRequest struct {
	ClientID string `json:"clientId"`
}

func (r OpenAccountRequest) Validate() error {
	if strings.TrimSpace(r.ClientID) == "" {
		return errors.New("clientId is required")
	}
	return nil
}

type CloseAccountRequest struct {
	AccountNumber string `json:"accountNumber"`
}

func (r CloseAccountRequest) Validate() error {
	return validateAccountNumber(r.AccountNumber)
}

// DepositRequest and WithdrawRequest carry amounts as decimals so sign and
// numeric form are checked before the value is handed to the ledger as a
// float64 delta.
type DepositRequest struct {
	AccountNumber string          `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount"`
}

func (r DepositRequest) Validate() error {
	return validateAmountRequest(r.AccountNumber, r.Amount)
}

type WithdrawRequest struct {
	AccountNumber string          `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount"`
}

func (r WithdrawRequest) Validate() error {
	return validateAmountRequest(r.AccountNumber, r.Amount)
}

type QueryAccountsRequest struct {
	ClientID *string `json:"clientId,omitempty"`

	BalanceLB *float64 `json:"balanceLB,omitempty"`
	BalanceUB *float64 `json:"balanceUB,omitempty"`

	CreatedAtLB *time.Time `json:"createdAtLB,omitempty"`
	CreatedAtUB *time.Time `json:"createdAtUB,omitempty"`

	UpdatedAtLB *time.Time `json:"updatedAtLB,omitempty"`
	UpdatedAtUB *time.Time `json:"updatedAtUB,omitempty"`
}

func (r QueryAccountsRequest) ToFilter() domain.AccountFilter {
	return domain.AccountFilter{
		ClientID:    r.ClientID,
		BalanceLB:   r.BalanceLB,
		BalanceUB:   r.BalanceUB,
		CreatedAtLB: r.CreatedAtLB,
		CreatedAtUB: r.CreatedAtUB,
		UpdatedAtLB: r.UpdatedAtLB,
		UpdatedAtUB: r.UpdatedAtUB,
	}
}

type AccountResponse struct {
	ID            string  `json:"id"`
	ClientID      string  `json:"clientId"`
	AccountNumber string  `json:"accountNumber"`
	Balance       float64 `json:"balance"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:            account.ID,
		ClientID:      account.ClientID,
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance,
		Status:        string(account.Status),
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.Format(time.RFC3339),
	}
}

func NewAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, NewAccountResponse(account))
	}
	return out
}

func validateAmountRequest(accountNumber string, amount decimal.Decimal) error {
	var errs []string

	if err := validateAccountNumber(accountNumber); err != nil {
		errs = append(errs, err.Error())
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateAccountNumber(accountNumber string) error {
	accountNumber = strings.TrimSpace(accountNumber)
	if len(accountNumber) != accountNumberLength {
		return errors.New("accountNumber must be exactly 20 digits")
	}
	for _, ch := range accountNumber {
		if ch < '0' || ch > '9' {
			return errors.New("accountNumber must be exactly 20 digits")
		}
	}
	return nil
}
