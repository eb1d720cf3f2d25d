package models

import (
	"errors"
	"strings"

	"github.com/api-sage/bank-account-ledger/internal/domain"
)

type CreateClientRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (r CreateClientRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.LastName) == "" {
		errs = append(errs, "lastName is required")
	}

	email := strings.TrimSpace(r.Email)
	if email == "" {
		errs = append(errs, "email is required")
	} else if !strings.Contains(email, "@") {
		errs = append(errs, "email must be a valid address")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type ClientResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func NewClientResponse(client domain.Client) ClientResponse {
	return ClientResponse{
		ID:        client.ID,
		FirstName: client.FirstName,
		LastName:  client.LastName,
		Email:     client.Email,
	}
}
