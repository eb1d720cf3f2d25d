package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/bank-account-ledger/internal/domain"
	"github.com/api-sage/bank-account-ledger/internal/logger"
)

// ClientService is the client directory: account opening resolves client ids
// through it, and the client endpoints use it for record management.
type ClientService struct {
	clients domain.ClientStore
}

func NewClientService(clients domain.ClientStore) *ClientService {
	return &ClientService{clients: clients}
}

func (s *ClientService) CreateClient(ctx context.Context, client domain.Client) (domain.Client, error) {
	logger.Info("client service create client request", logger.Fields{
		"payload": logger.SanitizePayload(client),
	})

	client.FirstName = strings.TrimSpace(client.FirstName)
	client.LastName = strings.TrimSpace(client.LastName)
	client.Email = strings.TrimSpace(client.Email)

	if client.LastName == "" {
		return domain.Client{}, fmt.Errorf("%w: lastName is required", domain.ErrInvalidArgument)
	}
	if client.Email == "" {
		return domain.Client{}, fmt.Errorf("%w: email is required", domain.ErrInvalidArgument)
	}

	created, err := s.clients.Create(ctx, client)
	if err != nil {
		logger.Error("client service create client repository failed", err, logger.Fields{
			"lastName": client.LastName,
		})
		if errors.Is(err, domain.ErrConflict) {
			return domain.Client{}, fmt.Errorf("%w: email is already registered", domain.ErrConflict)
		}
		return domain.Client{}, fmt.Errorf("create client: %w", err)
	}

	logger.Info("client service create client success", logger.Fields{
		"clientId": created.ID,
	})

	return created, nil
}

func (s *ClientService) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Client{}, domain.ErrClientNotFound
		}
		return domain.Client{}, fmt.Errorf("get client by id: %w", err)
	}

	return client, nil
}
