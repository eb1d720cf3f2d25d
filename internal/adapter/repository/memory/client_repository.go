package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/bank-account-ledger/internal/domain"
)

type ClientRepository struct {
	mu        sync.RWMutex
	byID      map[string]domain.Client
	idByEmail map[string]string
}

func NewClientRepository() *ClientRepository {
	return &ClientRepository{
		byID:      make(map[string]domain.Client),
		idByEmail: make(map[string]string),
	}
}

func (r *ClientRepository) Create(_ context.Context, client domain.Client) (domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(client.Email))
	if _, taken := r.idByEmail[email]; taken {
		return domain.Client{}, domain.ErrConflict
	}

	now := time.Now().UTC()
	client.ID = uuid.NewString()
	client.CreatedAt = now
	client.UpdatedAt = now

	r.byID[client.ID] = client
	r.idByEmail[email] = client.ID
	return client, nil
}

func (r *ClientRepository) GetByID(_ context.Context, id string) (domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.byID[id]
	if !ok {
		return domain.Client{}, domain.ErrRecordNotFound
	}
	return client, nil
}
