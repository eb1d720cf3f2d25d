package domain

import "context"

type ClientStore interface {
	Create(ctx context.Context, client Client) (Client, error)
	GetByID(ctx context.Context, id string) (Client, error)
}
