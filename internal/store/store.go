// Package store provides client storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/mpetrov/crm-backend/internal/model"
)

// Store errors.
var (
	ErrNotFound  = errors.New("client not found")
	ErrInvalidID = errors.New("invalid client ID")
)

// ListParams carries optional filter parameters for List. Unknown query
// keys are dropped before they reach the store.
type ListParams struct {
	// Search filters the result to clients where the trimmed, lowercased
	// term is a substring of name, surname, lastName or any contact value.
	Search string
}

// Store defines the interface for client storage operations.
type Store interface {
	// List returns clients in persisted order, optionally filtered.
	List(ctx context.Context, params ListParams) ([]model.Client, error)

	// Get retrieves a client by its ID.
	Get(ctx context.Context, id string) (*model.Client, error)

	// Create validates the input, assigns an ID and timestamps, persists
	// the new client and returns it.
	Create(ctx context.Context, input model.ClientInput) (*model.Client, error)

	// Update merges the partial input over an existing client,
	// revalidates the merged whole and persists it.
	Update(ctx context.Context, id string, input model.ClientInput) (*model.Client, error)

	// Delete removes a client from the store by its ID.
	Delete(ctx context.Context, id string) error
}
