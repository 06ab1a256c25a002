package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mpetrov/crm-backend/internal/model"
)

// ClientStore implements Store on top of a Backend. Every operation is a
// full read-modify-write cycle serialized by a single mutex, so two
// mutations can never interleave and the backend always holds a complete,
// valid collection.
type ClientStore struct {
	backend Backend
	mu      sync.Mutex
	now     func() time.Time
	newID   func() string
}

// NewClientStore creates a ClientStore on the given backend.
func NewClientStore(backend Backend) *ClientStore {
	return &ClientStore{
		backend: backend,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// List returns clients in persisted order, filtered by params.Search
// when present.
func (s *ClientStore) List(ctx context.Context, params ListParams) ([]model.Client, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list clients: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.backend.Load(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(params.Search))
	if term == "" {
		return clients, nil
	}

	filtered := make([]model.Client, 0, len(clients))
	for _, client := range clients {
		if clientMatches(&client, term) {
			filtered = append(filtered, client)
		}
	}

	return filtered, nil
}

// clientMatches reports whether the lowercased term is a substring of the
// client's name, surname, lastName or any contact value.
func clientMatches(c *model.Client, term string) bool {
	for _, field := range []string{c.Name, c.Surname, c.LastName} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	for _, contact := range c.Contacts {
		if strings.Contains(strings.ToLower(contact.Value), term) {
			return true
		}
	}
	return false
}

// Get retrieves a client by its ID.
func (s *ClientStore) Get(ctx context.Context, id string) (*model.Client, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get client: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.backend.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range clients {
		if clients[i].ID == id {
			client := clients[i].Clone()
			return &client, nil
		}
	}

	return nil, ErrNotFound
}

// Create validates the input and appends a new client to the collection.
// Nothing is written when validation fails.
func (s *ClientStore) Create(ctx context.Context, input model.ClientInput) (*model.Client, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create client: %w", ctx.Err())
	default:
	}

	fields, err := model.Normalize(input.ApplyTo(model.Fields{}))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.backend.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	client := model.Client{
		ID:        s.newID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	client.ApplyFields(fields)

	if err := s.backend.Save(ctx, append(clients, client)); err != nil {
		return nil, err
	}

	result := client.Clone()
	return &result, nil
}

// Update merges the partial input over the existing client, revalidates
// the merged whole and persists the collection. ID and CreatedAt are
// preserved; UpdatedAt is refreshed.
func (s *ClientStore) Update(ctx context.Context, id string, input model.ClientInput) (*model.Client, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("update client: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.backend.Load(ctx)
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range clients {
		if clients[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, ErrNotFound
	}

	fields, err := model.Normalize(input.ApplyTo(clients[index].Fields()))
	if err != nil {
		return nil, err
	}

	clients[index].ApplyFields(fields)
	clients[index].UpdatedAt = s.now().UTC()

	if err := s.backend.Save(ctx, clients); err != nil {
		return nil, err
	}

	result := clients[index].Clone()
	return &result, nil
}

// Delete removes a client from the collection.
func (s *ClientStore) Delete(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("delete client: %w", ctx.Err())
	default:
	}

	if id == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i := range clients {
		if clients[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrNotFound
	}

	clients = append(clients[:index], clients[index+1:]...)

	return s.backend.Save(ctx, clients)
}

var _ Store = (*ClientStore)(nil)
