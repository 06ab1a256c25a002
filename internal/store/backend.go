package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/mpetrov/crm-backend/internal/model"
)

// Backend is the persistence layer behind a ClientStore. The whole
// collection is loaded and saved as a unit; there is no partial access.
type Backend interface {
	// Load reads the entire collection. A missing or empty backing store
	// yields an empty collection, not an error.
	Load(ctx context.Context) ([]model.Client, error)

	// Save replaces the entire collection.
	Save(ctx context.Context, clients []model.Client) error
}

// FileBackend persists the collection as a single JSON array in one file.
// The file is the entire durable state. Save writes to a temporary file
// in the same directory and renames it over the target so readers never
// observe a partially written file.
type FileBackend struct {
	path string
}

// NewFileBackend creates a FileBackend for the given file path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the backing file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Init creates the backing file with an empty collection if it does not
// exist yet. An existing file is left untouched.
func (b *FileBackend) Init() error {
	if _, err := os.Stat(b.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat db file %s: %w", b.path, err)
	}

	if err := os.WriteFile(b.path, []byte("[]"), 0o644); err != nil {
		return fmt.Errorf("init db file %s: %w", b.path, err)
	}

	return nil
}

// Load reads the entire collection from the file.
func (b *FileBackend) Load(ctx context.Context) ([]model.Client, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load clients: %w", ctx.Err())
	default:
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Client{}, nil
		}
		return nil, fmt.Errorf("read db file %s: %w", b.path, err)
	}

	if len(data) == 0 {
		return []model.Client{}, nil
	}

	var clients []model.Client
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, fmt.Errorf("parse db file %s: %w", b.path, err)
	}

	if clients == nil {
		clients = []model.Client{}
	}

	return clients, nil
}

// Save atomically replaces the file contents with the full collection.
func (b *FileBackend) Save(ctx context.Context, clients []model.Client) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("save clients: %w", ctx.Err())
	default:
	}

	if clients == nil {
		clients = []model.Client{}
	}

	data, err := json.Marshal(clients)
	if err != nil {
		return fmt.Errorf("encode clients: %w", err)
	}

	// The temp file must live in the same directory as the target so the
	// rename stays within one filesystem.
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write db file %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace db file %s: %w", b.path, err)
	}

	return nil
}

// MemoryBackend keeps the collection in memory. Used by tests and
// ephemeral runs; the contract matches FileBackend.
type MemoryBackend struct {
	mu      sync.RWMutex
	clients []model.Client
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{clients: []model.Client{}}
}

// Load returns a copy of the collection.
func (b *MemoryBackend) Load(ctx context.Context) ([]model.Client, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load clients: %w", ctx.Err())
	default:
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	clients := make([]model.Client, len(b.clients))
	for i := range b.clients {
		clients[i] = b.clients[i].Clone()
	}

	return clients, nil
}

// Save replaces the collection with a copy of the given one.
func (b *MemoryBackend) Save(ctx context.Context, clients []model.Client) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("save clients: %w", ctx.Err())
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.clients = make([]model.Client, len(clients))
	for i := range clients {
		b.clients[i] = clients[i].Clone()
	}

	return nil
}

var (
	_ Backend = (*FileBackend)(nil)
	_ Backend = (*MemoryBackend)(nil)
)
