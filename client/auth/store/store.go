package store

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/lore/schema"
)

// Name identifies a stored secret; the value is the persisted key.
type Name string

const (
	Access  Name = "access_token"
	Refresh Name = "refresh_token"
)

// ErrEmptySecret is returned when storing an empty value; use Clear instead.
var ErrEmptySecret = errors.New("empty secret")

// Store is a pluggable persistence layer for the session tokens.
// Get must not fail on absence; I/O failures surface as *schema.StorageError.
type Store interface {
	Get(ctx context.Context, name Name) (string, bool, error)
	Set(ctx context.Context, name Name, value string) error
	Clear(ctx context.Context, name Name) error
}

type memoryStore struct {
	mu      sync.RWMutex
	secrets map[Name]string
}

func (m *memoryStore) Get(_ context.Context, name Name) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.secrets[name]
	return value, ok, nil
}

func (m *memoryStore) Set(_ context.Context, name Name, value string) error {
	if value == "" {
		return schema.NewStorageError("set", string(name), ErrEmptySecret)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[name] = value
	return nil
}

func (m *memoryStore) Clear(_ context.Context, name Name) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, name)
	return nil
}

// NewMemoryStore creates a process local store
func NewMemoryStore() Store {
	return &memoryStore{secrets: map[Name]string{}}
}

// LoadPair reads both tokens; absent tokens are returned as empty strings.
func LoadPair(ctx context.Context, s Store) (*schema.TokenPair, error) {
	access, _, err := s.Get(ctx, Access)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.Get(ctx, Refresh)
	if err != nil {
		return nil, err
	}
	return &schema.TokenPair{Access: access, Refresh: refresh}, nil
}

// SavePair stores non empty tokens and deletes empty ones.
func SavePair(ctx context.Context, s Store, access, refresh string) error {
	if err := put(ctx, s, Access, access); err != nil {
		return err
	}
	return put(ctx, s, Refresh, refresh)
}

// ClearPair deletes both tokens, attempting both even if the first fails.
func ClearPair(ctx context.Context, s Store) error {
	return errors.Join(s.Clear(ctx, Access), s.Clear(ctx, Refresh))
}

func put(ctx context.Context, s Store, name Name, value string) error {
	if value == "" {
		return s.Clear(ctx, name)
	}
	return s.Set(ctx, name, value)
}
