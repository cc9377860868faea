package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/lore/schema"
	"github.com/viant/scy"
	_ "github.com/viant/scy/kms/blowfish"
)

// DefaultKey encrypts secrets with the built-in blowfish key.
const DefaultKey = "blowfish://default"

// SecureStore keeps each token as a scy secret encrypted at rest.
type SecureStore struct {
	mu      sync.Mutex
	secrets *scy.Service
	fs      afs.Service
	baseURL string
	key     string
}

type secret struct {
	Value string `json:"value"`
}

// NewSecureStore creates an encrypted store under baseURL, key is a scy key URL (DefaultKey when empty).
func NewSecureStore(baseURL, key string) *SecureStore {
	if key == "" {
		key = DefaultKey
	}
	return &SecureStore{secrets: scy.New(), fs: afs.New(), baseURL: baseURL, key: key}
}

func (s *SecureStore) location(name Name) string {
	return url.Join(s.baseURL, string(name)+".enc")
}

func (s *SecureStore) Get(ctx context.Context, name Name) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.location(name)
	ok, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return "", false, schema.NewStorageError("get", string(name), err)
	}
	if !ok {
		return "", false, nil
	}
	resource := scy.NewResource(&secret{}, URL, s.key)
	loaded, err := s.secrets.Load(ctx, resource)
	if err != nil {
		return "", false, schema.NewStorageError("get", string(name), err)
	}
	record, ok := loaded.Target.(*secret)
	if !ok {
		return "", false, schema.NewStorageError("get", string(name), fmt.Errorf("unexpected secret type %T", loaded.Target))
	}
	if record.Value == "" {
		return "", false, nil
	}
	return record.Value, true, nil
}

func (s *SecureStore) Set(ctx context.Context, name Name, value string) error {
	if value == "" {
		return schema.NewStorageError("set", string(name), ErrEmptySecret)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	resource := scy.NewResource(&secret{}, s.location(name), s.key)
	err := s.secrets.Store(ctx, scy.NewSecret(&secret{Value: value}, resource))
	return schema.NewStorageError("set", string(name), err)
}

func (s *SecureStore) Clear(ctx context.Context, name Name) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.location(name)
	ok, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return schema.NewStorageError("clear", string(name), err)
	}
	if !ok {
		return nil
	}
	return schema.NewStorageError("clear", string(name), s.fs.Delete(ctx, URL))
}
