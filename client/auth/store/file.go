package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/lore/schema"
)

const secretFileMode = 0o600

// FileStore persists each token as a JSON document under a base afs URL
// (file://, mem:// or any other registered afs scheme).
type FileStore struct {
	mu      sync.Mutex
	fs      afs.Service
	baseURL string
}

type fileRecord struct {
	Value   string    `json:"value"`
	Updated time.Time `json:"updated"`
}

// NewFileStore creates a Store that persists tokens under baseURL.
func NewFileStore(baseURL string) *FileStore {
	return &FileStore{fs: afs.New(), baseURL: baseURL}
}

func (f *FileStore) location(name Name) string {
	return url.Join(f.baseURL, string(name)+".json")
}

func (f *FileStore) Get(ctx context.Context, name Name) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	URL := f.location(name)
	ok, err := f.fs.Exists(ctx, URL)
	if err != nil {
		return "", false, schema.NewStorageError("get", string(name), err)
	}
	if !ok {
		return "", false, nil
	}
	data, err := f.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return "", false, schema.NewStorageError("get", string(name), err)
	}
	record := &fileRecord{}
	if err = json.Unmarshal(data, record); err != nil {
		return "", false, schema.NewStorageError("get", string(name), err)
	}
	if record.Value == "" {
		return "", false, nil
	}
	return record.Value, true, nil
}

func (f *FileStore) Set(ctx context.Context, name Name, value string) error {
	if value == "" {
		return schema.NewStorageError("set", string(name), ErrEmptySecret)
	}
	data, err := json.Marshal(&fileRecord{Value: value, Updated: time.Now().UTC()})
	if err != nil {
		return schema.NewStorageError("set", string(name), err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err = f.fs.Upload(ctx, f.location(name), secretFileMode, bytes.NewReader(data))
	return schema.NewStorageError("set", string(name), err)
}

func (f *FileStore) Clear(ctx context.Context, name Name) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	URL := f.location(name)
	ok, err := f.fs.Exists(ctx, URL)
	if err != nil {
		return schema.NewStorageError("clear", string(name), err)
	}
	if !ok {
		return nil
	}
	return schema.NewStorageError("clear", string(name), f.fs.Delete(ctx, URL))
}
