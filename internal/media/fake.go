package media

import (
	"context"
	"io"
	"path"
	"sync"
)

// FakeStorage keeps files in memory and uses predictable keys.
type FakeStorage struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{Files: make(map[string][]byte)}
}

func (f *FakeStorage) Save(_ context.Context, dir, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := path.Join(dir, filename)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Files[key] = data
	return key, nil
}

func (f *FakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Files, key)
	return nil
}

func (f *FakeStorage) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Files[key]
	return ok
}

func (f *FakeStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return "/media/" + key
}
