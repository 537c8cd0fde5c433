// Package testutil provides shared fakes and scaffolding for nocturne-hook
// tests. Nothing here touches a real desktop session.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// SetCall records one Set invocation on the MemoryStore.
type SetCall struct {
	Schema string
	Key    string
	Value  string
}

// MemoryStore is an in-memory settings store implementing gsettings.Store.
type MemoryStore struct {
	Values   map[string]string
	SetCalls []SetCall
	FailGet  map[string]bool
	FailSet  map[string]bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Values:  make(map[string]string),
		FailGet: make(map[string]bool),
		FailSet: make(map[string]bool),
	}
}

func storeKey(schema, key string) string {
	return schema + " " + key
}

// Seed puts a value into the store.
func (s *MemoryStore) Seed(schema, key, value string) {
	s.Values[storeKey(schema, key)] = value
}

// Get implements gsettings.Store.
func (s *MemoryStore) Get(schema, key string) (string, error) {
	k := storeKey(schema, key)
	if s.FailGet[k] {
		return "", fmt.Errorf("no such key %q", k)
	}
	value, ok := s.Values[k]
	if !ok {
		return "", fmt.Errorf("no such key %q", k)
	}
	return value, nil
}

// Set implements gsettings.Store.
func (s *MemoryStore) Set(schema, key, value string) error {
	s.SetCalls = append(s.SetCalls, SetCall{Schema: schema, Key: key, Value: value})
	k := storeKey(schema, key)
	if s.FailSet[k] {
		return fmt.Errorf("cannot write key %q", k)
	}
	s.Values[k] = value
	return nil
}

// TempHome creates an isolated home directory for a test.
func TempHome(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// WriteFile creates a file with parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns a file's content, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
