package storage

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rst/farmcontrol/internal/application/attachment"
)

var _ attachment.ObjectStorage = (*StubObjectStorage)(nil)

// StubObjectStorage keeps uploads in memory and returns URLs under BaseURL.
// Used in development when no bucket is configured, and in tests.
type StubObjectStorage struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string]StoredObject
	err     error
}

// StoredObject is an object held by StubObjectStorage
type StoredObject struct {
	ContentType string
	Data        []byte
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "https://storage.example.com"
	}
	return &StubObjectStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]StoredObject),
	}
}

// Upload stores the object in memory
func (s *StubObjectStorage) Upload(_ context.Context, key, contentType string, data []byte) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.objects[key] = StoredObject{ContentType: contentType, Data: append([]byte(nil), data...)}
	return s.BaseURL + "/" + key, nil
}

// FailWith makes subsequent uploads return err; nil restores normal behaviour
func (s *StubObjectStorage) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Object returns a stored object
func (s *StubObjectStorage) Object(key string) (StoredObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (s *StubObjectStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Close implements Backend
func (s *StubObjectStorage) Close() error {
	return nil
}
