package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"photostudio/internal/backend"
)

type object struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in a map. FailAfter makes uploads fail once a number of
// uploads have succeeded.
type MemoryStore struct {
	mu        sync.Mutex
	baseURL   string
	bucket    string
	objects   map[string]object
	order     []string
	failAfter int
	failErr   error
}

func NewMemoryStore(baseURL, bucket string) *MemoryStore {
	return &MemoryStore{
		baseURL:   strings.TrimRight(baseURL, "/"),
		bucket:    bucket,
		objects:   map[string]object{},
		failAfter: -1,
	}
}

// FailAfter lets n more uploads succeed, then fails every later upload with err.
func (m *MemoryStore) FailAfter(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	m.failErr = err
}

func (m *MemoryStore) Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) error {
	clean, err := CleanPath(objectPath)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter == 0 {
		return m.failErr
	}
	if _, ok := m.objects[clean]; ok {
		return fmt.Errorf("%w: %s", backend.ErrConflict, clean)
	}
	if m.failAfter > 0 {
		m.failAfter--
	}
	m.objects[clean] = object{data: data, contentType: contentType}
	m.order = append(m.order, clean)
	return nil
}

func (m *MemoryStore) PublicURL(objectPath string) string {
	return m.baseURL + "/storage/" + m.bucket + "/" + strings.TrimLeft(objectPath, "/")
}

// Paths lists stored object paths in upload order.
func (m *MemoryStore) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

func (m *MemoryStore) Get(objectPath string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[objectPath]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(o.data), o.contentType, true
}
