package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInjected is returned by MemoryStorage when a failure has been armed.
var ErrInjected = errors.New("storage: injected failure")

// MemoryStorage keeps objects in process memory. It backs local development
// (STORAGE_DRIVER=memory) and tests, and can be told to fail on demand.
type MemoryStorage struct {
	mu        sync.Mutex
	baseURL   string
	objects   map[string][]byte
	types     map[string]string
	deleted   []string
	failSave  bool
	failKeys  map[string]bool
	failAll   bool
	saveCalls int
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		objects:  make(map[string][]byte),
		types:    make(map[string]string),
		failKeys: make(map[string]bool),
	}
}

func (m *MemoryStorage) Save(_ context.Context, key string, file io.Reader, contentType string) error {
	m.mu.Lock()
	m.saveCalls++
	fail := m.failSave
	m.mu.Unlock()
	if fail {
		return fmt.Errorf("failed to save %q: %w", key, ErrInjected)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	m.types[key] = contentType
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(key)
}

func (m *MemoryStorage) DeleteMany(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		if err := m.deleteLocked(k); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStorage) deleteLocked(key string) error {
	if m.failAll || m.failKeys[key] {
		return fmt.Errorf("failed to delete %q: %w", key, ErrInjected)
	}
	delete(m.objects, key)
	delete(m.types, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MemoryStorage) URL(key string) string {
	return m.baseURL + "/" + key
}

// Put stores an object directly, bypassing Save accounting.
func (m *MemoryStorage) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
}

// Get returns the stored object and its content type.
func (m *MemoryStorage) Get(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, m.types[key], ok
}

func (m *MemoryStorage) Has(key string) bool {
	_, _, ok := m.Get(key)
	return ok
}

// Deleted lists every key successfully deleted, in call order.
func (m *MemoryStorage) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

func (m *MemoryStorage) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}

// FailDelete makes deletes of the given keys fail. No keys fails every delete.
func (m *MemoryStorage) FailDelete(keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(keys) == 0 {
		m.failAll = true
		return
	}
	for _, k := range keys {
		m.failKeys[k] = true
	}
}

func (m *MemoryStorage) FailSave(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSave = fail
}

// Heal clears all armed failures.
func (m *MemoryStorage) Heal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = false
	m.failSave = false
	m.failKeys = make(map[string]bool)
}
