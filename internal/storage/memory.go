package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/stretchkit/progression/internal/domain"
)

// MemoryStore is an in-memory Store used by tests and local development.
// Documents are stored as JSON so a round-trip exercises the same
// serialization path as a real adapter.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte

	// FailNextSave makes the next Save fail, for failure-path tests.
	FailNextSave bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string][]byte),
	}
}

// Load returns the stored document for userID.
func (m *MemoryStore) Load(ctx context.Context, userID string) (*domain.UserProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	m.mu.RLock()
	data, ok := m.docs[userID]
	m.mu.RUnlock()

	if !ok {
		return nil, domain.ErrUserProgressNotFound
	}

	var doc domain.UserProgress
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	return &doc, nil
}

// Save stores the document, replacing any previous version atomically.
func (m *MemoryStore) Save(ctx context.Context, doc *domain.UserProgress) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNextSave {
		m.FailNextSave = false
		return fmt.Errorf("%w: injected save failure", domain.ErrStorageUnavailable)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	m.docs[doc.UserID] = data
	return nil
}

// Delete removes the document for userID. Deleting a missing user is a no-op.
func (m *MemoryStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, userID)
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() {}
