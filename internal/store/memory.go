package store

import (
	"context"
	"sync"

	"workflow/internal/constants"
)

// MemoryBackend keeps values in process memory. Used for local runs and
// tests.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][][]byte)}
}

func (m *MemoryBackend) Name() string {
	return constants.StoreBackendMemory
}

func (m *MemoryBackend) Append(ctx context.Context, userID string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := make([]byte, len(value))
	copy(buf, value)

	m.mu.Lock()
	m.values[userID] = append(m.values[userID], buf)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Values(ctx context.Context, userID string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.values[userID]
	out := make([][]byte, len(stored))
	copy(out, stored)
	return out, nil
}
