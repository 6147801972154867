package storage

import (
	"context"
	"fmt"
	"sync"
)

type memEntry struct {
	value   []byte
	version int64
}

// Memory is an in-process Store. Values are copied on the way in and out.
type Memory struct {
	mu   sync.RWMutex
	data map[string]memEntry
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]memEntry)}
}

func (m *Memory) Load(ctx context.Context, key string) ([]byte, error) {
	v, _, err := m.LoadVersion(ctx, key)
	return v, err
}

func (m *Memory) LoadVersion(ctx context.Context, key string) ([]byte, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, e.version, nil
}

func (m *Memory) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memEntry{value: v, version: m.data[key].version + 1}
	return nil
}

func (m *Memory) SaveIfVersion(ctx context.Context, key string, version int64, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	if cur := m.data[key].version; cur != version {
		return 0, fmt.Errorf("%w: %s at %d, expected %d", ErrConflict, key, cur, version)
	}
	m.data[key] = memEntry{value: v, version: version + 1}
	return version + 1, nil
}
