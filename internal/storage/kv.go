// Package storage defines the key-value persistence contract and its
// non-SQL backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Keys used by the word store and progress tracker
const (
	KeyAllLists     = "all_lists"
	KeyActiveListID = "active_list_id"
	KeyProgress     = "progress"
)

// KV is a minimal string key-value store
type KV interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Memory is an in-process KV
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type prefixed struct {
	kv     KV
	prefix string
}

// WithPrefix namespaces every key of kv with prefix
func WithPrefix(kv KV, prefix string) KV {
	return &prefixed{kv: kv, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.kv.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.kv.Set(ctx, p.prefix+key, value)
}

// ErrCorrupt wraps values that exist but cannot be decoded
var ErrCorrupt = errors.New("corrupt stored value")

// LoadJSON decodes the JSON value under key into dst.
// It returns false when the key is missing.
func LoadJSON(ctx context.Context, kv KV, key string, dst interface{}) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SaveJSON encodes value as JSON under key
func SaveJSON(ctx context.Context, kv KV, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
