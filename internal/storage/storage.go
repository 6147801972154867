// Package storage implements the key-value persistence used for member
// records and the member directory.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Load when the key has never been saved.
	ErrNotFound = errors.New("key not found")

	// ErrConflict is returned by SaveIfVersion when another writer changed
	// the key after it was read.
	ErrConflict = errors.New("version conflict")
)

// Store is a byte-oriented key-value store. Every write bumps the key's
// version; a key that was never written is at version 0.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error

	// LoadVersion returns the value together with its current version.
	LoadVersion(ctx context.Context, key string) ([]byte, int64, error)

	// SaveIfVersion writes value only while key is still at version and
	// returns the new version. Version 0 means create-if-absent.
	SaveIfVersion(ctx context.Context, key string, version int64, value []byte) (int64, error)
}

// LoadJSON loads key and decodes it into v.
func LoadJSON(ctx context.Context, s Store, key string, v any) error {
	_, err := LoadJSONVersion(ctx, s, key, v)
	return err
}

// LoadJSONVersion loads key, decodes it into v and returns its version.
func LoadJSONVersion(ctx context.Context, s Store, key string, v any) (int64, error) {
	data, version, err := s.LoadVersion(ctx, key)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return version, nil
}

// SaveJSON encodes v and saves it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Save(ctx, key, data)
}

// SaveJSONIfVersion encodes v and writes it only while key is at version.
func SaveJSONIfVersion(ctx context.Context, s Store, key string, version int64, v any) (int64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SaveIfVersion(ctx, key, version, data)
}
