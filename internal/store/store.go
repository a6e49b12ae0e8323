// Package store persists sticker configs as JSON documents keyed by id.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/animg/internal/sticker"
)

// ErrNotFound is returned when no document exists for a key.
var ErrNotFound = errors.New("store: document not found")

const (
	DriverSQLite = "sqlite"
	DriverDiskv  = "diskv"
)

// Backend is a durable key to document store.
type Backend interface {
	Read(key string) ([]byte, error)
	Write(key string, doc []byte) error
	Erase(key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Store reads and writes sticker configs on top of a Backend.
type Store struct {
	backend Backend
	driver  string
}

// New wraps backend. driver is informational.
func New(backend Backend, driver string) *Store {
	return &Store{backend: backend, driver: driver}
}

// Open opens the backend named by driver at path.
func Open(driver, path string) (*Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		b, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return New(b, DriverSQLite), nil
	case DriverDiskv:
		b, err := OpenDiskv(path)
		if err != nil {
			return nil, err
		}
		return New(b, DriverDiskv), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (expected: sqlite, diskv)", driver)
	}
}

// Driver returns the backend name.
func (s *Store) Driver() string {
	return s.driver
}

// Get returns the config stored under key.
func (s *Store) Get(key string) (sticker.Config, error) {
	doc, err := s.backend.Read(key)
	if err != nil {
		return sticker.Config{}, err
	}
	var cfg sticker.Config
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return sticker.Config{}, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return cfg, nil
}

// Set replaces the document stored under key.
func (s *Store) Set(key string, cfg sticker.Config) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return s.backend.Write(key, doc)
}

// Update applies fn to the stored config and writes the result back. It
// returns ErrNotFound without writing when key is absent.
func (s *Store) Update(key string, fn func(*sticker.Config)) (sticker.Config, error) {
	cfg, err := s.Get(key)
	if err != nil {
		return sticker.Config{}, err
	}
	fn(&cfg)
	if err := s.Set(key, cfg); err != nil {
		return sticker.Config{}, err
	}
	return cfg, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	return s.backend.Erase(key)
}

// Keys lists every stored key.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.backend.Keys(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
