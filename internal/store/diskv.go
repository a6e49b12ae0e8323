package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvBackend stores one file per key under a base directory.
type DiskvBackend struct {
	d *diskv.Diskv
}

var _ Backend = (*DiskvBackend)(nil)

// OpenDiskv opens a diskv store rooted at basePath.
func OpenDiskv(basePath string) (*DiskvBackend, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &DiskvBackend{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 1024 * 1024, // 1MB
	})}, nil
}

func (b *DiskvBackend) Read(key string) ([]byte, error) {
	val, err := b.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return val, nil
}

func (b *DiskvBackend) Write(key string, doc []byte) error {
	if err := b.d.Write(key, doc); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

func (b *DiskvBackend) Erase(key string) error {
	if !b.d.Has(key) {
		return nil
	}
	if err := b.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

func (b *DiskvBackend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	for key := range b.d.Keys(ctx.Done()) {
		keys = append(keys, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *DiskvBackend) Close() error {
	return nil
}
