// Package repository manages the flat directory holding imported image files.
package repository

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrExists is returned by Import when a file with the same base name is
	// already present.
	ErrExists = errors.New("file already exists in the application")
	// ErrInvalidName is returned for names that would escape the repository.
	ErrInvalidName = errors.New("invalid file name")
)

// Repository is a directory of image files addressed by base name.
type Repository struct {
	dir string
}

// Open ensures dir exists and returns a Repository rooted there.
func Open(dir string) (*Repository, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("repository: directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("repository: resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("repository: create %s: %w", abs, err)
	}
	return &Repository{dir: abs}, nil
}

// Dir returns the absolute repository root.
func (r *Repository) Dir() string {
	return r.dir
}

// Hidden reports whether name is a dotfile. Hidden entries are never listed.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// List returns the names of the regular, non-hidden files in listing order.
func (r *Repository) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("repository: list %s: %w", r.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || Hidden(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Path returns the absolute path for name after checking that it is a plain
// base name.
func (r *Repository) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(r.dir, name), nil
}

// Exists reports whether name is present.
func (r *Repository) Exists(name string) bool {
	path, err := r.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Read returns the full contents of name.
func (r *Repository) Read(name string) ([]byte, error) {
	path, err := r.Path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Import copies src into the repository under its base name and returns that
// name. ErrExists is returned without touching the existing file, and
// ErrInvalidName for dotfiles, which List never reports.
func (r *Repository) Import(src string) (string, error) {
	name := filepath.Base(src)
	if Hidden(name) {
		return "", fmt.Errorf("%w: %s is hidden", ErrInvalidName, name)
	}
	dst, err := r.Path(name)
	if err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("repository: open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("repository: stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("repository: %s is not a regular file", src)
	}

	if r.Exists(name) {
		return "", ErrExists
	}

	// Watchers ignore dotfiles, so the copy stays invisible until it is
	// linked into place. Link fails if dst already exists.
	tmp, err := os.CreateTemp(r.dir, ".import-*")
	if err != nil {
		return "", fmt.Errorf("repository: create temp for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return "", fmt.Errorf("repository: copy %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("repository: close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("repository: chmod %s: %w", name, err)
	}
	if err := os.Link(tmp.Name(), dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", ErrExists
		}
		return "", fmt.Errorf("repository: store %s: %w", name, err)
	}
	return name, nil
}

// Remove deletes name. A missing file is not an error.
func (r *Repository) Remove(name string) error {
	path, err := r.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("repository: remove %s: %w", name, err)
	}
	return nil
}

func validateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`), name != filepath.Base(name):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
