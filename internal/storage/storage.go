package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage keeps flat files (avatars) under one root directory.
type Storage struct {
	validator *PathValidator
}

func New(root string) (*Storage, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Storage{validator: validator}, nil
}

func (s *Storage) RootAbs() string {
	return s.validator.RootAbs()
}

// Save writes r to name through a temp file and rename, so readers never see
// a partial file.
func (s *Storage) Save(name string, r io.Reader) (int64, error) {
	resolved, err := s.validator.ResolveName(name)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.RootAbs(), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	written, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("write %q: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %q: %w", name, err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("chmod %q: %w", name, err)
	}

	if err := os.Rename(tmpName, resolved); err != nil {
		return 0, fmt.Errorf("rename into %q: %w", name, err)
	}

	return written, nil
}

func (s *Storage) Open(name string) (*os.File, error) {
	resolved, err := s.validator.ResolveName(name)
	if err != nil {
		return nil, err
	}

	return os.Open(resolved)
}

// Remove deletes name; a missing file is not an error.
func (s *Storage) Remove(name string) error {
	resolved, err := s.validator.ResolveName(name)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", name, err)
	}

	return nil
}

// Path is the absolute location name would be stored at.
func (s *Storage) Path(name string) (string, error) {
	resolved, err := s.validator.ResolveName(name)
	if err != nil {
		return "", err
	}
	return filepath.Clean(resolved), nil
}
