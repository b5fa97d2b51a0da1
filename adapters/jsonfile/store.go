// Package jsonfile persists the account directory as a JSON file, the
// durable analog of the browser localStorage snapshot the simulated
// frontend keeps. The file holds an object keyed by the fixed storage
// namespace, so a snapshot exported from the browser loads unchanged.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ddelgadillo/authsim"
)

type Store struct {
	mu   sync.Mutex
	path string
}

var _ authsim.DirectoryStore = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() ([]*authsim.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var snapshot map[string][]*authsim.Account
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return snapshot[authsim.StorageKey], nil
}

func (s *Store) Save(accounts []*authsim.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(map[string][]*authsim.Account{
		authsim.StorageKey: accounts,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode directory: %w", err)
	}

	// Write-then-rename so a crash mid-save never leaves a torn file.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".authsim-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
