// Package cache keeps review responses on disk so regenerating a report with
// unchanged items does not call the model again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Store saves one JSON file per key under Dir.
type Store struct {
	Dir string
	// StrictPerms uses 0700 directories and 0600 files.
	StrictPerms bool
}

// ErrNoDir is returned when the store has no directory.
var ErrNoDir = errors.New("cache dir not configured")

func (s *Store) ensureDir() error {
	if s == nil || s.Dir == "" {
		return ErrNoDir
	}
	perm := os.FileMode(0o755)
	if s.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(s.Dir, perm); err != nil {
		return err
	}
	if s.StrictPerms {
		if info, err := os.Stat(s.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(s.Dir, 0o700)
		}
	}
	return nil
}

// Key derives a cache key from the model name and the full prompt.
func Key(model, prompt string) string {
	h := sha256.Sum256([]byte(model + "\n\n" + prompt))
	return hex.EncodeToString(h[:])
}

func (s *Store) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// Get returns the cached bytes for key. A miss is not an error.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := s.ensureDir(); err != nil {
		return nil, false, err
	}
	p := s.path(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false, nil
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, true, nil
}

// Save writes data under key.
func (s *Store) Save(_ context.Context, key string, data []byte) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if s.StrictPerms {
		mode = 0o600
	}
	return os.WriteFile(s.path(key), data, mode)
}
