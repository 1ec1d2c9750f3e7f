// Package storage is the single owner of dashboard persistence. It
// wraps a buntdb file store behind a small JSON key/value API; every
// key lives under one fixed namespace prefix so the dashboard can
// share a store file without colliding with other tools.
//
// The store never takes the dashboard down: when the file cannot be
// opened or written it degrades to an in-memory buntdb instance for
// the remainder of the session, logs one warning, and keeps serving.
package storage

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/buntdb"
)

// keyPrefix namespaces every stored key.
const keyPrefix = "deskpulse:"

// Store is a thread-safe JSON key/value store. Use Open.
type Store struct {
	mu     sync.Mutex
	db     *buntdb.DB
	logger *slog.Logger
	memory bool
}

// Open returns a store backed by the file at path, or by memory when
// path is ":memory:" or the file cannot be opened. Open never fails;
// degradation is logged.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{logger: logger}
	if path == "" {
		path = ":memory:"
	}
	s.memory = path == ":memory:"

	if !s.memory {
		// The default store lives under a data dir that does not
		// exist on a fresh install.
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			logger.Warn("storage: cannot create store directory",
				"path", path, "error", err)
		}
	}

	db, err := buntdb.Open(path)
	if err != nil {
		logger.Warn("storage: open failed, using in-memory store for this session",
			"path", path, "error", err)
		s.memory = true
		db, err = buntdb.Open(":memory:")
		if err != nil {
			logger.Error("storage: in-memory open failed, storage disabled", "error", err)
			return s
		}
	}
	s.db = db
	return s
}

// Set marshals v as JSON and writes it through under key. It reports
// whether the value was stored; marshal and write failures are logged,
// never raised.
func (s *Store) Set(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("storage: marshal failed", "key", key, "error", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return false
	}
	if err := s.write(key, string(data)); err != nil {
		if s.memory {
			s.logger.Warn("storage: write failed", "key", key, "error", err)
			return false
		}
		s.degrade(err)
		if s.db == nil || s.write(key, string(data)) != nil {
			return false
		}
	}
	return true
}

// Get unmarshals the value stored under key into dest and reports
// whether a usable value was found. Missing keys and corrupt values
// both read as absent; corruption is logged.
func (s *Store) Get(key string, dest any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return false
	}

	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(keyPrefix + key)
		if err != nil {
			return err
		}
		raw = v
		return nil
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return false
	}
	if err != nil {
		s.logger.Warn("storage: read failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logger.Warn("storage: corrupt value treated as absent", "key", key, "error", err)
		return false
	}
	return true
}

// Remove deletes key and reports whether anything was removed.
func (s *Store) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return false
	}

	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(keyPrefix + key)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return false
	}
	if err != nil {
		s.logger.Warn("storage: delete failed", "key", key, "error", err)
		return false
	}
	return true
}

// Keys returns the sorted bare keys in the namespace.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}

	var keys []string
	_ = s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(keyPrefix+"*", func(k, _ string) bool {
			keys = append(keys, strings.TrimPrefix(k, keyPrefix))
			return true
		})
	})
	return keys
}

// InMemory reports whether the store is running without a backing
// file, either by configuration or after degrading.
func (s *Store) InMemory() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory
}

// Close releases the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// write stores one namespaced entry. Caller holds s.mu.
func (s *Store) write(key, val string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(keyPrefix+key, val, nil)
		return err
	})
}

// degrade swaps the backing database for a fresh in-memory one,
// carrying over whatever can still be read. Caller holds s.mu.
func (s *Store) degrade(cause error) {
	s.logger.Warn("storage: write failed, using in-memory store for the rest of the session",
		"error", cause)
	mem, err := buntdb.Open(":memory:")
	if err != nil {
		s.logger.Error("storage: in-memory open failed, storage disabled", "error", err)
		_ = s.db.Close()
		s.db = nil
		s.memory = true
		return
	}
	_ = s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(keyPrefix+"*", func(k, v string) bool {
			_ = mem.Update(func(mtx *buntdb.Tx) error {
				_, _, err := mtx.Set(k, v, nil)
				return err
			})
			return true
		})
	})
	_ = s.db.Close()
	s.db = mem
	s.memory = true
}
