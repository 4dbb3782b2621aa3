package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketFilters = []byte("filters")

// FilterStore implements domain.FilterStore using BoltDB. Each profile
// (repository URL + user) gets its own key, so residents sharing a machine
// keep separate filters.
type FilterStore struct {
	db     *bolt.DB
	key    []byte
	logger *slog.Logger

	mu    sync.RWMutex // Protects memory cache
	cache []byte
	held  bool
}

// NewFilterStore opens the store under baseDir. An empty baseDir keeps the
// blob in memory only.
func NewFilterStore(baseDir, repositoryURL, userID string, logger *slog.Logger) (*FilterStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	key := []byte("last:" + profileKey(repositoryURL, userID))
	if baseDir == "" {
		// Memory-only mode (no persistence)
		return &FilterStore{key: key, logger: logger}, nil
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(baseDir, "vizinho.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFilters)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &FilterStore{db: db, key: key, logger: logger}, nil
}

func profileKey(repositoryURL, userID string) string {
	normalized := strings.TrimRight(strings.ToLower(repositoryURL), "/") + "|" + userID
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *FilterStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the saved blob, or false when nothing was saved.
func (s *FilterStore) Load() ([]byte, bool) {
	s.mu.RLock()
	if s.held {
		data := append([]byte(nil), s.cache...)
		s.mu.RUnlock()
		return data, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFilters)
		if b == nil {
			return nil
		}
		if v := b.Get(s.key); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to read saved filters", "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache = data
	s.held = true
	s.mu.Unlock()

	return append([]byte(nil), data...), true
}

// Save replaces the saved blob.
func (s *FilterStore) Save(blob []byte) error {
	data := append([]byte(nil), blob...)

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketFilters)
			if b == nil {
				return fmt.Errorf("bucket %s missing", bucketFilters)
			}
			return b.Put(s.key, data)
		})
		if err != nil {
			return fmt.Errorf("save filters: %w", err)
		}
	}

	s.mu.Lock()
	s.cache = data
	s.held = true
	s.mu.Unlock()
	return nil
}

// Clear forgets the saved blob.
func (s *FilterStore) Clear() error {
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			if b := tx.Bucket(bucketFilters); b != nil {
				return b.Delete(s.key)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("clear filters: %w", err)
		}
	}

	s.mu.Lock()
	s.cache = nil
	s.held = false
	s.mu.Unlock()
	return nil
}
