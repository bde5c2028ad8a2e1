package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/dlcscan/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketPrograms = []byte("programs")
	bucketAddOns   = []byte("addons")
	bucketChoices  = []byte("choices")
	bucketScan     = []byte("scan")
)

var allBuckets = [][]byte{bucketPrograms, bucketAddOns, bucketChoices, bucketScan}

// Store is the local metadata cache and choice store, backed by BoltDB.
// Keys are "{source}:{id}" so one source's answers can be dropped by prefix.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// Open opens (or creates) the cache database under dir.
// An empty dir gives a memory-only store.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return &Store{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "dlcscan.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, cache: make(map[string][]byte)}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *Store) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *Store) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *Store) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}

func (s *Store) deletePrefix(bucket []byte, prefix string) error {
	s.mu.Lock()
	cachePrefix := string(bucket) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		// Collect first: deleting while iterating a cursor skips keys
		var keys [][]byte
		c := b.Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func sourceKey(source, id string) string {
	return source + ":" + id
}

// === Metadata cache ===

// GetProgram returns the last answer source gave for a program
func (s *Store) GetProgram(source, programID string) (*domain.ProgramMetadata, bool) {
	var meta domain.ProgramMetadata
	if !s.get(bucketPrograms, sourceKey(source, programID), &meta) {
		return nil, false
	}
	return &meta, true
}

func (s *Store) SaveProgram(source, programID string, meta *domain.ProgramMetadata) error {
	return s.set(bucketPrograms, sourceKey(source, programID), meta)
}

// GetAddOn returns the last descriptor source gave for an add-on
func (s *Store) GetAddOn(source, addOnID string) (*domain.AddOn, bool) {
	var addOn domain.AddOn
	if !s.get(bucketAddOns, sourceKey(source, addOnID), &addOn) {
		return nil, false
	}
	return &addOn, true
}

func (s *Store) SaveAddOn(source, addOnID string, addOn *domain.AddOn) error {
	return s.set(bucketAddOns, sourceKey(source, addOnID), addOn)
}

// InvalidateSource drops everything cached for one source
func (s *Store) InvalidateSource(source string) error {
	if err := s.deletePrefix(bucketPrograms, source+":"); err != nil {
		return err
	}
	return s.deletePrefix(bucketAddOns, source+":")
}

// === Choices ===

// ReadChoices returns the saved add-on choices; false if never saved
func (s *Store) ReadChoices() ([]domain.Choice, bool) {
	var choices []domain.Choice
	ok := s.get(bucketChoices, "addons", &choices)
	return choices, ok
}

func (s *Store) WriteChoices(choices []domain.Choice) error {
	return s.set(bucketChoices, "addons", choices)
}

// ClearChoices forgets saved choices
func (s *Store) ClearChoices() error {
	return s.delete(bucketChoices, "addons")
}

// === Scan request ===

// GetScanRequest returns the program keys chosen for the last scan
func (s *Store) GetScanRequest() ([]domain.ProgramKey, bool) {
	var keys []domain.ProgramKey
	ok := s.get(bucketScan, "request", &keys)
	return keys, ok
}

func (s *Store) SaveScanRequest(keys []domain.ProgramKey) error {
	return s.set(bucketScan, "request", keys)
}

// InvalidateAll wipes every bucket
func (s *Store) InvalidateAll() error {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}
