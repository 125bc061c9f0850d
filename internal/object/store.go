// internal/object/store.go
package object

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"strata/internal/errors"
	"strata/internal/storage"
	"strata/shared/utils"
)

// DefaultCacheSize bounds the read cache when Options leaves it unset.
const DefaultCacheSize = 256

// Store provides content-addressable, deduplicated blob storage over a
// backend. Objects are immutable: the hash is computed exactly once, on
// write, and reads return the stored bytes without re-hashing them.
type Store struct {
	backend storage.Backend
	cache   *lru.Cache[string, []byte]
}

// Options configures Store behavior.
type Options struct {
	CacheSize int // Number of objects to cache
}

// New creates a Store over backend.
func New(backend storage.Backend, opts Options) (*Store, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, errors.IOFailure(err, "creating object cache")
	}

	return &Store{backend: backend, cache: cache}, nil
}

// Put stores content and returns its hash. Storing the same content twice
// is a no-op that returns the same hash.
func (s *Store) Put(content []byte) (string, error) {
	if content == nil {
		content = []byte{} // Treat nil as empty content
	}

	hash := utils.HashContent(content)

	if s.cache.Contains(hash) {
		return hash, nil
	}

	ok, err := s.backend.HasObject(hash)
	if err != nil {
		return "", err
	}
	if !ok {
		if err := s.backend.PutObject(hash, content); err != nil {
			return "", err
		}
	}

	s.cache.Add(hash, content)
	return hash, nil
}

// Get retrieves content by hash. A malformed hash fails the same way as an
// absent one.
func (s *Store) Get(hash string) ([]byte, error) {
	if !utils.IsHash(hash) {
		return nil, errors.NotFound("no such object: %s", hash)
	}

	if content, ok := s.cache.Get(hash); ok {
		return content, nil
	}

	content, err := s.backend.GetObject(hash)
	if err != nil {
		return nil, err
	}

	s.cache.Add(hash, content)
	return content, nil
}

// Has reports whether hash resolves to a stored object. A malformed hash
// resolves to nothing.
func (s *Store) Has(hash string) (bool, error) {
	if !utils.IsHash(hash) {
		return false, nil
	}
	if s.cache.Contains(hash) {
		return true, nil
	}
	return s.backend.HasObject(hash)
}
