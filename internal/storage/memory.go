package storage

import (
	"sync"

	"strata/internal/errors"
)

// MemoryBackend keeps all repository state in process memory. It exists for
// tests and for embedding the core without touching disk.
type MemoryBackend struct {
	mu          sync.RWMutex
	objects     map[string][]byte
	head        string
	index       []byte
	initialized bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[string][]byte)}
}

func (b *MemoryBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return errors.AlreadyInitialized("repository already initialized")
	}
	b.initialized = true
	return nil
}

func (b *MemoryBackend) Initialized() (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialized, nil
}

func (b *MemoryBackend) PutObject(hash string, content []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[hash]; ok {
		return nil
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	b.objects[hash] = cp
	return nil
}

func (b *MemoryBackend) GetObject(hash string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	content, ok := b.objects[hash]
	if !ok {
		return nil, errors.NotFound("no such object: %s", hash)
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return cp, nil
}

func (b *MemoryBackend) HasObject(hash string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.objects[hash]
	return ok, nil
}

func (b *MemoryBackend) ListObjects() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hashes := make([]string, 0, len(b.objects))
	for hash := range b.objects {
		hashes = append(hashes, hash)
	}
	return hashes, nil
}

func (b *MemoryBackend) ReadHead() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.head, nil
}

func (b *MemoryBackend) ReadIndex() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.index == nil {
		return nil, nil
	}
	cp := make([]byte, len(b.index))
	copy(cp, b.index)
	return cp, nil
}

func (b *MemoryBackend) WriteIndex(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	b.index = cp
	return nil
}

// CommitState holds the write lock across both updates, so readers never
// observe the new head with the old index.
func (b *MemoryBackend) CommitState(head string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = head
	b.index = nil
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
