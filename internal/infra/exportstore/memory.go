package exportstore

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/heliowatt/heliowatt/internal/domain/export"
)

// MemoryStorage keeps artifacts in memory. Useful for tests and local dev.
// It enforces the same key scheme as the S3 adapter; content type is never
// stored because it derives from the key.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[export.Key][]byte
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[export.Key][]byte)}
}

// Put stores the artifact and returns metadata.
func (s *MemoryStorage) Put(_ context.Context, key export.Key, data []byte) (export.StoredObject, error) {
	if err := key.Validate(); err != nil {
		return export.StoredObject{}, err
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.mu.Lock()
	s.blobs[key] = stored
	s.mu.Unlock()
	hash := md5.Sum(stored)
	return export.StoredObject{
		Key:  key,
		Size: int64(len(stored)),
		ETag: hex.EncodeToString(hash[:]),
	}, nil
}

// Get returns a reader for the stored artifact.
func (s *MemoryStorage) Get(_ context.Context, key export.Key) (io.ReadCloser, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("artifact not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the artifact.
func (s *MemoryStorage) Delete(_ context.Context, key export.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

var _ export.ObjectStorage = (*MemoryStorage)(nil)
