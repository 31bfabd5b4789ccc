package pyramid

import (
	"encoding/json"
	"sort"
	"sync"
)

// ChunkStore is the persistence interface for pyramid voxel data.  A missing
// chunk reads as nil without error; callers treat absent chunks as zero
// voxels so sparse volumes need not store empty space.
type ChunkStore interface {
	// ReadMeta returns a group's metadata record or ErrBadGroup.
	ReadMeta(group string) (GroupMeta, error)

	// WriteMeta stores a group's metadata record.
	WriteMeta(meta GroupMeta) error

	// Groups returns the sorted names of all volume groups in the store.
	Groups() ([]string, error)

	// ReadChunk returns the voxel bytes of one chunk, or nil if not stored.
	ReadChunk(group string, level uint8, pt ChunkPoint) ([]byte, error)

	// WriteChunk stores the voxel bytes of one chunk.
	WriteChunk(group string, level uint8, pt ChunkPoint, voxels []byte) error

	// Close releases the store.  No reads may follow.
	Close()
}

// MemStore is an in-memory ChunkStore used for testing and small volumes.
// Chunks pass through the same serialization path as persistent stores.
type MemStore struct {
	mu       sync.RWMutex
	records  map[string][]byte
	compress Compression
}

// NewMemStore returns an empty in-memory store with snappy chunk encoding.
func NewMemStore() *MemStore {
	return &MemStore{
		records:  make(map[string][]byte),
		compress: Snappy,
	}
}

func (s *MemStore) ReadMeta(group string) (GroupMeta, error) {
	s.mu.RLock()
	b, found := s.records[string(metaKey(group))]
	s.mu.RUnlock()
	var meta GroupMeta
	if !found {
		return meta, ErrBadGroup
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

func (s *MemStore) WriteMeta(meta GroupMeta) error {
	if err := ValidGroupName(meta.Group); err != nil {
		return err
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[string(metaKey(meta.Group))] = b
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Groups() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var groups []string
	for key := range s.records {
		if len(key) > 1 && key[0] == metaTag {
			groups = append(groups, key[1:])
		}
	}
	sort.Strings(groups)
	return groups, nil
}

func (s *MemStore) ReadChunk(group string, level uint8, pt ChunkPoint) ([]byte, error) {
	s.mu.RLock()
	b, found := s.records[string(chunkKey(group, level, pt))]
	s.mu.RUnlock()
	if !found {
		return nil, nil
	}
	return deserializeChunk(b)
}

func (s *MemStore) WriteChunk(group string, level uint8, pt ChunkPoint, voxels []byte) error {
	b, err := serializeChunk(voxels, s.compress)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[string(chunkKey(group, level, pt))] = b
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Close() {}
