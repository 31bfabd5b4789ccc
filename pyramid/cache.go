package pyramid

import (
	"sync/atomic"

	"github.com/coocood/freecache"

	"github.com/janelia-flyem/voxview/voxview"
)

// CachedStore wraps a ChunkStore with an in-memory freecache of decoded
// chunks.  Interactive slicing re-reads the same chunks many times as a view
// sharpens, so even a small cache removes most store reads.
type CachedStore struct {
	ChunkStore
	cache  *freecache.Cache
	hits   uint64
	misses uint64
}

// NewCachedStore returns a store caching roughly the given number of
// megabytes of decoded chunks.
func NewCachedStore(store ChunkStore, mbs int) *CachedStore {
	numBytes := mbs << 20
	voxview.Infof("Created freecache of ~ %d MB for pyramid chunks.\n", mbs)
	return &CachedStore{
		ChunkStore: store,
		cache:      freecache.NewCache(numBytes),
	}
}

func (s *CachedStore) ReadChunk(group string, level uint8, pt ChunkPoint) ([]byte, error) {
	key := chunkKey(group, level, pt)
	if voxels, err := s.cache.Get(key); err == nil {
		atomic.AddUint64(&s.hits, 1)
		return voxels, nil
	}
	voxels, err := s.ChunkStore.ReadChunk(group, level, pt)
	if err != nil {
		return nil, err
	}
	atomic.AddUint64(&s.misses, 1)
	if voxels != nil {
		if err := s.cache.Set(key, voxels, 0); err != nil {
			voxview.Debugf("Unable to cache chunk %s of group %q level %d: %v\n",
				pt, group, level, err)
		}
	}
	return voxels, nil
}

func (s *CachedStore) WriteChunk(group string, level uint8, pt ChunkPoint, voxels []byte) error {
	s.cache.Del(chunkKey(group, level, pt))
	return s.ChunkStore.WriteChunk(group, level, pt, voxels)
}

// CacheStats returns the number of chunk reads served from and missed by the cache.
func (s *CachedStore) CacheStats() (hits, misses uint64) {
	return atomic.LoadUint64(&s.hits), atomic.LoadUint64(&s.misses)
}
