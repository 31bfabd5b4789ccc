package pyramid

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Key tags for the records kept in a chunk store.  Chunk keys order
// lexicographically by (group, level, z, y, x) so all chunks of one level are
// a contiguous key range.
const (
	metaTag  byte = 0x4d // 'M': group metadata record
	chunkTag byte = 0x43 // 'C': voxel chunk record
)

// keyGroupSep terminates the group name inside a chunk key so one group name
// can never be a key prefix of another.
const keyGroupSep byte = 0x00

// ChunkPoint is a chunk's coordinate in chunk space, ordered like Shape3d.
type ChunkPoint [3]int32

func (c ChunkPoint) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c[0], c[1], c[2])
}

// ValidGroupName returns an error if a group name cannot be used in keys.
func ValidGroupName(group string) error {
	if group == "" {
		return fmt.Errorf("volume group name cannot be empty")
	}
	if strings.IndexByte(group, keyGroupSep) >= 0 {
		return fmt.Errorf("volume group name %q contains a zero byte", group)
	}
	return nil
}

// metaKey returns the store key for a group's metadata record.
func metaKey(group string) []byte {
	key := make([]byte, 0, 1+len(group))
	key = append(key, metaTag)
	key = append(key, group...)
	return key
}

// groupFromMetaKey recovers the group name from a metadata key.
func groupFromMetaKey(key []byte) (string, error) {
	if len(key) < 2 || key[0] != metaTag {
		return "", fmt.Errorf("malformed group metadata key % x", key)
	}
	return string(key[1:]), nil
}

// chunkKey returns the store key for one voxel chunk of a level.
func chunkKey(group string, level uint8, pt ChunkPoint) []byte {
	key := make([]byte, 0, 1+len(group)+1+1+12)
	key = append(key, chunkTag)
	key = append(key, group...)
	key = append(key, keyGroupSep, level)
	var coord [12]byte
	binary.BigEndian.PutUint32(coord[0:], uint32(pt[0]))
	binary.BigEndian.PutUint32(coord[4:], uint32(pt[1]))
	binary.BigEndian.PutUint32(coord[8:], uint32(pt[2]))
	return append(key, coord[:]...)
}

// chunkPrefix returns the key prefix shared by every chunk of a group.
func chunkPrefix(group string) []byte {
	key := make([]byte, 0, 1+len(group)+1)
	key = append(key, chunkTag)
	key = append(key, group...)
	return append(key, keyGroupSep)
}
