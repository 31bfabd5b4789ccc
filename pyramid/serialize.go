package pyramid

import (
	"fmt"

	"github.com/golang/snappy"
)

// Compression identifies how a chunk payload is encoded at rest.  The format
// byte is stored ahead of the payload so stores with mixed settings can still
// be read.
type Compression uint8

const (
	Uncompressed Compression = 0
	Snappy       Compression = 1
)

func (c Compression) String() string {
	switch c {
	case Uncompressed:
		return "uncompressed"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("unknown compression (%d)", c)
	}
}

// serializeChunk returns a chunk payload ready for storage: a one byte
// compression format followed by the possibly compressed voxel bytes.
func serializeChunk(data []byte, compress Compression) ([]byte, error) {
	switch compress {
	case Uncompressed:
		return append([]byte{byte(Uncompressed)}, data...), nil
	case Snappy:
		encoded := snappy.Encode(nil, data)
		return append([]byte{byte(Snappy)}, encoded...), nil
	default:
		return nil, fmt.Errorf("cannot serialize chunk with %s", compress)
	}
}

// deserializeChunk returns the voxel bytes of a stored chunk payload.
func deserializeChunk(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("cannot deserialize empty chunk payload")
	}
	switch Compression(b[0]) {
	case Uncompressed:
		return b[1:], nil
	case Snappy:
		data, err := snappy.Decode(nil, b[1:])
		if err != nil {
			return nil, fmt.Errorf("could not decode snappy chunk: %v", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("cannot deserialize chunk with %s", Compression(b[0]))
	}
}
