package pyramid

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/voxview/voxview"
)

// IngestOptions control pyramid construction during ingest.
type IngestOptions struct {
	// ChunkSize is the cubic chunk side length.  Zero uses DefaultChunkSize.
	ChunkSize int32

	// MaxLevels caps the number of resolution levels.  Zero decimates until
	// every dimension of the coarsest level fits within one chunk.
	MaxLevels int
}

// Ingest writes a full resolution volume and its decimated levels to a store
// under the given group name.  Coarser levels are built by repeated 2x mean
// downsampling.  Returns the metadata written for the group.
func Ingest(store ChunkStore, group string, voxels []uint16, shape voxview.Shape3d, opts IngestOptions) (GroupMeta, error) {
	var meta GroupMeta
	if err := ValidGroupName(group); err != nil {
		return meta, err
	}
	if !shape.Valid() {
		return meta, fmt.Errorf("cannot ingest volume group %q with degenerate shape %s", group, shape)
	}
	if int64(len(voxels)) != shape.NumVoxels() {
		return meta, fmt.Errorf("volume group %q has %d voxels but shape %s requires %d",
			group, len(voxels), shape, shape.NumVoxels())
	}
	cs := opts.ChunkSize
	if cs == 0 {
		cs = DefaultChunkSize
	}
	if cs < 1 {
		return meta, fmt.Errorf("bad chunk size %d for volume group %q", cs, group)
	}

	meta = GroupMeta{Group: group, ChunkSize: cs}
	timelog := voxview.NewTimeLog()
	level := 0
	for {
		if err := writeLevel(store, group, uint8(level), voxels, shape, cs); err != nil {
			return meta, err
		}
		voxview.Infof("Wrote level %d of volume group %q: shape %s, %s of voxels\n",
			level, group, shape, humanize.Bytes(uint64(shape.NumVoxels()*2)))
		meta.Levels = append(meta.Levels, LevelMeta{Shape: shape})

		if opts.MaxLevels > 0 && len(meta.Levels) >= opts.MaxLevels {
			break
		}
		if shape[0] <= cs && shape[1] <= cs && shape[2] <= cs {
			break
		}
		voxels, shape = downres2x(voxels, shape)
		level++
	}
	if err := store.WriteMeta(meta); err != nil {
		return meta, err
	}
	timelog.Infof("Ingested volume group %q with %d levels", group, len(meta.Levels))
	return meta, nil
}

// writeLevel chunks one resolution level into the store, skipping chunks that
// hold only zero voxels.
func writeLevel(store ChunkStore, group string, level uint8, voxels []uint16, shape voxview.Shape3d, cs int32) error {
	chunkVoxels := int(cs) * int(cs) * int(cs)
	buf := make([]byte, chunkVoxels*2)
	var pt ChunkPoint
	for pt[0] = 0; pt[0]*cs < shape[0]; pt[0]++ {
		for pt[1] = 0; pt[1]*cs < shape[1]; pt[1]++ {
			for pt[2] = 0; pt[2]*cs < shape[2]; pt[2]++ {
				if fillChunk(buf, voxels, shape, pt, cs) {
					if err := store.WriteChunk(group, level, pt, buf); err != nil {
						return fmt.Errorf("error writing chunk %s of group %q level %d: %v",
							pt, group, level, err)
					}
				}
			}
		}
	}
	return nil
}

// fillChunk copies the chunk at pt out of a full volume into buf, padding
// past-edge voxels with zero.  Returns false if the chunk is entirely zero.
func fillChunk(buf []byte, voxels []uint16, shape voxview.Shape3d, pt ChunkPoint, cs int32) bool {
	for i := range buf {
		buf[i] = 0
	}
	nonzero := false
	z0, y0, x0 := pt[0]*cs, pt[1]*cs, pt[2]*cs
	for z := int32(0); z < cs && z0+z < shape[0]; z++ {
		for y := int32(0); y < cs && y0+y < shape[1]; y++ {
			src := (int(z0+z)*int(shape[1])+int(y0+y))*int(shape[2]) + int(x0)
			dst := (int(z)*int(cs) + int(y)) * int(cs)
			for x := int32(0); x < cs && x0+x < shape[2]; x++ {
				v := voxels[src+int(x)]
				if v != 0 {
					nonzero = true
					binary.LittleEndian.PutUint16(buf[(dst+int(x))*2:], v)
				}
			}
		}
	}
	return nonzero
}

// downres2x returns a volume downsampled 2x in each dimension using the mean
// of each up-to-2x2x2 window.  Odd extents shrink their edge windows.
func downres2x(voxels []uint16, shape voxview.Shape3d) ([]uint16, voxview.Shape3d) {
	dshape := voxview.Shape3d{(shape[0] + 1) / 2, (shape[1] + 1) / 2, (shape[2] + 1) / 2}
	dst := make([]uint16, dshape.NumVoxels())
	for z := int32(0); z < dshape[0]; z++ {
		for y := int32(0); y < dshape[1]; y++ {
			for x := int32(0); x < dshape[2]; x++ {
				var sum, n uint32
				for sz := z * 2; sz < z*2+2 && sz < shape[0]; sz++ {
					for sy := y * 2; sy < y*2+2 && sy < shape[1]; sy++ {
						for sx := x * 2; sx < x*2+2 && sx < shape[2]; sx++ {
							sum += uint32(voxels[(int(sz)*int(shape[1])+int(sy))*int(shape[2])+int(sx)])
							n++
						}
					}
				}
				dst[(int(z)*int(dshape[1])+int(y))*int(dshape[2])+int(x)] = uint16(sum / n)
			}
		}
	}
	return dst, dshape
}

// IngestRawFile reads a little-endian uint16 volume from a file and ingests
// it under the given group name.
func IngestRawFile(store ChunkStore, group, filename string, shape voxview.Shape3d, opts IngestOptions) (GroupMeta, error) {
	var meta GroupMeta
	b, err := os.ReadFile(filename)
	if err != nil {
		return meta, fmt.Errorf("cannot read raw volume file %q: %v", filename, err)
	}
	if int64(len(b)) != shape.NumVoxels()*2 {
		return meta, fmt.Errorf("raw volume file %q has %s but shape %s requires %s",
			filename, humanize.Bytes(uint64(len(b))), shape, humanize.Bytes(uint64(shape.NumVoxels()*2)))
	}
	voxels := make([]uint16, shape.NumVoxels())
	for i := range voxels {
		voxels[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return Ingest(store, group, voxels, shape, opts)
}
