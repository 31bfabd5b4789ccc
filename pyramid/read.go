package pyramid

import (
	"encoding/binary"
	"fmt"

	"github.com/janelia-flyem/voxview/voxview"
)

// ReadPlane returns the 2d plane of voxels orthogonal to the given axis at
// the level-local index, in row-major (height, width) order per
// Axis.PlaneDims.  Chunks absent from the store read as zero voxels.
func (l *Level) ReadPlane(axis voxview.Axis, index int32) ([]uint16, error) {
	fdim := uint8(axis)
	if index < 0 || index >= l.shape.Value(fdim) {
		return nil, fmt.Errorf("index %d outside %s of level %d shape %s",
			index, axis, l.level, l.shape)
	}
	hdim, wdim := axis.PlaneDims()
	height, width := l.shape.PlaneSize(axis)
	out := make([]uint16, int(height)*int(width))

	cs := l.chunkSize
	var pt ChunkPoint
	pt[fdim] = index / cs
	foff := int32(index % cs)

	chunkVoxels := int(cs) * int(cs) * int(cs)
	for ch := int32(0); ch*cs < height; ch++ {
		pt[hdim] = ch
		for cw := int32(0); cw*cs < width; cw++ {
			pt[wdim] = cw
			voxels, err := l.store.ReadChunk(l.group, l.level, pt)
			if err != nil {
				return nil, fmt.Errorf("error reading chunk %s of group %q level %d: %v",
					pt, l.group, l.level, err)
			}
			if voxels == nil {
				continue // unwritten chunk, leave zeros
			}
			if len(voxels) != chunkVoxels*2 {
				return nil, fmt.Errorf("chunk %s of group %q level %d has %d bytes, expected %d",
					pt, l.group, l.level, len(voxels), chunkVoxels*2)
			}

			var c [3]int32
			c[fdim] = foff
			hmax := height - ch*cs
			if hmax > cs {
				hmax = cs
			}
			wmax := width - cw*cs
			if wmax > cs {
				wmax = cs
			}
			for lh := int32(0); lh < hmax; lh++ {
				c[hdim] = lh
				dst := int(ch*cs+lh)*int(width) + int(cw*cs)
				for lw := int32(0); lw < wmax; lw++ {
					c[wdim] = lw
					src := (int(c[0])*int(cs)+int(c[1]))*int(cs) + int(c[2])
					out[dst+int(lw)] = binary.LittleEndian.Uint16(voxels[src*2:])
				}
			}
		}
	}
	return out, nil
}
