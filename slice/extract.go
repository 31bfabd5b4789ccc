/*
Package slice extracts normalized 2d images from a multi-resolution pyramid.
A caller addresses slices in level-0 coordinates regardless of the resolution
level actually read; the extractor maps the coordinate into the decimated
level, pulls the orthogonal plane, and compresses the 16-bit samples to 8-bit
grayscale for display.
*/
package slice

import (
	"image"

	"github.com/janelia-flyem/voxview/pyramid"
	"github.com/janelia-flyem/voxview/voxview"
)

// Extractor produces display-ready slices from one open pyramid.  It holds
// the pyramid read-only and is safe for concurrent use.
type Extractor struct {
	pyr *pyramid.Pyramid
}

// NewExtractor returns an extractor over the given pyramid.
func NewExtractor(pyr *pyramid.Pyramid) *Extractor {
	return &Extractor{pyr: pyr}
}

// ScaledIndex maps a level-0 coordinate along an axis into the corresponding
// coordinate of a level with the given shape.  The mapping uses the actual
// per-level extent ratio, so it holds for non-power-of-two and anisotropic
// decimation.  The result is clamped to the level's valid range: a level-0
// coordinate of shape0[axis]-1 always maps to shape[axis]-1.
func ScaledIndex(index int32, axis voxview.Axis, shape0, shape voxview.Shape3d) int32 {
	dim := uint8(axis)
	scale := float64(shape.Value(dim)) / float64(shape0.Value(dim))
	scaled := int32(float64(index) * scale)
	if scaled < 0 {
		scaled = 0
	}
	if max := shape.Value(dim) - 1; scaled > max {
		scaled = max
	}
	return scaled
}

// Extract returns the 8-bit grayscale slice orthogonal to the axis at the
// given level-0 index, read from the given resolution level.  A level outside
// the pyramid is a programming error and panics; a store failure is returned
// for the caller to log and retry.
func (e *Extractor) Extract(level int, axis voxview.Axis, index int32) (*image.Gray, error) {
	lv := e.pyr.Level(level)
	scaled := ScaledIndex(index, axis, e.pyr.Shape(pyramid.HighRes), lv.Shape())
	plane, err := lv.ReadPlane(axis, scaled)
	if err != nil {
		return nil, err
	}
	height, width := lv.Shape().PlaneSize(axis)
	return voxview.ImageGrayFromData(normalize(plane), int(width), int(height)), nil
}

// normalize compresses 16-bit samples to the 8-bit display range by scaling
// with 255/65535 and rounding half up.  This is the proportional-brightness
// mapping rather than the cheaper right-shift by 8; it is monotonic,
// deterministic, and maps 0 -> 0 and 65535 -> 255 exactly.
func normalize(samples []uint16) []uint8 {
	data := make([]uint8, len(samples))
	for i, v := range samples {
		data[i] = uint8((uint32(v)*255 + 32767) / 65535)
	}
	return data
}
