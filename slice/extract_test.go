package slice

import (
	"testing"

	"github.com/janelia-flyem/voxview/pyramid"
	"github.com/janelia-flyem/voxview/voxview"
)

func TestScaledIndexBoundary(t *testing.T) {
	shape0 := voxview.Shape3d{100, 100, 100}
	shapes := []voxview.Shape3d{
		{100, 100, 100},
		{50, 50, 50},
		{25, 25, 25},
		{10, 7, 3}, // anisotropic decimation
	}
	for _, shape := range shapes {
		for axis := voxview.Axis(0); axis < voxview.NumAxes; axis++ {
			dim := uint8(axis)
			if got := ScaledIndex(0, axis, shape0, shape); got != 0 {
				t.Errorf("%s of shape %s: index 0 mapped to %d", axis, shape, got)
			}
			// The last level-0 index must map to the last valid index of
			// every coarser level.
			got := ScaledIndex(shape0.Value(dim)-1, axis, shape0, shape)
			if want := shape.Value(dim) - 1; got != want {
				t.Errorf("%s of shape %s: max index mapped to %d, expected %d",
					axis, shape, got, want)
			}
		}
	}
	// Mapping floors: 50 * 25/100 = 12.5 -> 12.
	if got := ScaledIndex(50, voxview.XY, shape0, shapes[2]); got != 12 {
		t.Errorf("index 50 at quarter scale mapped to %d, expected 12", got)
	}
	if got := ScaledIndex(80, voxview.XY, shape0, shapes[2]); got != 20 {
		t.Errorf("index 80 at quarter scale mapped to %d, expected 20", got)
	}
	if got := ScaledIndex(80, voxview.XY, shape0, shapes[1]); got != 40 {
		t.Errorf("index 80 at half scale mapped to %d, expected 40", got)
	}
}

func TestNormalize(t *testing.T) {
	samples := []uint16{0, 1, 257, 32768, 65534, 65535}
	data := normalize(samples)
	if data[0] != 0 {
		t.Errorf("0 should normalize to 0, got %d", data[0])
	}
	if data[len(data)-1] != 255 {
		t.Errorf("65535 should normalize to 255, got %d", data[len(data)-1])
	}
	if data[3] != 128 {
		t.Errorf("32768 should normalize to 128, got %d", data[3])
	}
	for i := 1; i < len(data); i++ {
		if data[i] < data[i-1] {
			t.Errorf("normalization must be monotonic: f(%d)=%d < f(%d)=%d",
				samples[i], data[i], samples[i-1], data[i-1])
		}
	}
}

func TestExtract(t *testing.T) {
	shape := voxview.Shape3d{8, 6, 4}
	voxels := make([]uint16, shape.NumVoxels())
	for i := range voxels {
		voxels[i] = uint16(i * 500)
	}
	store := pyramid.NewMemStore()
	if _, err := pyramid.Ingest(store, "vol", voxels, shape, pyramid.IngestOptions{ChunkSize: 4, MaxLevels: 1}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	pyr, err := pyramid.Open(store, "vol")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	ext := NewExtractor(pyr)

	img, err := ext.Extract(0, voxview.XY, 3)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 4 || bounds.Dy() != 6 {
		t.Fatalf("XY slice is %dx%d, expected 4x6", bounds.Dx(), bounds.Dy())
	}
	// Pixel (y=2, x=1) is voxel (3, 2, 1).
	raw := voxels[(3*6+2)*4+1]
	want := uint8((uint32(raw)*255 + 32767) / 65535)
	if got := img.GrayAt(1, 2).Y; got != want {
		t.Errorf("pixel (1,2) = %d, expected %d from raw %d", got, want, raw)
	}

	img, err = ext.Extract(0, voxview.YZ, 2)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	bounds = img.Bounds()
	if bounds.Dx() != 6 || bounds.Dy() != 8 {
		t.Fatalf("YZ slice is %dx%d, expected 6x8", bounds.Dx(), bounds.Dy())
	}
}
