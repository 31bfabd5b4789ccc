package pyramid

import (
	"bytes"
	"testing"

	"github.com/janelia-flyem/voxview/voxview"
)

// gradientVolume returns a volume where every voxel holds a distinct value
// derived from its coordinate, handy for checking plane orientation.
func gradientVolume(shape voxview.Shape3d) []uint16 {
	voxels := make([]uint16, shape.NumVoxels())
	i := 0
	for z := int32(0); z < shape[0]; z++ {
		for y := int32(0); y < shape[1]; y++ {
			for x := int32(0); x < shape[2]; x++ {
				voxels[i] = uint16(z*1000 + y*100 + x + 1)
				i++
			}
		}
	}
	return voxels
}

func TestChunkKeyOrdering(t *testing.T) {
	prev := chunkKey("grp", 0, ChunkPoint{0, 0, 0})
	for _, pt := range []ChunkPoint{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}, {1, 2, 3}} {
		key := chunkKey("grp", 0, pt)
		if bytes.Compare(prev, key) >= 0 {
			t.Errorf("chunk key for %s does not sort after previous key", pt)
		}
		prev = key
	}
	levelKey := chunkKey("grp", 1, ChunkPoint{0, 0, 0})
	if bytes.Compare(prev, levelKey) >= 0 {
		t.Errorf("level 1 chunk keys should sort after all level 0 keys")
	}
	other := chunkKey("grp2", 0, ChunkPoint{0, 0, 0})
	if bytes.HasPrefix(other, chunkPrefix("grp")) {
		t.Errorf("group %q chunk keys must not share group %q's prefix", "grp2", "grp")
	}
}

func TestMetaKeyRoundtrip(t *testing.T) {
	group, err := groupFromMetaKey(metaKey("oak_a"))
	if err != nil {
		t.Fatalf("error recovering group from meta key: %v", err)
	}
	if group != "oak_a" {
		t.Errorf("got group %q back from meta key, expected %q", group, "oak_a")
	}
	if err := ValidGroupName(""); err == nil {
		t.Errorf("empty group name should be invalid")
	}
	if err := ValidGroupName("bad\x00name"); err == nil {
		t.Errorf("group name with zero byte should be invalid")
	}
}

func TestSerializeChunkRoundtrip(t *testing.T) {
	data := make([]byte, 2048)
	for i := range data {
		data[i] = byte(i % 7)
	}
	for _, compress := range []Compression{Uncompressed, Snappy} {
		b, err := serializeChunk(data, compress)
		if err != nil {
			t.Fatalf("error serializing with %s: %v", compress, err)
		}
		got, err := deserializeChunk(b)
		if err != nil {
			t.Fatalf("error deserializing %s payload: %v", compress, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("%s roundtrip altered chunk data", compress)
		}
	}
}

func TestGroupMetaValid(t *testing.T) {
	meta := GroupMeta{Group: "g", ChunkSize: 64}
	if err := meta.Valid(); err != ErrNoLevels {
		t.Errorf("expected ErrNoLevels for empty metadata, got %v", err)
	}
	meta.Levels = []LevelMeta{
		{Shape: voxview.Shape3d{10, 10, 10}},
		{Shape: voxview.Shape3d{5, 11, 5}},
	}
	if err := meta.Valid(); err == nil {
		t.Errorf("expected error for level shape growing with level number")
	}
	meta.Levels[1].Shape = voxview.Shape3d{5, 5, 5}
	if err := meta.Valid(); err != nil {
		t.Errorf("valid metadata rejected: %v", err)
	}
}

func TestIngestAndReadPlane(t *testing.T) {
	shape := voxview.Shape3d{5, 6, 7}
	voxels := gradientVolume(shape)
	store := NewMemStore()
	if _, err := Ingest(store, "vol", voxels, shape, IngestOptions{ChunkSize: 4, MaxLevels: 1}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	pyr, err := Open(store, "vol")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	lv := pyr.Level(0)

	// An XY plane fixes z; pixel (y, x) should match the source volume.
	plane, err := lv.ReadPlane(voxview.XY, 3)
	if err != nil {
		t.Fatalf("error reading XY plane: %v", err)
	}
	if len(plane) != 6*7 {
		t.Fatalf("XY plane has %d samples, expected %d", len(plane), 6*7)
	}
	for y := int32(0); y < 6; y++ {
		for x := int32(0); x < 7; x++ {
			want := voxels[(3*6+int(y))*7+int(x)]
			if got := plane[y*7+x]; got != want {
				t.Fatalf("XY plane (%d,%d) = %d, expected %d", y, x, got, want)
			}
		}
	}

	// An XZ plane fixes y, crossing chunk boundaries in both plane dims.
	plane, err = lv.ReadPlane(voxview.XZ, 5)
	if err != nil {
		t.Fatalf("error reading XZ plane: %v", err)
	}
	for z := int32(0); z < 5; z++ {
		for x := int32(0); x < 7; x++ {
			want := voxels[(int(z)*6+5)*7+int(x)]
			if got := plane[z*7+x]; got != want {
				t.Fatalf("XZ plane (%d,%d) = %d, expected %d", z, x, got, want)
			}
		}
	}

	// A YZ plane fixes x.
	plane, err = lv.ReadPlane(voxview.YZ, 6)
	if err != nil {
		t.Fatalf("error reading YZ plane: %v", err)
	}
	for z := int32(0); z < 5; z++ {
		for y := int32(0); y < 6; y++ {
			want := voxels[(int(z)*6+int(y))*7+6]
			if got := plane[z*6+y]; got != want {
				t.Fatalf("YZ plane (%d,%d) = %d, expected %d", z, y, got, want)
			}
		}
	}

	if _, err := lv.ReadPlane(voxview.XY, 5); err == nil {
		t.Errorf("expected error reading plane past the volume edge")
	}
}

func TestDownres2x(t *testing.T) {
	shape := voxview.Shape3d{5, 6, 7}
	voxels := make([]uint16, shape.NumVoxels())
	for i := range voxels {
		voxels[i] = 1000
	}
	dst, dshape := downres2x(voxels, shape)
	if dshape != (voxview.Shape3d{3, 3, 4}) {
		t.Fatalf("downres shape %s, expected (3,3,4)", dshape)
	}
	for i, v := range dst {
		if v != 1000 {
			t.Fatalf("downres of constant volume not constant at %d: %d", i, v)
		}
	}
}

func TestIngestLevelShapes(t *testing.T) {
	shape := voxview.Shape3d{100, 100, 100}
	store := NewMemStore()
	meta, err := Ingest(store, "vol", make([]uint16, shape.NumVoxels()), shape,
		IngestOptions{ChunkSize: 16, MaxLevels: 3})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	want := []voxview.Shape3d{{100, 100, 100}, {50, 50, 50}, {25, 25, 25}}
	if len(meta.Levels) != len(want) {
		t.Fatalf("got %d levels, expected %d", len(meta.Levels), len(want))
	}
	for lv, shape := range want {
		if meta.Levels[lv].Shape != shape {
			t.Errorf("level %d shape %s, expected %s", lv, meta.Levels[lv].Shape, shape)
		}
	}
}

func TestGroupsFallback(t *testing.T) {
	store := NewMemStore()
	groups := Groups(store)
	if len(groups) != 1 || groups[0] != "0" {
		t.Errorf("empty store should fall back to group \"0\", got %v", groups)
	}
	shape := voxview.Shape3d{4, 4, 4}
	for _, group := range []string{"b", "a"} {
		if _, err := Ingest(store, group, gradientVolume(shape), shape, IngestOptions{ChunkSize: 4}); err != nil {
			t.Fatalf("ingest of group %q failed: %v", group, err)
		}
	}
	groups = Groups(store)
	if len(groups) != 2 || groups[0] != "a" || groups[1] != "b" {
		t.Errorf("expected sorted groups [a b], got %v", groups)
	}
}

func TestCachedStoreEquivalence(t *testing.T) {
	shape := voxview.Shape3d{5, 6, 7}
	voxels := gradientVolume(shape)
	store := NewMemStore()
	if _, err := Ingest(store, "vol", voxels, shape, IngestOptions{ChunkSize: 4, MaxLevels: 1}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	cached := NewCachedStore(store, 1)
	pyr, err := Open(cached, "vol")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	first, err := pyr.Level(0).ReadPlane(voxview.XY, 2)
	if err != nil {
		t.Fatalf("error on cold read: %v", err)
	}
	second, err := pyr.Level(0).ReadPlane(voxview.XY, 2)
	if err != nil {
		t.Fatalf("error on warm read: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cached read differs from cold read at %d", i)
		}
	}
	hits, misses := cached.CacheStats()
	if hits == 0 {
		t.Errorf("expected cache hits on the warm read, got %d hits / %d misses", hits, misses)
	}
}

func TestBadgerStoreRoundtrip(t *testing.T) {
	store, err := OpenBadger(t.TempDir() + "/db")
	if err != nil {
		t.Fatalf("error opening badger store: %v", err)
	}
	defer store.Close()

	shape := voxview.Shape3d{5, 6, 7}
	voxels := gradientVolume(shape)
	if _, err := Ingest(store, "vol", voxels, shape, IngestOptions{ChunkSize: 4, MaxLevels: 1}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	pyr, err := Open(store, "vol")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	plane, err := pyr.Level(0).ReadPlane(voxview.XY, 0)
	if err != nil {
		t.Fatalf("error reading plane: %v", err)
	}
	for y := int32(0); y < 6; y++ {
		for x := int32(0); x < 7; x++ {
			if got, want := plane[y*7+x], voxels[y*7+x]; got != want {
				t.Fatalf("badger plane (%d,%d) = %d, expected %d", y, x, got, want)
			}
		}
	}
	if _, err := Open(store, "missing"); err == nil {
		t.Errorf("expected error opening a missing group")
	}
}
