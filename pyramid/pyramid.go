/*
Package pyramid implements storage and retrieval of multi-resolution 3d
volumes of uint16 intensity voxels.  Each volume group holds an ordered
sequence of levels, level 0 being the highest resolution, with every coarser
level a decimated version of the same physical volume.  Voxel data is held in
cubic chunks within a key-value store so planes can be read without touching
the full volume.
*/
package pyramid

import (
	"errors"
	"fmt"

	"github.com/janelia-flyem/voxview/voxview"
)

const (
	// DefaultChunkSize is the default side length in voxels of a cubic chunk.
	DefaultChunkSize = 64

	// HighRes is the level number of the highest resolution in any pyramid.
	HighRes = 0
)

var (
	// ErrNoLevels is returned when a group's metadata describes no levels.
	ErrNoLevels = errors.New("volume group has no resolution levels")

	// ErrBadGroup is returned when a volume group cannot be found in a store.
	ErrBadGroup = errors.New("volume group not found")
)

// LevelMeta describes one resolution level of a stored volume group.
type LevelMeta struct {
	Shape voxview.Shape3d `json:"shape"`
}

// GroupMeta is the stored description of a volume group and its levels,
// finest first.
type GroupMeta struct {
	Group     string      `json:"group"`
	ChunkSize int32       `json:"chunk_size"`
	Levels    []LevelMeta `json:"levels"`
}

// Valid checks the level invariants: at least one level, positive shapes, and
// per-dimension extents non-increasing as levels coarsen.
func (m GroupMeta) Valid() error {
	if len(m.Levels) == 0 {
		return ErrNoLevels
	}
	if m.ChunkSize <= 0 {
		return fmt.Errorf("volume group %q has bad chunk size %d", m.Group, m.ChunkSize)
	}
	for lv, lm := range m.Levels {
		if !lm.Shape.Valid() {
			return fmt.Errorf("volume group %q level %d has degenerate shape %s",
				m.Group, lv, lm.Shape)
		}
		if lv == 0 {
			continue
		}
		prev := m.Levels[lv-1].Shape
		for dim := uint8(0); dim < 3; dim++ {
			if lm.Shape.Value(dim) > prev.Value(dim) {
				return fmt.Errorf("volume group %q level %d shape %s exceeds level %d shape %s",
					m.Group, lv, lm.Shape, lv-1, prev)
			}
		}
	}
	return nil
}

// Level is one resolution layer of an open pyramid.  It is read-only after
// load and safe for concurrent reads.
type Level struct {
	store     ChunkStore
	group     string
	level     uint8
	shape     voxview.Shape3d
	chunkSize int32
}

// Shape returns the level's extent in each dimension.
func (l *Level) Shape() voxview.Shape3d {
	return l.shape
}

// Pyramid is an open volume group: the ordered levels of one volume, level 0
// finest.  Exactly one pyramid is active in a viewer session at a time; the
// viewer borrows it read-only and swaps in a replacement wholesale.
type Pyramid struct {
	group  string
	levels []*Level
}

// Open loads the pyramid for a volume group from a store.  All level metadata
// is read and validated up front; voxel chunks are read lazily per plane.
func Open(store ChunkStore, group string) (*Pyramid, error) {
	meta, err := store.ReadMeta(group)
	if err != nil {
		return nil, fmt.Errorf("cannot open volume group %q: %v", group, err)
	}
	if err := meta.Valid(); err != nil {
		return nil, err
	}
	p := &Pyramid{group: group}
	for lv, lm := range meta.Levels {
		p.levels = append(p.levels, &Level{
			store:     store,
			group:     group,
			level:     uint8(lv),
			shape:     lm.Shape,
			chunkSize: meta.ChunkSize,
		})
	}
	voxview.Infof("Opened volume group %q with %d levels, finest %s\n",
		group, len(p.levels), p.levels[0].shape)
	return p, nil
}

// Groups returns the sorted volume group names of a store.  If enumeration
// fails or finds nothing, it falls back to the single default group "0" and
// lets the subsequent Open surface any real problem.
func Groups(store ChunkStore) []string {
	groups, err := store.Groups()
	if err != nil {
		voxview.Errorf("Unable to enumerate volume groups: %v\n", err)
	}
	if len(groups) == 0 {
		return []string{"0"}
	}
	return groups
}

// Group returns the volume group name this pyramid was opened from.
func (p *Pyramid) Group() string {
	return p.group
}

// NumLevels returns the number of resolution levels, always ≥ 1.
func (p *Pyramid) NumLevels() int {
	return len(p.levels)
}

// LowRes returns the level number of the coarsest resolution.
func (p *Pyramid) LowRes() int {
	return len(p.levels) - 1
}

// Level returns the given resolution level.  A level outside [0, NumLevels-1]
// is a programming error.
func (p *Pyramid) Level(level int) *Level {
	if level < 0 || level >= len(p.levels) {
		panic(fmt.Sprintf("bad level %d requested of %d-level pyramid", level, len(p.levels)))
	}
	return p.levels[level]
}

// Shape returns the shape of the given level.
func (p *Pyramid) Shape(level int) voxview.Shape3d {
	return p.Level(level).shape
}
