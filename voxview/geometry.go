package voxview

import (
	"fmt"
	"strings"
)

// Axis selects one of the three orthogonal slicing directions through a
// volume.  The axis number is the dimension held fixed during slicing, using
// ZYX dimension ordering: axis 0 fixes Z and yields an XY plane, axis 1 fixes
// Y (XZ plane), and axis 2 fixes X (YZ plane).
type Axis uint8

const (
	// XY describes a 2d rectangle of voxels that share a z-coord.
	XY Axis = iota

	// XZ describes a 2d rectangle of voxels that share a y-coord.
	XZ

	// YZ describes a 2d rectangle of voxels that share a x-coord.
	YZ

	// NumAxes is the number of orthogonal slicing directions in a 3d volume.
	NumAxes = 3
)

// List of strings associated with slicing planes.
var axisStrings = map[string]Axis{
	"xy":  XY,
	"xz":  XZ,
	"yz":  YZ,
	"0":   XY,
	"1":   XZ,
	"2":   YZ,
	"1_2": XY,
	"0_2": XZ,
	"0_1": YZ,
}

// AxisFromString returns the axis associated with a plane or dimension string.
func AxisFromString(s string) (Axis, error) {
	axis, found := axisStrings[strings.ToLower(s)]
	if !found {
		return 0, fmt.Errorf("unknown slicing plane specification (%s)", s)
	}
	return axis, nil
}

func (a Axis) String() string {
	switch a {
	case XY:
		return "XY slice"
	case XZ:
		return "XZ slice"
	case YZ:
		return "YZ slice"
	default:
		return "unknown slice"
	}
}

// PlaneDims returns the dimensions that form a slice's (height, width) when
// this axis is held fixed.
func (a Axis) PlaneDims() (hdim, wdim uint8) {
	switch a {
	case XY:
		return 1, 2
	case XZ:
		return 0, 2
	default:
		return 0, 1
	}
}

// Shape3d is the extent of a volume in each of its three dimensions, ordered
// to match Axis numbering (dim 0 varies slowest in the stored voxel data).
type Shape3d [3]int32

// Value returns the extent of the given dimension.
func (s Shape3d) Value(dim uint8) int32 {
	return s[dim]
}

// NumVoxels returns the number of voxels within this shape.
func (s Shape3d) NumVoxels() int64 {
	return int64(s[0]) * int64(s[1]) * int64(s[2])
}

// PlaneSize returns the (height, width) of a slice orthogonal to the axis.
func (s Shape3d) PlaneSize(axis Axis) (height, width int32) {
	hdim, wdim := axis.PlaneDims()
	return s[hdim], s[wdim]
}

// Valid returns true if every dimension is positive.
func (s Shape3d) Valid() bool {
	return s[0] > 0 && s[1] > 0 && s[2] > 0
}

func (s Shape3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s[0], s[1], s[2])
}
