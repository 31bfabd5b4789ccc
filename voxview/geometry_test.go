package voxview

import "testing"

func TestAxisFromString(t *testing.T) {
	for s, want := range map[string]Axis{
		"xy": XY, "XZ": XZ, "yz": YZ,
		"0": XY, "1": XZ, "2": YZ,
	} {
		got, err := AxisFromString(s)
		if err != nil {
			t.Errorf("error on axis string %q: %v", s, err)
		}
		if got != want {
			t.Errorf("axis string %q gave %s, expected %s", s, got, want)
		}
	}
	if _, err := AxisFromString("diagonal"); err == nil {
		t.Errorf("expected error for unknown plane string")
	}
}

func TestPlaneSize(t *testing.T) {
	shape := Shape3d{5, 6, 7}
	tests := []struct {
		axis          Axis
		height, width int32
	}{
		{XY, 6, 7},
		{XZ, 5, 7},
		{YZ, 5, 6},
	}
	for _, test := range tests {
		h, w := shape.PlaneSize(test.axis)
		if h != test.height || w != test.width {
			t.Errorf("%s of %s is %dx%d, expected %dx%d",
				test.axis, shape, h, w, test.height, test.width)
		}
	}
	if shape.NumVoxels() != 210 {
		t.Errorf("NumVoxels of %s = %d, expected 210", shape, shape.NumVoxels())
	}
	if (Shape3d{5, 0, 7}).Valid() {
		t.Errorf("shape with zero extent should be invalid")
	}
}
