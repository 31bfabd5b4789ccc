package viewer

import (
	"github.com/janelia-flyem/voxview/pyramid"
	"github.com/janelia-flyem/voxview/voxview"
)

// AxisStatus reports one axis's interaction and render state.
type AxisStatus struct {
	Plane         string `json:"plane"`
	Index         int32  `json:"index"`
	MaxIndex      int32  `json:"max_index"`
	RenderedLevel int    `json:"rendered_level"`
}

// Status is a consistent snapshot of the viewer for API clients.
type Status struct {
	Group       string                      `json:"group"`
	NumLevels   int                         `json:"num_levels"`
	LevelShapes []voxview.Shape3d           `json:"level_shapes"`
	Axes        [voxview.NumAxes]AxisStatus `json:"axes"`
}

// Status returns the viewer state under one lock acquisition.
func (v *Viewer) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	status := Status{
		Group:     v.pyr.Group(),
		NumLevels: v.pyr.NumLevels(),
	}
	for lv := 0; lv < v.pyr.NumLevels(); lv++ {
		status.LevelShapes = append(status.LevelShapes, v.pyr.Shape(lv))
	}
	shape0 := v.pyr.Shape(pyramid.HighRes)
	for a := range v.axes {
		status.Axes[a] = AxisStatus{
			Plane:         voxview.Axis(a).String(),
			Index:         v.axes[a].Index,
			MaxIndex:      shape0[a] - 1,
			RenderedLevel: v.axes[a].RenderedLevel,
		}
	}
	return status
}
