/*
Package viewer drives progressive sharpening of three orthogonal slice views
over a multi-resolution pyramid.  A fixed-period scheduler tick inspects the
per-axis state: an axis whose index changed since its last render is redrawn
immediately at the coarsest level, and an axis left alone past the debounce
window sharpens by exactly one level per tick until it reaches full
resolution.  Rapid slider input therefore coalesces into one coarse render
per tick instead of one render per event.
*/
package viewer

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/janelia-flyem/voxview/pyramid"
	"github.com/janelia-flyem/voxview/slice"
	"github.com/janelia-flyem/voxview/voxview"
)

const (
	// DefaultTickPeriod is short enough to feel responsive and long enough
	// to avoid needless churn.
	DefaultTickPeriod = 50 * time.Millisecond

	// DefaultDebounce is the minimum idle gap after slider input before
	// sharpening begins.
	DefaultDebounce = 300 * time.Millisecond
)

// DisplaySink consumes rendered slices.  Present must not block the
// scheduler for longer than a tick period under normal conditions.
type DisplaySink interface {
	Present(axis voxview.Axis, img *image.Gray)
}

// Config holds the scheduler timing knobs.
type Config struct {
	TickPeriod time.Duration
	Debounce   time.Duration
}

// DefaultConfig returns the standard tick and debounce periods.
func DefaultConfig() Config {
	return Config{TickPeriod: DefaultTickPeriod, Debounce: DefaultDebounce}
}

// Validate fails fast on unusable timing configuration.
func (c Config) Validate() error {
	if c.TickPeriod <= 0 {
		return fmt.Errorf("tick period must be positive, got %s", c.TickPeriod)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce time must be positive, got %s", c.Debounce)
	}
	if c.Debounce < c.TickPeriod {
		return fmt.Errorf("debounce time %s must be at least the tick period %s", c.Debounce, c.TickPeriod)
	}
	return nil
}

// AxisState is the mutable scheduling state of one slicing axis.  Index and
// LastRenderedIndex are level-0 coordinates; RenderedLevel only decreases
// (sharpens) or is reset to the coarsest level on index change or refresh.
type AxisState struct {
	Index             int32
	LastRenderedIndex int32 // -1 forces a render on the next tick
	RenderedLevel     int
}

// Viewer owns the per-axis scheduling state and a read-only reference to the
// active pyramid.  All mutation funnels through its mutex so a tick always
// observes a consistent (pyramid, index, timestamp) triple.
type Viewer struct {
	config Config
	sink   DisplaySink

	mu              sync.Mutex
	pyr             *pyramid.Pyramid
	extractor       *slice.Extractor
	axes            [voxview.NumAxes]AxisState
	lastInteraction time.Time

	// generation counts pyramid swaps and refreshes.  A render started
	// under an older generation is abandoned instead of committed.
	generation uint64
}

// New returns a viewer over the given pyramid.  The sink receives every
// rendered frame.
func New(pyr *pyramid.Pyramid, sink DisplaySink, config Config) (*Viewer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if pyr == nil {
		return nil, fmt.Errorf("viewer requires an active pyramid")
	}
	if sink == nil {
		return nil, fmt.Errorf("viewer requires a display sink")
	}
	v := &Viewer{config: config, sink: sink}
	v.mu.Lock()
	v.installPyramid(pyr, time.Now())
	v.mu.Unlock()
	return v, nil
}

// installPyramid swaps in a pyramid and resets all axis and session state.
// Caller must hold v.mu so the swap and reset are observed together.
func (v *Viewer) installPyramid(pyr *pyramid.Pyramid, now time.Time) {
	v.pyr = pyr
	v.extractor = slice.NewExtractor(pyr)
	shape0 := pyr.Shape(pyramid.HighRes)
	for a := range v.axes {
		v.axes[a] = AxisState{
			Index:             shape0[a] / 2,
			LastRenderedIndex: -1,
			RenderedLevel:     pyr.LowRes(),
		}
	}
	v.lastInteraction = now
	v.generation++
	voxview.Infof("Activated volume group %q: %d levels, finest shape %s\n",
		pyr.Group(), pyr.NumLevels(), shape0)
}

// SetPyramid atomically replaces the active pyramid and recenters all axes.
// The next tick re-renders all three views at the coarsest level.
func (v *Viewer) SetPyramid(pyr *pyramid.Pyramid) {
	v.mu.Lock()
	v.installPyramid(pyr, time.Now())
	v.mu.Unlock()
}

// SetIndex is the interaction entry point: it clamps and records a new
// level-0 coordinate for an axis and restarts the settling window for all
// axes.  Safe to call from any goroutine.
func (v *Viewer) SetIndex(axis voxview.Axis, index int32) {
	v.setIndex(axis, index, time.Now())
}

func (v *Viewer) setIndex(axis voxview.Axis, index int32, now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	max := v.pyr.Shape(pyramid.HighRes).Value(uint8(axis)) - 1
	if index < 0 {
		index = 0
	}
	if index > max {
		index = max
	}
	v.axes[axis].Index = index
	v.lastInteraction = now
}

// ForceRefresh marks every axis for re-render from the coarsest level on the
// next tick, independent of whether its index changed.
func (v *Viewer) ForceRefresh() {
	v.mu.Lock()
	for a := range v.axes {
		v.axes[a].LastRenderedIndex = -1
		v.axes[a].RenderedLevel = v.pyr.LowRes()
	}
	v.generation++
	v.mu.Unlock()
}

// renderOp is one axis render decided at the start of a tick.
type renderOp struct {
	axis  voxview.Axis
	index int32
	level int
}

// Tick runs one scheduler evaluation at the given time.  Decisions for all
// three axes are taken from state as of the tick's start; renders then run
// sequentially, so ticks never overlap and no axis has two renders in
// flight.  Re-running a tick with unchanged state and time is a no-op.
func (v *Viewer) Tick(now time.Time) {
	v.mu.Lock()
	gen := v.generation
	ext := v.extractor
	lowRes := v.pyr.LowRes()
	isMoving := now.Sub(v.lastInteraction) < v.config.Debounce
	var ops []renderOp
	for a := range v.axes {
		ax := v.axes[a]
		switch {
		case ax.Index != ax.LastRenderedIndex:
			// Fresh index always wins: render coarse now for lowest latency.
			ops = append(ops, renderOp{voxview.Axis(a), ax.Index, lowRes})
		case !isMoving && ax.RenderedLevel > pyramid.HighRes:
			// Idle past the debounce window: sharpen one level.
			ops = append(ops, renderOp{voxview.Axis(a), ax.Index, ax.RenderedLevel - 1})
		}
	}
	v.mu.Unlock()

	for _, op := range ops {
		img, err := ext.Extract(op.level, op.axis, op.index)
		if err != nil {
			// Leave this axis's state untouched so the next tick retries.
			voxview.Errorf("Unable to render %s at index %d, level %d: %v\n",
				op.axis, op.index, op.level, err)
			continue
		}
		v.mu.Lock()
		if v.generation != gen {
			// Pyramid swapped or refreshed mid-tick: abandon this tick's
			// remaining renders rather than present stale frames.
			v.mu.Unlock()
			return
		}
		v.axes[op.axis].LastRenderedIndex = op.index
		v.axes[op.axis].RenderedLevel = op.level
		v.mu.Unlock()

		v.sink.Present(op.axis, img)
	}
}

// Run ticks the scheduler at the configured period until the context is
// canceled.  A tick completes all its renders before the next begins.
func (v *Viewer) Run(ctx context.Context) {
	ticker := time.NewTicker(v.config.TickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.Tick(time.Now())
		}
	}
}
