package server

import (
	"bytes"
	"image"
	"image/png"
	"sync"

	"github.com/janelia-flyem/voxview/voxview"
)

// FrameStore keeps the latest rendered frame per axis, PNG-encoded, and is
// the server's DisplaySink.  Encoding happens on the scheduler's tick
// goroutine but only the byte swap takes the lock, so HTTP reads never stall
// a tick for long.  The decoded image is kept alongside the PNG so requests
// for other formats can re-encode without touching the scheduler.
type FrameStore struct {
	mu     sync.RWMutex
	frames [voxview.NumAxes][]byte
	imgs   [voxview.NumAxes]*image.Gray
	seqs   [voxview.NumAxes]uint64
}

func NewFrameStore() *FrameStore {
	return &FrameStore{}
}

// Present encodes and stores a rendered slice, bumping the axis's frame
// sequence so polling clients can cheaply detect changes.
func (s *FrameStore) Present(axis voxview.Axis, img *image.Gray) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		voxview.Errorf("Unable to encode %s frame: %v\n", axis, err)
		return
	}
	s.mu.Lock()
	s.frames[axis] = buf.Bytes()
	s.imgs[axis] = img
	s.seqs[axis]++
	s.mu.Unlock()
}

// Frame returns the latest PNG for an axis and its sequence number.  A nil
// frame means nothing has been rendered for the axis yet.
func (s *FrameStore) Frame(axis voxview.Axis) ([]byte, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames[axis], s.seqs[axis]
}

// Image returns the latest rendered image for an axis and its sequence
// number, for handlers that encode to formats other than the cached PNG.
// The scheduler never mutates a presented image, so sharing it is safe.
func (s *FrameStore) Image(axis voxview.Axis) (*image.Gray, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.imgs[axis], s.seqs[axis]
}
