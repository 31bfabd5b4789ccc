/*
Package server ties the pyramid store, viewer scheduler, and HTTP surface of
voxview together.  It owns the chunk store and the active volume group; the
viewer borrows the open pyramid read-only and is handed a replacement when
the group changes.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/janelia-flyem/voxview/pyramid"
	"github.com/janelia-flyem/voxview/viewer"
	"github.com/janelia-flyem/voxview/voxview"
)

// Service is a running voxview session: one store, one active pyramid.
type Service struct {
	store  pyramid.ChunkStore
	viewer *viewer.Viewer
	frames *FrameStore

	mu    sync.Mutex // serializes volume group switches
	group string
}

// OpenService opens the configured store, activates the startup volume
// group, and builds the viewer.  LoadConfig must have been called first.
func OpenService() (*Service, error) {
	store, err := pyramid.OpenBadger(StorePath())
	if err != nil {
		return nil, err
	}
	cached := pyramid.NewCachedStore(store, tc.CacheSizeMB())

	group := InitialGroup()
	if group == "" {
		group = pyramid.Groups(cached)[0]
	}
	pyr, err := pyramid.Open(cached, group)
	if err != nil {
		cached.Close()
		return nil, err
	}

	frames := NewFrameStore()
	v, err := viewer.New(pyr, frames, tc.ViewerConfig())
	if err != nil {
		cached.Close()
		return nil, err
	}
	return &Service{
		store:  cached,
		viewer: v,
		frames: frames,
		group:  group,
	}, nil
}

// SwitchGroup activates a different volume group.  On load failure the
// previous pyramid stays active and the error is returned for the caller to
// surface.
func (s *Service) SwitchGroup(group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group == s.group {
		return nil
	}
	pyr, err := pyramid.Open(s.store, group)
	if err != nil {
		voxview.Errorf("Unable to switch to volume group %q: %v\n", group, err)
		return err
	}
	s.viewer.SetPyramid(pyr)
	s.group = group
	return nil
}

// Groups re-enumerates the volume groups in the store so groups ingested
// after startup show up without a restart.
func (s *Service) Groups() []string {
	return pyramid.Groups(s.store)
}

// Serve runs the scheduler and HTTP server until the context is canceled.
func (s *Service) Serve(ctx context.Context, address string) error {
	go s.viewer.Run(ctx)

	fmt.Printf("Web server listening at %s ...\n", address)
	src := &http.Server{
		Addr:        address,
		ReadTimeout: 1 * time.Hour,
		Handler:     cors.Default().Handler(s.newMux()),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		src.Shutdown(shutdownCtx)
	}()
	if err := src.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases the store after the HTTP server and scheduler stop.
func (s *Service) Close() {
	s.store.Close()
}
