package usecase

import (
	"context"
	"errors"
	"sync"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/service"
	"civicalert/pkg/logger"
)

type MapOptions struct {
	DefaultCenter entity.Coordinate
	DefaultZoom   float64
	FocusZoom     float64
	APIKey        string
}

// MapSelectionController owns one map surface. It keeps the desired state
// (center, selecting) separate from the surface, which may become ready
// long after the desired state has changed.
//
// Every surface call except GoTo happens under mu, so the surface always
// observes cursor and marker updates in the order they were requested.
type MapSelectionController struct {
	factory service.MapSurfaceFactory
	opts    MapOptions

	mu         sync.Mutex
	center     *entity.Coordinate
	selecting  bool
	onSelect   func(entity.Coordinate)
	marker     *entity.Coordinate
	surface    service.MapSurface
	started    bool
	destroyed  bool
	initCancel context.CancelFunc
	animCancel context.CancelFunc
	animSeq    uint64

	wg sync.WaitGroup
}

func NewMapSelectionController(factory service.MapSurfaceFactory, opts MapOptions) *MapSelectionController {
	return &MapSelectionController{
		factory: factory,
		opts:    opts,
	}
}

// Start bootstraps the surface in the background. It is a no-op after the
// first call or once the controller is destroyed.
func (c *MapSelectionController) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started || c.destroyed {
		return
	}
	c.started = true

	initCtx, cancel := context.WithCancel(ctx)
	c.initCancel = cancel
	view := c.viewLocked()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		surface, err := c.factory(initCtx, view, func(at entity.Coordinate) { c.HandleClick(at) })
		if err != nil {
			if !c.isDestroyed() {
				logger.Error("Map surface initialization failed: %v", err)
			}
			return
		}
		c.attach(surface, view)
	}()
}

func (c *MapSelectionController) attach(surface service.MapSurface, initial service.MapView) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		logger.Debug("Map surface became ready after teardown, disposing it")
		if err := surface.Destroy(); err != nil {
			logger.Warn("Failed to dispose late map surface: %v", err)
		}
		return
	}

	c.surface = surface

	// Reconcile with whatever is desired now, not with what happened while
	// the surface was loading.
	if err := surface.SetCrosshair(c.selecting); err != nil {
		logger.Warn("Failed to set map cursor: %v", err)
	}
	if c.center != nil && *c.center != initial.Center {
		c.animateLocked(*c.center)
	}
}

// View returns the camera the surface should open with.
func (c *MapSelectionController) View() service.MapView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *MapSelectionController) viewLocked() service.MapView {
	if c.center == nil {
		return service.MapView{Center: c.opts.DefaultCenter, Zoom: c.opts.DefaultZoom, APIKey: c.opts.APIKey}
	}
	return service.MapView{Center: *c.center, Zoom: c.opts.FocusZoom, APIKey: c.opts.APIKey}
}

// SetCenter animates the surface to center. A newer call supersedes any
// animation still in flight.
func (c *MapSelectionController) SetCenter(center entity.Coordinate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.center = &center
	if c.surface == nil || c.destroyed {
		return
	}
	c.animateLocked(center)
}

func (c *MapSelectionController) animateLocked(center entity.Coordinate) {
	if c.animCancel != nil {
		c.animCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.animCancel = cancel
	c.animSeq++
	seq := c.animSeq
	surface := c.surface
	zoom := c.opts.FocusZoom

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		err := surface.GoTo(ctx, center, zoom)
		c.finishAnimation(seq)

		switch {
		case err == nil:
		case errors.Is(err, service.ErrAnimationInterrupted), errors.Is(err, context.Canceled):
			logger.Debug("Map animation to %.5f,%.5f superseded", center.Latitude, center.Longitude)
		default:
			logger.Warn("Map animation to %.5f,%.5f failed: %v", center.Latitude, center.Longitude, err)
		}
	}()
}

func (c *MapSelectionController) finishAnimation(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.animSeq == seq && c.animCancel != nil {
		c.animCancel()
		c.animCancel = nil
	}
}

// SetSelecting toggles pick-a-point mode. In-flight animations keep running.
func (c *MapSelectionController) SetSelecting(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selecting = on
	if c.surface == nil || c.destroyed {
		return
	}
	if err := c.surface.SetCrosshair(on); err != nil {
		logger.Warn("Failed to set map cursor: %v", err)
	}
}

func (c *MapSelectionController) OnSelect(fn func(entity.Coordinate)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSelect = fn
}

// HandleClick places the single marker and reports the point. It does
// nothing unless selecting is on and a callback is registered.
func (c *MapSelectionController) HandleClick(at entity.Coordinate) bool {
	c.mu.Lock()
	if !c.selecting || c.onSelect == nil || c.destroyed {
		c.mu.Unlock()
		return false
	}

	if c.surface != nil {
		if err := c.surface.ClearMarkers(); err != nil {
			logger.Warn("Failed to clear map markers: %v", err)
		}
		if err := c.surface.AddMarker(at); err != nil {
			logger.Warn("Failed to place map marker: %v", err)
		}
	}
	c.marker = &at
	fn := c.onSelect
	c.mu.Unlock()

	fn(at)
	return true
}

// Destroy releases the surface. A surface still initializing is disposed
// as soon as its bootstrap returns.
func (c *MapSelectionController) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	if c.initCancel != nil {
		c.initCancel()
	}
	if c.animCancel != nil {
		c.animCancel()
		c.animCancel = nil
	}
	surface := c.surface
	c.surface = nil
	c.marker = nil
	c.mu.Unlock()

	if surface != nil {
		if err := surface.Destroy(); err != nil {
			logger.Warn("Failed to destroy map surface: %v", err)
		}
	}
}

func (c *MapSelectionController) Center() *entity.Coordinate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.center == nil {
		return nil
	}
	center := *c.center
	return &center
}

func (c *MapSelectionController) Selecting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selecting
}

func (c *MapSelectionController) Marker() *entity.Coordinate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.marker == nil {
		return nil
	}
	marker := *c.marker
	return &marker
}

func (c *MapSelectionController) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface != nil
}

func (c *MapSelectionController) isDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// wait blocks until initialization and all animations have returned.
func (c *MapSelectionController) wait() {
	c.wg.Wait()
}
