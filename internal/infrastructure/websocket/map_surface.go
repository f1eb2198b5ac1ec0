package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/service"
	"civicalert/pkg/logger"
)

// Sender queues an outbound message for one connection.
type Sender interface {
	Enqueue(msgType string, data interface{}) error
}

// MapBridge drives the browser map of one connection. The browser renders
// the map; the server decides what it shows.
type MapBridge struct {
	sender       Sender
	readyTimeout time.Duration

	mu      sync.Mutex
	ready   chan struct{}
	isReady bool
	onClick func(entity.Coordinate)
	pending map[uint64]chan bool
	nextID  uint64
	closed  bool
}

func NewMapBridge(sender Sender, readyTimeout time.Duration) *MapBridge {
	return &MapBridge{
		sender:       sender,
		readyTimeout: readyTimeout,
		ready:        make(chan struct{}),
		pending:      make(map[uint64]chan bool),
	}
}

// Factory asks the browser to create its map and waits for map.ready.
func (b *MapBridge) Factory() service.MapSurfaceFactory {
	return func(ctx context.Context, view service.MapView, onClick func(entity.Coordinate)) (service.MapSurface, error) {
		b.mu.Lock()
		b.onClick = onClick
		b.mu.Unlock()

		if err := b.sender.Enqueue(MessageTypeMapInit, MapInitData{Center: view.Center, Zoom: view.Zoom, APIKey: view.APIKey}); err != nil {
			return nil, fmt.Errorf("failed to send map init: %w", err)
		}

		timer := time.NewTimer(b.readyTimeout)
		defer timer.Stop()

		select {
		case <-b.ready:
			return &RemoteMapSurface{bridge: b}, nil
		case <-ctx.Done():
			b.sender.Enqueue(MessageTypeMapDestroy, nil)
			return nil, ctx.Err()
		case <-timer.C:
			return nil, fmt.Errorf("map did not become ready within %s", b.readyTimeout)
		}
	}
}

// HandleReady marks the browser map as loaded. Repeats are ignored.
func (b *MapBridge) HandleReady() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isReady {
		return
	}
	b.isReady = true
	close(b.ready)
}

// HandleClick forwards a browser click once the map is ready.
func (b *MapBridge) HandleClick(at entity.Coordinate) {
	b.mu.Lock()
	fn := b.onClick
	ready := b.isReady && !b.closed
	b.mu.Unlock()

	if !ready || fn == nil {
		logger.Debug("Map click before ready ignored")
		return
	}
	fn(at)
}

// HandleAnimationDone resolves the GoTo waiting on id.
func (b *MapBridge) HandleAnimationDone(id uint64, interrupted bool) {
	b.mu.Lock()
	done, ok := b.pending[id]
	delete(b.pending, id)
	b.mu.Unlock()

	if ok {
		done <- interrupted
	}
}

// Close fails every pending animation. The connection is gone.
func (b *MapBridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, done := range b.pending {
		done <- true
		delete(b.pending, id)
	}
}

// RemoteMapSurface is a service.MapSurface rendered by the browser.
type RemoteMapSurface struct {
	bridge *MapBridge
}

func (s *RemoteMapSurface) GoTo(ctx context.Context, center entity.Coordinate, zoom float64) error {
	b := s.bridge
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClientClosed
	}
	b.nextID++
	id := b.nextID
	done := make(chan bool, 1)
	b.pending[id] = done
	b.mu.Unlock()

	if err := b.sender.Enqueue(MessageTypeMapGoTo, GoToData{ID: id, Center: center, Zoom: zoom}); err != nil {
		b.forget(id)
		return err
	}

	select {
	case interrupted := <-done:
		if interrupted {
			return service.ErrAnimationInterrupted
		}
		return nil
	case <-ctx.Done():
		b.forget(id)
		return service.ErrAnimationInterrupted
	}
}

func (b *MapBridge) forget(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, id)
}

func (s *RemoteMapSurface) AddMarker(at entity.Coordinate) error {
	return s.bridge.sender.Enqueue(MessageTypeMapMarker, MarkerData{Position: at})
}

func (s *RemoteMapSurface) ClearMarkers() error {
	return s.bridge.sender.Enqueue(MessageTypeClearMarkers, nil)
}

func (s *RemoteMapSurface) SetCrosshair(on bool) error {
	return s.bridge.sender.Enqueue(MessageTypeMapCursor, CursorData{Crosshair: on})
}

func (s *RemoteMapSurface) Destroy() error {
	err := s.bridge.sender.Enqueue(MessageTypeMapDestroy, nil)
	s.bridge.Close()
	if err == ErrClientClosed {
		return nil
	}
	return err
}
