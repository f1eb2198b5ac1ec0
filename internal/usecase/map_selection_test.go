package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicalert/internal/domain/entity"
)

func startedController(t *testing.T) (*MapSelectionController, *fakeSurface) {
	t.Helper()
	surface := newFakeSurface()
	ctl := NewMapSelectionController(immediateFactory(surface), testMapOptions)
	ctl.Start(context.Background())
	ctl.wait()
	require.True(t, ctl.Ready())
	t.Cleanup(func() {
		ctl.Destroy()
		ctl.wait()
	})
	return ctl, surface
}

func TestMapViewZoomPolicy(t *testing.T) {
	ctl := NewMapSelectionController(immediateFactory(newFakeSurface()), testMapOptions)

	view := ctl.View()
	assert.Equal(t, testMapOptions.DefaultCenter, view.Center)
	assert.Equal(t, testMapOptions.DefaultZoom, view.Zoom)
	assert.Equal(t, "test-key", view.APIKey)

	home := entity.Coordinate{Latitude: 46.0, Longitude: 25.0}
	ctl.SetCenter(home)

	view = ctl.View()
	assert.Equal(t, home, view.Center)
	assert.Equal(t, testMapOptions.FocusZoom, view.Zoom)
}

func TestClickIgnoredUnlessSelectingWithCallback(t *testing.T) {
	ctl, surface := startedController(t)
	var got []entity.Coordinate

	surface.click(entity.Coordinate{Latitude: 1, Longitude: 1})
	assert.Nil(t, ctl.Marker())

	ctl.SetSelecting(true)
	assert.False(t, ctl.HandleClick(entity.Coordinate{Latitude: 2, Longitude: 2}), "no callback registered")
	assert.Nil(t, ctl.Marker())

	ctl.OnSelect(func(c entity.Coordinate) { got = append(got, c) })
	ctl.SetSelecting(false)
	assert.False(t, ctl.HandleClick(entity.Coordinate{Latitude: 3, Longitude: 3}), "not selecting")

	markers, _, _, _ := surface.snapshot()
	assert.Empty(t, markers)
	assert.Empty(t, got)
}

func TestClickKeepsSingleMarker(t *testing.T) {
	ctl, surface := startedController(t)
	var got []entity.Coordinate
	ctl.OnSelect(func(c entity.Coordinate) { got = append(got, c) })
	ctl.SetSelecting(true)

	first := entity.Coordinate{Latitude: 44.43, Longitude: 26.10}
	second := entity.Coordinate{Latitude: 46.0, Longitude: 25.0}
	surface.click(first)
	surface.click(second)

	markers, _, crosshair, _ := surface.snapshot()
	assert.Equal(t, []entity.Coordinate{second}, markers)
	assert.Equal(t, []entity.Coordinate{first, second}, got)
	assert.Equal(t, &second, ctl.Marker())
	assert.Equal(t, []bool{false, true}, crosshair)
}

func TestSupersededAnimationIsDroppedSilently(t *testing.T) {
	ctl, surface := startedController(t)

	first := entity.Coordinate{Latitude: 44.43, Longitude: 26.10}
	second := entity.Coordinate{Latitude: 46.0, Longitude: 25.0}
	ctl.SetCenter(first)
	ctl.SetCenter(second)
	surface.finishAnimations()
	ctl.wait()

	_, reached, _, _ := surface.snapshot()
	assert.Equal(t, []entity.Coordinate{second}, reached)
	assert.Equal(t, &second, ctl.Center())
}

func TestSetSelectingDoesNotCancelAnimation(t *testing.T) {
	ctl, surface := startedController(t)

	target := entity.Coordinate{Latitude: 44.43, Longitude: 26.10}
	ctl.SetCenter(target)
	ctl.SetSelecting(true)
	ctl.SetSelecting(false)
	surface.finishAnimations()
	ctl.wait()

	_, reached, _, _ := surface.snapshot()
	assert.Equal(t, []entity.Coordinate{target}, reached)
}

func TestReadyReconcilesDesiredState(t *testing.T) {
	surface := newFakeSurface()
	ready := make(chan struct{})
	ctl := NewMapSelectionController(gatedFactory(surface, ready), testMapOptions)
	ctl.Start(context.Background())

	// Desired state changes while the surface is still loading.
	target := entity.Coordinate{Latitude: 46.0, Longitude: 25.0}
	ctl.SetSelecting(true)
	ctl.SetCenter(entity.Coordinate{Latitude: 1, Longitude: 1})
	ctl.SetCenter(target)
	assert.False(t, ctl.Ready())

	surface.finishAnimations()
	close(ready)
	ctl.wait()

	require.True(t, ctl.Ready())
	_, reached, crosshair, _ := surface.snapshot()
	assert.Equal(t, []entity.Coordinate{target}, reached, "only the latest center is applied")
	assert.Equal(t, []bool{true}, crosshair)
	assert.Equal(t, testMapOptions.DefaultCenter, surface.view.Center, "surface opened with the view desired at start")

	ctl.Destroy()
}

func TestCenterKnownAtStartIsNotReanimated(t *testing.T) {
	surface := newFakeSurface()
	ctl := NewMapSelectionController(immediateFactory(surface), testMapOptions)
	home := entity.Coordinate{Latitude: 46.0, Longitude: 25.0}
	ctl.SetCenter(home)
	ctl.Start(context.Background())
	ctl.wait()

	assert.Equal(t, home, surface.view.Center)
	assert.Equal(t, testMapOptions.FocusZoom, surface.view.Zoom)
	assert.Equal(t, 0, surface.goTos)

	ctl.Destroy()
}

func TestDestroyBeforeReadyDisposesLateSurface(t *testing.T) {
	surface := newFakeSurface()
	ready := make(chan struct{})
	ctl := NewMapSelectionController(gatedFactory(surface, ready), testMapOptions)
	ctl.Start(context.Background())

	ctl.Destroy()
	close(ready)
	ctl.wait()

	_, _, crosshair, destroyed := surface.snapshot()
	assert.True(t, destroyed)
	assert.Empty(t, crosshair, "a disposed surface is never configured")
	assert.False(t, ctl.Ready())

	// Nothing reaches the surface once torn down.
	ctl.SetSelecting(true)
	ctl.OnSelect(func(entity.Coordinate) { t.Fatal("callback after destroy") })
	assert.False(t, ctl.HandleClick(entity.Coordinate{Latitude: 1, Longitude: 1}))
}

func TestDestroyReleasesReadySurface(t *testing.T) {
	surface := newFakeSurface()
	ctl := NewMapSelectionController(immediateFactory(surface), testMapOptions)
	ctl.Start(context.Background())
	ctl.wait()

	ctl.SetCenter(entity.Coordinate{Latitude: 44.43, Longitude: 26.10})
	ctl.Destroy()
	ctl.wait()

	_, reached, _, destroyed := surface.snapshot()
	assert.True(t, destroyed)
	assert.Empty(t, reached)
	assert.False(t, ctl.Ready())

	// Start after destroy is a no-op.
	ctl.Start(context.Background())
	ctl.wait()
	assert.False(t, ctl.Ready())
}
