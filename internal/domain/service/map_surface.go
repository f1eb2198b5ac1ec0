package service

import (
	"context"
	"errors"

	"civicalert/internal/domain/entity"
)

// ErrAnimationInterrupted is returned by GoTo when a newer request
// supersedes the transition. Callers treat it as a normal outcome.
var ErrAnimationInterrupted = errors.New("map animation interrupted")

// MapView is the initial camera of a map surface.
type MapView struct {
	Center entity.Coordinate `json:"center"`
	Zoom   float64           `json:"zoom"`
	APIKey string            `json:"api_key,omitempty"`
}

// MapSurface is a rendered map the server drives: camera, markers and cursor.
type MapSurface interface {
	GoTo(ctx context.Context, center entity.Coordinate, zoom float64) error
	AddMarker(at entity.Coordinate) error
	ClearMarkers() error
	SetCrosshair(on bool) error
	Destroy() error
}

// MapSurfaceFactory bootstraps a surface. It may block on the network;
// onClick is called with every click the surface reports.
type MapSurfaceFactory func(ctx context.Context, view MapView, onClick func(entity.Coordinate)) (MapSurface, error)
