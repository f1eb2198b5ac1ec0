package usecase

import (
	"context"
	"time"

	"civicalert/internal/domain/entity"
)

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	SetRoleClaim(ctx context.Context, uid string, role entity.Role) error
	GenerateToken(ctx context.Context, uid string) (string, error)
}

// MapController is the part of the map the flows drive.
type MapController interface {
	SetSelecting(on bool)
	SetCenter(center entity.Coordinate)
}

type ActionLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}

// RoleNotifier reaches a user's open sessions after their role changes.
type RoleNotifier interface {
	NotifyRoleChanged(userID string, role entity.Role)
}
