package repository

import (
	"context"

	"civicalert/internal/domain/entity"
)

type InviteRepository interface {
	// ConsumeAndGrant atomically deletes the invite matching code and
	// mirrors role into the user's profile. Returns a NOT_FOUND error
	// when no invite matches.
	ConsumeAndGrant(ctx context.Context, code, uid string, role entity.Role) error
	Create(ctx context.Context, invite *entity.Invite) error
}
