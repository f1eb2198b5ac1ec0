package repository

import (
	"context"

	"civicalert/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.UserProfile) error
	GetByID(ctx context.Context, id string) (*entity.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error)
	UpdateProfile(ctx context.Context, id string, displayName string) error
	UpdateHomeCity(ctx context.Context, id string, city entity.HomeCity) error
	UpdatePhotoURL(ctx context.Context, id string, url string) error
	UpdateRole(ctx context.Context, id string, role entity.Role) error
}
