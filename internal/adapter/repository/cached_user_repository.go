package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/internal/infrastructure/cache"
	"civicalert/pkg/logger"
)

const profileNamespace = "profile"

// ProfileCache is the subset of the Redis cache the profile decorator needs.
type ProfileCache interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, namespace, key string) error
}

// cachedUserRepository serves profile reads from the cache and drops the
// cached copy on every write. Cache failures fall back to the store.
type cachedUserRepository struct {
	repository.UserRepository
	cache ProfileCache
	ttl   time.Duration
}

func NewCachedUserRepository(inner repository.UserRepository, c ProfileCache, ttl time.Duration) repository.UserRepository {
	return &cachedUserRepository{
		UserRepository: inner,
		cache:          c,
		ttl:            ttl,
	}
}

func (r *cachedUserRepository) GetByID(ctx context.Context, id string) (*entity.UserProfile, error) {
	b, err := r.cache.Get(ctx, profileNamespace, id)
	switch {
	case err == nil:
		var user entity.UserProfile
		if jsonErr := json.Unmarshal(b, &user); jsonErr == nil {
			return &user, nil
		}
		logger.Warn("Discarding undecodable cached profile %s", id)
	case !stderrors.Is(err, cache.ErrCacheMiss):
		logger.Warn("Profile cache read failed for %s: %v", id, err)
	}

	user, err := r.UserRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(user); err == nil {
		if err := r.cache.Set(ctx, profileNamespace, id, b, r.ttl); err != nil {
			logger.Warn("Profile cache write failed for %s: %v", id, err)
		}
	}
	return user, nil
}

func (r *cachedUserRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, profileNamespace, id); err != nil {
		logger.Warn("Profile cache invalidation failed for %s: %v", id, err)
	}
}

func (r *cachedUserRepository) Create(ctx context.Context, user *entity.UserProfile) error {
	if err := r.UserRepository.Create(ctx, user); err != nil {
		return err
	}
	r.invalidate(ctx, user.ID)
	return nil
}

func (r *cachedUserRepository) UpdateProfile(ctx context.Context, id string, displayName string) error {
	defer r.invalidate(ctx, id)
	return r.UserRepository.UpdateProfile(ctx, id, displayName)
}

func (r *cachedUserRepository) UpdateHomeCity(ctx context.Context, id string, city entity.HomeCity) error {
	defer r.invalidate(ctx, id)
	return r.UserRepository.UpdateHomeCity(ctx, id, city)
}

func (r *cachedUserRepository) UpdatePhotoURL(ctx context.Context, id string, url string) error {
	defer r.invalidate(ctx, id)
	return r.UserRepository.UpdatePhotoURL(ctx, id, url)
}

func (r *cachedUserRepository) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	defer r.invalidate(ctx, id)
	return r.UserRepository.UpdateRole(ctx, id, role)
}
