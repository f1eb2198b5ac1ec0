package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/internal/domain/service"
	"civicalert/pkg/errors"
	"civicalert/pkg/logger"
)

type UserUseCase struct {
	userRepo    repository.UserRepository
	fileService service.FileUploadService
	limiter     ActionLimiter
}

func NewUserUseCase(userRepo repository.UserRepository, fileService service.FileUploadService, limiter ActionLimiter) *UserUseCase {
	return &UserUseCase{
		userRepo:    userRepo,
		fileService: fileService,
		limiter:     limiter,
	}
}

// GetProfile loads the profile for userID. The role carried by the verified
// token wins over the stored one, which is only a display copy.
func (uc *UserUseCase) GetProfile(ctx context.Context, userID string, claimRole entity.Role) (*entity.UserProfile, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	if claimRole != "" && user.Role != claimRole {
		logger.Debug("Stored role %q for %s differs from claim %q", user.Role, userID, claimRole)
		user.Role = claimRole
	}
	return user, nil
}

type UpdateProfileInput struct {
	DisplayName string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.UserProfile, error) {
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return nil, errors.Validation("Display name is required")
	}

	if err := uc.userRepo.UpdateProfile(ctx, userID, displayName); err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
		return nil, errors.Persistence("Failed to update user profile", err)
	}
	return uc.userRepo.GetByID(ctx, userID)
}

// SetHomeCity writes a home city directly, bypassing the map flow.
func (uc *UserUseCase) SetHomeCity(ctx context.Context, userID string, city entity.HomeCity) (*entity.UserProfile, error) {
	city.Name = strings.TrimSpace(city.Name)
	if !city.IsSet() {
		return nil, errors.Validation("Home city needs a name and non-zero coordinates")
	}

	if err := uc.userRepo.UpdateHomeCity(ctx, userID, city); err != nil {
		logger.Error("Failed to save home city for user %s: %v", userID, err)
		return nil, errors.Persistence("Failed to save home city", err)
	}
	return uc.userRepo.GetByID(ctx, userID)
}

// UploadAvatar stores the photo under a per-user object name, so a new
// avatar replaces the previous one.
func (uc *UserUseCase) UploadAvatar(ctx context.Context, userID string, photo *Photo) (*entity.UserProfile, error) {
	if photo == nil {
		return nil, errors.Validation("Photo is required")
	}
	if err := validatePhoto(photo); err != nil {
		return nil, err
	}

	if uc.limiter != nil {
		if allowed, wait := uc.limiter.Allow(userID, "upload_avatar"); !allowed {
			return nil, errors.TooManyRequests(fmt.Sprintf("Too many uploads, try again in %s", wait.Round(time.Second)))
		}
	}

	url, err := uc.fileService.UploadNamed(ctx, bytes.NewReader(photo.Data), photo.ContentType, "avatars/"+userID, true)
	if err != nil {
		logger.Error("Failed to upload avatar for user %s: %v", userID, err)
		return nil, errors.Upload("Failed to upload photo", err)
	}

	if err := uc.userRepo.UpdatePhotoURL(ctx, userID, url); err != nil {
		return nil, errors.Persistence("Failed to save photo URL", err)
	}
	return uc.userRepo.GetByID(ctx, userID)
}
