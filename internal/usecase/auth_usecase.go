package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/pkg/errors"
	"civicalert/pkg/logger"
)

const minPasswordLength = 6

type AuthUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
	invites      *InviteUseCase
	validate     *validator.Validate
}

func NewAuthUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient, invites *InviteUseCase) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
		invites:      invites,
		validate:     validator.New(),
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	InviteCode  string
}

type AuthResult struct {
	User  *entity.UserProfile
	Token string
}

// Register creates the identity and the profile record. An invite code is
// redeemed after the account exists; a bad code does not fail sign-up.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	if err := uc.validate.Var(email, "required,email"); err != nil {
		return nil, errors.Auth(errors.CodeInvalidEmail, err)
	}
	if len(input.Password) < minPasswordLength {
		return nil, errors.Auth(errors.CodeWeakPassword, nil)
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = entity.DefaultDisplayName(email)
	}

	uid, err := uc.firebaseAuth.CreateUser(ctx, email, input.Password, displayName)
	if err != nil {
		if errors.Is(err, errors.CodeEmailInUse) || errors.Is(err, errors.CodeWeakPassword) || errors.Is(err, errors.CodeInvalidEmail) {
			return nil, err
		}
		logger.Error("Failed to create identity for %s: %v", email, err)
		return nil, errors.Auth("", err)
	}

	now := time.Now()
	user := &entity.UserProfile{
		ID:          uid,
		Email:       email,
		DisplayName: displayName,
		Role:        entity.RoleCitizen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		logger.Error("Failed to create profile for %s: %v", uid, err)
		return nil, errors.Persistence("Failed to create user record", err)
	}

	if code := strings.TrimSpace(input.InviteCode); code != "" && uc.invites != nil {
		role, err := uc.invites.Redeem(ctx, uid, code)
		if err != nil {
			logger.Warn("Invite redemption during sign-up failed for %s: %v", uid, err)
		} else {
			user.Role = role
		}
	}

	token, err := uc.firebaseAuth.GenerateToken(ctx, uid)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	logger.Info("Registered user %s as %s", uid, user.Role)
	return &AuthResult{
		User:  user,
		Token: token,
	}, nil
}
