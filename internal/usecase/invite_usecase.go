package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/pkg/errors"
	"civicalert/pkg/logger"
)

// invitedRole is the role granted by any invite code.
const invitedRole = entity.RolePolice

type InviteUseCase struct {
	inviteRepo   repository.InviteRepository
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
	limiter      ActionLimiter
	notifier     RoleNotifier
}

// NewInviteUseCase builds the invite flows. limiter and notifier may be nil.
func NewInviteUseCase(inviteRepo repository.InviteRepository, userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient, limiter ActionLimiter, notifier RoleNotifier) *InviteUseCase {
	return &InviteUseCase{
		inviteRepo:   inviteRepo,
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
		limiter:      limiter,
		notifier:     notifier,
	}
}

// Redeem consumes code and grants its role. The invite is single-use: it is
// deleted in the same transaction that updates the profile role, and the
// identity claim is set afterwards.
func (uc *InviteUseCase) Redeem(ctx context.Context, uid, code string) (entity.Role, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", errors.Validation("Invite code is required")
	}

	if uc.limiter != nil {
		if allowed, wait := uc.limiter.Allow(uid, "redeem_invite"); !allowed {
			return "", errors.TooManyRequests(fmt.Sprintf("Too many attempts, try again in %s", wait.Round(time.Second)))
		}
	}

	if err := uc.inviteRepo.ConsumeAndGrant(ctx, code, uid, invitedRole); err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return "", errors.New(errors.CodeInvalidInvite, "Invalid or already used invite code", http.StatusBadRequest, err)
		}
		return "", errors.Persistence("Failed to redeem invite", err)
	}

	if err := uc.firebaseAuth.SetRoleClaim(ctx, uid, invitedRole); err != nil {
		logger.Error("Invite consumed for %s but role claim failed: %v", uid, err)
		return "", errors.Internal("Failed to apply invite role", err)
	}

	logger.Info("User %s redeemed an invite and is now %s", uid, invitedRole)
	uc.notifyRole(uid, invitedRole)
	return invitedRole, nil
}

// Promote sets role on both the identity claim and the profile mirror.
func (uc *InviteUseCase) Promote(ctx context.Context, uid string, role entity.Role) error {
	if _, err := uc.userRepo.GetByID(ctx, uid); err != nil {
		return errors.NotFound("User", err)
	}

	if err := uc.firebaseAuth.SetRoleClaim(ctx, uid, role); err != nil {
		return errors.Internal("Failed to set role claim", err)
	}
	if err := uc.userRepo.UpdateRole(ctx, uid, role); err != nil {
		logger.Warn("Role claim set for %s but profile mirror update failed: %v", uid, err)
		return errors.Persistence("Failed to update user role", err)
	}

	logger.Info("User %s promoted to %s", uid, role)
	uc.notifyRole(uid, role)
	return nil
}

func (uc *InviteUseCase) notifyRole(uid string, role entity.Role) {
	if uc.notifier != nil {
		uc.notifier.NotifyRoleChanged(uid, role)
	}
}

func (uc *InviteUseCase) CreateInvite(ctx context.Context) (*entity.Invite, error) {
	code, err := newInviteCode()
	if err != nil {
		return nil, errors.Internal("Failed to generate invite code", err)
	}

	invite := &entity.Invite{
		Code:      code,
		CreatedAt: time.Now(),
	}
	if err := uc.inviteRepo.Create(ctx, invite); err != nil {
		return nil, errors.Persistence("Failed to create invite", err)
	}
	return invite, nil
}

func newInviteCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
