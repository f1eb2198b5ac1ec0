package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"civicalert/internal/domain/repository"
	"civicalert/pkg/errors"
	"civicalert/pkg/response"
)

// TokenMinter issues custom tokens for an existing user.
type TokenMinter interface {
	GenerateToken(ctx context.Context, uid string) (string, error)
}

// DevTokenHandler mints sign-in tokens for local testing. It is only
// routed in development.
type DevTokenHandler struct {
	minter   TokenMinter
	userRepo repository.UserRepository
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(minter TokenMinter, userRepo repository.UserRepository) *DevTokenHandler {
	return &DevTokenHandler{
		minter:   minter,
		userRepo: userRepo,
	}
}

func SetupDevTokenHandler(minter TokenMinter, userRepo repository.UserRepository) {
	devTokenHandler = NewDevTokenHandler(minter, userRepo)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

func (h *DevTokenHandler) GenerateUserToken(c echo.Context) error {
	user, err := h.userRepo.GetByID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return response.Error(c, errors.NotFound("User", err))
	}

	token, err := h.minter.GenerateToken(c.Request().Context(), user.ID)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to generate token", err))
	}

	return response.Success(c, map[string]interface{}{
		"custom_token": token,
		"user":         newProfileView(user),
	})
}
