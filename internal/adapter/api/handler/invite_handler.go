package handler

import (
	"github.com/labstack/echo/v4"

	"civicalert/internal/adapter/api/middleware"
	"civicalert/internal/usecase"
	"civicalert/pkg/errors"
	"civicalert/pkg/response"
)

type InviteHandler struct {
	inviteUseCase *usecase.InviteUseCase
}

func NewInviteHandler(inviteUseCase *usecase.InviteUseCase) *InviteHandler {
	return &InviteHandler{
		inviteUseCase: inviteUseCase,
	}
}

type redeemInviteRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// Redeem grants the invite's role. The caller must refresh their ID token
// to see the new claim.
func (h *InviteHandler) Redeem(c echo.Context) error {
	var req redeemInviteRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	role, err := h.inviteUseCase.Redeem(c.Request().Context(), middleware.UserID(c), req.Code)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"role":          role,
		"refresh_token": true,
	})
}
