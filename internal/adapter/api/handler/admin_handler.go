package handler

import (
	"github.com/labstack/echo/v4"

	"civicalert/internal/domain/entity"
	"civicalert/internal/usecase"
	"civicalert/pkg/errors"
	"civicalert/pkg/response"
)

type AdminHandler struct {
	inviteUseCase *usecase.InviteUseCase
}

func NewAdminHandler(inviteUseCase *usecase.InviteUseCase) *AdminHandler {
	return &AdminHandler{
		inviteUseCase: inviteUseCase,
	}
}

type promoteRequest struct {
	Role string `json:"role" validate:"omitempty,oneof=citizen police admin"`
}

// PromoteUser sets a user's role without an invite. Role defaults to police.
func (h *AdminHandler) PromoteUser(c echo.Context) error {
	var req promoteRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	role := entity.RolePolice
	if req.Role != "" {
		role = entity.Role(req.Role)
	}

	userID := c.Param("userId")
	if err := h.inviteUseCase.Promote(c.Request().Context(), userID, role); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"user_id": userID,
		"role":    role,
	})
}

func (h *AdminHandler) CreateInvite(c echo.Context) error {
	invite, err := h.inviteUseCase.CreateInvite(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, invite)
}
