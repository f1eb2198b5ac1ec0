package handler

import (
	"github.com/labstack/echo/v4"

	"civicalert/internal/usecase"
	"civicalert/pkg/errors"
	"civicalert/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

// Email and password rules live in the use case so their messages match
// the identity provider's.
type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name" validate:"omitempty,max=80"`
	InviteCode  string `json:"invite_code" validate:"omitempty,max=64"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *profileView `json:"user"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		InviteCode:  req.InviteCode,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, authResponse{
		Token: result.Token,
		User:  newProfileView(result.User),
	})
}
