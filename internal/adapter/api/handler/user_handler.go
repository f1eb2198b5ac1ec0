package handler

import (
	"github.com/labstack/echo/v4"

	"civicalert/internal/adapter/api/middleware"
	"civicalert/internal/domain/entity"
	"civicalert/internal/usecase"
	"civicalert/pkg/errors"
	"civicalert/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

// profileView is the public shape of a profile. Profiles without a home
// city report "profile_complete": false.
type profileView struct {
	ID              string           `json:"id"`
	Email           string           `json:"email"`
	DisplayName     string           `json:"display_name"`
	PhotoURL        string           `json:"photo_url"`
	Role            entity.Role      `json:"role"`
	HomeCity        *entity.HomeCity `json:"home_city"`
	ProfileComplete bool             `json:"profile_complete"`
}

func newProfileView(u *entity.UserProfile) *profileView {
	v := &profileView{
		ID:              u.ID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		PhotoURL:        u.PhotoURL,
		Role:            u.Role,
		ProfileComplete: u.HasHomeCity(),
	}
	if u.HasHomeCity() {
		v.HomeCity = u.HomeCity
	}
	return v
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=80"`
}

type homeCityRequest struct {
	Name      string  `json:"name" validate:"required,max=120"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userUseCase.GetProfile(c.Request().Context(), middleware.UserID(c), middleware.Role(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, newProfileView(user))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), middleware.UserID(c), usecase.UpdateProfileInput{
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, h.withClaim(c, user))
}

func (h *UserHandler) SetHomeCity(c echo.Context) error {
	var req homeCityRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.SetHomeCity(c.Request().Context(), middleware.UserID(c), entity.HomeCity{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, h.withClaim(c, user))
}

func (h *UserHandler) UploadAvatar(c echo.Context) error {
	photo, err := readPhoto(c, "photo")
	if err != nil {
		return response.Error(c, err)
	}
	if photo == nil {
		return response.Error(c, errors.Validation("Photo is required"))
	}

	user, err := h.userUseCase.UploadAvatar(c.Request().Context(), middleware.UserID(c), photo)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, h.withClaim(c, user))
}

func (h *UserHandler) withClaim(c echo.Context, user *entity.UserProfile) *profileView {
	if role := middleware.Role(c); role != "" {
		user.Role = role
	}
	return newProfileView(user)
}
