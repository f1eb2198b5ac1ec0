package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"civicalert/internal/domain/entity"
)

type AdminMiddleware struct{}

func NewAdminMiddleware() *AdminMiddleware {
	return &AdminMiddleware{}
}

// AdminOnly trusts the role claim set by Authenticate. The role stored on
// the profile is never consulted.
func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if UserID(c) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		if Role(c) != entity.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin privileges required")
		}

		return next(c)
	}
}
