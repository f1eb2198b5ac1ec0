package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"civicalert/internal/domain/entity"
)

// TokenVerifier checks an ID token and returns who it belongs to.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (*entity.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate requires a bearer token and stores "uid" and "role" on the
// context. The role comes from the token's claim.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		return m.verify(c, parts[1], next)
	}
}

// AuthenticateQuery reads the token from ?token=, for WebSocket upgrades
// where browsers cannot set headers.
func (m *AuthMiddleware) AuthenticateQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token query parameter is required")
		}
		return m.verify(c, token, next)
	}
}

func (m *AuthMiddleware) verify(c echo.Context, idToken string, next echo.HandlerFunc) error {
	identity, err := m.verifier.VerifyToken(c.Request().Context(), idToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	c.Set("uid", identity.UID)
	c.Set("role", identity.Role)
	return next(c)
}

func UserID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

func Role(c echo.Context) entity.Role {
	role, _ := c.Get("role").(entity.Role)
	return role
}
