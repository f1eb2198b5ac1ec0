package router

import (
	"github.com/labstack/echo/v4"

	"civicalert/internal/adapter/api/handler"
	"civicalert/internal/adapter/api/middleware"
)

// SetupAuthRouter initializes auth routes
func SetupAuthRouter(e *echo.Echo) {
	authHandler := handler.GetAuthHandler()

	e.POST("/v1/auth/register", authHandler.Register, middleware.AuthRateLimit())
}
