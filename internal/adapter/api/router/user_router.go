package router

import (
	"github.com/labstack/echo/v4"

	"civicalert/internal/adapter/api/handler"
	"civicalert/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users/me")
	users.Use(authMiddleware.Authenticate)

	users.GET("", userHandler.GetProfile)
	users.PATCH("", userHandler.UpdateProfile)
	users.PUT("/home-city", userHandler.SetHomeCity)
	users.POST("/avatar", userHandler.UploadAvatar)
}
