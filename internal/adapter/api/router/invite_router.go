package router

import (
	"github.com/labstack/echo/v4"

	"civicalert/internal/adapter/api/handler"
	"civicalert/internal/adapter/api/middleware"
)

func SetupInviteRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	inviteHandler := handler.GetInviteHandler()

	e.POST("/v1/invites/redeem", inviteHandler.Redeem, authMiddleware.Authenticate)
}
