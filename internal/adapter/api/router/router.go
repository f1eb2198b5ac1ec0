package router

import (
	"github.com/labstack/echo/v4"

	"civicalert/internal/adapter/api/handler"
	"civicalert/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, wsHandler *handler.WebSocketHandler) {
	SetupHealthRouter(e)
	SetupAuthRouter(e)
	SetupUserRouter(e, authMiddleware)
	SetupTicketRouter(e, authMiddleware)
	SetupInviteRouter(e, authMiddleware)
	SetupAdminRouter(e, authMiddleware, adminMiddleware)
	SetupWebSocketRouter(e, wsHandler, authMiddleware)
}
