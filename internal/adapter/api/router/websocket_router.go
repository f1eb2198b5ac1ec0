package router

import (
	"github.com/labstack/echo/v4"

	"civicalert/internal/adapter/api/handler"
	"civicalert/internal/adapter/api/middleware"
)

// SetupWebSocketRouter mounts the map session socket. Browsers cannot set
// headers on upgrade, so the token travels in the query string.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/ws", wsHandler.HandleWebSocket, authMiddleware.AuthenticateQuery)
}
