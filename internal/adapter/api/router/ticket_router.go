package router

import (
	"github.com/labstack/echo/v4"

	"civicalert/internal/adapter/api/handler"
	"civicalert/internal/adapter/api/middleware"
)

func SetupTicketRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	ticketHandler := handler.GetTicketHandler()

	tickets := e.Group("/v1/tickets")
	tickets.Use(authMiddleware.Authenticate)

	tickets.GET("", ticketHandler.ListTickets)
	tickets.POST("", ticketHandler.CreateTicket)
	tickets.GET("/:id", ticketHandler.GetTicket)
}
