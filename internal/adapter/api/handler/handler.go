package handler

import (
	"civicalert/internal/usecase"
)

var (
	authHandler   *AuthHandler
	userHandler   *UserHandler
	ticketHandler *TicketHandler
	inviteHandler *InviteHandler
	adminHandler  *AdminHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	ticketUseCase *usecase.TicketUseCase,
	inviteUseCase *usecase.InviteUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	ticketHandler = NewTicketHandler(ticketUseCase)
	inviteHandler = NewInviteHandler(inviteUseCase)
	adminHandler = NewAdminHandler(inviteUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetTicketHandler() *TicketHandler {
	return ticketHandler
}

func GetInviteHandler() *InviteHandler {
	return inviteHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}
