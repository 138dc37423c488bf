package adaptor

import (
	"woodeoo-auth/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth *AuthHandler
	User *UserHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(service.Auth, log),
		User: NewUserHandler(service.User, log),
	}
}
