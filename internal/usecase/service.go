package usecase

import (
	"woodeoo-auth/internal/data/repository"
	"woodeoo-auth/internal/notify"
	"woodeoo-auth/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth AuthService
	User UserService
}

func NewService(repo *repository.Repository, config *utils.Config, notifier notify.Notifier, log *zap.Logger) *Service {
	return &Service{
		Auth: NewAuthService(repo, config, notifier, log),
		User: NewUserService(repo.User, log),
	}
}
