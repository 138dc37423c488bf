package repository

import (
	"woodeoo-auth/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	Verification VerificationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		Verification: NewVerificationRepository(db, log),
	}
}
