package wire

import (
	"woodeoo-auth/internal/adaptor"
	"woodeoo-auth/internal/data/repository"
	"woodeoo-auth/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures user management routes with role-based access control
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	auth := middleware.AuthSession(repo.Session, repo.User, log)

	// ==================== PROTECTED USER ROUTES ====================
	r.With(auth).Get("/api/user/profile", userHandler.GetProfile)

	// ==================== ADMIN ROUTES ====================
	r.With(auth, middleware.Admin(log)).Route("/api/admin/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAllUsers)       // GET /api/admin/users?page=1&per_page=10
		r.Delete("/{id}", userHandler.DeleteUser) // DELETE /api/admin/users/{user-id}
	})
}
