package wire

import (
	"net/http"

	"woodeoo-auth/internal/adaptor"
	"woodeoo-auth/internal/data/repository"
	"woodeoo-auth/pkg/middleware"
	"woodeoo-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	repo *repository.Repository,
	limiter *middleware.AuthRateLimiter,
	log *zap.Logger,
) {
	r.Route("/api/auth", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.With(limiter.LimitRegister).Handle("/register", postOnly(authHandler.Register))
		r.With(limiter.LimitLogin).Handle("/login", postOnly(authHandler.Login))
		r.With(limiter.LimitPasswordReset).Handle("/forgot-password", postOnly(authHandler.ForgotPassword))
		r.With(limiter.LimitPasswordReset).Handle("/resend-code", postOnly(authHandler.ResendCode))
		r.With(limiter.LimitVerify).Handle("/verify-code", postOnly(authHandler.VerifyCode))
		r.With(limiter.LimitPasswordReset).Handle("/reset-password", postOnly(authHandler.ResetPassword))
		r.With(limiter.LimitVerify).Handle("/verify-email", postOnly(authHandler.VerifyEmail))

		// ==================== PROTECTED ROUTES ====================
		r.Handle("/logout", postOnly(
			middleware.AuthSession(repo.Session, repo.User, log)(http.HandlerFunc(authHandler.Logout)).ServeHTTP,
		))
	})
}

// postOnly answers every other method with a JSON 405 and Allow: POST.
func postOnly(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			utils.ResponseMethodNotAllowed(w, http.MethodPost)
			return
		}
		next(w, r)
	})
}
