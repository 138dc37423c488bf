package adaptor

import (
	"net/http"

	"woodeoo-auth/internal/dto/request"
	"woodeoo-auth/internal/usecase"
	"woodeoo-auth/pkg/middleware"
	"woodeoo-auth/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest

	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	response, err := h.service.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "register")
		return
	}

	utils.ResponseCreated(w, "Registration successful", response)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest

	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	req.UserAgent = r.UserAgent()
	req.IPAddress = middleware.ClientIP(r)

	response, err := h.service.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", response)
}

// Logout handles POST /api/auth/logout. The session middleware has already
// checked the bearer token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := utils.GetTokenFromContext(r.Context())
	if !ok || token == "" {
		utils.ResponseBadRequest(w, "No token provided", nil)
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		handleServiceError(w, h.log, err, "logout")
		return
	}

	utils.ResponseSuccess(w, "Logout successful", nil)
}

// ForgotPassword handles POST /api/auth/forgot-password. Unknown contacts get
// the same answer as known ones.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ContactRequest

	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "forgot password")
		return
	}

	utils.ResponseSuccess(w, "If an account exists for this contact, a verification code has been sent", nil)
}

// ResendCode handles POST /api/auth/resend-code
func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req request.ContactRequest

	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.ResendCode(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "resend code")
		return
	}

	utils.ResponseSuccess(w, "Verification code sent", nil)
}

// VerifyCode handles POST /api/auth/verify-code
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyCodeRequest

	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.VerifyCode(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "verify code")
		return
	}

	utils.ResponseSuccess(w, "Code verified", nil)
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest

	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, "Password reset successfully", nil)
}

// VerifyEmail handles POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyEmailRequest

	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "verify email")
		return
	}

	utils.ResponseSuccess(w, "Email verified successfully", nil)
}
