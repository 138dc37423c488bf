package adaptor

import (
	"net/http"

	"woodeoo-auth/internal/dto/request"
	"woodeoo-auth/internal/usecase"
	"woodeoo-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log.With(zap.String("handler", "user")),
	}
}

// GetProfile handles GET /api/user/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	// Get user ID from context (set by auth middleware)
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}

// GetAllUsers handles GET /api/admin/users (admin only)
func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	req := request.PageFromQuery(r.URL.Query())

	users, err := h.service.GetAllUsers(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get all users")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}

// DeleteUser handles DELETE /api/admin/users/{id} (admin only)
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		utils.ResponseBadRequest(w, "User ID is required", nil)
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		handleServiceError(w, h.log, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted successfully", nil)
}
