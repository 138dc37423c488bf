package response

import (
	"time"

	"woodeoo-auth/internal/data/entity"
)

type AuthResponse struct {
	UserID      string             `json:"user_id"`
	Token       string             `json:"token,omitempty"`
	ExpiresAt   *time.Time         `json:"expires_at,omitempty"`
	Email       string             `json:"email"`
	Username    string             `json:"username,omitempty"`
	Role        entity.UserRole    `json:"role"`
	AccountType entity.AccountType `json:"account_type"`
	IsVerified  bool               `json:"is_verified"`
}

type UserResponse struct {
	ID          string             `json:"id"`
	Username    string             `json:"username,omitempty"`
	Email       string             `json:"email"`
	Phone       *string            `json:"phone,omitempty"`
	Role        entity.UserRole    `json:"role"`
	AccountType entity.AccountType `json:"account_type"`
	CompanyName *string            `json:"company_name,omitempty"`
	TaxID       *string            `json:"tax_id,omitempty"`
	IsVerified  bool               `json:"is_verified"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Username:    user.Username,
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        user.Role,
		AccountType: user.AccountType,
		CompanyName: user.CompanyName,
		TaxID:       user.TaxID,
		IsVerified:  user.EmailVerified,
		CreatedAt:   user.CreatedAt,
	}
}

func AuthToResponse(user *entity.User, session *entity.Session) AuthResponse {
	resp := AuthResponse{
		UserID:      user.ID.String(),
		Email:       user.Email,
		Username:    user.Username,
		Role:        user.Role,
		AccountType: user.AccountType,
		IsVerified:  user.EmailVerified,
	}

	if session != nil {
		resp.Token = session.Token.String()
		expires := session.ExpiresAt
		resp.ExpiresAt = &expires
	}

	return resp
}
