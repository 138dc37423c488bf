package flow

import (
	"context"
	"fmt"
	"time"
)

// RegisterInput is what the registration and signup pages send.
type RegisterInput struct {
	Username    string `json:"username,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Password    string `json:"password"`
	AccountType string `json:"account_type,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
}

// Session is returned by a successful login.
type Session struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Gateway is the backend the page flows talk to. Implementations return
// *RemoteError when the backend rejected the request; any other error is
// treated as a network failure.
type Gateway interface {
	Register(ctx context.Context, in RegisterInput) error
	Login(ctx context.Context, email, password string) (*Session, error)
	ForgotPassword(ctx context.Context, contact string) error
	ResendCode(ctx context.Context, contact string) error
	VerifyCode(ctx context.Context, contact, code string) error
	ResetPassword(ctx context.Context, contact, code, newPassword string) error
}

// RemoteError is a request the backend answered with a failure status.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request rejected with status %d", e.Status)
	}
	return fmt.Sprintf("request rejected with status %d: %s", e.Status, e.Message)
}
