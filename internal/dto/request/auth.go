package request

import "strings"

type RegisterRequest struct {
	Username    string `json:"username" validate:"omitempty,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,strongpassword"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,phone"`
	AccountType string `json:"account_type,omitempty" validate:"omitempty,oneof=client artisan"`
	CompanyName string `json:"company_name,omitempty" validate:"omitempty,max=255"`
	TaxID       string `json:"tax_id,omitempty" validate:"omitempty,max=64"`
}

// LoginRequest accepts an email address or a phone number in Email.
// UserAgent and IPAddress are filled by the handler and stored on the session.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,contact"`
	Password string `json:"password" validate:"required"`

	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

// ContactRequest starts a code delivery. Older clients send email instead of contact.
type ContactRequest struct {
	Contact string `json:"contact" validate:"required,contact"`
	Email   string `json:"email,omitempty"`
}

func (r *ContactRequest) Normalize() {
	r.Contact = pickContact(r.Contact, r.Email)
}

type VerifyCodeRequest struct {
	Contact string `json:"contact" validate:"required,contact"`
	Email   string `json:"email,omitempty"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
}

func (r *VerifyCodeRequest) Normalize() {
	r.Contact = pickContact(r.Contact, r.Email)
	r.Code = strings.TrimSpace(r.Code)
}

type ResetPasswordRequest struct {
	Contact     string `json:"contact" validate:"required,contact"`
	Email       string `json:"email,omitempty"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,strongpassword"`
	// LegacyNewPassword is the camelCase key some clients still send.
	LegacyNewPassword string `json:"newPassword,omitempty"`
}

func (r *ResetPasswordRequest) Normalize() {
	r.Contact = pickContact(r.Contact, r.Email)
	r.Code = strings.TrimSpace(r.Code)
	if r.NewPassword == "" {
		r.NewPassword = r.LegacyNewPassword
	}
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func pickContact(contact, email string) string {
	if c := strings.TrimSpace(contact); c != "" {
		return c
	}
	return strings.TrimSpace(email)
}
