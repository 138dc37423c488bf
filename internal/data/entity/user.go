package entity

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type AccountType string

const (
	AccountClient  AccountType = "client"
	AccountArtisan AccountType = "artisan"
)

type User struct {
	Base
	Username      string      `db:"username"`
	Email         string      `db:"email"`
	PasswordHash  string      `db:"password"`
	Phone         *string     `db:"phone"`
	Role          UserRole    `db:"role"`
	AccountType   AccountType `db:"account_type"`
	CompanyName   *string     `db:"company_name"`
	TaxID         *string     `db:"tax_id"`
	EmailVerified bool        `db:"email_verified"`
	IsActive      bool        `db:"is_active"`
}
