package entity

import (
	"time"

	"github.com/google/uuid"
)

type CodePurpose string

const (
	PurposeEmailVerification CodePurpose = "email_verification"
	PurposePasswordReset     CodePurpose = "password_reset"
)

// Channel is how a code reaches its contact.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// VerificationCode stores only the sha256 hash of the code sent.
type VerificationCode struct {
	BaseSimple
	UserID    uuid.UUID   `db:"user_id"`
	Contact   string      `db:"contact"`
	Channel   Channel     `db:"channel"`
	Purpose   CodePurpose `db:"purpose"`
	CodeHash  string      `db:"code_hash"`
	ExpiresAt time.Time   `db:"expires_at"`
	Attempts  int         `db:"attempts"`
	UsedAt    *time.Time  `db:"used_at"`
}

func (c *VerificationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
