// Package validation holds the pure input rules shared by the HTTP API and the
// page flows: contact classification and the password strength policy.
package validation

import "regexp"

// ContactKind is the channel a contact string routes to.
type ContactKind string

const (
	ContactEmail   ContactKind = "email"
	ContactPhone   ContactKind = "phone"
	ContactInvalid ContactKind = "invalid"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

// ClassifyContact reports whether value is an email address, a phone number or
// neither. The value is matched as typed: no trimming, no case folding.
func ClassifyContact(value string) ContactKind {
	switch {
	case emailPattern.MatchString(value):
		return ContactEmail
	case phonePattern.MatchString(value):
		return ContactPhone
	default:
		return ContactInvalid
	}
}

func IsEmail(value string) bool {
	return emailPattern.MatchString(value)
}

func IsPhone(value string) bool {
	return phonePattern.MatchString(value)
}

func (k ContactKind) Valid() bool {
	return k == ContactEmail || k == ContactPhone
}
