package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyContact(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  ContactKind
	}{
		{"simple email", "jane@example.com", ContactEmail},
		{"email with subdomain", "jane.doe@mail.example.co", ContactEmail},
		{"email with plus", "jane+wood@example.fr", ContactEmail},
		{"phone digits", "0612345678", ContactPhone},
		{"phone with plus", "+33612345678", ContactPhone},
		{"phone min length", "12345678", ContactPhone},
		{"phone max length", "123456789012345", ContactPhone},
		{"phone too short", "1234567", ContactInvalid},
		{"phone too long", "1234567890123456", ContactInvalid},
		{"phone with spaces", "06 12 34 56 78", ContactInvalid},
		{"double plus", "++33612345678", ContactInvalid},
		{"email without tld", "jane@example", ContactInvalid},
		{"email with space", "jane doe@example.com", ContactInvalid},
		{"leading space not trimmed", " jane@example.com", ContactInvalid},
		{"empty", "", ContactInvalid},
		{"plain word", "artisan", ContactInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyContact(tt.value))
		})
	}
}

func TestContactKind_Valid(t *testing.T) {
	assert.True(t, ContactEmail.Valid())
	assert.True(t, ContactPhone.Valid())
	assert.False(t, ContactInvalid.Valid())
}
