package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== VERIFICATION CODE ====================

// GenerateCode returns a numeric code of the given length drawn from crypto/rand.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	ten := big.NewInt(10)
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}

	return string(code), nil
}

// HashCode returns the hex SHA-256 of a verification code. Only hashes are stored.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// CodeMatches compares a submitted code against a stored hash in constant time.
func CodeMatches(code, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashCode(code)), []byte(storedHash)) == 1
}
