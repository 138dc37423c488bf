package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Active(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Minute)

	assert.True(t, (&Session{ExpiresAt: now.Add(time.Hour)}).Active(now))
	assert.False(t, (&Session{ExpiresAt: now}).Active(now), "expiry instant is already out")
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}).Active(now))
}

func TestBase_Deleted(t *testing.T) {
	now := time.Now()
	assert.False(t, Base{}.Deleted())
	assert.True(t, Base{DeletedAt: &now}.Deleted())
}
