package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"woodeoo-auth/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCode(t *testing.T, repo *VerificationRepository, now time.Time) *entity.VerificationCode {
	t.Helper()
	code := &entity.VerificationCode{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		UserID:     uuid.New(),
		Contact:    "jane@woodeoo.com",
		Channel:    entity.ChannelEmail,
		Purpose:    entity.PurposePasswordReset,
		CodeHash:   "hash",
		ExpiresAt:  now.Add(10 * time.Minute),
	}
	require.NoError(t, repo.Create(context.Background(), code))
	return code
}

func TestVerificationRepository_ClaimAttemptStopsAtMax(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &VerificationRepository{now: func() time.Time { return now }}
	code := newCode(t, repo, now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.ClaimAttempt(context.Background(), code.ID, 5)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, claimed)
	attempts, ok, err := repo.ClaimAttempt(context.Background(), code.ID, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 5, attempts)

	require.NoError(t, repo.ReleaseAttempt(context.Background(), code.ID))
	attempts, ok, err = repo.ClaimAttempt(context.Background(), code.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, attempts)

	_, _, err = repo.ClaimAttempt(context.Background(), uuid.New(), 5)
	assert.Error(t, err)
}

func TestVerificationRepository_ClaimRequest(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &VerificationRepository{now: func() time.Time { return start }}
	ctx := context.Background()

	last, err := repo.ClaimRequest(ctx, "ghost@woodeoo.com", entity.PurposePasswordReset, start, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, last, "first request is recorded")

	last, err = repo.ClaimRequest(ctx, "ghost@woodeoo.com", entity.PurposePasswordReset, start.Add(30*time.Second), time.Minute)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, start, *last)

	last, err = repo.ClaimRequest(ctx, "ghost@woodeoo.com", entity.PurposeEmailVerification, start.Add(30*time.Second), time.Minute)
	require.NoError(t, err)
	assert.Nil(t, last, "purposes have separate cooldowns")

	last, err = repo.ClaimRequest(ctx, "ghost@woodeoo.com", entity.PurposePasswordReset, start.Add(time.Minute), time.Minute)
	require.NoError(t, err)
	assert.Nil(t, last, "cooldown ends after a full minute")
}
