package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"woodeoo-auth/internal/data/entity"
	"woodeoo-auth/internal/data/repository/memory"
	"woodeoo-auth/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedUsers(t *testing.T, n int) (UserService, []uuid.UUID) {
	t.Helper()
	repo := memory.NewRepository(nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		ids[i] = uuid.New()
		require.NoError(t, repo.User.Create(context.Background(), &entity.User{
			Base:        entity.Base{ID: ids[i], CreatedAt: base.Add(time.Duration(i) * time.Minute)},
			Email:       fmt.Sprintf("user%d@woodeoo.com", i),
			Role:        entity.RoleUser,
			AccountType: entity.AccountClient,
			IsActive:    true,
		}))
	}
	return NewUserService(repo.User, zap.NewNop()), ids
}

func TestGetAllUsers_Paginates(t *testing.T) {
	svc, _ := seedUsers(t, 12)

	page, err := svc.GetAllUsers(context.Background(), &request.PaginatedRequest{Page: 2, PerPage: 5})
	require.NoError(t, err)

	assert.Len(t, page.Data, 5)
	assert.Equal(t, int64(12), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	// newest first: page 2 starts at the 6th newest
	assert.Equal(t, "user6@woodeoo.com", page.Data[0].Email)
}

func TestGetProfileAndDelete(t *testing.T) {
	svc, ids := seedUsers(t, 2)
	ctx := context.Background()

	profile, err := svc.GetProfile(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "user0@woodeoo.com", profile.Email)

	require.NoError(t, svc.DeleteUser(ctx, ids[0].String()))
	assert.Equal(t, ENOTFOUND, ErrorCode(svc.DeleteUser(ctx, ids[0].String())))
	assert.Equal(t, EINVALID, ErrorCode(svc.DeleteUser(ctx, "42")))

	_, err = svc.GetProfile(ctx, ids[0])
	assert.Equal(t, ENOTFOUND, ErrorCode(err))
}
