// Package memory holds in-process repositories used by the local flow mode
// and by service tests. They follow the Postgres repositories' semantics,
// including nil, nil for rows that do not exist.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"woodeoo-auth/internal/data/entity"
	"woodeoo-auth/internal/data/repository"

	"github.com/google/uuid"
)

// NewRepository returns a repository set that shares a single clock.
func NewRepository(now func() time.Time) *repository.Repository {
	if now == nil {
		now = time.Now
	}
	return &repository.Repository{
		User:         &UserRepository{now: now, users: make(map[uuid.UUID]*entity.User)},
		Session:      &SessionRepository{now: now, sessions: make(map[string]*entity.Session)},
		Verification: &VerificationRepository{now: now},
	}
}

// ==================== USERS ====================

type UserRepository struct {
	mu    sync.RWMutex
	now   func() time.Time
	users map[uuid.UUID]*entity.User
}

func (r *UserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if !u.Deleted() && strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("create user %s: duplicate email", user.Email)
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *UserRepository) FindByPhone(_ context.Context, phone string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(func(u *entity.User) bool { return u.Phone != nil && *u.Phone == phone }), nil
}

func (r *UserRepository) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	live := r.live()
	sort.Slice(live, func(i, j int) bool { return live[i].CreatedAt.After(live[j].CreatedAt) })
	if offset >= len(live) {
		return nil, nil
	}
	end := offset + limit
	if end > len(live) {
		end = len(live)
	}
	out := make([]*entity.User, 0, end-offset)
	for _, u := range live[offset:end] {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *UserRepository) CountAll(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.live())), nil
}

func (r *UserRepository) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok || existing.Deleted() {
		return fmt.Errorf("update user %s: %w", user.ID, repository.ErrUserNotFound)
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[id]
	if !ok || existing.Deleted() {
		return fmt.Errorf("delete user %s: %w", id, repository.ErrUserNotFound)
	}
	now := r.now()
	existing.DeletedAt = &now
	return nil
}

func (r *UserRepository) find(match func(*entity.User) bool) *entity.User {
	for _, u := range r.users {
		if !u.Deleted() && match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *UserRepository) live() []*entity.User {
	var out []*entity.User
	for _, u := range r.users {
		if !u.Deleted() {
			out = append(out, u)
		}
	}
	return out
}

// ==================== SESSIONS ====================

type SessionRepository struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]*entity.Session
}

func (r *SessionRepository) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.Token.String()] = &cp
	return nil
}

func (r *SessionRepository) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok || !s.Active(r.now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepository) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok || s.RevokedAt != nil {
		return repository.ErrSessionNotFound
	}
	now := r.now()
	s.RevokedAt = &now
	return nil
}

func (r *SessionRepository) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r *SessionRepository) CleanExpiredSessions(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-7 * 24 * time.Hour)
	for token, s := range r.sessions {
		if s.ExpiresAt.Before(cutoff) {
			delete(r.sessions, token)
		}
	}
	return nil
}

// ==================== VERIFICATION CODES ====================

type VerificationRepository struct {
	mu       sync.Mutex
	now      func() time.Time
	codes    []*entity.VerificationCode
	requests map[string]time.Time
}

func (r *VerificationRepository) Create(_ context.Context, code *entity.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *code
	r.codes = append(r.codes, &cp)
	return nil
}

func (r *VerificationRepository) FindLatestActive(_ context.Context, contact string, purpose entity.CodePurpose) (*entity.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for i := len(r.codes) - 1; i >= 0; i-- {
		c := r.codes[i]
		if c.Contact == contact && c.Purpose == purpose && c.UsedAt == nil && !c.Expired(now) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *VerificationRepository) ClaimAttempt(_ context.Context, id uuid.UUID, max int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.byID(id)
	if c == nil {
		return 0, false, fmt.Errorf("claim attempt of code %s: not found", id)
	}
	if c.Attempts >= max {
		return c.Attempts, false, nil
	}
	c.Attempts++
	return c.Attempts, true, nil
}

func (r *VerificationRepository) ReleaseAttempt(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.byID(id)
	if c == nil {
		return fmt.Errorf("release attempt of code %s: not found", id)
	}
	if c.Attempts > 0 {
		c.Attempts--
	}
	return nil
}

func (r *VerificationRepository) MarkUsed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.byID(id)
	if c == nil || c.UsedAt != nil {
		return fmt.Errorf("code %s not found or already used", id)
	}
	now := r.now()
	c.UsedAt = &now
	return nil
}

func (r *VerificationRepository) ClaimRequest(_ context.Context, contact string, purpose entity.CodePurpose, at time.Time, cooldown time.Duration) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.requests == nil {
		r.requests = make(map[string]time.Time)
	}
	key := string(purpose) + "|" + contact
	if last, ok := r.requests[key]; ok && last.After(at.Add(-cooldown)) {
		return &last, nil
	}
	r.requests[key] = at
	return nil, nil
}

func (r *VerificationRepository) byID(id uuid.UUID) *entity.VerificationCode {
	for _, c := range r.codes {
		if c.ID == id {
			return c
		}
	}
	return nil
}
