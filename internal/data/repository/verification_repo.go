package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"woodeoo-auth/internal/data/entity"
	"woodeoo-auth/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type VerificationRepository interface {
	Create(ctx context.Context, code *entity.VerificationCode) error
	// FindLatestActive returns the newest unused, unexpired code for the
	// contact and purpose, or nil.
	FindLatestActive(ctx context.Context, contact string, purpose entity.CodePurpose) (*entity.VerificationCode, error)
	// ClaimAttempt counts one check against the code in a single statement.
	// It reports false when max attempts were already spent.
	ClaimAttempt(ctx context.Context, id uuid.UUID, max int) (int, bool, error)
	// ReleaseAttempt gives back the attempt claimed by a matching check.
	ReleaseAttempt(ctx context.Context, id uuid.UUID) error
	MarkUsed(ctx context.Context, id uuid.UUID) error
	// ClaimRequest records a code request for the contact unless one was made
	// within cooldown. It returns nil when the request was recorded, otherwise
	// the time of the request still holding the cooldown. Contacts without an
	// account are recorded too.
	ClaimRequest(ctx context.Context, contact string, purpose entity.CodePurpose, at time.Time, cooldown time.Duration) (*time.Time, error)
}

type verificationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVerificationRepository(db database.PgxIface, log *zap.Logger) VerificationRepository {
	return &verificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "verification_code")),
	}
}

func (r *verificationRepository) Create(ctx context.Context, code *entity.VerificationCode) error {
	query := `
		INSERT INTO verification_codes (id, user_id, contact, channel, purpose,
		                                code_hash, expires_at, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		code.ID,
		code.UserID,
		code.Contact,
		code.Channel,
		code.Purpose,
		code.CodeHash,
		code.ExpiresAt,
		code.Attempts,
		code.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create verification code",
			zap.Error(err),
			zap.String("purpose", string(code.Purpose)),
			zap.String("channel", string(code.Channel)),
		)
		return fmt.Errorf("create verification code: %w", err)
	}

	return nil
}

func (r *verificationRepository) FindLatestActive(ctx context.Context, contact string, purpose entity.CodePurpose) (*entity.VerificationCode, error) {
	query := `
		SELECT id, user_id, contact, channel, purpose, code_hash,
		       expires_at, attempts, used_at, created_at
		FROM verification_codes
		WHERE contact = $1
		  AND purpose = $2
		  AND used_at IS NULL
		  AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	var code entity.VerificationCode
	err := r.db.QueryRow(ctx, query, contact, purpose).Scan(
		&code.ID,
		&code.UserID,
		&code.Contact,
		&code.Channel,
		&code.Purpose,
		&code.CodeHash,
		&code.ExpiresAt,
		&code.Attempts,
		&code.UsedAt,
		&code.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active verification code",
			zap.Error(err),
			zap.String("purpose", string(purpose)),
		)
		return nil, fmt.Errorf("find active code for purpose %s: %w", purpose, err)
	}

	return &code, nil
}

func (r *verificationRepository) ClaimAttempt(ctx context.Context, id uuid.UUID, max int) (int, bool, error) {
	query := `
		UPDATE verification_codes
		SET attempts = attempts + 1
		WHERE id = $1 AND attempts < $2
		RETURNING attempts
	`

	var attempts int
	err := r.db.QueryRow(ctx, query, id, max).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return max, false, nil
	}
	if err != nil {
		r.log.Error("Failed to claim attempt",
			zap.Error(err),
			zap.String("code_id", id.String()),
		)
		return 0, false, fmt.Errorf("claim attempt of code %s: %w", id.String(), err)
	}

	return attempts, true, nil
}

func (r *verificationRepository) ReleaseAttempt(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE verification_codes
		SET attempts = attempts - 1
		WHERE id = $1 AND attempts > 0
	`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		r.log.Error("Failed to release attempt",
			zap.Error(err),
			zap.String("code_id", id.String()),
		)
		return fmt.Errorf("release attempt of code %s: %w", id.String(), err)
	}

	return nil
}

func (r *verificationRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE verification_codes
		SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark code as used",
			zap.Error(err),
			zap.String("code_id", id.String()),
		)
		return fmt.Errorf("mark code %s as used: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("code %s not found or already used", id.String())
	}

	return nil
}

func (r *verificationRepository) ClaimRequest(ctx context.Context, contact string, purpose entity.CodePurpose, at time.Time, cooldown time.Duration) (*time.Time, error) {
	query := `
		INSERT INTO code_requests (contact, purpose, requested_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (contact, purpose) DO UPDATE
		SET requested_at = EXCLUDED.requested_at
		WHERE code_requests.requested_at <= $4
		RETURNING requested_at
	`

	var recorded time.Time
	err := r.db.QueryRow(ctx, query, contact, purpose, at, at.Add(-cooldown)).Scan(&recorded)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.log.Error("Failed to record code request", zap.Error(err), zap.String("purpose", string(purpose)))
		return nil, fmt.Errorf("record code request for purpose %s: %w", purpose, err)
	}

	// The conflicting row is inside the cooldown.
	var last time.Time
	err = r.db.QueryRow(ctx,
		`SELECT requested_at FROM code_requests WHERE contact = $1 AND purpose = $2`,
		contact, purpose,
	).Scan(&last)
	if err != nil {
		r.log.Error("Failed to read code request", zap.Error(err))
		return nil, fmt.Errorf("read code request for purpose %s: %w", purpose, err)
	}

	return &last, nil
}
