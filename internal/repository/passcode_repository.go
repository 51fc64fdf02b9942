package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/redemption-intake/internal/domain"
)

// PasscodeRepository encapsulates persistence for mirrored OTP records.
// Records are never deleted; expired rows stay behind for audit.
type PasscodeRepository interface {
	Create(ctx context.Context, code *domain.Passcode) error
	// FindValidUser returns the newest user-category record matching email
	// and code that is verified and unexpired. pgx.ErrNoRows when absent.
	// Read-only: the same code may authorize repeatedly until expiry.
	FindValidUser(ctx context.Context, email, code string) (*domain.Passcode, error)
	// ConsumeAdmin atomically marks an unconsumed, unexpired admin record
	// consumed. Returns false when no such record exists, which covers both
	// invalid codes and replays. Implemented as a single conditional update:
	// two concurrent callers must never both pass.
	ConsumeAdmin(ctx context.Context, code string) (bool, error)
	// MarkVerified flags matching unexpired records verified. A no-op when
	// nothing matches.
	MarkVerified(ctx context.Context, email, code string, category domain.PasscodeCategory) error
}

type passcodeRepository struct {
	pool *pgxpool.Pool
}

// NewPasscodeRepository returns a Postgres-backed implementation.
func NewPasscodeRepository(pool *pgxpool.Pool) PasscodeRepository {
	return &passcodeRepository{pool: pool}
}

func (r *passcodeRepository) Create(ctx context.Context, code *domain.Passcode) error {
	const query = `
        INSERT INTO otps (email, otp, type, expires_at, verified, is_used)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		code.Email,
		code.Code,
		code.Category,
		code.ExpiresAt,
		code.Verified,
		code.Consumed,
	).Scan(&code.ID, &code.CreatedAt)
}

func (r *passcodeRepository) FindValidUser(ctx context.Context, email, code string) (*domain.Passcode, error) {
	const query = `
        SELECT id, email, otp, type, created_at, expires_at, verified, is_used
        FROM otps
        WHERE email=$1 AND otp=$2 AND type=$3 AND verified=TRUE AND expires_at > NOW()
        ORDER BY created_at DESC
        LIMIT 1`

	var rec domain.Passcode
	if err := r.pool.QueryRow(ctx, query, email, code, domain.PasscodeCategoryUser).Scan(
		&rec.ID,
		&rec.Email,
		&rec.Code,
		&rec.Category,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&rec.Verified,
		&rec.Consumed,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *passcodeRepository) ConsumeAdmin(ctx context.Context, code string) (bool, error) {
	const query = `
        UPDATE otps SET is_used=TRUE
        WHERE id = (
            SELECT id FROM otps
            WHERE otp=$1 AND type=$2 AND is_used=FALSE AND expires_at > NOW()
            ORDER BY created_at DESC
            LIMIT 1
            FOR UPDATE SKIP LOCKED
        )`

	cmd, err := r.pool.Exec(ctx, query, code, domain.PasscodeCategoryAdmin)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *passcodeRepository) MarkVerified(ctx context.Context, email, code string, category domain.PasscodeCategory) error {
	const query = `
        UPDATE otps SET verified=TRUE
        WHERE email=$1 AND otp=$2 AND type=$3 AND expires_at > NOW()`

	_, err := r.pool.Exec(ctx, query, email, code, category)
	return err
}
