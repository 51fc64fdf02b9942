package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/redemption-intake/internal/domain"
)

// SubmissionRepository encapsulates redemption claim persistence.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Submission, error)
	ListAllWithOwner(ctx context.Context) ([]domain.SubmissionWithOwner, error)
	GetWithOwner(ctx context.Context, id int64) (*domain.SubmissionWithOwner, error)
	// UpdateStatus sets status and advances updated_at, returning the updated
	// row. pgx.ErrNoRows when the submission does not exist. Status values
	// outside the enumeration are rejected by the table constraint before
	// any write.
	UpdateStatus(ctx context.Context, id int64, status domain.SubmissionStatus) (*domain.Submission, error)
}

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository returns a Postgres-backed implementation.
func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

const submissionColumns = `id, user_id, ticket_user_name, gc_code, gc_phone,
    ticket_number, upi_id, amount, proof_video_url, status, created_at, updated_at`

func (r *submissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	const query = `
        INSERT INTO submissions (user_id, ticket_user_name, gc_code, gc_phone,
            ticket_number, upi_id, amount, proof_video_url, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		sub.UserID,
		sub.TicketUserName,
		sub.GCCode,
		sub.GCPhone,
		sub.TicketNumber,
		sub.UPIID,
		sub.Amount,
		sub.ProofVideoURL,
		sub.Status,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Submission, error) {
	query := `SELECT ` + submissionColumns + `
        FROM submissions WHERE user_id=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func (r *submissionRepository) ListAllWithOwner(ctx context.Context) ([]domain.SubmissionWithOwner, error) {
	const query = `
        SELECT s.id, s.user_id, s.ticket_user_name, s.gc_code, s.gc_phone,
               s.ticket_number, s.upi_id, s.amount, s.proof_video_url, s.status,
               s.created_at, s.updated_at, u.email
        FROM submissions s
        JOIN users u ON u.id = s.user_id
        ORDER BY s.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SubmissionWithOwner
	for rows.Next() {
		var item domain.SubmissionWithOwner
		if err := scanSubmissionFields(rows, &item.Submission, &item.OwnerEmail); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *submissionRepository) GetWithOwner(ctx context.Context, id int64) (*domain.SubmissionWithOwner, error) {
	const query = `
        SELECT s.id, s.user_id, s.ticket_user_name, s.gc_code, s.gc_phone,
               s.ticket_number, s.upi_id, s.amount, s.proof_video_url, s.status,
               s.created_at, s.updated_at, u.email
        FROM submissions s
        JOIN users u ON u.id = s.user_id
        WHERE s.id=$1`

	var item domain.SubmissionWithOwner
	row := r.pool.QueryRow(ctx, query, id)
	if err := scanSubmissionFields(row, &item.Submission, &item.OwnerEmail); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id int64, status domain.SubmissionStatus) (*domain.Submission, error) {
	query := `
        UPDATE submissions SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING ` + submissionColumns

	var sub domain.Submission
	if err := scanSubmissionFields(r.pool.QueryRow(ctx, query, status, id), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func scanSubmissions(rows pgx.Rows) ([]domain.Submission, error) {
	var result []domain.Submission
	for rows.Next() {
		var sub domain.Submission
		if err := scanSubmissionFields(rows, &sub); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

func scanSubmissionFields(row pgx.Row, sub *domain.Submission, extra ...any) error {
	dest := []any{
		&sub.ID,
		&sub.UserID,
		&sub.TicketUserName,
		&sub.GCCode,
		&sub.GCPhone,
		&sub.TicketNumber,
		&sub.UPIID,
		&sub.Amount,
		&sub.ProofVideoURL,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}
