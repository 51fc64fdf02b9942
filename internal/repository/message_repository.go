package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/redemption-intake/internal/domain"
)

// MessageRepository encapsulates conversation persistence.
//
// Orderings differ on purpose: the seller view reads a conversation oldest
// first, operator listings read newest first.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByUserAsc(ctx context.Context, userID int64) ([]domain.Message, error)
	ListByUserDesc(ctx context.Context, userID int64) ([]domain.Message, error)
	ListAllDesc(ctx context.Context) ([]domain.Message, error)
	Delete(ctx context.Context, id int64) error
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository returns a Postgres-backed implementation.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (user_id, content, sender)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		msg.UserID,
		msg.Content,
		msg.Sender,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *messageRepository) ListByUserAsc(ctx context.Context, userID int64) ([]domain.Message, error) {
	const query = `
        SELECT id, user_id, content, sender, created_at
        FROM messages WHERE user_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, userID)
}

func (r *messageRepository) ListByUserDesc(ctx context.Context, userID int64) ([]domain.Message, error) {
	const query = `
        SELECT id, user_id, content, sender, created_at
        FROM messages WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *messageRepository) ListAllDesc(ctx context.Context) ([]domain.Message, error) {
	const query = `
        SELECT id, user_id, content, sender, created_at
        FROM messages ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *messageRepository) list(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.Content,
			&msg.Sender,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
