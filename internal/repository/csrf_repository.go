package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shulsite/api/internal/models"
)

type CSRFTokenRepository struct {
	pool *pgxpool.Pool
}

func NewCSRFTokenRepository(pool *pgxpool.Pool) *CSRFTokenRepository {
	return &CSRFTokenRepository{pool: pool}
}

func (r *CSRFTokenRepository) Create(ctx context.Context, token models.CSRFToken) error {
	const query = `
		INSERT INTO csrf_tokens (token, session_id, expires_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query,
		token.Token,
		token.SessionID,
		token.ExpiresAt,
	)
	return err
}

// Valid is true only when the token exists for exactly this session and
// has not expired. A correct token presented with another session's id
// fails.
func (r *CSRFTokenRepository) Valid(ctx context.Context, token string, sessionID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM csrf_tokens
			WHERE token = $1 AND session_id = $2 AND expires_at > NOW()
		)
	`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, token, sessionID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *CSRFTokenRepository) DeleteForSession(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM csrf_tokens WHERE session_id = $1`
	_, err := r.pool.Exec(ctx, query, sessionID)
	return err
}

func (r *CSRFTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM csrf_tokens WHERE expires_at < NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
