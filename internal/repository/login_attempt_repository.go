package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shulsite/api/internal/models"
)

type LoginAttemptRepository struct {
	pool *pgxpool.Pool
}

func NewLoginAttemptRepository(pool *pgxpool.Pool) *LoginAttemptRepository {
	return &LoginAttemptRepository{pool: pool}
}

// RemainingLockout reports how many seconds of lockout are left for the
// address, or 0 if it is not locked. A locked_until in the past counts
// as expired; the row is left for RecordFailure or Cleanup to reset.
func (r *LoginAttemptRepository) RemainingLockout(ctx context.Context, ipAddress string) (int, error) {
	const query = `
		SELECT CEIL(EXTRACT(EPOCH FROM locked_until - NOW()))::int
		FROM login_attempts
		WHERE ip_address = $1 AND locked_until IS NOT NULL AND locked_until > NOW()
	`

	var remaining int
	if err := r.pool.QueryRow(ctx, query, ipAddress).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return remaining, nil
}

// RecordFailure applies the sliding-window policy in a single atomic
// statement: a failure after the window has elapsed resets the counter
// to 1, otherwise the counter increments, and crossing maxAttempts sets
// locked_until. Concurrent failures from one address serialize on the
// row, so the threshold cannot be skipped.
func (r *LoginAttemptRepository) RecordFailure(
	ctx context.Context,
	ipAddress string,
	window time.Duration,
	maxAttempts int,
	lockout time.Duration,
) (models.LoginAttempt, error) {
	const query = `
		INSERT INTO login_attempts (ip_address, attempts, first_attempt_at, locked_until)
		VALUES ($1, 1, NOW(), NULL)
		ON CONFLICT (ip_address) DO UPDATE SET
			attempts = CASE
				WHEN login_attempts.first_attempt_at <= NOW() - make_interval(secs => $2) THEN 1
				ELSE login_attempts.attempts + 1
			END,
			first_attempt_at = CASE
				WHEN login_attempts.first_attempt_at <= NOW() - make_interval(secs => $2) THEN NOW()
				ELSE login_attempts.first_attempt_at
			END,
			locked_until = CASE
				WHEN login_attempts.first_attempt_at <= NOW() - make_interval(secs => $2) THEN NULL
				WHEN login_attempts.attempts + 1 >= $3 THEN NOW() + make_interval(secs => $4)
				ELSE login_attempts.locked_until
			END
		RETURNING ip_address, attempts, first_attempt_at, locked_until
	`

	row := r.pool.QueryRow(ctx, query,
		ipAddress,
		window.Seconds(),
		maxAttempts,
		lockout.Seconds(),
	)

	var attempt models.LoginAttempt
	if err := row.Scan(
		&attempt.IPAddress,
		&attempt.Attempts,
		&attempt.FirstAttemptAt,
		&attempt.LockedUntil,
	); err != nil {
		return models.LoginAttempt{}, err
	}
	return attempt, nil
}

// Clear wipes the address's failure history after a successful login.
func (r *LoginAttemptRepository) Clear(ctx context.Context, ipAddress string) error {
	const query = `DELETE FROM login_attempts WHERE ip_address = $1`
	_, err := r.pool.Exec(ctx, query, ipAddress)
	return err
}

// DeleteStale drops rows whose window has elapsed and which are not
// currently locked. Safe to run at any time.
func (r *LoginAttemptRepository) DeleteStale(ctx context.Context, window time.Duration) (int64, error) {
	const query = `
		DELETE FROM login_attempts
		WHERE first_attempt_at <= NOW() - make_interval(secs => $1)
		  AND (locked_until IS NULL OR locked_until < NOW())
	`
	cmd, err := r.pool.Exec(ctx, query, window.Seconds())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
