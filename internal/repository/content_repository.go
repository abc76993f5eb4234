package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shulsite/api/internal/models"
)

var ErrContentNotFound = errors.New("content not found")

type ContentRepository struct {
	pool *pgxpool.Pool
}

func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

func (r *ContentRepository) Get(ctx context.Context, key string) (models.SiteContent, error) {
	const query = `
		SELECT key, value, content_type, updated_at, updated_by
		FROM site_content WHERE key = $1
	`

	row := r.pool.QueryRow(ctx, query, key)
	var content models.SiteContent
	if err := row.Scan(
		&content.Key,
		&content.Value,
		&content.ContentType,
		&content.UpdatedAt,
		&content.UpdatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SiteContent{}, ErrContentNotFound
		}
		return models.SiteContent{}, err
	}
	return content, nil
}

// ListByPrefix returns all values under a dotted prefix, e.g. "rabbi."
// for every rabbi field. An empty prefix lists everything.
func (r *ContentRepository) ListByPrefix(ctx context.Context, prefix string) ([]models.SiteContent, error) {
	const query = `
		SELECT key, value, content_type, updated_at, updated_by
		FROM site_content
		WHERE key LIKE $1 || '%'
		ORDER BY key
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.SiteContent
	for rows.Next() {
		var content models.SiteContent
		if err := rows.Scan(
			&content.Key,
			&content.Value,
			&content.ContentType,
			&content.UpdatedAt,
			&content.UpdatedBy,
		); err != nil {
			return nil, err
		}
		items = append(items, content)
	}
	return items, rows.Err()
}

// ContentTx is the per-transaction surface ContentService mutates through.
// GetForUpdate row-locks the key so concurrent writers serialize.
type ContentTx interface {
	GetForUpdate(ctx context.Context, key string) (models.SiteContent, error)
	Upsert(ctx context.Context, content models.SiteContent) error
	Remove(ctx context.Context, key string) error
	AddRevision(ctx context.Context, rev models.ContentRevision) error
}

// InTx runs fn inside a transaction: commit on nil, rollback otherwise.
func (r *ContentRepository) InTx(ctx context.Context, fn func(tx ContentTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&contentTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type contentTx struct {
	tx pgx.Tx
}

func (t *contentTx) GetForUpdate(ctx context.Context, key string) (models.SiteContent, error) {
	const query = `
		SELECT key, value, content_type, updated_at, updated_by
		FROM site_content WHERE key = $1 FOR UPDATE
	`

	row := t.tx.QueryRow(ctx, query, key)
	var content models.SiteContent
	if err := row.Scan(
		&content.Key,
		&content.Value,
		&content.ContentType,
		&content.UpdatedAt,
		&content.UpdatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SiteContent{}, ErrContentNotFound
		}
		return models.SiteContent{}, err
	}
	return content, nil
}

func (t *contentTx) Upsert(ctx context.Context, content models.SiteContent) error {
	const query = `
		INSERT INTO site_content (key, value, content_type, updated_at, updated_by)
		VALUES ($1, $2, $3, NOW(), $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			content_type = EXCLUDED.content_type,
			updated_at = NOW(),
			updated_by = EXCLUDED.updated_by
	`

	_, err := t.tx.Exec(ctx, query,
		content.Key,
		content.Value,
		content.ContentType,
		content.UpdatedBy,
	)
	return err
}

func (t *contentTx) Remove(ctx context.Context, key string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM site_content WHERE key = $1`, key)
	return err
}

func (t *contentTx) AddRevision(ctx context.Context, rev models.ContentRevision) error {
	const query = `
		INSERT INTO content_revisions (content_key, old_value, new_value, content_type, changed_by, change_type)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := t.tx.Exec(ctx, query,
		rev.ContentKey,
		rev.OldValue,
		rev.NewValue,
		rev.ContentType,
		rev.ChangedBy,
		rev.ChangeType,
	)
	return err
}

func (r *ContentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM site_content`).Scan(&count)
	return count, err
}

// RecentActivity merges the latest content and page updates for the
// admin dashboard.
func (r *ContentRepository) RecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	const query = `
		SELECT type, key, updated_at FROM (
			SELECT 'content' AS type, key, updated_at FROM site_content
			UNION ALL
			SELECT 'page' AS type, slug AS key, updated_at FROM pages
		) activity
		ORDER BY updated_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ActivityEntry
	for rows.Next() {
		var entry models.ActivityEntry
		if err := rows.Scan(&entry.Type, &entry.Key, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
