package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shulsite/api/internal/models"
)

var ErrPageNotFound = errors.New("page not found")

type PageRepository struct {
	pool *pgxpool.Pool
}

func NewPageRepository(pool *pgxpool.Pool) *PageRepository {
	return &PageRepository{pool: pool}
}

func (r *PageRepository) Get(ctx context.Context, slug string) (models.Page, error) {
	const query = `
		SELECT slug, title, content, meta_description, updated_at, updated_by
		FROM pages WHERE slug = $1
	`

	row := r.pool.QueryRow(ctx, query, slug)
	var page models.Page
	if err := row.Scan(
		&page.Slug,
		&page.Title,
		&page.Content,
		&page.MetaDescription,
		&page.UpdatedAt,
		&page.UpdatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Page{}, ErrPageNotFound
		}
		return models.Page{}, err
	}
	return page, nil
}

func (r *PageRepository) List(ctx context.Context) ([]models.Page, error) {
	const query = `
		SELECT slug, title, content, meta_description, updated_at, updated_by
		FROM pages ORDER BY slug
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		var page models.Page
		if err := rows.Scan(
			&page.Slug,
			&page.Title,
			&page.Content,
			&page.MetaDescription,
			&page.UpdatedAt,
			&page.UpdatedBy,
		); err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

func (r *PageRepository) Save(ctx context.Context, page models.Page, userID string) error {
	const query = `
		INSERT INTO pages (slug, title, content, meta_description, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, NOW(), $5)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			meta_description = EXCLUDED.meta_description,
			updated_at = NOW(),
			updated_by = EXCLUDED.updated_by
	`

	_, err := r.pool.Exec(ctx, query,
		page.Slug,
		page.Title,
		page.Content,
		page.MetaDescription,
		nullableID(userID),
	)
	return err
}

func (r *PageRepository) Delete(ctx context.Context, slug string) error {
	const query = `DELETE FROM pages WHERE slug = $1`
	_, err := r.pool.Exec(ctx, query, slug)
	return err
}

func (r *PageRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pages`).Scan(&count)
	return count, err
}
