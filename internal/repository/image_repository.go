package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shulsite/api/internal/models"
)

var ErrImageNotFound = errors.New("image not found")

type ImageRepository struct {
	pool *pgxpool.Pool
}

func NewImageRepository(pool *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

func (r *ImageRepository) Create(ctx context.Context, image models.ImageRecord) error {
	const query = `
		INSERT INTO images (id, filename, object_key, alt_text, size_bytes, mime_type, uploaded_at, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7)
	`

	_, err := r.pool.Exec(ctx, query,
		image.ID,
		image.Filename,
		image.ObjectKey,
		image.AltText,
		image.SizeBytes,
		image.MimeType,
		image.UploadedBy,
	)
	return err
}

func (r *ImageRepository) GetByID(ctx context.Context, id string) (models.ImageRecord, error) {
	const query = `
		SELECT id, filename, object_key, alt_text, size_bytes, mime_type, uploaded_at, uploaded_by
		FROM images WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var image models.ImageRecord
	if err := row.Scan(
		&image.ID,
		&image.Filename,
		&image.ObjectKey,
		&image.AltText,
		&image.SizeBytes,
		&image.MimeType,
		&image.UploadedAt,
		&image.UploadedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ImageRecord{}, ErrImageNotFound
		}
		return models.ImageRecord{}, err
	}
	return image, nil
}

func (r *ImageRepository) List(ctx context.Context) ([]models.ImageRecord, error) {
	const query = `
		SELECT id, filename, object_key, alt_text, size_bytes, mime_type, uploaded_at, uploaded_by
		FROM images ORDER BY uploaded_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ImageRecord
	for rows.Next() {
		var image models.ImageRecord
		if err := rows.Scan(
			&image.ID,
			&image.Filename,
			&image.ObjectKey,
			&image.AltText,
			&image.SizeBytes,
			&image.MimeType,
			&image.UploadedAt,
			&image.UploadedBy,
		); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *ImageRepository) UpdateAltText(ctx context.Context, id string, altText string) error {
	const query = `UPDATE images SET alt_text = $2 WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, altText)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

// Delete removes the row and returns the object key so the caller can
// drop the stored object too.
func (r *ImageRepository) Delete(ctx context.Context, id string) (string, error) {
	const query = `DELETE FROM images WHERE id = $1 RETURNING object_key`

	var objectKey string
	if err := r.pool.QueryRow(ctx, query, id).Scan(&objectKey); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrImageNotFound
		}
		return "", err
	}
	return objectKey, nil
}

func (r *ImageRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM images`).Scan(&count)
	return count, err
}
