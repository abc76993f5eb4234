package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shulsite/api/internal/models"
)

type RevisionRepository struct {
	pool *pgxpool.Pool
}

func NewRevisionRepository(pool *pgxpool.Pool) *RevisionRepository {
	return &RevisionRepository{pool: pool}
}

const revisionColumns = `
	r.id, r.content_key, r.old_value, r.new_value, r.content_type,
	r.changed_at, r.changed_by, u.name, r.change_type
`

func (r *RevisionRepository) HistoryForKey(ctx context.Context, contentKey string, limit int) ([]models.ContentRevision, error) {
	const query = `
		SELECT ` + revisionColumns + `
		FROM content_revisions r
		LEFT JOIN users u ON u.id = r.changed_by
		WHERE r.content_key = $1
		ORDER BY r.changed_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, contentKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRevisions(rows)
}

func (r *RevisionRepository) Recent(ctx context.Context, limit int) ([]models.ContentRevision, error) {
	const query = `
		SELECT ` + revisionColumns + `
		FROM content_revisions r
		LEFT JOIN users u ON u.id = r.changed_by
		ORDER BY r.changed_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRevisions(rows)
}

// TrimPerKey keeps the newest keepCount revisions per content key and
// deletes the rest. Periodic housekeeping only.
func (r *RevisionRepository) TrimPerKey(ctx context.Context, keepCount int) (int64, error) {
	const query = `
		DELETE FROM content_revisions
		WHERE id IN (
			SELECT id FROM (
				SELECT id,
				       ROW_NUMBER() OVER (PARTITION BY content_key ORDER BY changed_at DESC) AS rank
				FROM content_revisions
			) ranked
			WHERE ranked.rank > $1
		)
	`

	cmd, err := r.pool.Exec(ctx, query, keepCount)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanRevisions(rows pgx.Rows) ([]models.ContentRevision, error) {
	var revisions []models.ContentRevision
	for rows.Next() {
		var rev models.ContentRevision
		if err := rows.Scan(
			&rev.ID,
			&rev.ContentKey,
			&rev.OldValue,
			&rev.NewValue,
			&rev.ContentType,
			&rev.ChangedAt,
			&rev.ChangedBy,
			&rev.ChangedByName,
			&rev.ChangeType,
		); err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}
