package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"shulsite/api/internal/models"
	"shulsite/api/internal/repository"
)

// ContentTxRunner is the transactional seam ContentService writes through.
type ContentTxRunner interface {
	InTx(ctx context.Context, fn func(tx repository.ContentTx) error) error
}

// ContentService owns the revision bookkeeping: every write captures the
// prior value and its change type in the same transaction as the value
// itself, so history can never drift from the content.
type ContentService struct {
	store ContentTxRunner
	log   zerolog.Logger
}

func NewContentService(store ContentTxRunner, log zerolog.Logger) *ContentService {
	return &ContentService{
		store: store,
		log:   log,
	}
}

// Set upserts a content value. A key seen for the first time records a
// create revision with no old value; overwriting records an update
// revision carrying the previous value.
func (s *ContentService) Set(
	ctx context.Context,
	key string,
	value string,
	contentType models.ContentType,
	userID string,
) (models.ChangeType, error) {
	var changeType models.ChangeType

	err := s.store.InTx(ctx, func(tx repository.ContentTx) error {
		var oldValue *string

		existing, err := tx.GetForUpdate(ctx, key)
		switch {
		case err == nil:
			oldValue = &existing.Value
			changeType = models.ChangeTypeUpdate
		case errors.Is(err, repository.ErrContentNotFound):
			changeType = models.ChangeTypeCreate
		default:
			return err
		}

		if err := tx.Upsert(ctx, models.SiteContent{
			Key:         key,
			Value:       value,
			ContentType: contentType,
			UpdatedBy:   optionalID(userID),
		}); err != nil {
			return err
		}

		return tx.AddRevision(ctx, models.ContentRevision{
			ContentKey:  key,
			OldValue:    oldValue,
			NewValue:    value,
			ContentType: contentType,
			ChangedBy:   optionalID(userID),
			ChangeType:  changeType,
		})
	})
	if err != nil {
		return "", err
	}

	s.log.Info().
		Str("key", key).
		Str("change_type", string(changeType)).
		Msg("content saved")

	return changeType, nil
}

// Delete removes a content value, recording a delete revision that
// preserves the final value. Deleting an unknown key is a no-op.
func (s *ContentService) Delete(ctx context.Context, key string, userID string) error {
	return s.store.InTx(ctx, func(tx repository.ContentTx) error {
		existing, err := tx.GetForUpdate(ctx, key)
		if errors.Is(err, repository.ErrContentNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Remove(ctx, key); err != nil {
			return err
		}

		return tx.AddRevision(ctx, models.ContentRevision{
			ContentKey:  key,
			OldValue:    &existing.Value,
			NewValue:    "",
			ContentType: existing.ContentType,
			ChangedBy:   optionalID(userID),
			ChangeType:  models.ChangeTypeDelete,
		})
	})
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
