package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"regexp"

	"github.com/rs/zerolog"

	"shulsite/api/internal/config"
	"shulsite/api/internal/ids"
	"shulsite/api/internal/media/sniffer"
	"shulsite/api/internal/media/svg"
	"shulsite/api/internal/models"
	"shulsite/api/internal/storage"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

type ImageStore interface {
	Create(ctx context.Context, image models.ImageRecord) error
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

type UploadService struct {
	images ImageStore
	store  *storage.ObjectStore
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewUploadService(images ImageStore, store *storage.ObjectStore, cfg *config.AppConfig, log zerolog.Logger) *UploadService {
	return &UploadService{
		images: images,
		store:  store,
		cfg:    cfg,
		log:    log,
	}
}

type UploadInput struct {
	User    models.User
	File    multipart.File
	Header  *multipart.FileHeader
	AltText string
}

// Upload validates the payload by sniffing its magic bytes (the declared
// Content-Type is advisory only), sanitizes SVGs, stores the object, and
// records the metadata row.
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (models.ImageRecord, error) {
	if input.File == nil || input.Header == nil {
		return models.ImageRecord{}, errors.New("invalid file payload")
	}

	if input.Header.Size > s.cfg.Storage.MaxUploadBytes {
		return models.ImageRecord{}, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.cfg.Storage.MaxUploadBytes+1))
	if err != nil {
		return models.ImageRecord{}, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > s.cfg.Storage.MaxUploadBytes {
		return models.ImageRecord{}, ErrFileTooLarge
	}
	if len(data) == 0 {
		return models.ImageRecord{}, errors.New("empty file")
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return models.ImageRecord{}, ErrUnsupportedType
	}

	if result.Type == sniffer.TypeSVG {
		clean, err := svg.Sanitize(data)
		if err != nil {
			return models.ImageRecord{}, fmt.Errorf("sanitize svg: %w", err)
		}
		data = clean
	}

	imageID := ids.New()
	safeName := unsafeNameChars.ReplaceAllString(input.Header.Filename, "_")
	objectKey := fmt.Sprintf("uploads/%s-%s", imageID, safeName)

	if err := s.store.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), result.MIME); err != nil {
		return models.ImageRecord{}, fmt.Errorf("store object: %w", err)
	}

	image := models.ImageRecord{
		ID:        imageID,
		Filename:  input.Header.Filename,
		ObjectKey: objectKey,
		SizeBytes: int64(len(data)),
		MimeType:  result.MIME,
	}
	if input.AltText != "" {
		image.AltText = &input.AltText
	}
	if input.User.ID != "" {
		image.UploadedBy = &input.User.ID
	}

	if err := s.images.Create(ctx, image); err != nil {
		// Best effort: don't leave an orphaned object behind.
		if rmErr := s.store.Remove(ctx, objectKey); rmErr != nil {
			s.log.Error().Err(rmErr).Str("object_key", objectKey).Msg("remove orphaned object")
		}
		return models.ImageRecord{}, fmt.Errorf("save metadata: %w", err)
	}

	s.log.Info().
		Str("image_id", imageID).
		Str("mime", result.MIME).
		Int("size", len(data)).
		Msg("image uploaded")

	return image, nil
}
