package models

import "time"

// ImageRecord is the database side of an uploaded image; the bytes live
// in the object store under ObjectKey.
type ImageRecord struct {
	ID         string
	Filename   string
	ObjectKey  string
	AltText    *string
	SizeBytes  int64
	MimeType   string
	UploadedAt time.Time
	UploadedBy *string
}
