package models

import "time"

type ContentType string

const (
	ContentTypeText ContentType = "text"
	ContentTypeHTML ContentType = "html"
	ContentTypeJSON ContentType = "json"
)

// SiteContent is a single editable content value keyed by a dotted path
// such as "rabbi.name" or "services.shabbat_morning".
type SiteContent struct {
	Key         string
	Value       string
	ContentType ContentType
	UpdatedAt   time.Time
	UpdatedBy   *string
}

// Page is a fully editable static page rendered by the public site.
type Page struct {
	Slug            string
	Title           string
	Content         string
	MetaDescription *string
	UpdatedAt       time.Time
	UpdatedBy       *string
}

type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
	ChangeTypeDelete ChangeType = "delete"
)

// ContentRevision is an immutable record of a content value before and
// after a change. Revisions are written in the same transaction as the
// change itself.
type ContentRevision struct {
	ID            int64
	ContentKey    string
	OldValue      *string
	NewValue      string
	ContentType   ContentType
	ChangedAt     time.Time
	ChangedBy     *string
	ChangedByName *string
	ChangeType    ChangeType
}

// ActivityEntry is one line of the admin dashboard's recent-changes feed.
type ActivityEntry struct {
	Type      string
	Key       string
	UpdatedAt time.Time
}
