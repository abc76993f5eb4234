package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shulsite/api/internal/models"
	"shulsite/api/internal/repository"
)

// memContentStore mimics the transactional store: mutations run against
// a staging copy and only land when the callback succeeds, like a
// rollback would discard them.
type memContentStore struct {
	values    map[string]models.SiteContent
	revisions []models.ContentRevision
}

func newMemContentStore() *memContentStore {
	return &memContentStore{values: make(map[string]models.SiteContent)}
}

func (m *memContentStore) InTx(_ context.Context, fn func(tx repository.ContentTx) error) error {
	staged := &memContentTx{values: make(map[string]models.SiteContent, len(m.values))}
	for k, v := range m.values {
		staged.values[k] = v
	}

	if err := fn(staged); err != nil {
		return err
	}

	m.values = staged.values
	m.revisions = append(m.revisions, staged.revisions...)
	return nil
}

type memContentTx struct {
	values      map[string]models.SiteContent
	revisions   []models.ContentRevision
	revisionErr error
}

func (t *memContentTx) GetForUpdate(_ context.Context, key string) (models.SiteContent, error) {
	content, ok := t.values[key]
	if !ok {
		return models.SiteContent{}, repository.ErrContentNotFound
	}
	return content, nil
}

func (t *memContentTx) Upsert(_ context.Context, content models.SiteContent) error {
	t.values[content.Key] = content
	return nil
}

func (t *memContentTx) Remove(_ context.Context, key string) error {
	delete(t.values, key)
	return nil
}

func (t *memContentTx) AddRevision(_ context.Context, rev models.ContentRevision) error {
	if t.revisionErr != nil {
		return t.revisionErr
	}
	t.revisions = append(t.revisions, rev)
	return nil
}

func newContentFixture() (*ContentService, *memContentStore) {
	store := newMemContentStore()
	return NewContentService(store, zerolog.Nop()), store
}

func TestContentSetFirstWriteIsCreate(t *testing.T) {
	svc, store := newContentFixture()

	changeType, err := svc.Set(context.Background(), "rabbi.name", "Rabbi Cohen", models.ContentTypeText, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ChangeTypeCreate, changeType)

	require.Len(t, store.revisions, 1)
	rev := store.revisions[0]
	assert.Equal(t, "rabbi.name", rev.ContentKey)
	assert.Nil(t, rev.OldValue)
	assert.Equal(t, "Rabbi Cohen", rev.NewValue)
	assert.Equal(t, models.ChangeTypeCreate, rev.ChangeType)
	require.NotNil(t, rev.ChangedBy)
	assert.Equal(t, "u1", *rev.ChangedBy)
}

func TestContentSetOverwriteCapturesOldValue(t *testing.T) {
	svc, store := newContentFixture()

	_, err := svc.Set(context.Background(), "rabbi.name", "Rabbi Cohen", models.ContentTypeText, "u1")
	require.NoError(t, err)

	changeType, err := svc.Set(context.Background(), "rabbi.name", "Rabbi Levi", models.ContentTypeText, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.ChangeTypeUpdate, changeType)

	require.Len(t, store.revisions, 2)
	rev := store.revisions[1]
	require.NotNil(t, rev.OldValue)
	assert.Equal(t, "Rabbi Cohen", *rev.OldValue)
	assert.Equal(t, "Rabbi Levi", rev.NewValue)
	assert.Equal(t, models.ChangeTypeUpdate, rev.ChangeType)

	assert.Equal(t, "Rabbi Levi", store.values["rabbi.name"].Value)
}

func TestContentDeleteRecordsFinalValue(t *testing.T) {
	svc, store := newContentFixture()

	_, err := svc.Set(context.Background(), "services.shabbat_morning", "9:30 AM", models.ContentTypeText, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "services.shabbat_morning", "u1"))

	_, exists := store.values["services.shabbat_morning"]
	assert.False(t, exists)

	require.Len(t, store.revisions, 2)
	rev := store.revisions[1]
	assert.Equal(t, models.ChangeTypeDelete, rev.ChangeType)
	require.NotNil(t, rev.OldValue)
	assert.Equal(t, "9:30 AM", *rev.OldValue)
	assert.Empty(t, rev.NewValue)
}

func TestContentLifecycleChangeTypes(t *testing.T) {
	svc, store := newContentFixture()
	ctx := context.Background()

	_, err := svc.Set(ctx, "announcement", "first", models.ContentTypeHTML, "u1")
	require.NoError(t, err)
	_, err = svc.Set(ctx, "announcement", "second", models.ContentTypeHTML, "u1")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "announcement", "u1"))

	require.Len(t, store.revisions, 3)
	assert.Equal(t, models.ChangeTypeCreate, store.revisions[0].ChangeType)
	assert.Equal(t, models.ChangeTypeUpdate, store.revisions[1].ChangeType)
	assert.Equal(t, models.ChangeTypeDelete, store.revisions[2].ChangeType)

	// The chain of old values mirrors the chain of writes.
	assert.Nil(t, store.revisions[0].OldValue)
	assert.Equal(t, "first", *store.revisions[1].OldValue)
	assert.Equal(t, "second", *store.revisions[2].OldValue)
}

func TestContentDeleteUnknownKeyIsNoOp(t *testing.T) {
	svc, store := newContentFixture()

	require.NoError(t, svc.Delete(context.Background(), "missing", "u1"))
	assert.Empty(t, store.revisions)
}

func TestContentSetAnonymousWriter(t *testing.T) {
	svc, store := newContentFixture()

	_, err := svc.Set(context.Background(), "k", "v", models.ContentTypeText, "")
	require.NoError(t, err)

	require.Len(t, store.revisions, 1)
	assert.Nil(t, store.revisions[0].ChangedBy)
	assert.Nil(t, store.values["k"].UpdatedBy)
}

// failingContentStore injects errors into single tx operations to show
// a failed revision write takes the value write down with it.
type failingContentStore struct {
	*memContentStore
	revisionErr error
}

func (f *failingContentStore) InTx(_ context.Context, fn func(tx repository.ContentTx) error) error {
	staged := &memContentTx{
		values:      make(map[string]models.SiteContent, len(f.values)),
		revisionErr: f.revisionErr,
	}
	for k, v := range f.values {
		staged.values[k] = v
	}

	if err := fn(staged); err != nil {
		return err
	}

	f.values = staged.values
	f.revisions = append(f.revisions, staged.revisions...)
	return nil
}

func TestContentSetRevisionFailureDiscardsValue(t *testing.T) {
	store := &failingContentStore{
		memContentStore: newMemContentStore(),
		revisionErr:     errors.New("revision insert failed"),
	}
	svc := NewContentService(store, zerolog.Nop())

	_, err := svc.Set(context.Background(), "k", "v", models.ContentTypeText, "u1")
	require.Error(t, err)

	_, exists := store.values["k"]
	assert.False(t, exists)
	assert.Empty(t, store.revisions)
}
