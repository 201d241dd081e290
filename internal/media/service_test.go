package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/selimbouaziz/ateliera-backend/pkg/db/models"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
	"github.com/selimbouaziz/ateliera-backend/pkg/storage/gcs"
	"github.com/selimbouaziz/ateliera-backend/pkg/types"
)

type fakeStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func (f *fakeStore) Upload(_ context.Context, key, _ string, body io.Reader) (gcs.Object, error) {
	if f.uploadErr != nil {
		return gcs.Object{}, f.uploadErr
	}
	io.Copy(io.Discard, body)
	f.uploads = append(f.uploads, key)
	return gcs.Object{Key: key, URL: "https://storage.googleapis.com/ateliera-assets/" + key}, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, key)
	return nil
}

func setupMediaTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS media (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  cover TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newTestService(t *testing.T, store *fakeStore) (Service, Repository) {
	t.Helper()

	repo := NewRepository(setupMediaTestDB(t))
	logg := logger.New(logger.Options{ServiceName: "media-test", Level: zerolog.ErrorLevel})
	svc, err := NewService(repo, store, logg)
	require.NoError(t, err)
	return svc, repo
}

func coverFile(name string) *FileInput {
	return &FileInput{
		Name:        name,
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpeg-bytes"),
	}
}

func TestUploadWithCover(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(t, store)

	row, err := svc.Upload(context.Background(), UploadInput{Title: "Fall lookbook", Cover: coverFile("look.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "Fall lookbook", row.Title)
	assert.NotEmpty(t, row.Cover.PublicID)
	assert.Contains(t, row.Cover.URL, row.Cover.PublicID)
	require.Len(t, store.uploads, 1)
	assert.Contains(t, store.uploads[0], "covers/")
}

func TestUploadTitleRequired(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{})

	_, err := svc.Upload(context.Background(), UploadInput{Title: "  "})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUploadWithoutCover(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(t, store)

	row, err := svc.Upload(context.Background(), UploadInput{Title: "Untitled drop"})
	require.NoError(t, err)
	assert.Empty(t, row.Cover.PublicID)
	assert.Empty(t, store.uploads)
}

func TestUploadStoreFailureLeavesNoRow(t *testing.T) {
	store := &fakeStore{uploadErr: fmt.Errorf("bucket gone")}
	svc, repo := newTestService(t, store)

	_, err := svc.Upload(context.Background(), UploadInput{Title: "Fall", Cover: coverFile("look.jpg")})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())

	rows, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUploadRejectsNonImage(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{})

	file := &FileInput{Name: "notes.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF")}
	_, err := svc.Upload(context.Background(), UploadInput{Title: "Fall", Cover: file})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateReplacesCover(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.Upload(ctx, UploadInput{Title: "Fall", Cover: coverFile("old.jpg")})
	require.NoError(t, err)
	oldKey := row.Cover.PublicID

	updated, err := svc.Update(ctx, row.ID, UpdateInput{Title: "Fall 2025", Cover: coverFile("new.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "Fall 2025", updated.Title)
	assert.NotEqual(t, oldKey, updated.Cover.PublicID)
	assert.Equal(t, []string{oldKey}, store.deletes)
}

func TestUpdateOldCoverCleanupFailureIgnored(t *testing.T) {
	store := &fakeStore{deleteErr: fmt.Errorf("object locked")}
	svc, repo := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.Upload(ctx, UploadInput{Title: "Fall", Cover: coverFile("old.jpg")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, row.ID, UpdateInput{Cover: coverFile("new.jpg")})
	require.NoError(t, err)
	assert.Contains(t, updated.Cover.PublicID, "new.jpg")

	reloaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Cover.PublicID, reloaded.Cover.PublicID)
}

func TestUpdateTitleOnly(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.Upload(ctx, UploadInput{Title: "Fall", Cover: coverFile("look.jpg")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, row.ID, UpdateInput{Title: "Winter"})
	require.NoError(t, err)
	assert.Equal(t, "Winter", updated.Title)
	assert.Equal(t, row.Cover.PublicID, updated.Cover.PublicID)
	assert.Empty(t, store.deletes)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{})

	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Title: "Winter"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteRemovesRowAndAsset(t *testing.T) {
	store := &fakeStore{}
	svc, repo := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.Upload(ctx, UploadInput{Title: "Fall", Cover: coverFile("look.jpg")})
	require.NoError(t, err)

	result, err := svc.Delete(ctx, row.ID)
	require.NoError(t, err)
	assert.Empty(t, result.AssetCleanupErrors)
	assert.Equal(t, []string{row.Cover.PublicID}, store.deletes)

	_, err = repo.FindByID(ctx, row.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteSurfacesCleanupFailure(t *testing.T) {
	store := &fakeStore{deleteErr: fmt.Errorf("object locked")}
	svc, repo := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.Upload(ctx, UploadInput{Title: "Fall", Cover: coverFile("look.jpg")})
	require.NoError(t, err)

	result, err := svc.Delete(ctx, row.ID)
	require.NoError(t, err)
	require.Len(t, result.AssetCleanupErrors, 1)
	assert.Contains(t, result.AssetCleanupErrors[0], "object locked")

	// the row is gone even though the asset survived
	_, err = repo.FindByID(ctx, row.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListNewestFirst(t *testing.T) {
	svc, repo := newTestService(t, &fakeStore{})
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Media{Title: "First", Cover: types.CoverAsset{}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Media{Title: "Second", Cover: types.CoverAsset{}})
	require.NoError(t, err)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
