package videos

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

	"github.com/selimbouaziz/ateliera-backend/internal/media"
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

func setupVideosTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS videos (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  price REAL NOT NULL DEFAULT 0,
  discount REAL NOT NULL DEFAULT 0,
  sizes TEXT,
  covers TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newTestService(t *testing.T, store *fakeStore) (Service, Repository) {
	t.Helper()

	repo := NewRepository(setupVideosTestDB(t))
	logg := logger.New(logger.Options{ServiceName: "videos-test", Level: zerolog.ErrorLevel})
	svc, err := NewService(repo, store, logg)
	require.NoError(t, err)
	return svc, repo
}

func coverFile(name string) *media.FileInput {
	return &media.FileInput{
		Name:        name,
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpeg-bytes"),
	}
}

func TestUploadCollectsCovers(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(t, store)

	row, err := svc.Upload(context.Background(), UploadInput{
		Title:    "Runway walkthrough",
		Category: "dresses",
		Price:    129.99,
		Discount: 10,
		Sizes:    []string{"S", "M", "L"},
		Covers:   []*media.FileInput{coverFile("front.jpg"), coverFile("back.jpg")},
	})
	require.NoError(t, err)
	require.Len(t, row.Covers, 2)
	assert.Contains(t, row.Covers[0].PublicID, "front.jpg")
	assert.Contains(t, row.Covers[1].PublicID, "back.jpg")
	assert.Equal(t, []string{"S", "M", "L"}, row.Sizes)
	assert.Len(t, store.uploads, 2)
}

func TestUploadTitleRequired(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{})

	_, err := svc.Upload(context.Background(), UploadInput{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUploadFailureAborts(t *testing.T) {
	store := &fakeStore{uploadErr: fmt.Errorf("bucket gone")}
	svc, repo := newTestService(t, store)

	_, err := svc.Upload(context.Background(), UploadInput{
		Title:  "Runway",
		Covers: []*media.FileInput{coverFile("front.jpg")},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())

	rows, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateRetainsAndAppendsCovers(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.Upload(ctx, UploadInput{
		Title:  "Runway",
		Covers: []*media.FileInput{coverFile("front.jpg"), coverFile("back.jpg")},
	})
	require.NoError(t, err)
	front := row.Covers[0]
	back := row.Covers[1]

	updated, err := svc.Update(ctx, row.ID, UpdateInput{
		Title:          "Runway v2",
		Price:          99,
		RetainedCovers: []types.CoverAsset{{PublicID: front.PublicID}},
		NewCovers:      []*media.FileInput{coverFile("detail.jpg")},
	})
	require.NoError(t, err)
	require.Len(t, updated.Covers, 2)
	assert.Equal(t, front.PublicID, updated.Covers[0].PublicID)
	assert.Contains(t, updated.Covers[1].PublicID, "detail.jpg")
	assert.Equal(t, []string{back.PublicID}, store.deletes)
	assert.Equal(t, 99.0, updated.Price)
}

func TestUpdateRejectsForeignCover(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.Upload(ctx, UploadInput{
		Title:  "Runway",
		Covers: []*media.FileInput{coverFile("front.jpg")},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, row.ID, UpdateInput{
		RetainedCovers: []types.CoverAsset{{PublicID: "covers/other-video/steal.jpg"}},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Empty(t, store.deletes)
}

func TestUpdateDroppedCoverCleanupFailureIgnored(t *testing.T) {
	store := &fakeStore{deleteErr: fmt.Errorf("object locked")}
	svc, repo := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.Upload(ctx, UploadInput{
		Title:  "Runway",
		Covers: []*media.FileInput{coverFile("front.jpg")},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, row.ID, UpdateInput{Title: "Runway v2"})
	require.NoError(t, err)
	assert.Empty(t, updated.Covers)

	reloaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Runway v2", reloaded.Title)
}

func TestDeleteCollectsCleanupErrors(t *testing.T) {
	store := &fakeStore{}
	svc, repo := newTestService(t, store)
	ctx := context.Background()

	row, err := svc.Upload(ctx, UploadInput{
		Title:  "Runway",
		Covers: []*media.FileInput{coverFile("front.jpg"), coverFile("back.jpg")},
	})
	require.NoError(t, err)

	store.deleteErr = fmt.Errorf("object locked")
	result, err := svc.Delete(ctx, row.ID)
	require.NoError(t, err)
	assert.Len(t, result.AssetCleanupErrors, 2)

	_, err = repo.FindByID(ctx, row.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteNotFound(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{})

	_, err := svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
