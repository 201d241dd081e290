package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/selimbouaziz/ateliera-backend/pkg/db/models"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
	"github.com/selimbouaziz/ateliera-backend/pkg/storage/gcs"
	"github.com/selimbouaziz/ateliera-backend/pkg/types"
)

const coversFolder = "covers"

var allowedCoverMimes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// ObjectStore is the slice of the storage client the registry needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (gcs.Object, error)
	Delete(ctx context.Context, key string) error
}

// FileInput is one multipart file part.
type FileInput struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadInput carries the media create payload.
type UploadInput struct {
	Title string
	Cover *FileInput
}

// UpdateInput carries an optional retitle and an optional replacement cover.
type UpdateInput struct {
	Title string
	Cover *FileInput
}

// DeleteResult reports a completed delete plus any asset cleanup
// failures. Cleanup failures do not fail the delete.
type DeleteResult struct {
	AssetCleanupErrors []string `json:"assetCleanupErrors,omitempty"`
}

// Service defines the media registry operations.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*models.Media, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Media, error)
	Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error)
	List(ctx context.Context) ([]models.Media, error)
}

type service struct {
	repo  Repository
	store ObjectStore
	logg  *logger.Logger
}

// NewService builds the media service.
func NewService(repo Repository, store ObjectStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, store: store, logg: logg}, nil
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*models.Media, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	mediaID := uuid.New()
	var cover types.CoverAsset
	if input.Cover != nil {
		uploaded, err := UploadCover(ctx, s.store, mediaID.String(), input.Cover)
		if err != nil {
			return nil, err
		}
		cover = uploaded
	}

	row := &models.Media{
		ID:    mediaID,
		Title: input.Title,
		Cover: cover,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist media row")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Media, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Cover != nil {
		uploaded, err := UploadCover(ctx, s.store, row.ID.String(), input.Cover)
		if err != nil {
			return nil, err
		}
		old := row.Cover
		row.Cover = uploaded
		if old.PublicID != "" {
			if err := s.store.Delete(ctx, old.PublicID); err != nil {
				s.logg.Warn(ctx, "old cover cleanup failed: "+err.Error())
			}
		}
	}
	if strings.TrimSpace(input.Title) != "" {
		row.Title = input.Title
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update media row")
	}
	return row, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media row")
	}

	var cleanup error
	if row.Cover.PublicID != "" {
		if err := s.store.Delete(ctx, row.Cover.PublicID); err != nil {
			cleanup = multierr.Append(cleanup, fmt.Errorf("cover %s: %w", row.Cover.PublicID, err))
		}
	}
	return &DeleteResult{AssetCleanupErrors: CleanupMessages(cleanup)}, nil
}

func (s *service) List(ctx context.Context) ([]models.Media, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}
	return rows, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media id required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}
	return row, nil
}

// UploadCover pushes one cover file and returns its stored asset ref.
// The object key doubles as the public id used for later deletion.
func UploadCover(ctx context.Context, store ObjectStore, unique string, file *FileInput) (types.CoverAsset, error) {
	if !isAllowedCoverMime(file.ContentType) {
		return types.CoverAsset{}, pkgerrors.New(pkgerrors.CodeValidation, "cover must be an image")
	}
	key := gcs.ObjectKey(coversFolder, unique, file.Name)
	object, err := store.Upload(ctx, key, file.ContentType, file.Body)
	if err != nil {
		return types.CoverAsset{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload cover")
	}
	return types.CoverAsset{URL: object.URL, PublicID: object.Key}, nil
}

func isAllowedCoverMime(mimeType string) bool {
	for _, candidate := range allowedCoverMimes {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}

// CleanupMessages flattens a multierr into the per-asset messages the
// API surfaces alongside a successful delete.
func CleanupMessages(err error) []string {
	if err == nil {
		return nil
	}
	errs := multierr.Errors(err)
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Error())
	}
	return messages
}
