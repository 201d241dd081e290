package videos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/selimbouaziz/ateliera-backend/internal/media"
	"github.com/selimbouaziz/ateliera-backend/pkg/db/models"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
	"github.com/selimbouaziz/ateliera-backend/pkg/types"
)

// UploadInput carries the multipart video create payload. Sizes arrive
// already parsed from the form's JSON field.
type UploadInput struct {
	Title       string
	Description string
	Category    string
	Price       float64
	Discount    float64
	Sizes       []string
	Covers      []*media.FileInput
}

// UpdateInput carries a full video update. RetainedCovers is the set of
// already-stored covers the client wants to keep; stored covers missing
// from it are deleted from the object store.
type UpdateInput struct {
	Title          string
	Description    string
	Category       string
	Price          float64
	Discount       float64
	Sizes          []string
	RetainedCovers []types.CoverAsset
	NewCovers      []*media.FileInput
}

// DeleteResult reports a completed delete plus any cover cleanup
// failures.
type DeleteResult struct {
	AssetCleanupErrors []string `json:"assetCleanupErrors,omitempty"`
}

// Service defines the video registry operations.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*models.Video, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Video, error)
	Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error)
	List(ctx context.Context) ([]models.Video, error)
}

type service struct {
	repo  Repository
	store media.ObjectStore
	logg  *logger.Logger
}

// NewService builds the video service.
func NewService(repo Repository, store media.ObjectStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("videos repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, store: store, logg: logg}, nil
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*models.Video, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	videoID := uuid.New()
	covers := make([]types.CoverAsset, 0, len(input.Covers))
	for _, file := range input.Covers {
		uploaded, err := media.UploadCover(ctx, s.store, videoID.String(), file)
		if err != nil {
			return nil, err
		}
		covers = append(covers, uploaded)
	}

	sizes := input.Sizes
	if sizes == nil {
		sizes = []string{}
	}
	row := &models.Video{
		ID:          videoID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Discount:    input.Discount,
		Sizes:       sizes,
		Covers:      covers,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist video row")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Video, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	retained, dropped, err := diffCovers(row.Covers, input.RetainedCovers)
	if err != nil {
		return nil, err
	}

	covers := retained
	for _, file := range input.NewCovers {
		uploaded, err := media.UploadCover(ctx, s.store, row.ID.String(), file)
		if err != nil {
			return nil, err
		}
		covers = append(covers, uploaded)
	}

	for _, cover := range dropped {
		if cover.PublicID == "" {
			continue
		}
		if err := s.store.Delete(ctx, cover.PublicID); err != nil {
			s.logg.Warn(ctx, "dropped cover cleanup failed: "+err.Error())
		}
	}

	if strings.TrimSpace(input.Title) != "" {
		row.Title = input.Title
	}
	row.Description = input.Description
	row.Category = input.Category
	row.Price = input.Price
	row.Discount = input.Discount
	if input.Sizes != nil {
		row.Sizes = input.Sizes
	}
	row.Covers = covers

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update video row")
	}
	return row, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete video row")
	}

	var cleanup error
	for _, cover := range row.Covers {
		if cover.PublicID == "" {
			continue
		}
		if err := s.store.Delete(ctx, cover.PublicID); err != nil {
			cleanup = multierr.Append(cleanup, fmt.Errorf("cover %s: %w", cover.PublicID, err))
		}
	}
	return &DeleteResult{AssetCleanupErrors: media.CleanupMessages(cleanup)}, nil
}

func (s *service) List(ctx context.Context) ([]models.Video, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list videos")
	}
	return rows, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "video id required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "video not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load video")
	}
	return row, nil
}

// diffCovers splits the stored covers into retained and dropped sets.
// A retained public id the record does not own is rejected so clients
// cannot graft foreign assets onto a video.
func diffCovers(stored, requested []types.CoverAsset) (retained, dropped []types.CoverAsset, err error) {
	owned := make(map[string]types.CoverAsset, len(stored))
	for _, cover := range stored {
		owned[cover.PublicID] = cover
	}

	keep := make(map[string]bool, len(requested))
	for _, cover := range requested {
		storedCover, ok := owned[cover.PublicID]
		if !ok {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("cover %s does not belong to this video", cover.PublicID))
		}
		if !keep[cover.PublicID] {
			keep[cover.PublicID] = true
			retained = append(retained, storedCover)
		}
	}

	for _, cover := range stored {
		if !keep[cover.PublicID] {
			dropped = append(dropped, cover)
		}
	}
	return retained, dropped, nil
}
