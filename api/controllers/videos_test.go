package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimbouaziz/ateliera-backend/internal/videos"
	"github.com/selimbouaziz/ateliera-backend/pkg/db/models"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
	"github.com/selimbouaziz/ateliera-backend/pkg/types"
)

type capturingVideosService struct {
	updateID    uuid.UUID
	updateInput videos.UpdateInput
}

func (s *capturingVideosService) Upload(_ context.Context, input videos.UploadInput) (*models.Video, error) {
	return &models.Video{Title: input.Title}, nil
}

func (s *capturingVideosService) Update(_ context.Context, id uuid.UUID, input videos.UpdateInput) (*models.Video, error) {
	s.updateID = id
	s.updateInput = input
	return &models.Video{ID: id, Title: input.Title}, nil
}

func (s *capturingVideosService) Delete(_ context.Context, id uuid.UUID) (*videos.DeleteResult, error) {
	return &videos.DeleteResult{}, nil
}

func (s *capturingVideosService) List(_ context.Context) ([]models.Video, error) {
	return nil, nil
}

func newVideosHandler(t *testing.T) (http.Handler, *capturingVideosService) {
	t.Helper()

	svc := &capturingVideosService{}
	logg := logger.New(logger.Options{ServiceName: "controllers-test", Level: zerolog.ErrorLevel})

	r := chi.NewRouter()
	r.Put("/api/videos/longs/{id}", UpdateVideo(svc, logg, 25))
	return r, svc
}

func TestUpdateVideoDecodesRetainedCovers(t *testing.T) {
	handler, svc := newVideosHandler(t)
	id := uuid.New()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("title", "Runway Walkthrough"))
	require.NoError(t, writer.WriteField("price", "240"))
	require.NoError(t, writer.WriteField("sizes", `["S","M","L"]`))
	require.NoError(t, writer.WriteField("retainedCovers", `[{"url":"https://cdn.example.com/covers/a.jpg","publicId":"covers/a.jpg"}]`))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/videos/longs/"+id.String(), &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	assert.Equal(t, id, svc.updateID)
	assert.Equal(t, "Runway Walkthrough", svc.updateInput.Title)
	assert.Equal(t, float64(240), svc.updateInput.Price)
	assert.Equal(t, []string{"S", "M", "L"}, svc.updateInput.Sizes)
	require.Len(t, svc.updateInput.RetainedCovers, 1)
	assert.Equal(t, types.CoverAsset{
		URL:      "https://cdn.example.com/covers/a.jpg",
		PublicID: "covers/a.jpg",
	}, svc.updateInput.RetainedCovers[0])
}

func TestUpdateVideoRejectsMalformedVideoID(t *testing.T) {
	handler, _ := newVideosHandler(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("title", "Runway Walkthrough"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/videos/longs/not-a-uuid", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
