package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/selimbouaziz/ateliera-backend/api/responses"
	"github.com/selimbouaziz/ateliera-backend/api/validators"
	"github.com/selimbouaziz/ateliera-backend/internal/media"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
)

func mediaID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media id")
	}
	return id, nil
}

func fileInput(file *validators.UploadedFile) *media.FileInput {
	if file == nil {
		return nil
	}
	return &media.FileInput{
		Name:        file.Name,
		ContentType: file.ContentType,
		Body:        file.Body,
	}
}

// UploadMedia accepts a multipart form with a title and an optional
// cover image.
func UploadMedia(svc media.Service, logg *logger.Logger, maxUploadMB int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validators.ParseMultipart(r, maxUploadMB); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cover, err := validators.OptionalFormFile(r, "cover")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cover.Close()

		row, err := svc.Upload(r.Context(), media.UploadInput{
			Title: validators.FormValue(r, "title"),
			Cover: fileInput(cover),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, responses.Payload{"media": row})
	}
}

// ListMedia returns every media row, newest first.
func ListMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, responses.Payload{"media": rows})
	}
}

// UpdateMedia retitles a media row and optionally replaces its cover.
func UpdateMedia(svc media.Service, logg *logger.Logger, maxUploadMB int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := mediaID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ParseMultipart(r, maxUploadMB); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cover, err := validators.OptionalFormFile(r, "cover")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cover.Close()

		row, err := svc.Update(r.Context(), id, media.UpdateInput{
			Title: validators.FormValue(r, "title"),
			Cover: fileInput(cover),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, responses.Payload{"media": row})
	}
}

// DeleteMedia removes a media row and reports any asset cleanup
// failures alongside the confirmation.
func DeleteMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := mediaID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload := responses.Payload{"message": "media deleted"}
		if len(result.AssetCleanupErrors) > 0 {
			payload["assetCleanupErrors"] = result.AssetCleanupErrors
		}
		responses.WriteSuccess(w, payload)
	}
}
