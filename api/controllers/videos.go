package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/selimbouaziz/ateliera-backend/api/responses"
	"github.com/selimbouaziz/ateliera-backend/api/validators"
	"github.com/selimbouaziz/ateliera-backend/internal/media"
	"github.com/selimbouaziz/ateliera-backend/internal/videos"
	"github.com/selimbouaziz/ateliera-backend/pkg/types"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
)

func videoID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid video id")
	}
	return id, nil
}

func coverInputs(files []*validators.UploadedFile) []*media.FileInput {
	inputs := make([]*media.FileInput, 0, len(files))
	for _, file := range files {
		inputs = append(inputs, fileInput(file))
	}
	return inputs
}

func closeAll(files []*validators.UploadedFile) {
	for _, file := range files {
		file.Close()
	}
}

// UploadVideo accepts a multipart form with the video fields, a JSON
// sizes array and up to the configured number of cover images.
func UploadVideo(svc videos.Service, logg *logger.Logger, maxUploadMB int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validators.ParseMultipart(r, maxUploadMB); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		covers, err := validators.FormFiles(r, "covers")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeAll(covers)

		input := videos.UploadInput{
			Title:       validators.FormValue(r, "title"),
			Description: validators.FormValue(r, "description"),
			Category:    validators.FormValue(r, "category"),
			Covers:      coverInputs(covers),
		}
		if input.Price, err = validators.FormFloat(r, "price"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Discount, err = validators.FormFloat(r, "discount"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.DecodeFormJSON(r, "sizes", &input.Sizes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Upload(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, responses.Payload{"video": row})
	}
}

// ListVideos returns every video row, newest first.
func ListVideos(svc videos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, responses.Payload{"videos": rows})
	}
}

// UpdateVideo replaces the video fields. The retainedCovers form field
// names the stored covers to keep; new cover files are appended.
func UpdateVideo(svc videos.Service, logg *logger.Logger, maxUploadMB int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := videoID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ParseMultipart(r, maxUploadMB); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		covers, err := validators.FormFiles(r, "covers")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeAll(covers)

		input := videos.UpdateInput{
			Title:       validators.FormValue(r, "title"),
			Description: validators.FormValue(r, "description"),
			Category:    validators.FormValue(r, "category"),
			NewCovers:   coverInputs(covers),
		}
		if input.Price, err = validators.FormFloat(r, "price"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Discount, err = validators.FormFloat(r, "discount"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.DecodeFormJSON(r, "sizes", &input.Sizes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var retained []types.CoverAsset
		if err := validators.DecodeFormJSON(r, "retainedCovers", &retained); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.RetainedCovers = retained

		row, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, responses.Payload{"video": row})
	}
}

// DeleteVideo removes a video and reports any cover cleanup failures
// alongside the confirmation.
func DeleteVideo(svc videos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := videoID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload := responses.Payload{"message": "video deleted"}
		if len(result.AssetCleanupErrors) > 0 {
			payload["assetCleanupErrors"] = result.AssetCleanupErrors
		}
		responses.WriteSuccess(w, payload)
	}
}
