package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/selimbouaziz/ateliera-backend/api/responses"
	"github.com/selimbouaziz/ateliera-backend/api/validators"
	"github.com/selimbouaziz/ateliera-backend/internal/products"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
)

type attachVideoRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	VideoURL  string    `json:"videoUrl" validate:"required"`
}

// AttachVideo links a hosted video URL to a product.
func AttachVideo(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input attachVideoRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AttachVideo(r.Context(), input.ProductID, input.VideoURL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, responses.Payload{"product": product})
	}
}

// ListProducts returns the full catalog.
func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, responses.Payload{"products": rows})
	}
}
