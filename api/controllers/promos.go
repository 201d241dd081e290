package controllers

import (
	"net/http"

	"github.com/selimbouaziz/ateliera-backend/api/responses"
	"github.com/selimbouaziz/ateliera-backend/api/validators"
	"github.com/selimbouaziz/ateliera-backend/internal/promos"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
)

// CreatePromo stores an admin-defined promo code.
func CreatePromo(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input promos.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, responses.Payload{"promoCode": promo})
	}
}

type applyPromoRequest struct {
	Code        string  `json:"code" validate:"required"`
	TotalAmount float64 `json:"totalAmount"`
}

// ApplyPromo computes the discount for a checkout total. Unknown or
// expired codes come back as success=false with HTTP 200.
func ApplyPromo(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input applyPromoRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Apply(r.Context(), input.Code, input.TotalAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !result.Success {
			responses.WriteFailure(w, responses.Payload{"message": result.Message})
			return
		}
		responses.WriteSuccess(w, responses.Payload{
			"code":           result.Code,
			"discount":       result.Discount,
			"discountAmount": result.DiscountAmount,
			"finalAmount":    result.FinalAmount,
		})
	}
}

// ListPromos returns every promo code, newest first.
func ListPromos(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, responses.Payload{"promoCodes": codes})
	}
}
