package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
)

// Payload carries the response fields merged next to the success flag.
type Payload map[string]any

// WriteSuccess writes a 200 envelope with the payload fields inlined.
func WriteSuccess(w http.ResponseWriter, payload Payload) {
	WriteSuccessStatus(w, http.StatusOK, payload)
}

// WriteSuccessStatus writes a success envelope with an explicit status.
func WriteSuccessStatus(w http.ResponseWriter, status int, payload Payload) {
	body := Payload{"success": true}
	for key, value := range payload {
		if key == "success" {
			continue
		}
		body[key] = value
	}
	writeJSON(w, status, body)
}

// WriteFailure writes a 200 envelope with success=false. Promo apply
// rejections are contract-level outcomes, not errors.
func WriteFailure(w http.ResponseWriter, payload Payload) {
	body := Payload{"success": false}
	for key, value := range payload {
		if key == "success" {
			continue
		}
		body[key] = value
	}
	writeJSON(w, http.StatusOK, body)
}

// WriteError maps the error's code to an HTTP status and writes the
// failure envelope. Internal causes are logged, never exposed.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeStateConflict,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := Payload{
		"success": false,
		"code":    string(typed.Code()),
		"message": msg,
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload["errors"] = details
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error":         dump.TopMessage,
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_detail":     dump.PGDetail,
			"pg_message":    dump.PGMessage,
			"pg_table":      dump.PGTable,
			"pg_column":     dump.PGColumn,
			"pg_constraint": dump.PGConstraint,
		})
		logg.Error(ctx, "request.error", err)
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
