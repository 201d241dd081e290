package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/selimbouaziz/ateliera-backend/internal/promos"
	"github.com/selimbouaziz/ateliera-backend/pkg/logger"
)

func newPromosHandler(t *testing.T) (http.Handler, promos.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS promo_codes (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  discount REAL NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  expiry_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)

	logg := logger.New(logger.Options{ServiceName: "controllers-test", Level: zerolog.ErrorLevel})
	svc, err := promos.NewService(promos.NewRepository(db))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/api/promo/create", CreatePromo(svc, logg))
	r.Post("/api/promo/apply", ApplyPromo(svc, logg))
	return r, svc
}

func TestApplyPromoSuccess(t *testing.T) {
	handler, _ := newPromosHandler(t)

	created := postJSON(t, handler, "/api/promo/create", `{"code":"WELCOME10","discount":10}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	resp := postJSON(t, handler, "/api/promo/apply", `{"code":"WELCOME10","totalAmount":200}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(20), body["discountAmount"])
	assert.Equal(t, float64(180), body["finalAmount"])
}

func TestApplyPromoNegativeTotalPassesThrough(t *testing.T) {
	handler, _ := newPromosHandler(t)

	created := postJSON(t, handler, "/api/promo/create", `{"code":"SAVE10","discount":10}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	resp := postJSON(t, handler, "/api/promo/apply", `{"code":"SAVE10","totalAmount":-50}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(-5), body["discountAmount"])
	assert.Equal(t, float64(-45), body["finalAmount"])
}

func TestApplyPromoUnknownCodeIsHTTP200Failure(t *testing.T) {
	handler, _ := newPromosHandler(t)

	resp := postJSON(t, handler, "/api/promo/apply", `{"code":"NOPE","totalAmount":50}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid promo code", body["message"])
}

func TestApplyPromoExpiredCodeIsHTTP200Failure(t *testing.T) {
	handler, svc := newPromosHandler(t)

	expired := time.Now().Add(-24 * time.Hour)
	_, err := svc.Create(context.Background(), promos.CreateInput{Code: "OLD", Discount: 25, ExpiryDate: &expired})
	require.NoError(t, err)

	resp := postJSON(t, handler, "/api/promo/apply", `{"code":"OLD","totalAmount":80}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Promo code expired", body["message"])
}
