package procurement

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), newTestService(newMemoryProcRepo(), nil))
	r := chi.NewRouter()
	r.Route("/procurement", h.MountRoutes)
	return r
}

func TestHandlerPurchaseFlow(t *testing.T) {
	router := newTestRouter(t)

	body := `{"supplier_id":1,"supplier_invoice":"B0100000002","tax_included":true,"payment_type":"CREDIT",
		"lines":[{"description":"Arroz","quantity":"2","unit_cost":"RD$ 59.00","tax_pct":18}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/procurement/purchases", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Purchase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	requireDecimal(t, "118", created.Total)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/procurement/payables", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "B0100000002")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/procurement/purchases/101/payments",
		strings.NewReader(`{"amount":"200"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/procurement/purchases/101/payments",
		strings.NewReader(`{"amount":"118"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"PAID"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/procurement/purchases/101/void", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/procurement/purchases/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
