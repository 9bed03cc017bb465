package products

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

	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

func newTestRouter(t *testing.T) (http.Handler, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Route("/masterdata", h.MountRoutes)
	return r, repo
}

const productBody = `{
	"code": "ACE-1",
	"name": "Aceite",
	"tax_pct": "18",
	"presentations": [
		{"name": "1 L", "price1": "RD$ 1,180.00", "auto_price2": true, "auto_pct2": 95, "discount_pct": 5}
	]
}`

func TestHandlerCreateAndShow(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/masterdata/products", strings.NewReader(productBody)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created.Presentations, 1)
	assert.True(t, created.Presentations[0].Price1.Equal(dec("1180")))
	assert.True(t, created.Presentations[0].Price2.Equal(dec("1121")))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/masterdata/products/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/masterdata/products/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerCreateValidationFailure(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/masterdata/products", strings.NewReader(`{"name":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ProductRequest.Code")
}

func TestHandlerPriceForTier(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/masterdata/products", strings.NewReader(productBody)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/masterdata/presentations/1/price?tier=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var price pricing.TierPrice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &price))
	assert.Equal(t, pricing.TierTwo, price.Tier)
	assert.True(t, price.UnitPrice.Equal(dec("1121")))
	assert.True(t, price.MaxDiscountPct.IsZero())
}

func TestHandlerListAndDelete(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/masterdata/products", strings.NewReader(productBody)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/masterdata/products?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/masterdata/products/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
