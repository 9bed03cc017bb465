package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound},
		{ErrDuplicate, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{fmt.Errorf("%w: bad", ErrValidation), http.StatusBadRequest},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","quantity":0}`))
	var p payload
	err := DecodeAndValidate(req, &p)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	RespondError(rec, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "required", problem.Errors["payload.Name"])
	assert.Equal(t, "gt", problem.Errors["payload.Quantity"])

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{broken`))
	err = DecodeAndValidate(req, &p)
	require.ErrorIs(t, err, ErrValidation)
}

func TestURLParamID(t *testing.T) {
	r := chi.NewRouter()
	var got int64
	var gotErr error
	r.Get("/items/{id}", func(w http.ResponseWriter, req *http.Request) {
		got, gotErr = URLParamID(req, "id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(42), got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	require.ErrorIs(t, gotErr, ErrValidation)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&offset=x", nil)
	assert.Equal(t, 25, QueryInt(req, "limit", 10))
	assert.Equal(t, 0, QueryInt(req, "offset", 0))
	assert.Equal(t, 7, QueryInt(req, "missing", 7))
}
