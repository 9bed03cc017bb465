package report

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGotenberg(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/forms/chromium/convert/html":
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				http.Error(w, "bad form", http.StatusBadRequest)
				return
			}
			file, header, err := r.FormFile("files")
			if !assert.NoError(t, err) {
				http.Error(w, "missing file", http.StatusBadRequest)
				return
			}
			assert.Equal(t, "index.html", header.Filename)
			html, _ := io.ReadAll(file)
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write(append([]byte("%PDF-"), html[:4]...))
		default:
			http.Error(w, "missing route", http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRenderHTML(t *testing.T) {
	srv := fakeGotenberg(t)
	client := NewClient(srv.URL+"/", time.Second)

	require.NoError(t, client.Ping(context.Background()))

	pdf, err := client.RenderHTML(context.Background(), "<html></html>")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-<htm", string(pdf))
}

func TestClientSurfacesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()
	client := NewClient(srv.URL, 0)

	require.Error(t, client.Ping(context.Background()))
	_, err := client.RenderHTML(context.Background(), "<p>x</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chromium crashed")
}
