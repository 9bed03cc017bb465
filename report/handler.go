package report

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Loader resolves printable documents.
type Loader interface {
	Load(ctx context.Context, kind documents.Kind, id int64) (Document, error)
}

// Pinger reports PDF backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler manages report endpoints.
type Handler struct {
	pinger   Pinger
	renderer *Renderer
	source   Loader
	logger   *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(pinger Pinger, renderer *Renderer, source Loader, logger *slog.Logger) *Handler {
	return &Handler{pinger: pinger, renderer: renderer, source: source, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/{kind}/{file}", h.document)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// document serves /{kind}/{id}.pdf, or the HTML source for {id}.html.
func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	kind, err := documents.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	file := chi.URLParam(r, "file")
	asHTML := strings.HasSuffix(file, ".html")
	raw := strings.TrimSuffix(strings.TrimSuffix(file, ".pdf"), ".html")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 || raw == file {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown document file")
		return
	}

	doc, err := h.source.Load(r.Context(), kind, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if asHTML {
		html, err := h.renderer.HTML(doc)
		if err != nil {
			h.logger.Error("render document html", slog.Any("error", err), slog.String("kind", string(kind)))
			httpx.RespondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
		return
	}

	pdf, err := h.renderer.Render(r.Context(), doc)
	if err != nil {
		h.logger.Error("render document pdf", slog.Any("error", err), slog.String("kind", string(kind)), slog.Int64("id", id))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+doc.FileName())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
