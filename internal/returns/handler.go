package returns

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReturnRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	ret, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create return", slog.Any("error", err), slog.Int64("invoice_id", req.InvoiceID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ret)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ret, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ret)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	invoiceID := int64(httpx.QueryInt(r, "invoice_id", 0))
	list, err := h.service.ListByInvoice(r.Context(), invoiceID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Return{}
	}
	httpx.JSON(w, http.StatusOK, list)
}
