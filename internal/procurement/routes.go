package procurement

import "github.com/go-chi/chi/v5"

// MountRoutes registers procurement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/suppliers", h.listSuppliers)
	r.Post("/suppliers", h.createSupplier)
	r.Post("/purchases", h.createPurchase)
	r.Get("/purchases/{id}", h.showPurchase)
	r.Post("/purchases/{id}/void", h.voidPurchase)
	r.Post("/purchases/{id}/payments", h.recordPayment)
	r.Get("/payables", h.listPayables)
}
