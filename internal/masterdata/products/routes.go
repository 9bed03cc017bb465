package products

import "github.com/go-chi/chi/v5"

// MountRoutes registers catalog routes under the master data prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Show)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	r.Get("/presentations/{id}/price", h.Price)
}
