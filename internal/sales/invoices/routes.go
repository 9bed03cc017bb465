package invoices

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Post("/preview", h.Preview)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
		r.Post("/{id}/void", h.Void)
	})
}
