package lov

import (
	"github.com/go-chi/chi/v5"

	"github.com/fleetops/fleet-console/internal/shared"
)

// MountRoutes registers the list of values routes. Mount it at BasePath.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermLOVView))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermLOVEdit))
		r.Get("/new", h.newForm)
		r.Get("/{id}/edit", h.editForm)
		r.Post("/form", h.submit)
	})
}
