// internal/app/features/organizations/routes.go
package organizations

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the organization endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/by-domain", h.ServeByDomain)
	r.Get("/{orgID}", h.ServeGet)
	return r
}
