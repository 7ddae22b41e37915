// internal/app/features/engagements/routes.go
package engagements

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the engagement endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Get("/{engagementID}", h.ServeGet)
	r.Post("/{engagementID}/members", h.ServeAddMember)
	r.Delete("/{engagementID}/members/{userID}", h.ServeRemoveMember)
	r.Get("/{engagementID}/participants", h.ServeParticipants)
	return r
}
