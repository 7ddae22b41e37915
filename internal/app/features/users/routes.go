// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the user administration endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/by-role/{roleID}", h.ServeListByRole)
	r.Get("/{userID}", h.ServeGet)
	r.Post("/{userID}/roles", h.ServeAssignRoles)
	r.Post("/{userID}/roles/remove", h.ServeRemoveRoles)
	r.Get("/{userID}/permissions", h.ServePermissions)
	return r
}
