// Package organizations exposes the organization registry API: creating
// organizations and resolving them by email domain.
package organizations

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/attesthub/internal/app/features/shared"
	"github.com/dalemusser/attesthub/internal/app/orgs"
	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/authz"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const managePermission = "org.manage"

// Handler holds the services the organization endpoints need.
type Handler struct {
	Registry *orgs.Registry
	Users    shared.UserLoader
	Authz    *authz.Resolver
	Log      *zap.Logger
}

// NewHandler constructs the organizations Handler.
func NewHandler(registry *orgs.Registry, users shared.UserLoader, resolver *authz.Resolver, logger *zap.Logger) *Handler {
	return &Handler{Registry: registry, Users: users, Authz: resolver, Log: logger}
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) bool {
	caller, err := shared.RequestUser(r, h.Users)
	if err != nil {
		shared.Error(w, h.Log, err)
		return false
	}
	if !h.Authz.HasPermission(caller, managePermission, "") {
		shared.Forbidden(w)
		return false
	}
	return true
}

type createRequest struct {
	Name     string                      `json:"name"`
	Domains  []string                    `json:"domains"`
	Settings models.OrganizationSettings `json:"settings"`
}

// ServeCreate handles POST /organizations.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed request body"))
		return
	}

	org, err := h.Registry.Create(r.Context(), req.Name, req.Domains, req.Settings)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	h.Log.Info("organization created",
		zap.String("organization_id", org.ID.Hex()), zap.String("name", org.Name))
	shared.JSON(w, http.StatusCreated, org)
}

// ServeGet handles GET /organizations/{orgID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orgID"))
	if err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed organization id"))
		return
	}

	org, err := h.Registry.Get(r.Context(), id)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, org)
}

// ServeByDomain handles GET /organizations/by-domain?domain=...
func (h *Handler) ServeByDomain(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	org, err := h.Registry.FindByDomain(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, org)
}
