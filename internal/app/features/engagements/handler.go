// Package engagements exposes the engagement API: creating engagements,
// managing their members, and reading the participant projection.
package engagements

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/attesthub/internal/app/features/shared"
	"github.com/dalemusser/attesthub/internal/app/orgs"
	"github.com/dalemusser/attesthub/internal/app/roles"
	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/authz"
	"github.com/dalemusser/attesthub/internal/app/system/normalize"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EngagementStore is the persistence surface the engagement endpoints need.
// The Mongo implementation lives in internal/app/store/engagements.
type EngagementStore interface {
	Create(ctx context.Context, e models.Engagement) (models.Engagement, error)
	GetByID(ctx context.Context, id string) (*models.Engagement, error)
	ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Engagement, error)
}

// Handler holds the services the engagement endpoints need.
type Handler struct {
	Engagements EngagementStore
	Roles       *roles.Service
	Orgs        *orgs.Registry
	Users       shared.UserLoader
	Authz       *authz.Resolver
	Log         *zap.Logger
}

// NewHandler constructs the engagements Handler.
func NewHandler(store EngagementStore, svc *roles.Service, registry *orgs.Registry, users shared.UserLoader, resolver *authz.Resolver, logger *zap.Logger) *Handler {
	return &Handler{
		Engagements: store,
		Roles:       svc,
		Orgs:        registry,
		Users:       users,
		Authz:       resolver,
		Log:         logger,
	}
}

// authorize loads the caller and checks permission, scoped to engagementID
// when one is given. Engagement-scoped checks let a lead auditor manage
// their own engagement without holding any platform-wide role.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, permission, engagementID string) bool {
	caller, err := shared.RequestUser(r, h.Users)
	if err != nil {
		shared.Error(w, h.Log, err)
		return false
	}
	if !h.Authz.HasPermission(caller, permission, engagementID) {
		shared.Forbidden(w)
		return false
	}
	return true
}

type createRequest struct {
	Name           string   `json:"name"`
	OrganizationID string   `json:"organization_id"`
	Frameworks     []string `json:"frameworks"`
}

// ServeCreate handles POST /engagements.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "engagement.manage", "") {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed request body"))
		return
	}
	if normalize.Name(req.Name) == "" {
		shared.Error(w, h.Log, apperr.Validationf("name is required"))
		return
	}
	orgID, err := primitive.ObjectIDFromHex(req.OrganizationID)
	if err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed organization_id"))
		return
	}
	if _, err := h.Orgs.Get(r.Context(), orgID); err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	e, err := h.Engagements.Create(r.Context(), models.Engagement{
		Name:           normalize.Name(req.Name),
		OrganizationID: orgID,
		Frameworks:     req.Frameworks,
	})
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	h.Log.Info("engagement created",
		zap.String("engagement_id", e.ID), zap.String("organization_id", orgID.Hex()))
	shared.JSON(w, http.StatusCreated, e)
}

// ServeGet handles GET /engagements/{engagementID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	engagementID := chi.URLParam(r, "engagementID")
	if !h.authorize(w, r, "engagement.view", engagementID) {
		return
	}

	e, err := h.Engagements.GetByID(r.Context(), engagementID)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, e)
}

// ServeList handles GET /engagements?organization_id=...
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "engagement.view", "") {
		return
	}

	orgID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("organization_id"))
	if err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed organization_id"))
		return
	}

	list, err := h.Engagements.ListByOrganization(r.Context(), orgID)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Engagement{}
	}
	shared.JSON(w, http.StatusOK, list)
}

type addMemberRequest struct {
	UserID               string   `json:"user_id"`
	Roles                []string `json:"roles"`
	AssignedControlScope []string `json:"assigned_control_scope"`
}

// ServeAddMember handles POST /engagements/{engagementID}/members. The
// participant projection is rebuilt before the response is written, so a
// follow-up participants read always reflects this change.
func (h *Handler) ServeAddMember(w http.ResponseWriter, r *http.Request) {
	engagementID := chi.URLParam(r, "engagementID")
	if !h.authorize(w, r, "engagement.members.manage", engagementID) {
		return
	}

	if _, err := h.Engagements.GetByID(r.Context(), engagementID); err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed request body"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed user_id"))
		return
	}

	u, err := h.Roles.AddToEngagement(r.Context(), userID, engagementID, req.Roles, req.AssignedControlScope)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	h.Log.Info("engagement member added",
		zap.String("engagement_id", engagementID), zap.String("user_id", userID.Hex()))
	shared.JSON(w, http.StatusOK, u)
}

// ServeRemoveMember handles DELETE /engagements/{engagementID}/members/{userID}.
func (h *Handler) ServeRemoveMember(w http.ResponseWriter, r *http.Request) {
	engagementID := chi.URLParam(r, "engagementID")
	if !h.authorize(w, r, "engagement.members.manage", engagementID) {
		return
	}

	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed user id"))
		return
	}

	if err := h.Roles.RemoveFromEngagement(r.Context(), userID, engagementID); err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	h.Log.Info("engagement member removed",
		zap.String("engagement_id", engagementID), zap.String("user_id", userID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

// ServeParticipants handles GET /engagements/{engagementID}/participants.
// Reads come from the stored projection only.
func (h *Handler) ServeParticipants(w http.ResponseWriter, r *http.Request) {
	engagementID := chi.URLParam(r, "engagementID")
	if !h.authorize(w, r, "engagement.view", engagementID) {
		return
	}

	rows, err := h.Roles.GetParticipants(r.Context(), engagementID)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, rows)
}
