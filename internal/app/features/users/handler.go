// Package users exposes the user and role administration API: account
// creation, role assignment and removal, and role-based listing. All role
// mutation goes through the roles service; handlers never touch role arrays
// directly.
package users

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/attesthub/internal/app/features/shared"
	"github.com/dalemusser/attesthub/internal/app/roles"
	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const managePermission = "org.members.manage"

// Handler holds the services the user endpoints need.
type Handler struct {
	Roles *roles.Service
	Users shared.UserLoader
	Authz *authz.Resolver
	Log   *zap.Logger
}

// NewHandler constructs the users Handler.
func NewHandler(svc *roles.Service, users shared.UserLoader, resolver *authz.Resolver, logger *zap.Logger) *Handler {
	return &Handler{Roles: svc, Users: users, Authz: resolver, Log: logger}
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
	FullName       string   `json:"full_name"`
	Email          string   `json:"email"`
	AuthMethod     string   `json:"auth_method"`
	Password       string   `json:"password"`
	Status         string   `json:"status"`
	Roles          []string `json:"roles"`
	OrganizationID string   `json:"organization_id"`
}

// ServeCreate handles POST /users.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed request body"))
		return
	}

	params := roles.CreateUserParams{
		FullName:   req.FullName,
		Email:      req.Email,
		AuthMethod: req.AuthMethod,
		Password:   req.Password,
		Status:     req.Status,
		Roles:      req.Roles,
	}
	if req.OrganizationID != "" {
		orgID, err := primitive.ObjectIDFromHex(req.OrganizationID)
		if err != nil {
			shared.Error(w, h.Log, apperr.Validationf("malformed organization_id"))
			return
		}
		params.OrganizationID = &orgID
	}

	u, err := h.Roles.CreateUser(r.Context(), params)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	h.Log.Info("user created",
		zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
	shared.JSON(w, http.StatusCreated, u)
}

// ServeGet handles GET /users/{userID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed user id"))
		return
	}

	u, err := h.Roles.GetUser(r.Context(), id)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, u)
}

type roleChangeRequest struct {
	Roles []string `json:"roles"`
}

// ServeAssignRoles handles POST /users/{userID}/roles.
func (h *Handler) ServeAssignRoles(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed user id"))
		return
	}
	var req roleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed request body"))
		return
	}

	u, err := h.Roles.AssignRoles(r.Context(), id, req.Roles)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, u)
}

// ServeRemoveRoles handles POST /users/{userID}/roles/remove.
func (h *Handler) ServeRemoveRoles(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed user id"))
		return
	}
	var req roleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed request body"))
		return
	}

	u, err := h.Roles.RemoveRoles(r.Context(), id, req.Roles)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, u)
}

// ServeListByRole handles GET /users/by-role/{roleID}.
func (h *Handler) ServeListByRole(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	users, err := h.Roles.GetUsersByRole(r.Context(), chi.URLParam(r, "roleID"))
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, users)
}

// ServePermissions handles GET /users/{userID}/permissions. It reports the
// caller-visible effective permission set, optionally scoped to one
// engagement via ?engagement_id=.
func (h *Handler) ServePermissions(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed user id"))
		return
	}
	u, err := h.Roles.GetUser(r.Context(), id)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	engagementID := r.URL.Query().Get("engagement_id")
	perms := h.Authz.EffectivePermissions(u, engagementID)
	shared.JSON(w, http.StatusOK, map[string]any{
		"user_id":     u.ID.Hex(),
		"permissions": perms,
	})
}
