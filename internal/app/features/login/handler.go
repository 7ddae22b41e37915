// Package login handles password sign-in. OAuth sign-in lives in
// features/authgoogle.
package login

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/attesthub/internal/app/features/shared"
	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/auth"
	"github.com/dalemusser/attesthub/internal/app/system/normalize"
	"github.com/dalemusser/attesthub/internal/app/system/passhash"
	"github.com/dalemusser/attesthub/internal/app/system/ratelimit"
	"github.com/dalemusser/attesthub/internal/app/system/status"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"go.uber.org/zap"
)

// UserStore is the lookup surface the login endpoint needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler holds dependencies for password sign-in.
type Handler struct {
	Users      UserStore
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter // optional; nil disables rate limiting
	Log        *zap.Logger
}

// NewHandler constructs the login Handler.
func NewHandler(users UserStore, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, SessionMgr: sm, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Serve handles POST /login. Credential failures are indistinguishable from
// unknown accounts in the response.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, h.Log, apperr.Validationf("malformed request body"))
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		shared.Error(w, h.Log, apperr.Validationf("email and password are required"))
		return
	}

	if h.Limiter != nil && !h.Limiter.Check(r, email) {
		h.Log.Info("sign-in rate limited", zap.String("email", email))
		shared.JSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many attempts"})
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), email)
	if err != nil {
		if apperr.IsNotFound(err) {
			h.rejected(w, "unknown account", email)
			return
		}
		shared.Error(w, h.Log, err)
		return
	}

	if u.PassHash == "" || !passhash.Verify(u.PassHash, req.Password) {
		h.rejected(w, "bad credentials", email)
		return
	}
	if u.Status != status.Active {
		h.rejected(w, "account not active", email)
		return
	}

	orgID := ""
	if u.OrganizationID != nil {
		orgID = u.OrganizationID.Hex()
	}
	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:             u.ID.Hex(),
		Name:           u.FullName,
		Email:          u.Email,
		OrganizationID: orgID,
	}); err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.Log.Info("user signed in",
		zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
	shared.JSON(w, http.StatusOK, loginResponse{
		UserID:   u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
	})
}

func (h *Handler) rejected(w http.ResponseWriter, reason, email string) {
	h.Log.Info("sign-in rejected", zap.String("reason", reason), zap.String("email", email))
	shared.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}
