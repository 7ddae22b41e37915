// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dalemusser/attesthub/internal/app/orgs"
	"github.com/dalemusser/attesthub/internal/app/roles"
	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/auth"
	"github.com/dalemusser/attesthub/internal/app/system/status"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateCookie = "oauth_state"

// UserStore is the lookup surface the OAuth callback needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler handles Google OAuth sign-in with first-login auto-provisioning:
// an unknown account is created on the fly, associated to an organization by
// its email domain, and given that organization's default role.
type Handler struct {
	Users      UserStore
	Roles      *roles.Service
	Orgs       *orgs.Registry
	SessionMgr *auth.SessionManager
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://attesthub.example.com/auth/google/callback"

	// Fallback describes the organization created when no existing one
	// matches a new user's email domain.
	Fallback orgs.FallbackOrg

	state *securecookie.SecureCookie
}

// NewHandler creates a new Google OAuth handler. The state cookie is signed
// with the session key and expires after ten minutes.
func NewHandler(
	users UserStore,
	svc *roles.Service,
	registry *orgs.Registry,
	sessionMgr *auth.SessionManager,
	clientID, clientSecret, baseURL, sessionKey string,
	fallback orgs.FallbackOrg,
	logger *zap.Logger,
) *Handler {
	sc := securecookie.New([]byte(sessionKey), nil)
	sc.MaxAge(600)
	return &Handler{
		Users:        users,
		Roles:        svc,
		Orgs:         registry,
		SessionMgr:   sessionMgr,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		Fallback:     fallback,
		state:        sc,
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google: it stores a signed state cookie and
// redirects to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	encoded, err := h.state.Encode(stateCookie, state)
	if err != nil {
		h.Log.Error("failed to encode OAuth state cookie", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: it validates state,
// exchanges the code, resolves or provisions the user, and signs them in.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	if !h.validState(r) {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	u, err := h.resolveUser(ctx, googleUser)
	if err != nil {
		h.Log.Error("failed to resolve OAuth user", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if u.Status != status.Active {
		h.Log.Info("Google OAuth: account not active",
			zap.String("email", u.Email), zap.String("status", u.Status))
		http.Redirect(w, r, "/login?error=account_disabled", http.StatusSeeOther)
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
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", u.Email))
		http.Redirect(w, r, "/login?error=session", http.StatusSeeOther)
		return
	}

	h.Log.Info("user logged in via Google OAuth",
		zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// validState checks the state query parameter against the signed cookie.
func (h *Handler) validState(r *http.Request) bool {
	state := r.URL.Query().Get("state")
	if state == "" {
		return false
	}
	c, err := r.Cookie(stateCookie)
	if err != nil {
		return false
	}
	var stored string
	if err := h.state.Decode(stateCookie, c.Value, &stored); err != nil {
		return false
	}
	return stored == state
}

// resolveUser finds the account for a Google identity, provisioning it on
// first login. The new user's organization comes from the email domain; the
// organization's default role (or the pending sentinel) is assigned.
func (h *Handler) resolveUser(ctx context.Context, googleUser *googleUserInfo) (*models.User, error) {
	u, err := h.Users.GetByEmail(ctx, googleUser.Email)
	if err == nil {
		return u, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	org, created, err := h.Orgs.FindOrCreateByDomain(ctx, googleUser.Email, h.Fallback)
	if err != nil {
		return nil, err
	}
	if created {
		h.Log.Info("organization auto-created for first login",
			zap.String("organization_id", org.ID.Hex()), zap.String("name", org.Name))
	}

	var initialRoles []string
	if org.Settings.DefaultOrganizationRole != "" {
		initialRoles = []string{org.Settings.DefaultOrganizationRole}
	}
	name := googleUser.Name
	if name == "" {
		name = googleUser.Email
	}

	newUser, err := h.Roles.CreateUser(ctx, roles.CreateUserParams{
		FullName:       name,
		Email:          googleUser.Email,
		AuthMethod:     "google",
		Status:         status.Active,
		Roles:          initialRoles,
		OrganizationID: &org.ID,
	})
	if err != nil {
		return nil, err
	}

	h.Log.Info("user auto-provisioned via Google OAuth",
		zap.String("user_id", newUser.ID.Hex()),
		zap.String("email", newUser.Email),
		zap.String("organization_id", org.ID.Hex()))
	return &newUser, nil
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
