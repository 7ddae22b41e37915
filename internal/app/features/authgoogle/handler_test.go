package authgoogle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/attesthub/internal/app/orgs"
	"github.com/dalemusser/attesthub/internal/app/roles"
	"github.com/dalemusser/attesthub/internal/app/system/auth"
	"github.com/dalemusser/attesthub/internal/app/system/rolecatalog"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/dalemusser/attesthub/internal/testutil"
	"go.uber.org/zap"
)

const testSessionKey = "test-session-key-must-be-32-chars-long"

type env struct {
	h     *Handler
	users *testutil.MemUserStore
	orgs  *testutil.MemOrganizationStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	users := testutil.NewMemUserStore()
	orgStore := testutil.NewMemOrganizationStore()
	provider := rolecatalog.NewProvider(rolecatalog.Default(), zap.NewNop())
	svc := roles.NewService(users, testutil.NewMemParticipantStore(), provider, zap.NewNop())
	registry := orgs.NewRegistry(orgStore, zap.NewNop())
	sm, err := auth.NewSessionManager(testSessionKey, "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	h := NewHandler(
		users, svc, registry, sm,
		"client-id", "client-secret", "https://attesthub.example.com", testSessionKey,
		orgs.FallbackOrg{Name: "Unaffiliated", DefaultOrganizationRole: "sme", DefaultEngagementRole: "observer"},
		zap.NewNop(),
	)
	return &env{h: h, users: users, orgs: orgStore}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	e := newEnv(t)
	e.h.ClientID = ""

	rec := httptest.NewRecorder()
	e.h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "google_not_configured") {
		t.Errorf("redirect location: got %q", loc)
	}
}

func TestServeLogin_RedirectsToConsent(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect location: %v", err)
	}
	if loc.Host != "accounts.google.com" {
		t.Errorf("redirect host: got %q", loc.Host)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("consent URL has no state parameter")
	}

	var stateSet *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookie {
			stateSet = c
		}
	}
	if stateSet == nil {
		t.Fatal("state cookie not set")
	}

	// The state in the consent URL must match the signed cookie.
	cb := httptest.NewRequest("GET", "/auth/google/callback?state="+url.QueryEscape(state), nil)
	cb.AddCookie(stateSet)
	if !e.h.validState(cb) {
		t.Error("state from consent URL does not validate against the cookie")
	}
}

func TestServeCallback_InvalidState(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state=forged&code=abc", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "invalid_state") {
		t.Errorf("redirect location: got %q", loc)
	}
}

func TestServeCallback_ProviderDenied(t *testing.T) {
	e := newEnv(t)

	rec := httptest.NewRecorder()
	e.h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil))

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "google_denied") {
		t.Errorf("redirect location: got %q", loc)
	}
}

func TestResolveUser_ExistingAccount(t *testing.T) {
	e := newEnv(t)
	existing, err := e.users.Insert(context.Background(), models.User{
		FullName: "Mira Voss",
		Email:    "mira@acme.example",
		Status:   "active",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	u, err := e.h.resolveUser(context.Background(), &googleUserInfo{Email: "mira@acme.example", Name: "Mira Voss"})
	if err != nil {
		t.Fatalf("resolveUser: %v", err)
	}
	if u.ID != existing.ID {
		t.Errorf("resolved wrong user: got %s, want %s", u.ID.Hex(), existing.ID.Hex())
	}
}

func TestResolveUser_AutoProvision(t *testing.T) {
	e := newEnv(t)

	u, err := e.h.resolveUser(context.Background(), &googleUserInfo{Email: "new@newco.example", Name: "New Person"})
	if err != nil {
		t.Fatalf("resolveUser: %v", err)
	}
	if u.FullName != "New Person" {
		t.Errorf("full name: got %q", u.FullName)
	}
	if u.OrganizationID == nil {
		t.Fatal("provisioned user has no organization")
	}

	org, err := e.orgs.GetByID(context.Background(), *u.OrganizationID)
	if err != nil {
		t.Fatalf("load organization: %v", err)
	}
	if org.Name != "Unaffiliated" {
		t.Errorf("organization name: got %q", org.Name)
	}

	// The fallback's default role ends up on the user, classified as an
	// organization role.
	found := false
	for _, r := range u.OrganizationRoles {
		if r == "sme" {
			found = true
		}
	}
	if !found {
		t.Errorf("organization roles: got %v, want to contain sme", u.OrganizationRoles)
	}

	// A second login with the same domain reuses the organization.
	u2, err := e.h.resolveUser(context.Background(), &googleUserInfo{Email: "other@newco.example", Name: "Other Person"})
	if err != nil {
		t.Fatalf("second resolveUser: %v", err)
	}
	if u2.OrganizationID == nil || *u2.OrganizationID != org.ID {
		t.Error("second user from the same domain got a different organization")
	}
}

func TestResolveUser_PendingWhenNoDefaultRole(t *testing.T) {
	e := newEnv(t)
	e.h.Fallback.DefaultOrganizationRole = ""

	u, err := e.h.resolveUser(context.Background(), &googleUserInfo{Email: "first@solo.example", Name: "First"})
	if err != nil {
		t.Fatalf("resolveUser: %v", err)
	}
	if len(u.OrganizationRoles) != 1 || u.OrganizationRoles[0] != rolecatalog.PendingRole {
		t.Errorf("organization roles: got %v, want [%s]", u.OrganizationRoles, rolecatalog.PendingRole)
	}
}

func TestResolveUser_NameFallsBackToEmail(t *testing.T) {
	e := newEnv(t)

	u, err := e.h.resolveUser(context.Background(), &googleUserInfo{Email: "anon@newco.example"})
	if err != nil {
		t.Fatalf("resolveUser: %v", err)
	}
	if u.FullName != "anon@newco.example" {
		t.Errorf("full name: got %q", u.FullName)
	}
}
