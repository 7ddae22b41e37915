package authz

import (
	"sort"
	"testing"
	"time"

	"github.com/dalemusser/attesthub/internal/app/system/rolecatalog"
	"github.com/dalemusser/attesthub/internal/app/system/status"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"go.uber.org/zap"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(rolecatalog.NewProvider(rolecatalog.Default(), zap.NewNop()))
}

func activeUser() *models.User {
	return &models.User{
		FullName: "Test User",
		Email:    "user@example.com",
		Status:   status.Active,
	}
}

func TestHasPermission_SystemWildcard(t *testing.T) {
	r := newResolver(t)

	u := activeUser()
	u.SystemRoles = []string{"admin"}

	if !r.HasPermission(u, "system.configure", "") {
		t.Error("admin wildcard should grant system.configure")
	}
	if !r.HasPermission(u, "anything.at.all", "") {
		t.Error("admin wildcard should grant arbitrary permissions")
	}
}

func TestHasPermission_InactiveUserAlwaysDenied(t *testing.T) {
	r := newResolver(t)

	for _, s := range []string{status.Inactive, status.Pending, status.Disabled, ""} {
		u := activeUser()
		u.Status = s
		u.SystemRoles = []string{"admin"}
		if r.HasPermission(u, "engagement.view", "") {
			t.Errorf("status %q should hold no effective permissions", s)
		}
	}
}

func TestHasPermission_OrganizationScope(t *testing.T) {
	r := newResolver(t)

	u := activeUser()
	u.OrganizationRoles = []string{"sme"}

	if !r.HasPermission(u, "controls.view", "") {
		t.Error("org sme should grant controls.view")
	}
	if r.HasPermission(u, "controls.approve", "") {
		t.Error("org sme should not grant controls.approve")
	}
}

func TestHasPermission_OrgRolesApplyWithoutMembership(t *testing.T) {
	// A user with no membership in the engagement still gets organization-
	// derived permissions when checked against that engagement.
	r := newResolver(t)

	u := activeUser()
	u.OrganizationRoles = []string{"sme"}

	if !r.HasPermission(u, "controls.view", "eng-999") {
		t.Error("org permissions apply regardless of engagement membership")
	}
}

func TestHasPermission_EngagementRolesAdd(t *testing.T) {
	r := newResolver(t)

	u := activeUser()
	u.OrganizationRoles = []string{"sme"}
	u.EngagementMemberships = []models.EngagementMembership{{
		EngagementID: "eng-001",
		Roles:        []string{"leadAuditor"},
		Status:       status.Active,
		JoinedAt:     time.Now().UTC(),
	}}

	// Only granted by the engagement role.
	if !r.HasPermission(u, "findings.manage", "eng-001") {
		t.Error("membership role should grant findings.manage for eng-001")
	}
	// No engagement supplied: membership roles do not participate.
	if r.HasPermission(u, "findings.manage", "") {
		t.Error("membership role should not apply without an engagement")
	}
	// Different engagement: that membership does not apply.
	if r.HasPermission(u, "findings.manage", "eng-002") {
		t.Error("membership role should not leak into other engagements")
	}
}

func TestHasPermission_ScopesAreIndependent(t *testing.T) {
	// "sme" exists in both the organization and engagement namespaces with
	// different grants; holding it in one scope means nothing in the other.
	r := newResolver(t)

	u := activeUser()
	u.SystemRoles = []string{"sme"} // no system role named sme exists

	if r.HasPermission(u, "controls.view", "") {
		t.Error("an org-namespace role id held as a system role grants nothing")
	}
}

func TestHasPermission_UnknownRolesArePowerless(t *testing.T) {
	r := newResolver(t)

	u := activeUser()
	u.OrganizationRoles = []string{"customVendorRole"}

	if r.HasPermission(u, "engagement.view", "") {
		t.Error("catalog-unknown role should grant nothing")
	}
}

func TestHasPermission_NilAndEmpty(t *testing.T) {
	r := newResolver(t)

	if r.HasPermission(nil, "engagement.view", "") {
		t.Error("nil user should be denied")
	}
	u := activeUser()
	u.SystemRoles = []string{"admin"}
	if r.HasPermission(u, "", "") {
		t.Error("empty permission should be denied")
	}
}

func TestEffectivePermissions(t *testing.T) {
	r := newResolver(t)

	u := activeUser()
	u.OrganizationRoles = []string{"sme"}
	u.EngagementMemberships = []models.EngagementMembership{{
		EngagementID: "eng-001",
		Roles:        []string{"observer"},
		Status:       status.Active,
	}}

	got := r.EffectivePermissions(u, "eng-001")
	sort.Strings(got)

	want := map[string]bool{
		"engagement.view": true, // both scopes
		"controls.view":   true,
		"evidence.view":   true,
		"evidence.upload": true,
		"reports.view":    true, // observer only
	}
	if len(got) != len(want) {
		t.Fatalf("permissions: got %v, want keys %v", got, want)
	}
	for _, p := range got {
		if !want[p] {
			t.Errorf("unexpected permission %q", p)
		}
	}

	if perms := r.EffectivePermissions(u, ""); len(perms) != 4 {
		t.Errorf("without engagement expected 4 permissions, got %v", perms)
	}
}
