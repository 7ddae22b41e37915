package orgs_test

import (
	"context"
	"testing"

	"github.com/dalemusser/attesthub/internal/app/orgs"
	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/dalemusser/attesthub/internal/testutil"
	"go.uber.org/zap"
)

func newRegistry(t *testing.T) (*orgs.Registry, *testutil.MemOrganizationStore) {
	t.Helper()
	store := testutil.NewMemOrganizationStore()
	return orgs.NewRegistry(store, zap.NewNop()), store
}

func TestFindByDomain_Existing(t *testing.T) {
	r, store := newRegistry(t)
	ctx := context.Background()

	seeded, err := store.Insert(ctx, models.Organization{
		Name: "Meridian Compliance", Domains: []string{"meridian.example"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := r.FindByDomain(ctx, "MERIDIAN.example")
	if err != nil {
		t.Fatalf("FindByDomain: %v", err)
	}
	if got.ID != seeded.ID {
		t.Errorf("got organization %s, want %s", got.ID.Hex(), seeded.ID.Hex())
	}
}

func TestFindByDomain_EmptyDomain(t *testing.T) {
	r, _ := newRegistry(t)

	if _, err := r.FindByDomain(context.Background(), "  "); !apperr.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestFindOrCreateByDomain_MatchesExisting(t *testing.T) {
	r, store := newRegistry(t)
	ctx := context.Background()

	seeded, _ := store.Insert(ctx, models.Organization{
		Name: "Meridian Compliance", Domains: []string{"meridian.example"},
	})

	got, created, err := r.FindOrCreateByDomain(ctx, "casey@meridian.example", orgs.FallbackOrg{Name: "Fallback"})
	if err != nil {
		t.Fatalf("FindOrCreateByDomain: %v", err)
	}
	if created {
		t.Error("should not create when an organization matches the domain")
	}
	if got.ID != seeded.ID {
		t.Errorf("got organization %s, want %s", got.ID.Hex(), seeded.ID.Hex())
	}
}

func TestFindOrCreateByDomain_CreatesFromFallback(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	got, created, err := r.FindOrCreateByDomain(ctx, "casey@newco.example", orgs.FallbackOrg{
		Name:                    "NewCo",
		DefaultOrganizationRole: "pending",
		DefaultEngagementRole:   "observer",
	})
	if err != nil {
		t.Fatalf("FindOrCreateByDomain: %v", err)
	}
	if !created {
		t.Fatal("expected an organization to be created")
	}
	if got.Name != "NewCo" {
		t.Errorf("name: got %q", got.Name)
	}
	if len(got.Domains) != 1 || got.Domains[0] != "newco.example" {
		t.Errorf("domains: got %v, want [newco.example]", got.Domains)
	}
	if got.Settings.DefaultOrganizationRole != "pending" {
		t.Errorf("default organization role: got %q", got.Settings.DefaultOrganizationRole)
	}

	// The created organization is now findable, so a second login from the
	// same domain reuses it.
	again, created, err := r.FindOrCreateByDomain(ctx, "riley@newco.example", orgs.FallbackOrg{Name: "Other"})
	if err != nil {
		t.Fatalf("second FindOrCreateByDomain: %v", err)
	}
	if created {
		t.Error("second call should reuse the created organization")
	}
	if again.ID != got.ID {
		t.Errorf("second call returned %s, want %s", again.ID.Hex(), got.ID.Hex())
	}
}

func TestFindOrCreateByDomain_EmptyFallbackNameUsesDomain(t *testing.T) {
	r, _ := newRegistry(t)

	got, created, err := r.FindOrCreateByDomain(context.Background(), "x@solo.example", orgs.FallbackOrg{})
	if err != nil {
		t.Fatalf("FindOrCreateByDomain: %v", err)
	}
	if !created || got.Name != "solo.example" {
		t.Errorf("created=%v name=%q, want created with domain as name", created, got.Name)
	}
}

func TestFindOrCreateByDomain_BadEmail(t *testing.T) {
	r, _ := newRegistry(t)

	if _, _, err := r.FindOrCreateByDomain(context.Background(), "not-an-email", orgs.FallbackOrg{}); !apperr.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestCreate_SanitizesAndNormalizes(t *testing.T) {
	r, _ := newRegistry(t)

	got, err := r.Create(context.Background(), "<b>Acme</b> Audit",
		[]string{" ACME.example ", ""}, models.OrganizationSettings{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Name != "Acme Audit" {
		t.Errorf("name: got %q, want markup stripped", got.Name)
	}
	if len(got.Domains) != 1 || got.Domains[0] != "acme.example" {
		t.Errorf("domains: got %v, want [acme.example]", got.Domains)
	}
}

func TestCreate_EmptyName(t *testing.T) {
	r, _ := newRegistry(t)

	if _, err := r.Create(context.Background(), "  ", nil, models.OrganizationSettings{}); !apperr.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}
