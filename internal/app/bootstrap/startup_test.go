package bootstrap

import (
	"testing"

	"github.com/dalemusser/attesthub/internal/app/system/rolecatalog"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/dalemusser/attesthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testDeps(t *testing.T) DBDeps {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return DBDeps{
		MongoDatabase: db,
		Catalog:       rolecatalog.NewProvider(rolecatalog.Default(), zap.NewNop()),
	}
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	deps := testDeps(t)
	ctx := testutil.TestContext(t)

	if err := ensureAdmin(ctx, deps, "Root@Example.com", zap.NewNop()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err := deps.MongoDatabase.Collection("users").
		FindOne(ctx, bson.M{"email": "root@example.com"}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}

	if len(user.SystemRoles) != 1 || user.SystemRoles[0] != "admin" {
		t.Errorf("system roles: got %v, want [admin]", user.SystemRoles)
	}
	if user.Status != "active" {
		t.Errorf("status: got %q, want active", user.Status)
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	deps := testDeps(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, deps.MongoDatabase)

	org := f.CreateOrganization(ctx, "Acme Audit", "acme.example")
	existing := f.CreateUser(ctx, "Existing User", "existing@acme.example",
		nil, []string{"sme"}, &org.ID)

	if err := ensureAdmin(ctx, deps, "existing@acme.example", zap.NewNop()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err := deps.MongoDatabase.Collection("users").
		FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}

	found := false
	for _, r := range user.SystemRoles {
		if r == "admin" {
			found = true
		}
	}
	if !found {
		t.Errorf("system roles: got %v, want to contain admin", user.SystemRoles)
	}
	// Existing organization roles survive the promotion.
	if len(user.OrganizationRoles) != 1 || user.OrganizationRoles[0] != "sme" {
		t.Errorf("organization roles: got %v, want [sme]", user.OrganizationRoles)
	}
}

func TestEnsureAdmin_AlreadyAdmin(t *testing.T) {
	deps := testDeps(t)
	ctx := testutil.TestContext(t)
	f := testutil.NewFixtures(t, deps.MongoDatabase)

	existing := f.CreateAdmin(ctx, "Root Admin", "root@example.com")

	if err := ensureAdmin(ctx, deps, "root@example.com", zap.NewNop()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err := deps.MongoDatabase.Collection("users").
		FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if len(user.SystemRoles) != 1 || user.SystemRoles[0] != "admin" {
		t.Errorf("system roles: got %v, want [admin]", user.SystemRoles)
	}
}
