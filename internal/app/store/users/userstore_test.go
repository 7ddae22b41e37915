package userstore_test

import (
	"testing"
	"time"

	userstore "github.com/dalemusser/attesthub/internal/app/store/users"
	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/dalemusser/attesthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestInsertAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)

	u, err := store.Insert(ctx, models.User{
		FullName:          "Ada Kessler",
		Email:             "ada@example.com",
		Status:            "active",
		SystemRoles:       []string{"admin"},
		OrganizationRoles: []string{},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if u.ID.IsZero() {
		t.Fatal("expected an id to be assigned")
	}

	byID, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Email != "ada@example.com" {
		t.Errorf("email: got %q", byID.Email)
	}

	byEmail, err := store.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("GetByEmail returned wrong user: %s", byEmail.ID.Hex())
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !apperr.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestUpdateRoles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)
	f := testutil.NewFixtures(t, db)

	u := f.CreateUser(ctx, "Ben Okafor", "ben@example.com", nil, []string{"pending"}, nil)

	if err := store.UpdateRoles(ctx, u.ID, []string{"admin"}, []string{"sme"}); err != nil {
		t.Fatalf("UpdateRoles: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.SystemRoles) != 1 || got.SystemRoles[0] != "admin" {
		t.Errorf("system roles: got %v", got.SystemRoles)
	}
	if len(got.OrganizationRoles) != 1 || got.OrganizationRoles[0] != "sme" {
		t.Errorf("organization roles: got %v", got.OrganizationRoles)
	}
	if err := store.UpdateRoles(ctx, primitive.NewObjectID(), nil, nil); !apperr.IsNotFound(err) {
		t.Errorf("unknown user: expected NotFoundError, got %v", err)
	}
}

func TestFindByEngagementAndRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)
	f := testutil.NewFixtures(t, db)

	member := f.CreateUser(ctx, "In Engagement", "in@example.com", nil, nil, nil)
	f.CreateUser(ctx, "Outside", "out@example.com", []string{"auditor"}, nil, nil)

	err := store.UpdateMemberships(ctx, member.ID, []models.EngagementMembership{{
		EngagementID: "eng-001",
		Roles:        []string{"controlOwner"},
		Status:       "active",
		JoinedAt:     time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("UpdateMemberships: %v", err)
	}

	inEng, err := store.FindByEngagement(ctx, "eng-001")
	if err != nil {
		t.Fatalf("FindByEngagement: %v", err)
	}
	if len(inEng) != 1 || inEng[0].ID != member.ID {
		t.Errorf("FindByEngagement: got %d users", len(inEng))
	}

	byMembershipRole, err := store.FindByRole(ctx, "controlOwner")
	if err != nil {
		t.Fatalf("FindByRole: %v", err)
	}
	if len(byMembershipRole) != 1 || byMembershipRole[0].ID != member.ID {
		t.Errorf("FindByRole(controlOwner): got %d users", len(byMembershipRole))
	}

	bySystemRole, err := store.FindByRole(ctx, "auditor")
	if err != nil {
		t.Fatalf("FindByRole: %v", err)
	}
	if len(bySystemRole) != 1 {
		t.Errorf("FindByRole(auditor): got %d users", len(bySystemRole))
	}
}
