package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data in a real database.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates a test organization with the given name and
// domain list.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string, domains ...string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:      primitive.NewObjectID(),
		Name:    name,
		NameCI:  text.Fold(name),
		Domains: domains,
		Settings: models.OrganizationSettings{
			DefaultOrganizationRole: "pending",
			DefaultEngagementRole:   "observer",
		},
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateUser creates a test user holding the given role lists.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string, systemRoles, organizationRoles []string, orgID *primitive.ObjectID) models.User {
	f.t.Helper()

	if systemRoles == nil {
		systemRoles = []string{}
	}
	if organizationRoles == nil {
		organizationRoles = []string{}
	}
	now := time.Now().UTC()
	user := models.User{
		ID:                    primitive.NewObjectID(),
		FullName:              fullName,
		FullNameCI:            text.Fold(fullName),
		Email:                 email,
		AuthMethod:            "password",
		Status:                "active",
		SystemRoles:           systemRoles,
		OrganizationRoles:     organizationRoles,
		OrganizationID:        orgID,
		EngagementMemberships: []models.EngagementMembership{},
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test user holding the system admin role.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, []string{"admin"}, nil, nil)
}

// CreateEngagement creates a test engagement in the given organization.
func (f *Fixtures) CreateEngagement(ctx context.Context, name string, orgID primitive.ObjectID) models.Engagement {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Engagement{
		ID:             uuid.NewString(),
		Name:           name,
		NameCI:         text.Fold(name),
		OrganizationID: orgID,
		Frameworks:     []string{"soc2"},
		Status:         "active",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("engagements").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test engagement: %v", err)
	}
	return e
}
