// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"time"

	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store persists user documents. Every write is a single-document update,
// which is what makes role writes atomic per user.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
var ErrDuplicateEmail = apperr.Conflictf("a user with this email already exists")

// Insert stores a new user document. The caller (the roles service) has
// already normalized and validated fields.
func (s *Store) Insert(ctx context.Context, u models.User) (models.User, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("user", id.Hex())
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("user", email)
		}
		return nil, err
	}
	return &u, nil
}

// UpdateRoles replaces both role arrays in one atomic write.
func (s *Store) UpdateRoles(ctx context.Context, id primitive.ObjectID, systemRoles, organizationRoles []string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"system_roles":       systemRoles,
		"organization_roles": organizationRoles,
		"updated_at":         time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user", id.Hex())
	}
	return nil
}

// UpdateMemberships replaces the engagement membership array in one atomic write.
func (s *Store) UpdateMemberships(ctx context.Context, id primitive.ObjectID, memberships []models.EngagementMembership) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"engagement_memberships": memberships,
		"updated_at":             time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user", id.Hex())
	}
	return nil
}

// UpdateStatus sets the user's status.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user", id.Hex())
	}
	return nil
}

// FindByEngagement returns every user whose memberships reference the
// engagement. This is the reprojection scan.
func (s *Store) FindByEngagement(ctx context.Context, engagementID string) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"engagement_memberships.engagement_id": engagementID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByRole returns users holding roleID in any scope: system roles,
// organization roles, or any engagement membership.
func (s *Store) FindByRole(ctx context.Context, roleID string) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"system_roles": roleID},
		bson.M{"organization_roles": roleID},
		bson.M{"engagement_memberships.roles": roleID},
	}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of user documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
