// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"time"

	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateOrganization = apperr.Conflictf("an organization with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

// Insert stores a new organization. The registry has already normalized
// name and domains.
func (s *Store) Insert(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.CreatedAt = now
	org.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("organization", id.Hex())
		}
		return nil, err
	}
	return &org, nil
}

// FindByDomain returns the organization whose domain list contains the
// given (already lowercased) email domain.
func (s *Store) FindByDomain(ctx context.Context, domain string) (*models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"domains": domain}).Decode(&org); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("organization", domain)
		}
		return nil, err
	}
	return &org, nil
}

// List returns organizations sorted by folded name.
func (s *Store) List(ctx context.Context) ([]models.Organization, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Count returns the number of organization documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
