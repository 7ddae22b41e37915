// internal/app/store/engagements/engagementstore.go
package engagementstore

import (
	"context"
	"time"

	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/status"
	"github.com/dalemusser/attesthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateEngagement = apperr.Conflictf("an engagement with this name already exists in the organization")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("engagements")}
}

// Create inserts a new engagement, generating its id when absent.
func (s *Store) Create(ctx context.Context, e models.Engagement) (models.Engagement, error) {
	if e.Name == "" {
		return models.Engagement{}, apperr.Validationf("engagement name is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.NameCI = text.Fold(e.Name)
	if e.Status == "" {
		e.Status = status.Active
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Engagement{}, ErrDuplicateEngagement
		}
		return models.Engagement{}, err
	}
	return e, nil
}

// GetByID loads an engagement by its id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Engagement, error) {
	var e models.Engagement
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("engagement", id)
		}
		return nil, err
	}
	return &e, nil
}

// ListByOrganization returns an organization's engagements sorted by name.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Engagement, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Engagement
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of engagement documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
