// internal/app/store/participants/participantstore.go
package participantstore

import (
	"context"

	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists the engagement participant projection, one document per
// engagement keyed by engagement id. Replace swaps the whole document in a
// single upsert, so readers observe either the old complete list or the new
// one, never a partially rebuilt projection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("engagement_participants")}
}

// Replace upserts the full projection document for one engagement.
func (s *Store) Replace(ctx context.Context, doc models.EngagementParticipants) error {
	_, err := s.c.ReplaceOne(ctx,
		bson.M{"_id": doc.EngagementID},
		doc,
		options.Replace().SetUpsert(true))
	return err
}

// Get loads the projection for one engagement.
func (s *Store) Get(ctx context.Context, engagementID string) (*models.EngagementParticipants, error) {
	var doc models.EngagementParticipants
	if err := s.c.FindOne(ctx, bson.M{"_id": engagementID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("engagement", engagementID)
		}
		return nil, err
	}
	return &doc, nil
}

// Delete removes the projection for one engagement.
func (s *Store) Delete(ctx context.Context, engagementID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": engagementID})
	return err
}

// CountRows returns the total number of projected participant rows across
// all engagements, for the status report.
func (s *Store) CountRows(ctx context.Context) (int64, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$project": bson.M{"n": bson.M{"$size": "$participants"}}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$n"}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total int64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.Total, nil
}
