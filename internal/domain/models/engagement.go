// internal/domain/models/engagement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Engagement is a bounded audit project scoped to one organization and one or
// more compliance frameworks. Membership is not stored here: the users
// collection owns it, and engagement_participants carries the derived view.
type Engagement struct {
	ID             string             `bson:"_id" json:"id"` // uuid string
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"name_ci"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Frameworks     []string           `bson:"frameworks" json:"frameworks"` // e.g. "SOC2", "ISO27001"
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
