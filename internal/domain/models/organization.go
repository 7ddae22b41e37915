// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a customer tenant. Organizations own no role data; they are
// the grouping key consulted when resolving organization-scoped roles and
// when auto-associating new users by email domain.
type Organization struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"name_ci"` // always stored
	Domains     []string             `bson:"domains" json:"domains"` // lowercase email domains for auto-association
	ContactInfo string               `bson:"contact_info,omitempty" json:"contact_info,omitempty"`
	Settings    OrganizationSettings `bson:"settings" json:"settings"`
	Status      string               `bson:"status" json:"status"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}

// OrganizationSettings holds per-tenant defaults applied during provisioning.
type OrganizationSettings struct {
	DefaultOrganizationRole string `bson:"default_organization_role" json:"default_organization_role"`
	DefaultEngagementRole   string `bson:"default_engagement_role" json:"default_engagement_role"`
}
