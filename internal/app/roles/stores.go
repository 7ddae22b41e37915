// internal/app/roles/stores.go
package roles

import (
	"context"

	"github.com/dalemusser/attesthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the persistence surface the role service needs for user
// documents. Implementations must make each write a single atomic document
// update and must return apperr.NotFoundError when the user id is unknown.
// The Mongo implementation lives in internal/app/store/users.
type UserStore interface {
	Insert(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateRoles replaces both role arrays in one atomic write.
	UpdateRoles(ctx context.Context, id primitive.ObjectID, systemRoles, organizationRoles []string) error
	// UpdateMemberships replaces the engagement membership array in one
	// atomic write.
	UpdateMemberships(ctx context.Context, id primitive.ObjectID, memberships []models.EngagementMembership) error

	// FindByEngagement returns every user whose memberships reference the
	// engagement. Source of truth for reprojection.
	FindByEngagement(ctx context.Context, engagementID string) ([]models.User, error)
	// FindByRole returns users holding roleID in any scope: system,
	// organization, or any engagement membership.
	FindByRole(ctx context.Context, roleID string) ([]models.User, error)
}

// ParticipantStore persists the per-engagement participant projection.
// Replace must swap the whole document atomically; Get must return
// apperr.NotFoundError when no projection exists yet.
// The Mongo implementation lives in internal/app/store/participants.
type ParticipantStore interface {
	Replace(ctx context.Context, doc models.EngagementParticipants) error
	Get(ctx context.Context, engagementID string) (*models.EngagementParticipants, error)
	Delete(ctx context.Context, engagementID string) error
}
