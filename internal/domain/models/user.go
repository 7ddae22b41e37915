// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents auditors, client staff, and platform administrators.
//
// Role data lives in three independent scopes on the user document:
//   - SystemRoles apply platform-wide.
//   - OrganizationRoles apply only within the user's organization.
//   - EngagementMemberships carry per-engagement role sets.
//
// A role-id in one scope is unrelated to an identically named role-id in
// another scope. The user document is the ownership root for all role data;
// the engagement_participants collection is a derived view, never the source.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	AuthMethod string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"`
	PassHash   string             `bson:"pass_hash,omitempty" json:"-"`
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`

	SystemRoles       []string `bson:"system_roles" json:"system_roles"`
	OrganizationRoles []string `bson:"organization_roles" json:"organization_roles"`

	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`

	EngagementMemberships []EngagementMembership `bson:"engagement_memberships" json:"engagement_memberships"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EngagementMembership is one entry in a user's engagement list.
// Roles and AssignedControlScope are sets; writes union rather than replace.
type EngagementMembership struct {
	EngagementID         string    `bson:"engagement_id" json:"engagement_id"`
	Roles                []string  `bson:"roles" json:"roles"`
	AssignedControlScope []string  `bson:"assigned_control_scope" json:"assigned_control_scope"`
	Status               string    `bson:"status" json:"status"` // active | inactive | pending
	JoinedAt             time.Time `bson:"joined_at" json:"joined_at"`
}

// Membership returns the membership entry for engagementID, if any.
func (u *User) Membership(engagementID string) (*EngagementMembership, bool) {
	for i := range u.EngagementMemberships {
		if u.EngagementMemberships[i].EngagementID == engagementID {
			return &u.EngagementMemberships[i], true
		}
	}
	return nil, false
}

// HasAnyRole reports whether the user holds at least one role in any scope.
func (u *User) HasAnyRole() bool {
	if len(u.SystemRoles) > 0 || len(u.OrganizationRoles) > 0 {
		return true
	}
	for _, m := range u.EngagementMemberships {
		if len(m.Roles) > 0 {
			return true
		}
	}
	return false
}
