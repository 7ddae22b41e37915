// internal/domain/models/participant.go
package models

import "time"

// EngagementParticipants is the denormalized "who is on engagement E" view,
// one document per engagement, rebuilt in full whenever any user's membership
// in that engagement changes. Readers see either the old complete list or the
// new complete list, never a mix.
type EngagementParticipants struct {
	EngagementID string        `bson:"_id" json:"engagement_id"`
	Participants []Participant `bson:"participants" json:"participants"`
	RebuiltAt    time.Time     `bson:"rebuilt_at" json:"rebuilt_at"`
}

// Participant is one row of the projection, copied from the user's
// membership entry at rebuild time.
type Participant struct {
	UserID               string    `bson:"user_id" json:"user_id"`
	FullName             string    `bson:"full_name" json:"full_name"`
	Email                string    `bson:"email" json:"email"`
	Roles                []string  `bson:"roles" json:"roles"`
	AssignedControlScope []string  `bson:"assigned_control_scope" json:"assigned_control_scope"`
	Status               string    `bson:"status" json:"status"`
	JoinedAt             time.Time `bson:"joined_at" json:"joined_at"`
}
