// Package roles owns the canonical role assignments: a user's system roles,
// organization roles, and engagement memberships. It is the only writer of
// role data and the only trigger for the participant projection.
//
// The service is constructed once at startup and injected into its callers;
// there is no package-level state. Writes to a single user document are
// serialized through a striped per-user lock so a role assignment and a
// membership change for the same user cannot lose updates to each other.
package roles

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/metrics"
	"github.com/dalemusser/attesthub/internal/app/system/normalize"
	"github.com/dalemusser/attesthub/internal/app/system/passhash"
	"github.com/dalemusser/attesthub/internal/app/system/rolecatalog"
	"github.com/dalemusser/attesthub/internal/app/system/status"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CatalogSource yields the current role catalog snapshot.
type CatalogSource interface {
	Current() *rolecatalog.Catalog
}

const lockStripes = 64

// Service is the user role store plus the participant projector.
type Service struct {
	users        UserStore
	participants ParticipantStore
	catalog      CatalogSource
	log          *zap.Logger

	locks [lockStripes]sync.Mutex
}

// NewService wires the role service over its stores and the catalog.
func NewService(users UserStore, participants ParticipantStore, catalog CatalogSource, logger *zap.Logger) *Service {
	return &Service{
		users:        users,
		participants: participants,
		catalog:      catalog,
		log:          logger,
	}
}

func (s *Service) userLock(id primitive.ObjectID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(id[:])
	return &s.locks[h.Sum32()%lockStripes]
}

// CreateUserParams carries the identity and initial roles for a new account.
// Roles is a flat list; each id is routed to the system or organization
// bucket by the catalog's classification.
type CreateUserParams struct {
	FullName       string
	Email          string
	AuthMethod     string
	Password       string // optional; hashed when set
	Status         string
	Roles          []string
	OrganizationID *primitive.ObjectID
}

// CreateUser provisions an account. Missing identity fields yield a
// ValidationError. A user is never created role-less: with no roles supplied
// the sentinel pending organization role is assigned.
func (s *Service) CreateUser(ctx context.Context, p CreateUserParams) (models.User, error) {
	name := normalize.Name(p.FullName)
	email := normalize.Email(p.Email)
	if name == "" {
		return models.User{}, apperr.Validationf("full_name is required")
	}
	if email == "" {
		return models.User{}, apperr.Validationf("email is required")
	}
	if p.Status != "" && !status.IsValid(p.Status) {
		return models.User{}, apperr.Validationf("invalid status %q", p.Status)
	}

	u := models.User{
		FullName:              name,
		FullNameCI:            text.Fold(name),
		Email:                 email,
		AuthMethod:            p.AuthMethod,
		Status:                p.Status,
		SystemRoles:           []string{},
		OrganizationRoles:     []string{},
		OrganizationID:        p.OrganizationID,
		EngagementMemberships: []models.EngagementMembership{},
	}
	if u.Status == "" {
		u.Status = status.Active
	}
	if p.Password != "" {
		hash, err := passhash.Hash(p.Password)
		if err != nil {
			return models.User{}, err
		}
		u.PassHash = hash
	}

	cat := s.catalog.Current()
	for _, raw := range p.Roles {
		roleID := normalize.Role(raw)
		if roleID == "" {
			continue
		}
		if !cat.Known(roleID) {
			s.log.Warn("creating user with catalog-unknown role",
				zap.String("email", email), zap.String("role", roleID))
		}
		switch cat.Classify(roleID) {
		case rolecatalog.NamespaceSystem:
			u.SystemRoles = appendUnique(u.SystemRoles, roleID)
		default:
			u.OrganizationRoles = appendUnique(u.OrganizationRoles, roleID)
		}
	}
	if !u.HasAnyRole() {
		u.OrganizationRoles = []string{rolecatalog.PendingRole}
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	return s.users.Insert(ctx, u)
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// AssignRoles adds roleIDs to the user, each routed to the system or
// organization bucket by the catalog's classification. Catalog-unknown
// role-ids are accepted but logged: organizations may define role
// vocabularies the catalog has not caught up with.
func (s *Service) AssignRoles(ctx context.Context, userID primitive.ObjectID, roleIDs []string) (*models.User, error) {
	cleaned := cleanRoleIDs(roleIDs)
	if len(cleaned) == 0 {
		return nil, apperr.Validationf("no roles supplied")
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cat := s.catalog.Current()
	for _, roleID := range cleaned {
		if !cat.Known(roleID) {
			s.log.Warn("assigning catalog-unknown role",
				zap.String("user_id", userID.Hex()), zap.String("role", roleID))
		}
		switch cat.Classify(roleID) {
		case rolecatalog.NamespaceSystem:
			u.SystemRoles = appendUnique(u.SystemRoles, roleID)
		default:
			u.OrganizationRoles = appendUnique(u.OrganizationRoles, roleID)
		}
	}

	if err := s.users.UpdateRoles(ctx, userID, u.SystemRoles, u.OrganizationRoles); err != nil {
		return nil, err
	}
	return u, nil
}

// RemoveRoles strips roleIDs from both scopes. A user is never left
// role-less: when both scopes come up empty the sentinel pending
// organization role is reinstated.
func (s *Service) RemoveRoles(ctx context.Context, userID primitive.ObjectID, roleIDs []string) (*models.User, error) {
	cleaned := cleanRoleIDs(roleIDs)
	if len(cleaned) == 0 {
		return nil, apperr.Validationf("no roles supplied")
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	drop := make(map[string]struct{}, len(cleaned))
	for _, roleID := range cleaned {
		drop[roleID] = struct{}{}
	}
	u.SystemRoles = removeAll(u.SystemRoles, drop)
	u.OrganizationRoles = removeAll(u.OrganizationRoles, drop)

	if len(u.SystemRoles) == 0 && len(u.OrganizationRoles) == 0 {
		u.OrganizationRoles = []string{rolecatalog.PendingRole}
	}

	if err := s.users.UpdateRoles(ctx, userID, u.SystemRoles, u.OrganizationRoles); err != nil {
		return nil, err
	}
	return u, nil
}

// AddToEngagement grants the user roles within one engagement. The call is
// idempotent-additive: an existing membership unions roles and assigned
// scope with the new values and resets status to active. The participant
// projection for the engagement is rebuilt synchronously before returning,
// so a caller observing success may immediately query it.
func (s *Service) AddToEngagement(ctx context.Context, userID primitive.ObjectID, engagementID string, roleIDs, assignedControlScope []string) (*models.User, error) {
	if engagementID == "" {
		return nil, apperr.Validationf("engagement id is required")
	}
	cleaned := cleanRoleIDs(roleIDs)
	if len(cleaned) == 0 {
		return nil, apperr.Validationf("at least one role is required")
	}
	cat := s.catalog.Current()
	recognized := false
	for _, roleID := range cleaned {
		if cat.KnownIn(rolecatalog.NamespaceEngagement, roleID) {
			recognized = true
			break
		}
	}
	if !recognized {
		return nil, apperr.Validationf("no supplied role is recognized by the catalog")
	}

	mu := s.userLock(userID)
	mu.Lock()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		mu.Unlock()
		return nil, err
	}

	if m, ok := u.Membership(engagementID); ok {
		for _, roleID := range cleaned {
			m.Roles = appendUnique(m.Roles, roleID)
		}
		for _, sc := range assignedControlScope {
			if sc = normalize.Name(sc); sc != "" {
				m.AssignedControlScope = appendUnique(m.AssignedControlScope, sc)
			}
		}
		m.Status = status.Active
	} else {
		entry := models.EngagementMembership{
			EngagementID:         engagementID,
			Roles:                cleaned,
			AssignedControlScope: cleanScope(assignedControlScope),
			Status:               status.Active,
			JoinedAt:             time.Now().UTC(),
		}
		u.EngagementMemberships = append(u.EngagementMemberships, entry)
	}

	if err := s.users.UpdateMemberships(ctx, userID, u.EngagementMemberships); err != nil {
		mu.Unlock()
		return nil, err
	}
	mu.Unlock()

	metrics.Reprojections.WithLabelValues("add").Inc()
	if err := s.Reproject(ctx, engagementID); err != nil {
		return nil, err
	}
	return u, nil
}

// RemoveFromEngagement deletes the user's membership entry for the
// engagement and rebuilds its participant projection. Removing a membership
// the user does not hold is a no-op.
func (s *Service) RemoveFromEngagement(ctx context.Context, userID primitive.ObjectID, engagementID string) error {
	if engagementID == "" {
		return apperr.Validationf("engagement id is required")
	}

	mu := s.userLock(userID)
	mu.Lock()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		mu.Unlock()
		return err
	}

	kept := u.EngagementMemberships[:0]
	removed := false
	for _, m := range u.EngagementMemberships {
		if m.EngagementID == engagementID {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	if !removed {
		mu.Unlock()
		return nil
	}
	u.EngagementMemberships = kept

	if err := s.users.UpdateMemberships(ctx, userID, u.EngagementMemberships); err != nil {
		mu.Unlock()
		return err
	}

	if !u.HasAnyRole() {
		u.OrganizationRoles = []string{rolecatalog.PendingRole}
		if err := s.users.UpdateRoles(ctx, userID, u.SystemRoles, u.OrganizationRoles); err != nil {
			mu.Unlock()
			return err
		}
	}
	mu.Unlock()

	metrics.Reprojections.WithLabelValues("remove").Inc()
	return s.Reproject(ctx, engagementID)
}

// GetUsersByRole returns every user holding roleID in any scope. A single
// role-id query spans system roles, organization roles, and engagement
// memberships. This is an administrative listing, not a security check.
func (s *Service) GetUsersByRole(ctx context.Context, roleID string) ([]models.User, error) {
	roleID = normalize.Role(roleID)
	if roleID == "" {
		return nil, apperr.Validationf("role id is required")
	}
	return s.users.FindByRole(ctx, roleID)
}

// Reproject rebuilds the participant projection for one engagement from the
// source-of-truth user documents and replaces the stored projection
// atomically. Rebuilds are never incremental; deriving the whole list from
// current membership data is what keeps the projection from drifting.
func (s *Service) Reproject(ctx context.Context, engagementID string) error {
	started := time.Now()

	users, err := s.users.FindByEngagement(ctx, engagementID)
	if err != nil {
		return err
	}

	rows := make([]models.Participant, 0, len(users))
	for i := range users {
		u := &users[i]
		m, ok := u.Membership(engagementID)
		if !ok {
			continue
		}
		rows = append(rows, models.Participant{
			UserID:               u.ID.Hex(),
			FullName:             u.FullName,
			Email:                u.Email,
			Roles:                append([]string(nil), m.Roles...),
			AssignedControlScope: append([]string(nil), m.AssignedControlScope...),
			Status:               m.Status,
			JoinedAt:             m.JoinedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].JoinedAt.Equal(rows[j].JoinedAt) {
			return rows[i].JoinedAt.Before(rows[j].JoinedAt)
		}
		return rows[i].UserID < rows[j].UserID
	})

	err = s.participants.Replace(ctx, models.EngagementParticipants{
		EngagementID: engagementID,
		Participants: rows,
		RebuiltAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	metrics.ReprojectionDuration.Observe(time.Since(started).Seconds())
	return nil
}

// GetParticipants reads the current projection for an engagement. It never
// falls back to scanning user documents; freshness is guaranteed by the
// synchronous reprojection on every membership write, not by re-deriving on
// read. An engagement with no projection yet has no participants.
func (s *Service) GetParticipants(ctx context.Context, engagementID string) ([]models.Participant, error) {
	doc, err := s.participants.Get(ctx, engagementID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return []models.Participant{}, nil
		}
		return nil, err
	}
	return doc.Participants, nil
}

func cleanRoleIDs(roleIDs []string) []string {
	out := make([]string, 0, len(roleIDs))
	seen := make(map[string]struct{}, len(roleIDs))
	for _, raw := range roleIDs {
		roleID := normalize.Role(raw)
		if roleID == "" {
			continue
		}
		if _, dup := seen[roleID]; dup {
			continue
		}
		seen[roleID] = struct{}{}
		out = append(out, roleID)
	}
	return out
}

func cleanScope(scope []string) []string {
	out := make([]string, 0, len(scope))
	for _, raw := range scope {
		if sc := normalize.Name(raw); sc != "" {
			out = appendUnique(out, sc)
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}

func removeAll(list []string, drop map[string]struct{}) []string {
	out := list[:0]
	for _, v := range list {
		if _, gone := drop[v]; !gone {
			out = append(out, v)
		}
	}
	return out
}
