package testutil

import (
	"context"
	"sync"
	"time"

	engagementstore "github.com/dalemusser/attesthub/internal/app/store/engagements"
	userstore "github.com/dalemusser/attesthub/internal/app/store/users"
	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory store fakes. They honor the same contracts as the Mongo stores
// (NotFoundError on missing documents, copy-on-read so callers never share
// slices with stored state), which lets service and handler tests run
// without a database.

// MemUserStore is an in-memory roles.UserStore.
type MemUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func copyUser(u models.User) models.User {
	out := u
	out.SystemRoles = append([]string(nil), u.SystemRoles...)
	out.OrganizationRoles = append([]string(nil), u.OrganizationRoles...)
	out.EngagementMemberships = make([]models.EngagementMembership, len(u.EngagementMemberships))
	for i, m := range u.EngagementMemberships {
		m.Roles = append([]string(nil), m.Roles...)
		m.AssignedControlScope = append([]string(nil), m.AssignedControlScope...)
		out.EngagementMemberships[i] = m
	}
	return out
}

func (s *MemUserStore) Insert(ctx context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return models.User{}, userstore.ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = copyUser(u)
	return u, nil
}

func (s *MemUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id.Hex())
	}
	out := copyUser(u)
	return &out, nil
}

func (s *MemUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := copyUser(u)
			return &out, nil
		}
	}
	return nil, apperr.NotFound("user", email)
}

func (s *MemUserStore) UpdateRoles(ctx context.Context, id primitive.ObjectID, systemRoles, organizationRoles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperr.NotFound("user", id.Hex())
	}
	u.SystemRoles = append([]string(nil), systemRoles...)
	u.OrganizationRoles = append([]string(nil), organizationRoles...)
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

func (s *MemUserStore) UpdateMemberships(ctx context.Context, id primitive.ObjectID, memberships []models.EngagementMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperr.NotFound("user", id.Hex())
	}
	u.EngagementMemberships = memberships
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = copyUser(u)
	return nil
}

func (s *MemUserStore) FindByEngagement(ctx context.Context, engagementID string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		for _, m := range u.EngagementMemberships {
			if m.EngagementID == engagementID {
				out = append(out, copyUser(u))
				break
			}
		}
	}
	return out, nil
}

func (s *MemUserStore) FindByRole(ctx context.Context, roleID string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if holdsRole(u, roleID) {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func holdsRole(u models.User, roleID string) bool {
	for _, r := range u.SystemRoles {
		if r == roleID {
			return true
		}
	}
	for _, r := range u.OrganizationRoles {
		if r == roleID {
			return true
		}
	}
	for _, m := range u.EngagementMemberships {
		for _, r := range m.Roles {
			if r == roleID {
				return true
			}
		}
	}
	return false
}

// MemParticipantStore is an in-memory roles.ParticipantStore.
type MemParticipantStore struct {
	mu   sync.Mutex
	docs map[string]models.EngagementParticipants

	// Replacements counts Replace calls, letting tests assert that a write
	// path rebuilt the projection.
	Replacements int
}

func NewMemParticipantStore() *MemParticipantStore {
	return &MemParticipantStore{docs: make(map[string]models.EngagementParticipants)}
}

func (s *MemParticipantStore) Replace(ctx context.Context, doc models.EngagementParticipants) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.Participants = append([]models.Participant(nil), doc.Participants...)
	s.docs[doc.EngagementID] = doc
	s.Replacements++
	return nil
}

func (s *MemParticipantStore) Get(ctx context.Context, engagementID string) (*models.EngagementParticipants, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[engagementID]
	if !ok {
		return nil, apperr.NotFound("engagement", engagementID)
	}
	out := doc
	out.Participants = append([]models.Participant(nil), doc.Participants...)
	return &out, nil
}

func (s *MemParticipantStore) Delete(ctx context.Context, engagementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, engagementID)
	return nil
}

// MemOrganizationStore is an in-memory orgs.OrganizationStore.
type MemOrganizationStore struct {
	mu   sync.Mutex
	orgs map[primitive.ObjectID]models.Organization
}

func NewMemOrganizationStore() *MemOrganizationStore {
	return &MemOrganizationStore{orgs: make(map[primitive.ObjectID]models.Organization)}
}

func (s *MemOrganizationStore) Insert(ctx context.Context, org models.Organization) (models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.CreatedAt = now
	org.UpdatedAt = now
	org.Domains = append([]string(nil), org.Domains...)
	s.orgs[org.ID] = org
	return org, nil
}

func (s *MemOrganizationStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, apperr.NotFound("organization", id.Hex())
	}
	out := org
	out.Domains = append([]string(nil), org.Domains...)
	return &out, nil
}

func (s *MemOrganizationStore) FindByDomain(ctx context.Context, domain string) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, org := range s.orgs {
		for _, d := range org.Domains {
			if d == domain {
				out := org
				out.Domains = append([]string(nil), org.Domains...)
				return &out, nil
			}
		}
	}
	return nil, apperr.NotFound("organization", domain)
}

// MemEngagementStore mirrors the Mongo engagement store for handler tests.
type MemEngagementStore struct {
	mu          sync.Mutex
	engagements map[string]models.Engagement
}

func NewMemEngagementStore() *MemEngagementStore {
	return &MemEngagementStore{engagements: make(map[string]models.Engagement)}
}

func (s *MemEngagementStore) Create(ctx context.Context, e models.Engagement) (models.Engagement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Name == "" {
		return models.Engagement{}, apperr.Validationf("engagement name is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.NameCI = text.Fold(e.Name)
	for _, existing := range s.engagements {
		if existing.OrganizationID == e.OrganizationID && existing.NameCI == e.NameCI {
			return models.Engagement{}, engagementstore.ErrDuplicateEngagement
		}
	}
	if e.Status == "" {
		e.Status = "active"
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.engagements[e.ID] = e
	return e, nil
}

func (s *MemEngagementStore) GetByID(ctx context.Context, id string) (*models.Engagement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.engagements[id]
	if !ok {
		return nil, apperr.NotFound("engagement", id)
	}
	out := e
	return &out, nil
}

func (s *MemEngagementStore) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Engagement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Engagement
	for _, e := range s.engagements {
		if e.OrganizationID == orgID {
			out = append(out, e)
		}
	}
	return out, nil
}
