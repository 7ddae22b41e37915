// Package orgs is the organization registry: it owns organization records
// and is the sole domain-matching authority. All auto-provisioning of
// organization association routes through FindOrCreateByDomain; nothing else
// in the codebase parses email domains for this purpose.
package orgs

import (
	"context"

	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/attesthub/internal/app/system/normalize"
	"github.com/dalemusser/attesthub/internal/app/system/status"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrganizationStore is the persistence surface the registry needs.
// FindByDomain and GetByID return apperr.NotFoundError when absent.
// The Mongo implementation lives in internal/app/store/organizations.
type OrganizationStore interface {
	Insert(ctx context.Context, org models.Organization) (models.Organization, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error)
	FindByDomain(ctx context.Context, domain string) (*models.Organization, error)
}

// Registry answers domain lookups and bootstraps organizations.
type Registry struct {
	store OrganizationStore
	log   *zap.Logger
}

// NewRegistry builds a Registry over the given store.
func NewRegistry(store OrganizationStore, logger *zap.Logger) *Registry {
	return &Registry{store: store, log: logger}
}

// Get loads an organization by id.
func (r *Registry) Get(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	return r.store.GetByID(ctx, id)
}

// FindByDomain returns the organization whose domain list contains the
// given email domain, or a NotFoundError.
func (r *Registry) FindByDomain(ctx context.Context, emailDomain string) (*models.Organization, error) {
	d := normalize.Domain(emailDomain)
	if d == "" {
		return nil, apperr.Validationf("domain is required")
	}
	return r.store.FindByDomain(ctx, d)
}

// FallbackOrg describes the organization to create when no existing one
// matches. This is the bootstrap path for the very first administrator, who brings
// their own organization into existence by logging in.
type FallbackOrg struct {
	Name                    string
	DefaultOrganizationRole string
	DefaultEngagementRole   string
}

// FindOrCreateByDomain resolves the organization for a user's email. An
// existing organization matching the email's domain wins; otherwise a new
// one is created from fallback with that domain in its domain list. The
// second return reports whether an organization was created.
func (r *Registry) FindOrCreateByDomain(ctx context.Context, email string, fallback FallbackOrg) (*models.Organization, bool, error) {
	domain := normalize.EmailDomain(email)
	if domain == "" {
		return nil, false, apperr.Validationf("email %q has no domain", email)
	}

	org, err := r.store.FindByDomain(ctx, domain)
	if err == nil {
		return org, false, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, false, err
	}

	name := htmlsanitize.Strip(fallback.Name)
	if name == "" {
		name = domain
	}
	created, err := r.store.Insert(ctx, models.Organization{
		Name:    name,
		NameCI:  text.Fold(name),
		Domains: []string{domain},
		Settings: models.OrganizationSettings{
			DefaultOrganizationRole: fallback.DefaultOrganizationRole,
			DefaultEngagementRole:   fallback.DefaultEngagementRole,
		},
		Status: status.Active,
	})
	if err != nil {
		return nil, false, err
	}
	r.log.Info("bootstrapped organization from email domain",
		zap.String("organization", created.Name), zap.String("domain", domain))
	return &created, true, nil
}

// Create registers an organization with the given name and domains.
func (r *Registry) Create(ctx context.Context, name string, domains []string, settings models.OrganizationSettings) (models.Organization, error) {
	name = htmlsanitize.Strip(name)
	if name == "" {
		return models.Organization{}, apperr.Validationf("name is required")
	}
	cleaned := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = normalize.Domain(d); d != "" {
			cleaned = append(cleaned, d)
		}
	}
	return r.store.Insert(ctx, models.Organization{
		Name:     name,
		NameCI:   text.Fold(name),
		Domains:  cleaned,
		Settings: settings,
		Status:   status.Active,
	})
}
