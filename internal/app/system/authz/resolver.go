// Package authz resolves effective permissions from a user's role
// assignments and the role catalog.
//
// A check never mutates state; it is a pure function of the user document
// and the current catalog snapshot.
package authz

import (
	"github.com/dalemusser/attesthub/internal/app/system/metrics"
	"github.com/dalemusser/attesthub/internal/app/system/rolecatalog"
	"github.com/dalemusser/attesthub/internal/app/system/status"
	"github.com/dalemusser/attesthub/internal/domain/models"
)

// CatalogSource yields the current role catalog snapshot.
// *rolecatalog.Provider satisfies it.
type CatalogSource interface {
	Current() *rolecatalog.Catalog
}

// Resolver answers permission checks against the role catalog.
type Resolver struct {
	catalog CatalogSource
}

// NewResolver builds a Resolver over the given catalog source.
func NewResolver(catalog CatalogSource) *Resolver {
	return &Resolver{catalog: catalog}
}

// HasPermission reports whether the user holds the permission.
//
// System and organization roles are always-on authority and always count.
// When engagementID is non-empty and the user has a membership for it, that
// membership's roles count as well; with no membership the user still gets
// whatever the system/organization roles grant (platform-wide oversight).
// Users whose status is not active hold no effective permissions at all.
func (r *Resolver) HasPermission(u *models.User, permission, engagementID string) bool {
	ok := r.check(u, permission, engagementID)
	if ok {
		metrics.PermissionChecks.WithLabelValues("allowed").Inc()
	} else {
		metrics.PermissionChecks.WithLabelValues("denied").Inc()
	}
	return ok
}

func (r *Resolver) check(u *models.User, permission, engagementID string) bool {
	if u == nil || permission == "" {
		return false
	}
	if u.Status != status.Active {
		return false
	}
	cat := r.catalog.Current()

	for _, roleID := range u.SystemRoles {
		if grants(cat, rolecatalog.NamespaceSystem, roleID, permission) {
			return true
		}
	}
	for _, roleID := range u.OrganizationRoles {
		if grants(cat, rolecatalog.NamespaceOrganization, roleID, permission) {
			return true
		}
	}
	if engagementID != "" {
		if m, ok := u.Membership(engagementID); ok {
			for _, roleID := range m.Roles {
				if grants(cat, rolecatalog.NamespaceEngagement, roleID, permission) {
					return true
				}
			}
		}
	}
	return false
}

// EffectivePermissions returns the full permission set the user would pass
// checks for, using the same candidate-role rule as HasPermission. Intended
// for administrative display, not enforcement.
func (r *Resolver) EffectivePermissions(u *models.User, engagementID string) []string {
	if u == nil || u.Status != status.Active {
		return nil
	}
	cat := r.catalog.Current()
	set := make(map[string]struct{})

	collect := func(ns rolecatalog.Namespace, roleIDs []string) {
		for _, roleID := range roleIDs {
			for p := range cat.PermissionsOf(ns, roleID) {
				set[p] = struct{}{}
			}
		}
	}
	collect(rolecatalog.NamespaceSystem, u.SystemRoles)
	collect(rolecatalog.NamespaceOrganization, u.OrganizationRoles)
	if engagementID != "" {
		if m, ok := u.Membership(engagementID); ok {
			collect(rolecatalog.NamespaceEngagement, m.Roles)
		}
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

func grants(cat *rolecatalog.Catalog, ns rolecatalog.Namespace, roleID, permission string) bool {
	perms := cat.PermissionsOf(ns, roleID)
	if len(perms) == 0 {
		return false
	}
	if _, ok := perms[rolecatalog.Wildcard]; ok {
		return true
	}
	_, ok := perms[permission]
	return ok
}
