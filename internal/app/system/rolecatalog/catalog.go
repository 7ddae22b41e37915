// Package rolecatalog owns the role definitions and the permissions each
// role grants, partitioned into three disjoint namespaces: system,
// organization, and engagement. Role-ids are not guaranteed disjoint across
// namespaces; a lookup is always namespace-scoped.
//
// The catalog is loaded once at startup from a YAML file (or the built-in
// default when no file is configured) and is immutable afterwards. Hot
// reload replaces the whole catalog atomically via Provider; readers never
// observe a partially built catalog.
package rolecatalog

import (
	"os"
	"time"

	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/normalize"
	"gopkg.in/yaml.v3"
)

// Namespace identifies which of the three role scopes a definition lives in.
type Namespace string

const (
	NamespaceSystem       Namespace = "system"
	NamespaceOrganization Namespace = "organization"
	NamespaceEngagement   Namespace = "engagement"
)

// Wildcard is the sentinel permission token that grants every permission.
const Wildcard = "*"

// PendingRole is the sentinel organization role reinstated whenever a user
// would otherwise end up with zero roles.
const PendingRole = "pending"

// Definition is one catalog entry: a role and the permission set it grants.
type Definition struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Permissions []string `yaml:"permissions"`

	Namespace Namespace `yaml:"-"` // set by the loader from the section
}

// catalogFile is the on-disk YAML shape.
type catalogFile struct {
	SystemRoles       []Definition `yaml:"system_roles"`
	OrganizationRoles []Definition `yaml:"organization_roles"`
	EngagementRoles   []Definition `yaml:"engagement_roles"`
}

// Catalog is an immutable snapshot of role definitions.
type Catalog struct {
	byNS     map[Namespace]map[string]Definition
	perms    map[Namespace]map[string]map[string]struct{}
	source   string
	loadedAt time.Time
}

// systemRoleFallback classifies role-ids the catalog has never heard of.
// The catalog namespace is authoritative when the role is defined; this list
// only routes catalog-unknown ids between the system and organization
// buckets during role assignment.
var systemRoleFallback = map[string]struct{}{
	"admin":   {},
	"auditor": {},
}

func build(file catalogFile, source string) (*Catalog, error) {
	c := &Catalog{
		byNS:     make(map[Namespace]map[string]Definition, 3),
		perms:    make(map[Namespace]map[string]map[string]struct{}, 3),
		source:   source,
		loadedAt: time.Now().UTC(),
	}
	sections := []struct {
		ns   Namespace
		defs []Definition
	}{
		{NamespaceSystem, file.SystemRoles},
		{NamespaceOrganization, file.OrganizationRoles},
		{NamespaceEngagement, file.EngagementRoles},
	}
	for _, sec := range sections {
		byID := make(map[string]Definition, len(sec.defs))
		permsByID := make(map[string]map[string]struct{}, len(sec.defs))
		for _, d := range sec.defs {
			id := normalize.Role(d.ID)
			if id == "" {
				return nil, apperr.Configf("role catalog: empty role id in %s namespace", sec.ns)
			}
			if _, dup := byID[id]; dup {
				return nil, apperr.Configf("role catalog: duplicate role %q in %s namespace", id, sec.ns)
			}
			set := make(map[string]struct{}, len(d.Permissions))
			for _, p := range d.Permissions {
				if p == "" {
					return nil, apperr.Configf("role catalog: role %q in %s namespace has an empty permission", id, sec.ns)
				}
				set[p] = struct{}{}
			}
			d.ID = id
			d.Namespace = sec.ns
			byID[id] = d
			permsByID[id] = set
		}
		c.byNS[sec.ns] = byID
		c.perms[sec.ns] = permsByID
	}
	return c, nil
}

// Load reads and validates a YAML catalog file. A malformed file (bad YAML,
// duplicate role-id within a namespace, non-string or empty permission)
// yields a ConfigError.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Configf("role catalog: read %s: %v", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, apperr.Configf("role catalog: parse %s: %v", path, err)
	}
	return build(file, path)
}

// Lookup returns the definition for roleID in the given namespace.
func (c *Catalog) Lookup(ns Namespace, roleID string) (Definition, bool) {
	d, ok := c.byNS[ns][normalize.Role(roleID)]
	return d, ok
}

// PermissionsOf returns the permission set granted by roleID in the given
// namespace. Unknown roles return an empty set: they are silently
// powerless, never an error, since role-ids may be organization-defined
// strings the catalog has never seen. The returned map must not be modified.
func (c *Catalog) PermissionsOf(ns Namespace, roleID string) map[string]struct{} {
	if set, ok := c.perms[ns][normalize.Role(roleID)]; ok {
		return set
	}
	return nil
}

// Known reports whether roleID is defined in any namespace.
func (c *Catalog) Known(roleID string) bool {
	id := normalize.Role(roleID)
	for _, byID := range c.byNS {
		if _, ok := byID[id]; ok {
			return true
		}
	}
	return false
}

// KnownIn reports whether roleID is defined in the given namespace.
func (c *Catalog) KnownIn(ns Namespace, roleID string) bool {
	_, ok := c.byNS[ns][normalize.Role(roleID)]
	return ok
}

// Classify routes a role-id to the system or organization bucket for role
// assignment. The catalog is authoritative: a role defined in the system
// namespace is system-scoped, one defined in the organization namespace is
// organization-scoped. Ids unknown to the catalog fall back to a fixed
// allow-list of system role-ids; everything else is an organization role.
func (c *Catalog) Classify(roleID string) Namespace {
	id := normalize.Role(roleID)
	if _, ok := c.byNS[NamespaceSystem][id]; ok {
		return NamespaceSystem
	}
	if _, ok := c.byNS[NamespaceOrganization][id]; ok {
		return NamespaceOrganization
	}
	if _, ok := systemRoleFallback[id]; ok {
		return NamespaceSystem
	}
	return NamespaceOrganization
}

// Source returns where this catalog came from ("builtin" for the default).
func (c *Catalog) Source() string { return c.source }

// LoadedAt returns when this catalog snapshot was built.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }

// Counts returns the number of definitions per namespace.
func (c *Catalog) Counts() map[Namespace]int {
	out := make(map[Namespace]int, 3)
	for ns, byID := range c.byNS {
		out[ns] = len(byID)
	}
	return out
}
