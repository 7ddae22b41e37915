// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging
// level, request limits). AppConfig is everything specific to AttestHub.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: attesthub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session lifetime

	// Role catalog configuration. Blank path means the built-in default
	// catalog; a file is watched and hot-reloaded while the service runs.
	RoleCatalogPath string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks (e.g., "https://attesthub.example.com")
	BaseURL string

	// First-login auto-provisioning: the organization created when a new
	// user's email domain matches no existing organization, and the roles
	// granted by default.
	FallbackOrgName         string
	DefaultOrganizationRole string
	DefaultEngagementRole   string

	// Admin bootstrap: email of a user created or promoted to the system
	// admin role on startup. Blank disables the bootstrap.
	AdminEmail string
}
