// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/dalemusser/attesthub/internal/app/features/authgoogle"
	engagementsfeature "github.com/dalemusser/attesthub/internal/app/features/engagements"
	healthfeature "github.com/dalemusser/attesthub/internal/app/features/health"
	loginfeature "github.com/dalemusser/attesthub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/attesthub/internal/app/features/logout"
	organizationsfeature "github.com/dalemusser/attesthub/internal/app/features/organizations"
	statusfeature "github.com/dalemusser/attesthub/internal/app/features/status"
	usersfeature "github.com/dalemusser/attesthub/internal/app/features/users"
	"github.com/dalemusser/attesthub/internal/app/orgs"
	"github.com/dalemusser/attesthub/internal/app/roles"
	engagementstore "github.com/dalemusser/attesthub/internal/app/store/engagements"
	organizationstore "github.com/dalemusser/attesthub/internal/app/store/organizations"
	participantstore "github.com/dalemusser/attesthub/internal/app/store/participants"
	userstore "github.com/dalemusser/attesthub/internal/app/store/users"
	"github.com/dalemusser/attesthub/internal/app/system/auth"
	"github.com/dalemusser/attesthub/internal/app/system/authz"
	"github.com/dalemusser/attesthub/internal/app/system/metrics"
	"github.com/dalemusser/attesthub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It builds the stores, the role service,
// and the permission resolver once, then mounts a feature router per URL
// area. Session state carries identity only; every handler re-reads the
// caller's user document, so role changes take effect on the next request.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	users := userstore.New(deps.MongoDatabase)
	organizations := organizationstore.New(deps.MongoDatabase)
	engagements := engagementstore.New(deps.MongoDatabase)
	participants := participantstore.New(deps.MongoDatabase)

	resolver := authz.NewResolver(deps.Catalog)
	roleSvc := roles.NewService(users, participants, deps.Catalog, logger)
	registry := orgs.NewRegistry(organizations, logger)

	fallback := orgs.FallbackOrg{
		Name:                    appCfg.FallbackOrgName,
		DefaultOrganizationRole: appCfg.DefaultOrganizationRole,
		DefaultEngagementRole:   appCfg.DefaultEngagementRole,
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	// Prometheus metrics.
	r.Handle("/metrics", metrics.Handler())

	// Operational status (admin only).
	statusHandler := &statusfeature.Handler{
		Users:         users,
		Organizations: organizations,
		Engagements:   engagements,
		Participants:  participants,
		UserLoader:    users,
		Catalog:       deps.Catalog,
		Authz:         resolver,
		Log:           logger,
	}
	r.Mount("/status", statusfeature.Routes(statusHandler))

	// Authentication.
	loginHandler := loginfeature.NewHandler(users, sessionMgr, logger)
	loginHandler.Limiter = ratelimit.NewLoginLimiter()
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Mount("/logout", logoutfeature.Routes(logoutfeature.NewHandler(sessionMgr, logger)))

	googleHandler := authgooglefeature.NewHandler(
		users, roleSvc, registry, sessionMgr,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL, appCfg.SessionKey,
		fallback, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// User and role administration.
	usersHandler := usersfeature.NewHandler(roleSvc, users, resolver, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Engagements and the participant projection.
	engagementsHandler := engagementsfeature.NewHandler(engagements, roleSvc, registry, users, resolver, logger)
	r.Mount("/engagements", engagementsfeature.Routes(engagementsHandler))

	// Organizations.
	orgsHandler := organizationsfeature.NewHandler(registry, users, resolver, logger)
	r.Mount("/organizations", organizationsfeature.Routes(orgsHandler))

	return r, nil
}
