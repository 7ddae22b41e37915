// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"slices"

	"github.com/dalemusser/attesthub/internal/app/roles"
	participantstore "github.com/dalemusser/attesthub/internal/app/store/participants"
	userstore "github.com/dalemusser/attesthub/internal/app/store/users"
	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/normalize"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.RoleCatalogPath != "" {
		// The watcher runs until the app context is cancelled. Reload
		// failures keep the previous catalog, so it never needs restarting.
		go func() {
			if err := deps.Catalog.Watch(ctx, appCfg.RoleCatalogPath); err != nil && ctx.Err() == nil {
				logger.Error("role catalog watcher stopped", zap.Error(err))
			}
		}()
	}

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin creates or promotes the configured bootstrap administrator.
// An existing user keeps their roles and gains the system admin role; an
// unknown email gets a fresh active account holding only that role.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)
	email = normalize.Email(email)

	u, err := users.GetByEmail(ctx, email)
	if err == nil {
		if slices.Contains(u.SystemRoles, "admin") {
			logger.Info("bootstrap admin already present", zap.String("email", email))
			return nil
		}
		systemRoles := append(append([]string{}, u.SystemRoles...), "admin")
		if err := users.UpdateRoles(ctx, u.ID, systemRoles, u.OrganizationRoles); err != nil {
			return err
		}
		logger.Info("promoted existing user to system admin",
			zap.String("user_id", u.ID.Hex()), zap.String("email", email))
		return nil
	}
	if !apperr.IsNotFound(err) {
		return err
	}

	svc := roles.NewService(users, participantstore.New(deps.MongoDatabase), deps.Catalog, logger)
	created, err := svc.CreateUser(ctx, roles.CreateUserParams{
		FullName: email,
		Email:    email,
		Roles:    []string{"admin"},
	})
	if err != nil {
		return err
	}
	logger.Info("created bootstrap admin",
		zap.String("user_id", created.ID.Hex()), zap.String("email", email))
	return nil
}
