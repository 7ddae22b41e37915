// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/attesthub/internal/app/system/rolecatalog"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Catalog publishes the active role catalog snapshot. It is loaded
	// alongside the database because the permission resolver cannot serve
	// a single request without it.
	Catalog *rolecatalog.Provider
}
