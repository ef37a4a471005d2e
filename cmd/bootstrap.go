package cmd

import (
	"context"
	"fmt"

	"github.com/rm-hull/godx"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/auth"
	"github.com/rm-hull/l8tefuel-api/internal/config"
)

// bootstrap initialises shared resources used by the API server and the
// user management commands. It returns the price lookup client, a migrated
// repository with the initial admin account in place, and an error if
// something failed during startup.
func bootstrap(cfg *config.Config) (internal.PriceLookupClient, internal.Repository, error) {
	godx.GitVersion()
	godx.EnvironmentVars()
	godx.UserInfo()

	client := internal.NewPriceLookupClient(cfg.TankerkoenigURL, cfg.TankerkoenigAPIKey)

	db, err := internal.Connect(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := internal.Migrate(cfg.MigrationsPath, cfg.DBPath); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate SQL: %w", err)
	}

	repo := internal.NewRepository(db)

	if _, err := auth.EnsureAdmin(context.Background(), repo, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("failed to create admin account: %w", err)
	}

	return client, repo, nil
}
