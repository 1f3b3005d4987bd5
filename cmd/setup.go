package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/playlister/internal/shared"
	"github.com/desertthunder/playlister/internal/storage"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded example configuration.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set spotify.client_id (or %s in .env)\n", shared.EnvClientID)
	r.writePlain("2. Run 'playlister auth login'\n")
	return nil
}

// SetupStorage creates the local storage database and runs migrations.
func (r *Runner) SetupStorage(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	if config == nil {
		var err error
		if config, err = r.loadConfig(cmd.String("config")); err != nil {
			return err
		}
	}

	r.logger.Info("initializing storage", "path", config.Storage.Path)

	store, err := storage.Open(config.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer store.Close()

	keys, err := store.Keys(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for storage: %v", config.Storage.Path)
	return r.writePlain("✓ Storage ready at %s (%d keys)\n", config.Storage.Path, len(keys))
}
