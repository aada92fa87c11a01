// Command drivewatch watches Google Drive for comment changes.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/custodia-labs/drivewatch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/drivewatch/internal/adapters/driven/emitter"
	"github.com/custodia-labs/drivewatch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/drivewatch/internal/adapters/driving/cli"
	"github.com/custodia-labs/drivewatch/internal/adapters/driving/webhook"
	"github.com/custodia-labs/drivewatch/internal/connectors/google"
	"github.com/custodia-labs/drivewatch/internal/connectors/google/drive"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
	"github.com/custodia-labs/drivewatch/internal/core/services"
)

func main() {
	cli.SetConfigLoader(loadConfig)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(dir string) (driven.ConfigStore, error) {
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// bootstrap wires the Drive client, the SQLite state and event log and
// the JSON lines output into a controller.
func bootstrap(ctx context.Context, cfg driven.ConfigStore) (*cli.App, error) {
	watchCfg, err := drive.ParseConfig(cfg)
	if err != nil {
		return nil, err
	}

	ts, err := google.NewTokenSource(ctx, google.CredentialsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	svc, err := google.NewDriveService(ctx, ts)
	if err != nil {
		return nil, err
	}
	client := drive.NewClient(svc, google.NewRateLimiter())

	store, err := sqlite.NewStore(cfg.GetString(sqlite.KeyDataDir))
	if err != nil {
		return nil, err
	}

	out, err := emitter.OpenOutput(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	// The event log dedupes, so it comes first: a replayed event stops
	// there and is not written to the output again.
	events := store.EventLog()
	controller := services.NewController(
		watchCfg,
		store.StateStore(),
		client,
		emitter.NewFanout(events, emitter.NewJSONLines(out)),
		services.ControllerOptions{},
	)

	return &cli.App{
		Config:  watchCfg,
		Watcher: controller,
		Events:  events,
		Webhook: webhook.OptionsFromConfig(cfg),
		Close: func() error {
			return errors.Join(out.Close(), store.Close())
		},
	}, nil
}
