// Package cli provides the drivewatch command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drivewatch/internal/adapters/driving/webhook"
	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driving"
	"github.com/custodia-labs/drivewatch/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// App is the set of services a command runs against.
type App struct {
	Config  domain.WatchConfig
	Watcher driving.Watcher
	Events  driven.EventLog
	Webhook webhook.Options

	// Close releases stores and output files. May be nil.
	Close func() error
}

// ConfigLoader opens the configuration in dir. An empty dir selects the default.
type ConfigLoader func(dir string) (driven.ConfigStore, error)

// Bootstrap builds an App from loaded configuration.
type Bootstrap func(ctx context.Context, cfg driven.ConfigStore) (*App, error)

var (
	configLoader ConfigLoader
	bootstrap    Bootstrap

	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "drivewatch",
	Short: "Watch Google Drive for new and edited comments",
	Long: `drivewatch subscribes to the Google Drive changes feed, renews the
notification channel on a timer and emits one event per new or edited
comment on changed files.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.drivewatch)")
}

// SetConfigLoader sets how commands open configuration.
func SetConfigLoader(l ConfigLoader) {
	configLoader = l
}

// SetBootstrap sets how commands build their services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (driven.ConfigStore, error) {
	if configLoader == nil {
		return nil, errors.New("configuration not available")
	}
	return configLoader(configDir)
}

// openApp loads configuration and wires services. The caller must call
// closeApp when done.
func openApp(ctx context.Context) (*App, error) {
	if bootstrap == nil {
		return nil, errors.New("watch service not configured")
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	app, err := bootstrap(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if app.Watcher == nil {
		closeApp(app)
		return nil, errors.New("watch service not configured")
	}
	return app, nil
}

func closeApp(app *App) {
	if app == nil || app.Close == nil {
		return
	}
	if err := app.Close(); err != nil {
		logger.Warn("close: %v", err)
	}
}
