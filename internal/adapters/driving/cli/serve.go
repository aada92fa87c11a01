package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/drivewatch/internal/adapters/driving/webhook"
	"github.com/custodia-labs/drivewatch/internal/core/services"
	"github.com/custodia-labs/drivewatch/internal/logger"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive notifications and renew the channel on a timer",
	Long: `Runs the webhook endpoint Google delivers to and the renewal timer.
The watch is activated first if no channel is recorded. An existing
channel is renewed immediately so a stale subscription is replaced.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides webhook.listen)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(app)

	status, err := app.Watcher.Status(ctx)
	if err != nil {
		return err
	}
	renewNow := status.Active
	if !status.Active {
		if status, err = app.Watcher.Activate(ctx); err != nil {
			return err
		}
		logger.Info("activated channel %s", status.ChannelID)
	}

	opts := app.Webhook
	if serveListen != "" {
		opts.Listen = serveListen
	}
	server := webhook.NewServer(app.Watcher, opts)
	scheduler := services.NewScheduler(app.Config.RenewalInterval, app.Watcher, renewNow)

	cmd.Printf("Serving notifications (renewal every %s)\n", app.Config.RenewalInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx) })
	g.Go(func() error { return scheduler.Start(gctx) })

	err = g.Wait()
	printRenewal(cmd, scheduler.Record())
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err == nil {
		cmd.Println("Stopped.")
	}
	return err
}

func printRenewal(cmd *cobra.Command, rec services.TickRecord) {
	switch {
	case rec.LastRun.IsZero():
		cmd.Println("No renewal ran.")
	case rec.LastError != "":
		cmd.Printf("Last renewal failed at %s: %s\n", rec.LastRun.Format(time.RFC3339), rec.LastError)
	case rec.Expiration.IsZero():
		cmd.Printf("Last renewal: %s\n", rec.LastSuccess.Format(time.RFC3339))
	default:
		cmd.Printf("Last renewal: %s (channel expires %s)\n",
			rec.LastSuccess.Format(time.RFC3339), rec.Expiration.Format(time.RFC3339))
	}
}
