package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drivewatch/internal/core/ports/driving"
)

var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Register the Drive notification channel",
	Long: `Registers a push-notification channel on the Drive changes feed and
records the starting cursor. Running it again rotates the channel and
keeps the cursor.`,
	Args: cobra.NoArgs,
	RunE: runActivate,
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Stop the notification channel and clear watch state",
	Args:  cobra.NoArgs,
	RunE:  runDeactivate,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted watch state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(deactivateCmd)
	rootCmd.AddCommand(statusCmd)
}

func runActivate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(app)

	status, err := app.Watcher.Activate(ctx)
	if err != nil {
		return err
	}

	cmd.Println("Watch activated.")
	printStatus(cmd, status)
	return nil
}

func runDeactivate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(app)

	if err := app.Watcher.Deactivate(ctx); err != nil {
		return err
	}

	cmd.Println("Watch deactivated.")
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(app)

	status, err := app.Watcher.Status(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Scope:       %s\n", app.Config.Scope)
	printStatus(cmd, status)
	return nil
}

func printStatus(cmd *cobra.Command, status *driving.WatchStatus) {
	if status == nil || !status.Active {
		cmd.Println("Active:      no")
		return
	}

	cmd.Println("Active:      yes")
	cmd.Printf("Channel:     %s\n", status.ChannelID)
	cmd.Printf("Resource:    %s\n", status.Subscription.ResourceID)
	if exp := status.Subscription.Expiration; !exp.IsZero() {
		cmd.Printf("Expires:     %s (in %s)\n", exp.Format(time.RFC3339), time.Until(exp).Round(time.Second))
	}
	if status.ExpiresSoon {
		cmd.Println("Warning:     channel expires before the next renewal; run serve or activate")
	}
	cmd.Printf("Cursor:      %s\n", status.Cursor)
	cmd.Printf("Files:       %d tracked\n", status.TrackedFiles)
	if status.PendingFiles > 0 {
		cmd.Printf("Retrying:    %d files\n", status.PendingFiles)
	}
}
