package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	eventsLimit int
	eventsJSON  bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recently emitted comment events",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 20, "maximum number of events")
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "print one JSON object per line")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(app)

	if app.Events == nil {
		return errors.New("event log not configured")
	}

	emissions, err := app.Events.Recent(ctx, eventsLimit)
	if err != nil {
		return err
	}

	if eventsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		for _, e := range emissions {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}

	if len(emissions) == 0 {
		cmd.Println("No events recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 0, 3, ' ', 0)
	_, _ = w.Write([]byte("TIME\tFILE\tCOMMENT\tMESSAGE\tSUMMARY\n"))
	for _, e := range emissions {
		row := []string{
			e.Meta.Timestamp.Format(time.RFC3339),
			e.Event.File.Name,
			e.Event.Comment.ID,
			e.Meta.ID,
			truncate(e.Meta.Summary, 60),
		}
		_, _ = w.Write([]byte(strings.Join(row, "\t") + "\n"))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
