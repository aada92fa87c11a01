package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/drivewatch/internal/adapters/driving/oauth"
	"github.com/custodia-labs/drivewatch/internal/connectors/google"
)

var (
	authPort      int
	authNoBrowser bool
)

// loginFlow runs the authorization flow. Replaced in tests.
var loginFlow = func(ctx context.Context, f *oauth.Flow) (*oauth2.Token, error) {
	return f.Login(ctx)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google credentials",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize drivewatch and store a refresh token",
	Long: `Opens the Google consent page for read-only Drive access and stores the
resulting refresh token in the config file. google.client_id and
google.client_secret must be set to a desktop OAuth client.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which Google credentials are configured",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().IntVar(&authPort, "port", 0, "loopback port for the redirect (0 picks a free port)")
	authLoginCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the consent URL instead of opening a browser")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	creds := google.CredentialsFromConfig(cfg)
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("set %s and %s in %s first", google.KeyClientID, google.KeyClientSecret, cfg.Path())
	}

	flow := &oauth.Flow{
		Config: google.OAuthConfig(creds),
		Port:   authPort,
		OnURL: func(url string) {
			cmd.Printf("Open this URL to authorize drivewatch:\n\n  %s\n\n", url)
		},
	}
	if authNoBrowser {
		flow.OpenURL = func(string) error { return nil }
	}

	tok, err := loginFlow(cmd.Context(), flow)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	if tok.RefreshToken == "" {
		return errors.New("google returned no refresh token; revoke the app's access and retry")
	}

	if err := cfg.Set(google.KeyRefreshToken, tok.RefreshToken); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}

	cmd.Printf("Refresh token saved to %s\n", cfg.Path())
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	creds := google.CredentialsFromConfig(cfg)
	cmd.Printf("Client ID:     %s\n", configured(creds.ClientID != ""))
	cmd.Printf("Client secret: %s\n", configured(creds.ClientSecret != ""))
	cmd.Printf("Refresh token: %s\n", configured(creds.RefreshToken != ""))
	cmd.Printf("Access token:  %s\n", configured(creds.AccessToken != ""))

	if _, err := google.NewTokenSource(cmd.Context(), creds); err != nil {
		cmd.Printf("\n%v\n", err)
	}
	return nil
}

func configured(ok bool) string {
	if ok {
		return "set"
	}
	return "not set"
}
