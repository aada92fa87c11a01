package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// Configuration keys for OAuth credentials.
const (
	KeyClientID     = "google.client_id"
	KeyClientSecret = "google.client_secret"
	KeyRefreshToken = "google.refresh_token"
	KeyAccessToken  = "google.access_token"
)

// Scopes requested for the refresh flow.
var Scopes = []string{drive.DriveReadonlyScope}

// Credentials are the OAuth credentials used to call Drive.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string

	// AccessToken is used as-is when no refresh token is configured.
	// It is not refreshed.
	AccessToken string
}

// CredentialsFromConfig reads credentials from the google.* keys.
func CredentialsFromConfig(cfg driven.ConfigStore) Credentials {
	return Credentials{
		ClientID:     cfg.GetString(KeyClientID),
		ClientSecret: cfg.GetString(KeyClientSecret),
		RefreshToken: cfg.GetString(KeyRefreshToken),
		AccessToken:  cfg.GetString(KeyAccessToken),
	}
}

// OAuthConfig returns the oauth2 client configuration for Google.
// RedirectURL is left empty; the login flow fills it in.
func OAuthConfig(creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       Scopes,
	}
}

// NewTokenSource creates an oauth2.TokenSource for the credentials.
// A refresh token with client credentials yields an auto-refreshing source.
// The returned TokenSource can be used with option.WithTokenSource() when
// creating Google API services.
func NewTokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	if creds.RefreshToken != "" {
		if creds.ClientID == "" || creds.ClientSecret == "" {
			return nil, fmt.Errorf("%w: %s and %s are required with a refresh token",
				domain.ErrInvalidConfig, KeyClientID, KeyClientSecret)
		}
		return OAuthConfig(creds).TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}), nil
	}

	if creds.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: creds.AccessToken,
			TokenType:   "Bearer",
		}), nil
	}

	return nil, fmt.Errorf("%w: no Google credentials configured (set %s or %s)",
		domain.ErrInvalidConfig, KeyRefreshToken, KeyAccessToken)
}
