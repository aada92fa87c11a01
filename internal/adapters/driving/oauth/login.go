package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds how long Login waits for the user to consent.
const DefaultTimeout = 5 * time.Minute

// Flow is a loopback authorization code flow with PKCE.
type Flow struct {
	// Config holds the client credentials, endpoint and scopes.
	// RedirectURL is overwritten with the loopback address.
	Config *oauth2.Config

	// Port to listen on. 0 picks a free port.
	Port int

	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration

	// OpenURL presents the consent URL. Defaults to OpenBrowser.
	OpenURL func(url string) error

	// OnURL is called with the consent URL before OpenURL, so callers
	// can print it for headless machines.
	OnURL func(url string)
}

// Login runs the flow and returns the exchanged token. Google only
// returns a refresh token with offline access and forced consent, so
// both are always requested.
func (f *Flow) Login(ctx context.Context) (*oauth2.Token, error) {
	if f.Config == nil {
		return nil, errors.New("oauth: no client configuration")
	}

	state := uuid.NewString()
	srv := NewCallbackServer(f.Port, state)
	if err := srv.Start(); err != nil {
		return nil, err
	}
	defer func() { _ = srv.Stop() }()

	conf := *f.Config
	conf.RedirectURL = srv.RedirectURI()

	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	if f.OnURL != nil {
		f.OnURL(authURL)
	}
	open := f.OpenURL
	if open == nil {
		open = OpenBrowser
	}
	// The URL was already handed to OnURL, so a browser failure is not fatal.
	_ = open(authURL)

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	code, err := srv.WaitForCode(ctx, timeout)
	if err != nil {
		return nil, err
	}

	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}
