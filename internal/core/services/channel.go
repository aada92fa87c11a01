package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
	"github.com/custodia-labs/drivewatch/internal/logger"
)

// IDFunc generates channel IDs and tokens.
type IDFunc func() string

// NewChannelID returns a random UUID channel ID.
func NewChannelID() string {
	return uuid.NewString()
}

// NewChannelToken returns a random channel verification token.
func NewChannelToken() string {
	return uuid.NewString()
}

// ActivateResult is returned by ChannelManager.Activate.
type ActivateResult struct {
	StartCursor string
	Channel     domain.Channel
}

// RenewResult is returned by ChannelManager.Renew.
type RenewResult struct {
	Channel domain.Channel
	Cursor  string
}

// ChannelManager owns the notification channel lifecycle.
type ChannelManager struct {
	client   driven.DriveClient
	newID    IDFunc
	newToken IDFunc
}

// NewChannelManager creates a channel manager. If newID is nil, UUIDs are used.
// Every channel gets a fresh random token.
func NewChannelManager(client driven.DriveClient, newID IDFunc) *ChannelManager {
	if newID == nil {
		newID = NewChannelID
	}
	return &ChannelManager{client: client, newID: newID, newToken: NewChannelToken}
}

// NewID returns a fresh channel ID.
func (m *ChannelManager) NewID() string {
	return m.newID()
}

// Activate gets a start cursor for the scope and registers a watch under
// channelID. Reusing a stored channelID keeps a prior subscription from
// being orphaned under a different ID.
func (m *ChannelManager) Activate(
	ctx context.Context, channelID, callbackURL string, scope domain.Scope,
) (*ActivateResult, error) {
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel ID is required", domain.ErrInvalidInput)
	}

	cursor, err := m.client.StartPageToken(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("get start page token: %w", err)
	}

	channel, err := m.client.Watch(ctx, driven.WatchRequest{
		ChannelID:   channelID,
		CallbackURL: callbackURL,
		PageToken:   cursor,
		Scope:       scope,
		Token:       m.newToken(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrChannelCreate, err)
	}

	logger.Info("channel %s active on %s until %s",
		channel.ID, scope, channel.Expiration.Format(time.RFC3339))

	return &ActivateResult{StartCursor: cursor, Channel: channel}, nil
}

// Deactivate stops a channel. It is best effort: missing identifiers are
// logged and ignored. Callers clear local state before calling, so a failure
// here leaves at worst an orphaned remote channel that expires on its own.
func (m *ChannelManager) Deactivate(ctx context.Context, channelID, resourceID string) error {
	if channelID == "" {
		logger.Debug("channel not found, cannot stop notifications")
		return nil
	}
	if resourceID == "" {
		logger.Debug("no resource ID for channel %s, cannot stop notifications", channelID)
		return nil
	}

	if err := m.client.Stop(ctx, channelID, resourceID); err != nil {
		return fmt.Errorf("stop channel %s: %w", channelID, err)
	}
	logger.Info("channel %s stopped", channelID)
	return nil
}

// Renew replaces the current channel. It runs unconditionally on every
// tick: a fresh channel is created first, then the old one is stopped.
//
// A failure to create the new channel is returned and nothing is stopped.
// A failure to stop the old channel is logged; the duplicate channel only
// causes duplicate deliveries, which header checks and watermarks absorb.
//
// The cursor is returned unchanged. Only when no cursor exists yet is a
// start cursor fetched.
func (m *ChannelManager) Renew(
	ctx context.Context,
	scope domain.Scope,
	current domain.Subscription,
	callbackURL string,
	channelID string,
	cursor string,
) (*RenewResult, error) {
	if cursor == "" {
		token, err := m.client.StartPageToken(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("get start page token: %w", err)
		}
		cursor = token
	}

	if !current.IsZero() {
		logger.Debug("channel %s for resource %s expires at %s, renewing",
			channelID, current.ResourceID, current.Expiration.Format(time.RFC3339))
	}

	newID := m.newID()
	channel, err := m.client.Watch(ctx, driven.WatchRequest{
		ChannelID:   newID,
		CallbackURL: callbackURL,
		PageToken:   cursor,
		Scope:       scope,
		Token:       m.newToken(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrChannelCreate, err)
	}

	if channelID != "" && current.ResourceID != "" {
		if err := m.client.Stop(ctx, channelID, current.ResourceID); err != nil {
			logger.Warn("failed to stop previous channel %s: %v", channelID, err)
		}
	}

	logger.Info("channel renewed: %s active until %s", channel.ID, channel.Expiration.Format(time.RFC3339))

	return &RenewResult{Channel: channel, Cursor: cursor}, nil
}
