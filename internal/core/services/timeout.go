package services

import (
	"context"
	"time"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// timeoutClient bounds every remote call with its own deadline, so a long
// paginated drain is limited per page rather than as a whole.
type timeoutClient struct {
	client  driven.DriveClient
	timeout time.Duration
}

var _ driven.DriveClient = (*timeoutClient)(nil)

func withCallTimeout(client driven.DriveClient, d time.Duration) *timeoutClient {
	return &timeoutClient{client: client, timeout: d}
}

func (c *timeoutClient) StartPageToken(ctx context.Context, scope domain.Scope) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.StartPageToken(ctx, scope)
}

func (c *timeoutClient) Watch(ctx context.Context, req driven.WatchRequest) (domain.Channel, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Watch(ctx, req)
}

func (c *timeoutClient) Stop(ctx context.Context, channelID, resourceID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Stop(ctx, channelID, resourceID)
}

func (c *timeoutClient) ListChanges(ctx context.Context, pageToken string, scope domain.Scope) (*driven.ChangePage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.ListChanges(ctx, pageToken, scope)
}

func (c *timeoutClient) ListComments(ctx context.Context, req driven.CommentsRequest) (*driven.CommentPage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.ListComments(ctx, req)
}
