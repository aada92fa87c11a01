package drive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/drivewatch/internal/connectors/google"
	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
	"github.com/custodia-labs/drivewatch/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.DriveClient = (*Client)(nil)

// Page sizes for list calls.
const (
	ChangesPageSize  = 1000
	CommentsPageSize = 100
)

// ChannelType is the only delivery mechanism Drive supports.
const ChannelType = "web_hook"

// ErrIncompleteChannel indicates Drive accepted a watch but returned no resource ID.
var ErrIncompleteChannel = errors.New("drive: watch response has no resource id")

// Client talks to the Drive v3 API.
type Client struct {
	svc     *drive.Service
	limiter *google.RateLimiter
}

// NewClient wraps a Drive service. A nil limiter uses the Drive defaults.
func NewClient(svc *drive.Service, limiter *google.RateLimiter) *Client {
	if limiter == nil {
		limiter = google.NewRateLimiter()
	}
	return &Client{svc: svc, limiter: limiter}
}

// StartPageToken returns the changes cursor for "now".
func (c *Client) StartPageToken(ctx context.Context, scope domain.Scope) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	call := c.svc.Changes.GetStartPageToken().Context(ctx)
	if !scope.IsDefault() {
		call = call.DriveId(scope.DriveID).SupportsAllDrives(true)
	}

	resp, err := call.Do()
	if err != nil {
		return "", c.wrap("get start page token", err)
	}
	return resp.StartPageToken, nil
}

// Watch registers a web_hook channel on the changes feed starting at
// req.PageToken.
func (c *Client) Watch(ctx context.Context, req driven.WatchRequest) (domain.Channel, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Channel{}, err
	}

	ch := &drive.Channel{
		Id:      req.ChannelID,
		Type:    ChannelType,
		Address: req.CallbackURL,
		Token:   req.Token,
	}

	call := c.svc.Changes.Watch(req.PageToken, ch).Context(ctx)
	if !req.Scope.IsDefault() {
		call = call.DriveId(req.Scope.DriveID).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true)
	}

	resp, err := call.Do()
	if err != nil {
		return domain.Channel{}, c.wrap("watch changes", err)
	}
	if resp.ResourceId == "" {
		return domain.Channel{}, ErrIncompleteChannel
	}

	id := resp.Id
	if id == "" {
		id = req.ChannelID
	}

	token := resp.Token
	if token == "" {
		token = req.Token
	}

	logger.Debug("drive: watching channel %s resource %s", id, resp.ResourceId)

	return domain.Channel{
		ID:          id,
		ResourceID:  resp.ResourceId,
		ResourceURI: resp.ResourceUri,
		Expiration:  expirationTime(resp.Expiration),
		Token:       token,
	}, nil
}

// Stop unregisters a channel.
func (c *Client) Stop(ctx context.Context, channelID, resourceID string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	err := c.svc.Channels.Stop(&drive.Channel{
		Id:         channelID,
		ResourceId: resourceID,
	}).Context(ctx).Do()
	if err != nil {
		return c.wrap("stop channel", err)
	}
	return nil
}

// ListChanges returns one page of the changes feed.
func (c *Client) ListChanges(ctx context.Context, pageToken string, scope domain.Scope) (*driven.ChangePage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := c.svc.Changes.List(pageToken).
		PageSize(ChangesPageSize).
		Fields(googleapi.Field(changeFields)).
		Context(ctx)
	if !scope.IsDefault() {
		call = call.DriveId(scope.DriveID).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, c.wrap("list changes", err)
	}

	page := &driven.ChangePage{
		NextPageToken:     resp.NextPageToken,
		NewStartPageToken: resp.NewStartPageToken,
	}
	for _, change := range resp.Changes {
		if f, ok := ChangeToFile(change); ok {
			page.Files = append(page.Files, f)
		}
	}
	return page, nil
}

// ListComments returns one page of comments on a file.
func (c *Client) ListComments(ctx context.Context, req driven.CommentsRequest) (*driven.CommentPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := c.svc.Comments.List(req.FileID).
		PageSize(CommentsPageSize).
		IncludeDeleted(req.IncludeDeleted).
		Fields(googleapi.Field(commentFields)).
		Context(ctx)
	if !req.Since.IsZero() {
		call = call.StartModifiedTime(req.Since.UTC().Format(time.RFC3339Nano))
	}
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, c.wrap("list comments", err)
	}

	page := &driven.CommentPage{NextPageToken: resp.NextPageToken}
	for _, comment := range resp.Comments {
		if comment == nil {
			continue
		}
		page.Comments = append(page.Comments, ToComment(comment))
	}
	return page, nil
}

// wrap maps a Google API error and arms the limiter's backoff on rate limits.
func (c *Client) wrap(op string, err error) error {
	if google.IsRateLimited(err) {
		c.limiter.RecordRateLimitError(google.RetryAfter(err))
	}
	return fmt.Errorf("%s: %w", op, google.WrapError(err))
}

// expirationTime converts Drive's millisecond epoch to a time. Zero means unset.
func expirationTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
