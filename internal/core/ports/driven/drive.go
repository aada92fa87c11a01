package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
)

// DriveClient is the subset of the Google Drive API used by the watcher.
// Implementations apply their own rate limiting; the controller bounds
// each call with its request timeout.
type DriveClient interface {
	// StartPageToken returns the cursor for changes from now on.
	StartPageToken(ctx context.Context, scope domain.Scope) (string, error)

	// Watch registers a web_hook channel with the given ID on the changes feed.
	Watch(ctx context.Context, req WatchRequest) (domain.Channel, error)

	// Stop unregisters a channel.
	Stop(ctx context.Context, channelID, resourceID string) error

	// ListChanges returns one page of the changes feed.
	ListChanges(ctx context.Context, pageToken string, scope domain.Scope) (*ChangePage, error)

	// ListComments returns one page of comments on a file. When since is
	// non-zero only comments modified at or after it are returned.
	ListComments(ctx context.Context, req CommentsRequest) (*CommentPage, error)
}

// WatchRequest describes a channel registration.
type WatchRequest struct {
	ChannelID   string
	CallbackURL string
	PageToken   string
	Scope       domain.Scope

	// Token is echoed by Google in the X-Goog-Channel-Token header of
	// every delivery on the channel.
	Token string
}

// ChangePage is one page of the changes feed.
type ChangePage struct {
	// Files are the changed files on this page. Removed files have no
	// metadata and are not included.
	Files []domain.File

	// NextPageToken is set when more pages follow.
	NextPageToken string

	// NewStartPageToken is set on the last page: the cursor for the next poll.
	NewStartPageToken string
}

// CommentsRequest selects a page of comments.
type CommentsRequest struct {
	FileID         string
	Since          time.Time
	PageToken      string
	IncludeDeleted bool
}

// CommentPage is one page of comments.
type CommentPage struct {
	Comments      []domain.Comment
	NextPageToken string
}
