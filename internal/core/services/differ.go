package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
	"github.com/custodia-labs/drivewatch/internal/logger"
)

// MaxCommentPages bounds the comment pages fetched for a single file.
const MaxCommentPages = 100

// DiffResult is returned by CommentDiffer.ListAndDiff.
type DiffResult struct {
	// Emit holds the comments modified strictly after the previous watermark,
	// in API order.
	Emit []domain.Comment

	// Watermark is the new high-watermark. It never precedes the previous one.
	Watermark time.Time
}

// CommentDiffer finds new or modified comments on a file.
type CommentDiffer struct {
	client         driven.DriveClient
	includeDeleted bool
}

// NewCommentDiffer creates a differ.
func NewCommentDiffer(client driven.DriveClient, includeDeleted bool) *CommentDiffer {
	return &CommentDiffer{client: client, includeDeleted: includeDeleted}
}

// ListAndDiff fetches the comments on fileID modified at or after watermark
// and returns those strictly newer than it. Comments exactly at the
// watermark were emitted by an earlier run. A zero watermark means the file
// was never seen and every comment is new.
func (d *CommentDiffer) ListAndDiff(ctx context.Context, fileID string, watermark time.Time) (*DiffResult, error) {
	result := &DiffResult{Watermark: watermark}

	pageToken := ""
	for page := 0; page < MaxCommentPages; page++ {
		comments, err := d.client.ListComments(ctx, driven.CommentsRequest{
			FileID:         fileID,
			Since:          watermark,
			PageToken:      pageToken,
			IncludeDeleted: d.includeDeleted,
		})
		if err != nil {
			return nil, fmt.Errorf("list comments for %s: %w", fileID, err)
		}

		for _, c := range comments.Comments {
			if c.ModifiedTime.IsZero() {
				logger.Warn("comment %s on %s has no modified time, skipping", c.ID, fileID)
				continue
			}
			if c.ModifiedTime.After(result.Watermark) {
				result.Watermark = c.ModifiedTime
			}
			if !watermark.IsZero() && !c.ModifiedTime.After(watermark) {
				continue
			}
			result.Emit = append(result.Emit, c)
		}

		if comments.NextPageToken == "" {
			return result, nil
		}
		pageToken = comments.NextPageToken
	}

	logger.Warn("comments for %s exceed %d pages, remaining pages deferred", fileID, MaxCommentPages)
	return result, nil
}
