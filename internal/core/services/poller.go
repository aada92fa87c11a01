package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// MaxChangePages bounds a single poll so a misbehaving feed cannot loop forever.
const MaxChangePages = 1000

// ErrMalformedChangePage indicates a changes page carried neither a next
// page token nor a new start page token.
var ErrMalformedChangePage = errors.New("changes page has no continuation token")

// PollResult is returned by ChangePoller.GetChanges.
type PollResult struct {
	// Files are the changed files, one entry per file ID.
	Files []domain.File

	// NewCursor is where the next poll resumes.
	NewCursor string
}

// ChangePoller drains the changes feed from a cursor.
type ChangePoller struct {
	client driven.DriveClient
}

// NewChangePoller creates a poller.
func NewChangePoller(client driven.DriveClient) *ChangePoller {
	return &ChangePoller{client: client}
}

// GetChanges fetches every change since cursor, following page tokens
// until the feed reports a new start page token. An empty cursor yields
// no changes and an empty new cursor.
func (p *ChangePoller) GetChanges(ctx context.Context, cursor string, scope domain.Scope) (*PollResult, error) {
	result := &PollResult{}
	if cursor == "" {
		return result, nil
	}

	index := make(map[string]int)
	pageToken := cursor
	for page := 0; page < MaxChangePages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		changes, err := p.client.ListChanges(ctx, pageToken, scope)
		if err != nil {
			return nil, fmt.Errorf("list changes: %w", err)
		}

		for _, file := range changes.Files {
			if file.ID == "" {
				continue
			}
			// Later pages carry newer metadata for the same file.
			if i, seen := index[file.ID]; seen {
				result.Files[i] = file
				continue
			}
			index[file.ID] = len(result.Files)
			result.Files = append(result.Files, file)
		}

		if changes.NewStartPageToken != "" {
			result.NewCursor = changes.NewStartPageToken
			return result, nil
		}
		if changes.NextPageToken == "" {
			return nil, ErrMalformedChangePage
		}
		pageToken = changes.NextPageToken
	}

	return nil, fmt.Errorf("list changes: more than %d pages", MaxChangePages)
}
