package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
)

func commentIDs(comments []domain.Comment) []string {
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestCommentDiffer_FirstSeenEmitsAll(t *testing.T) {
	client := newMockDriveClient()
	client.addComment("f1", "c1", at(1))
	client.addComment("f1", "c2", at(2))
	d := NewCommentDiffer(client, false)

	result, err := d.ListAndDiff(context.Background(), "f1", time.Time{})

	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, commentIDs(result.Emit))
	assert.Equal(t, at(2), result.Watermark)
}

func TestCommentDiffer_OnlyNewerThanWatermark(t *testing.T) {
	client := newMockDriveClient()
	client.addComment("f1", "c1", at(1))
	client.addComment("f1", "c2", at(2))
	client.addComment("f1", "c3", at(3))
	d := NewCommentDiffer(client, false)

	result, err := d.ListAndDiff(context.Background(), "f1", at(2))

	require.NoError(t, err)
	assert.Equal(t, []string{"c3"}, commentIDs(result.Emit))
	assert.Equal(t, at(3), result.Watermark)

	calls := client.commentCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, at(2), calls[0].Since)
}

func TestCommentDiffer_NoCommentsKeepsWatermark(t *testing.T) {
	client := newMockDriveClient()
	d := NewCommentDiffer(client, false)

	result, err := d.ListAndDiff(context.Background(), "f1", at(5))

	require.NoError(t, err)
	assert.Empty(t, result.Emit)
	assert.Equal(t, at(5), result.Watermark)
}

func TestCommentDiffer_NothingNewAtWatermark(t *testing.T) {
	client := newMockDriveClient()
	client.addComment("f1", "c1", at(5))
	d := NewCommentDiffer(client, false)

	result, err := d.ListAndDiff(context.Background(), "f1", at(5))

	require.NoError(t, err)
	assert.Empty(t, result.Emit)
	assert.Equal(t, at(5), result.Watermark)
}

func TestCommentDiffer_SkipsMissingModifiedTime(t *testing.T) {
	client := newMockDriveClient()
	client.comments["f1"] = []domain.Comment{
		{ID: "broken"},
		{ID: "c1", ModifiedTime: at(1)},
	}
	d := NewCommentDiffer(client, false)

	result, err := d.ListAndDiff(context.Background(), "f1", time.Time{})

	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, commentIDs(result.Emit))
}

func TestCommentDiffer_Paginates(t *testing.T) {
	client := newMockDriveClient()
	client.commentPageSize = 2
	for i, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		client.addComment("f1", id, at(i+1))
	}
	d := NewCommentDiffer(client, true)

	result, err := d.ListAndDiff(context.Background(), "f1", time.Time{})

	require.NoError(t, err)
	assert.Len(t, result.Emit, 5)
	assert.Equal(t, at(5), result.Watermark)

	calls := client.commentCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, "", calls[0].PageToken)
	assert.Equal(t, "2", calls[1].PageToken)
	assert.True(t, calls[2].IncludeDeleted)
}

func TestCommentDiffer_Error(t *testing.T) {
	client := newMockDriveClient()
	client.commentsErr = errors.New("403")
	d := NewCommentDiffer(client, false)

	_, err := d.ListAndDiff(context.Background(), "f1", time.Time{})

	assert.ErrorIs(t, err, client.commentsErr)
}
