package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// deadlineClient records the deadline each call receives.
type deadlineClient struct {
	*mockDriveClient
	deadlines []time.Duration
}

func (d *deadlineClient) ListChanges(ctx context.Context, token string, scope domain.Scope) (*driven.ChangePage, error) {
	deadline, ok := ctx.Deadline()
	if ok {
		d.deadlines = append(d.deadlines, time.Until(deadline))
	}
	return d.mockDriveClient.ListChanges(ctx, token, scope)
}

func TestTimeoutClient_EachCallGetsFullBudget(t *testing.T) {
	inner := &deadlineClient{mockDriveClient: newMockDriveClient()}
	inner.latency = 60 * time.Millisecond
	client := withCallTimeout(inner, 100*time.Millisecond)

	for _, token := range []string{"1", "2", "3"} {
		_, err := client.ListChanges(context.Background(), token, domain.Scope{})
		require.NoError(t, err)
	}

	require.Len(t, inner.deadlines, 3)
	for _, left := range inner.deadlines {
		assert.Greater(t, left, 70*time.Millisecond)
	}
}

func TestTimeoutClient_ExceededCall(t *testing.T) {
	inner := newMockDriveClient()
	inner.latency = time.Second
	client := withCallTimeout(inner, 20*time.Millisecond)

	_, err := client.ListComments(context.Background(), driven.CommentsRequest{FileID: "f1"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimeoutClient_ParentCancellationWins(t *testing.T) {
	inner := newMockDriveClient()
	inner.latency = time.Second
	client := withCallTimeout(inner, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListChanges(ctx, "1", domain.Scope{})

	assert.ErrorIs(t, err, context.Canceled)
}
