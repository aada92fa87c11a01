package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driving"
)

// --- Mock implementations for service testing ---

var baseTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// at returns baseTime plus n minutes.
func at(n int) time.Time {
	return baseTime.Add(time.Duration(n) * time.Minute)
}

// sequentialIDs returns an IDFunc yielding chan-1, chan-2, ...
func sequentialIDs() IDFunc {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("chan-%d", n)
	}
}

type stopCall struct {
	ChannelID  string
	ResourceID string
}

// mockDriveClient implements driven.DriveClient for testing.
// Watch answers with resource ID "res-<channel id>".
type mockDriveClient struct {
	mu sync.Mutex

	startToken string
	startCalls int
	startErr   error

	watches    []driven.WatchRequest
	watchErr   error
	expiration time.Time

	stops   []stopCall
	stopErr error

	// changes maps a page token to the page returned. Unknown tokens yield
	// an empty page whose new start token is the token itself.
	changes      map[string]*driven.ChangePage
	changeTokens []string
	changesErr   error

	// comments maps a file ID to its comments. Since filters like
	// startModifiedTime (inclusive).
	comments        map[string][]domain.Comment
	commentPageSize int
	commentRequests []driven.CommentsRequest
	commentsErr     error
	commentErrs     map[string]error

	// latency delays every list call; the call fails if ctx ends first.
	latency time.Duration
}

func newMockDriveClient() *mockDriveClient {
	return &mockDriveClient{
		startToken: "100",
		expiration: at(60 * 24),
		changes:     make(map[string]*driven.ChangePage),
		comments:    make(map[string][]domain.Comment),
		commentErrs: make(map[string]error),
	}
}

func (m *mockDriveClient) wait(ctx context.Context) error {
	m.mu.Lock()
	d := m.latency
	m.mu.Unlock()
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (m *mockDriveClient) StartPageToken(_ context.Context, _ domain.Scope) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls++
	if m.startErr != nil {
		return "", m.startErr
	}
	return m.startToken, nil
}

func (m *mockDriveClient) Watch(_ context.Context, req driven.WatchRequest) (domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watches = append(m.watches, req)
	if m.watchErr != nil {
		return domain.Channel{}, m.watchErr
	}
	return domain.Channel{
		ID:         req.ChannelID,
		ResourceID: "res-" + req.ChannelID,
		Expiration: m.expiration,
		Token:      req.Token,
	}, nil
}

func (m *mockDriveClient) Stop(_ context.Context, channelID, resourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops = append(m.stops, stopCall{ChannelID: channelID, ResourceID: resourceID})
	return m.stopErr
}

func (m *mockDriveClient) ListChanges(ctx context.Context, pageToken string, _ domain.Scope) (*driven.ChangePage, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changeTokens = append(m.changeTokens, pageToken)
	if m.changesErr != nil {
		return nil, m.changesErr
	}
	if page, ok := m.changes[pageToken]; ok {
		pageCopy := *page
		return &pageCopy, nil
	}
	return &driven.ChangePage{NewStartPageToken: pageToken}, nil
}

func (m *mockDriveClient) ListComments(ctx context.Context, req driven.CommentsRequest) (*driven.CommentPage, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commentRequests = append(m.commentRequests, req)
	if m.commentsErr != nil {
		return nil, m.commentsErr
	}
	if err := m.commentErrs[req.FileID]; err != nil {
		return nil, err
	}

	var matching []domain.Comment
	for _, c := range m.comments[req.FileID] {
		if !req.Since.IsZero() && c.ModifiedTime.Before(req.Since) {
			continue
		}
		matching = append(matching, c)
	}
	if m.commentPageSize <= 0 {
		return &driven.CommentPage{Comments: matching}, nil
	}

	start := 0
	if req.PageToken != "" {
		start, _ = strconv.Atoi(req.PageToken)
	}
	end := start + m.commentPageSize
	page := &driven.CommentPage{}
	if end < len(matching) {
		page.NextPageToken = strconv.Itoa(end)
	} else {
		end = len(matching)
	}
	if start < end {
		page.Comments = matching[start:end]
	}
	return page, nil
}

func (m *mockDriveClient) addComment(fileID, commentID string, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[fileID] = append(m.comments[fileID], domain.Comment{
		ID:           commentID,
		Content:      "comment " + commentID,
		CreatedTime:  modified,
		ModifiedTime: modified,
	})
}

// changePages chains pages: tokens[i] returns fileIDs[i] and points at
// tokens[i+1]. The last token's page ends the feed with next.
func (m *mockDriveClient) changePages(next string, tokens []string, fileIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, token := range tokens {
		page := &driven.ChangePage{Files: []domain.File{{ID: fileIDs[i], Name: "file " + fileIDs[i]}}}
		if i+1 < len(tokens) {
			page.NextPageToken = tokens[i+1]
		} else {
			page.NewStartPageToken = next
		}
		m.changes[token] = page
	}
}

// changeFiles makes pageToken return the given files and next.
func (m *mockDriveClient) changeFiles(pageToken, next string, fileIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := &driven.ChangePage{NewStartPageToken: next}
	for _, id := range fileIDs {
		page.Files = append(page.Files, domain.File{ID: id, Name: "file " + id})
	}
	m.changes[pageToken] = page
}

func (m *mockDriveClient) watchCalls() []driven.WatchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.WatchRequest(nil), m.watches...)
}

func (m *mockDriveClient) stopCalls() []stopCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stopCall(nil), m.stops...)
}

func (m *mockDriveClient) commentCalls() []driven.CommentsRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.CommentsRequest(nil), m.commentRequests...)
}

// mockStateStore implements driven.StateStore with injectable errors.
type mockStateStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
	getErr error
}

func newMockStateStore() *mockStateStore {
	return &mockStateStore{data: make(map[string][]byte)}
}

func (m *mockStateStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *mockStateStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockStateStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockStateStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *mockStateStore) snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = string(v)
	}
	return out
}

// mockWatcher implements driving.Watcher for scheduler testing.
type mockWatcher struct {
	mu       sync.Mutex
	triggers []domain.Trigger
	err      error
	result   *driving.DispatchResult
}

func (m *mockWatcher) Activate(context.Context) (*driving.WatchStatus, error) {
	return &driving.WatchStatus{}, nil
}

func (m *mockWatcher) Deactivate(context.Context) error { return nil }

func (m *mockWatcher) Dispatch(_ context.Context, trigger domain.Trigger) (*driving.DispatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, trigger)
	return m.result, m.err
}

func (m *mockWatcher) Status(context.Context) (*driving.WatchStatus, error) {
	return &driving.WatchStatus{}, nil
}

func (m *mockWatcher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.triggers)
}
