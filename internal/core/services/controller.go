package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driving"
	"github.com/custodia-labs/drivewatch/internal/logger"
)

// Ensure Controller implements the interface.
var _ driving.Watcher = (*Controller)(nil)

// DefaultRequestTimeout bounds each remote call.
const DefaultRequestTimeout = 30 * time.Second

// ControllerOptions holds optional Controller dependencies.
type ControllerOptions struct {
	// RequestTimeout bounds each remote call, including every page of a
	// paginated listing. Defaults to DefaultRequestTimeout.
	RequestTimeout time.Duration

	// NewID generates channel IDs. Defaults to random UUIDs.
	NewID IDFunc

	// NewToken generates channel verification tokens. Defaults to random UUIDs.
	NewToken IDFunc

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Controller is the watcher entry point. It serialises every operation on
// the instance so the read-modify-write of persisted state is never
// interleaved, whether the trigger is a timer tick or a webhook delivery.
type Controller struct {
	config   domain.WatchConfig
	state    *State
	channels *ChannelManager
	poller   *ChangePoller
	differ   *CommentDiffer
	emitter  driven.EventEmitter
	now      func() time.Time

	mu sync.Mutex
}

// NewController creates a controller for one watch instance.
func NewController(
	config domain.WatchConfig,
	store driven.StateStore,
	client driven.DriveClient,
	emitter driven.EventEmitter,
	opts ControllerOptions,
) *Controller {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	bounded := withCallTimeout(client, timeout)
	channels := NewChannelManager(bounded, opts.NewID)
	if opts.NewToken != nil {
		channels.newToken = opts.NewToken
	}
	return &Controller{
		config:   config,
		state:    NewState(store),
		channels: channels,
		poller:   NewChangePoller(bounded),
		differ:   NewCommentDiffer(bounded, config.IncludeDeleted),
		emitter:  emitter,
		now:      now,
	}
}

// Activate registers a notification channel. A stored channel ID is reused
// so an earlier subscription is not orphaned. If a subscription is still
// recorded, the channel is rotated with the same rules as a timer renewal
// and the cursor is kept.
func (c *Controller) Activate(ctx context.Context) (*driving.WatchStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.CallbackURL == "" {
		return nil, fmt.Errorf("%w: callback URL is required to activate", domain.ErrInvalidConfig)
	}

	sub, err := c.state.Subscription(ctx)
	if err != nil {
		return nil, err
	}
	if !sub.IsZero() {
		logger.Info("watch already active, rotating channel")
		if _, err := c.renew(ctx); err != nil {
			return nil, err
		}
		return c.status(ctx)
	}

	channelID, err := c.state.ChannelID(ctx)
	if err != nil {
		return nil, err
	}
	if channelID == "" {
		channelID = c.channels.NewID()
	}

	result, err := c.channels.Activate(ctx, channelID, c.config.CallbackURL, c.config.Scope)
	if err != nil {
		return nil, err
	}

	// Persist only after the remote call succeeded.
	if err := c.state.SetPageToken(ctx, result.StartCursor); err != nil {
		return nil, err
	}
	if err := c.state.SetSubscription(ctx, result.Channel.Subscription()); err != nil {
		return nil, err
	}
	if err := c.state.SetChannelID(ctx, result.Channel.ID); err != nil {
		return nil, err
	}

	return c.status(ctx)
}

// Deactivate clears local channel state and then stops the remote channel.
// Local state is cleared first: a failed stop leaves an orphaned remote
// channel that expires, never local state pointing at a dead channel.
func (c *Controller) Deactivate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	channelID, err := c.state.ChannelID(ctx)
	if err != nil {
		return err
	}
	sub, err := c.state.Subscription(ctx)
	if err != nil {
		return err
	}

	if err := c.state.ClearChannel(ctx); err != nil {
		return err
	}

	return c.channels.Deactivate(ctx, channelID, sub.ResourceID)
}

// Dispatch routes a trigger to the timer or webhook handler.
func (c *Controller) Dispatch(ctx context.Context, trigger domain.Trigger) (*driving.DispatchResult, error) {
	switch trigger.Kind {
	case domain.TriggerTimer:
		return c.HandleTimer(ctx, trigger.Timer)
	case domain.TriggerWebhook:
		return c.HandleWebhook(ctx, trigger.Webhook)
	default:
		return nil, fmt.Errorf("%w: unknown trigger kind %d", domain.ErrInvalidInput, trigger.Kind)
	}
}

// HandleTimer renews the notification channel and persists the result.
// The change feed is not polled.
func (c *Controller) HandleTimer(ctx context.Context, _ domain.TimerTick) (*driving.DispatchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel, err := c.renew(ctx)
	if err != nil {
		return nil, err
	}
	return &driving.DispatchResult{Kind: domain.TriggerTimer, Expiration: channel.Expiration}, nil
}

// renew rotates the channel. Caller must hold c.mu.
func (c *Controller) renew(ctx context.Context) (*domain.Channel, error) {
	if c.config.CallbackURL == "" {
		return nil, fmt.Errorf("%w: callback URL is required to renew", domain.ErrInvalidConfig)
	}

	sub, err := c.state.Subscription(ctx)
	if err != nil {
		return nil, err
	}
	channelID, err := c.state.ChannelID(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := c.state.PageToken(ctx)
	if err != nil {
		return nil, err
	}

	result, err := c.channels.Renew(ctx, c.config.Scope, sub, c.config.CallbackURL, channelID, cursor)
	if err != nil {
		return nil, err
	}

	if err := c.state.SetSubscription(ctx, result.Channel.Subscription()); err != nil {
		return nil, err
	}
	if err := c.state.SetPageToken(ctx, result.Cursor); err != nil {
		return nil, err
	}
	if err := c.state.SetChannelID(ctx, result.Channel.ID); err != nil {
		return nil, err
	}
	return &result.Channel, nil
}

// HandleWebhook processes a push-notification delivery: it validates the
// delivery against the stored channel, applies the configured filters,
// drains the change feed and emits one event per new or modified comment.
// Stale or filtered deliveries are not errors; they return a result with
// Skipped set.
//
// Files that failed on an earlier delivery are retried along with the new
// batch. A failure on one file does not stop the others: the file is queued
// for retry and every failure is returned joined.
func (c *Controller) HandleWebhook(ctx context.Context, headers domain.WebhookHeaders) (*driving.DispatchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := &driving.DispatchResult{Kind: domain.TriggerWebhook}

	reason, err := c.checkHeaders(ctx, headers)
	if err != nil {
		return nil, err
	}
	if reason != driving.SkipNone {
		result.Skipped = reason
		return result, nil
	}

	if !c.config.Allows(headers.State()) {
		logger.Debug("update type %s not in list of updates to watch: %v", headers.ResourceState, c.config.UpdateTypes)
		result.Skipped = driving.SkipUpdateType
		return result, nil
	}

	if !c.config.WatchProperties && headers.PropertiesOnly() {
		logger.Debug("change to properties only, which this watch is set to ignore")
		result.Skipped = driving.SkipPropertiesOnly
		return result, nil
	}

	cursor, err := c.state.PageToken(ctx)
	if err != nil {
		return nil, err
	}
	if cursor == "" {
		logger.Warn("no cursor recorded, reactivate the watch to resume")
		result.Skipped = driving.SkipNothingToProcess
		return result, nil
	}

	changes, err := c.poller.GetChanges(ctx, cursor, c.config.Scope)
	if err != nil {
		return nil, err
	}

	// Advance the cursor before processing to bound re-work after a crash.
	// Comments re-fetched later are filtered by their watermark.
	if changes.NewCursor != "" {
		if err := c.state.SetPageToken(ctx, changes.NewCursor); err != nil {
			return nil, err
		}
	}

	files, retried, err := c.withPending(ctx, changes.Files)
	if err != nil {
		return nil, err
	}
	result.FilesChanged = len(files)

	change := domain.ChangeInfo{
		State:       headers.ResourceState,
		ResourceURI: headers.ResourceURI,
		Changed:     headers.Changed,
	}
	var errs []error
	for _, file := range files {
		emitted, err := c.processFile(ctx, file, change, headers.MessageNumber)
		result.Emitted += emitted
		if err != nil {
			logger.Warn("file %s failed, queued for retry: %v", file.ID, err)
			errs = append(errs, fmt.Errorf("file %s: %w", file.ID, err))
			if err := c.state.MarkPending(ctx, file); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if retried[file.ID] {
			if err := c.state.ClearPending(ctx, file.ID); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}

	if seq := headers.Sequence(); seq > 0 {
		if err := c.state.SetLastDelivery(ctx, Delivery{ChannelID: headers.ChannelID, Sequence: seq}); err != nil {
			return result, err
		}
	}

	logger.Debug("delivery %s: %d files changed, %d events emitted",
		headers.MessageNumber, result.FilesChanged, result.Emitted)
	return result, nil
}

// withPending appends queued retry files missing from the batch. The
// returned set names the files that were queued.
func (c *Controller) withPending(ctx context.Context, batch []domain.File) ([]domain.File, map[string]bool, error) {
	pending, err := c.state.PendingFiles(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(pending) == 0 {
		return batch, nil, nil
	}

	retried := make(map[string]bool, len(pending))
	for _, file := range pending {
		retried[file.ID] = true
	}
	files := append([]domain.File(nil), batch...)
	inBatch := make(map[string]bool, len(batch))
	for _, file := range batch {
		inBatch[file.ID] = true
	}
	for _, file := range pending {
		if !inBatch[file.ID] {
			files = append(files, file)
		}
	}
	return files, retried, nil
}

// checkHeaders validates a delivery against the stored channel identity
// and drops deliveries already processed on the same channel.
func (c *Controller) checkHeaders(ctx context.Context, headers domain.WebhookHeaders) (driving.SkipReason, error) {
	if !headers.Complete() {
		logger.Debug("delivery missing necessary headers: %+v", headers)
		return driving.SkipMissingHeaders, nil
	}

	channelID, err := c.state.ChannelID(ctx)
	if err != nil {
		return driving.SkipNone, err
	}
	if channelID == "" {
		logger.Debug("delivery for channel %s but no channel is active", headers.ChannelID)
		return driving.SkipInactive, nil
	}
	if headers.ChannelID != channelID {
		logger.Debug("channel ID of %s not equal to active channel %s", headers.ChannelID, channelID)
		return driving.SkipUnknownChannel, nil
	}

	sub, err := c.state.Subscription(ctx)
	if err != nil {
		return driving.SkipNone, err
	}
	if headers.ResourceID != sub.ResourceID {
		logger.Debug("resource ID of %s not equal to subscribed resource %s", headers.ResourceID, sub.ResourceID)
		return driving.SkipUnknownResource, nil
	}
	if !sub.AcceptsToken(headers.ChannelToken) {
		logger.Warn("delivery for channel %s carries the wrong channel token", headers.ChannelID)
		return driving.SkipBadToken, nil
	}

	// Message numbers increase per channel. Non-numeric ones are not compared.
	if seq := headers.Sequence(); seq > 0 {
		last, err := c.state.LastDelivery(ctx)
		if err != nil {
			return driving.SkipNone, err
		}
		if last.ChannelID == headers.ChannelID && seq <= last.Sequence {
			logger.Debug("message %d on channel %s already processed (last %d)", seq, headers.ChannelID, last.Sequence)
			return driving.SkipDuplicate, nil
		}
	}
	return driving.SkipNone, nil
}

// processFile diffs one file's comments, emits events and advances its
// watermark. The watermark is persisted only after every emit succeeded.
// An event the log already holds counts as sent but not as emitted.
func (c *Controller) processFile(
	ctx context.Context, file domain.File, change domain.ChangeInfo, dedupeID string,
) (int, error) {
	watermark, err := c.state.Watermark(ctx, file.ID)
	if err != nil {
		return 0, err
	}

	diff, err := c.differ.ListAndDiff(ctx, file.ID, watermark)
	if err != nil {
		return 0, err
	}

	emitted := 0
	for _, comment := range diff.Emit {
		event := domain.ChangeEvent{Comment: comment, File: file, Change: change}
		meta := domain.EventMeta{
			ID:        dedupeID,
			Summary:   comment.Content,
			Timestamp: comment.ModifiedTime,
		}
		err := c.emitter.Emit(ctx, event, meta)
		if errors.Is(err, driven.ErrDuplicateEvent) {
			logger.Debug("comment %s on %s already emitted for delivery %s", comment.ID, file.ID, dedupeID)
			continue
		}
		if err != nil {
			return emitted, fmt.Errorf("emit comment %s on %s: %w", comment.ID, file.ID, err)
		}
		emitted++
	}

	if err := c.state.SetWatermark(ctx, file.ID, diff.Watermark); err != nil {
		return emitted, err
	}
	return emitted, nil
}

// Status returns the persisted watch state.
func (c *Controller) Status(ctx context.Context) (*driving.WatchStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status(ctx)
}

func (c *Controller) status(ctx context.Context) (*driving.WatchStatus, error) {
	channelID, err := c.state.ChannelID(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := c.state.Subscription(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := c.state.PageToken(ctx)
	if err != nil {
		return nil, err
	}
	tracked, err := c.state.TrackedFiles(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := c.state.PendingFiles(ctx)
	if err != nil {
		return nil, err
	}
	active := channelID != "" && !sub.IsZero()
	return &driving.WatchStatus{
		Active:       active,
		ChannelID:    channelID,
		Subscription: sub,
		Cursor:       cursor,
		ExpiresSoon:  active && sub.ExpiresWithin(c.now(), c.config.RenewalInterval),
		TrackedFiles: len(tracked),
		PendingFiles: len(pending),
	}, nil
}
