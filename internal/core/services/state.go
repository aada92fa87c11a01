package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// Well-known state keys.
const (
	KeyChannelID       = "channelID"
	KeySubscription    = "subscription"
	KeyPageToken       = "pageToken"
	KeyLastDelivery    = "lastDelivery"
	WatermarkKeyPrefix = "watermark/"
	PendingKeyPrefix   = "pending/"
)

// Delivery identifies the last fully processed webhook delivery.
type Delivery struct {
	ChannelID string `json:"channelId"`
	Sequence  int64  `json:"sequence"`
}

// State provides typed access to the persisted watch state.
type State struct {
	store driven.StateStore
}

// NewState wraps a StateStore.
func NewState(store driven.StateStore) *State {
	return &State{store: store}
}

// ChannelID returns the stored channel ID, or "" if none.
func (s *State) ChannelID(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyChannelID)
}

// SetChannelID stores the channel ID. An empty ID clears it.
func (s *State) SetChannelID(ctx context.Context, id string) error {
	return s.setString(ctx, KeyChannelID, id)
}

// Subscription returns the stored subscription. A missing key yields the zero value.
func (s *State) Subscription(ctx context.Context) (domain.Subscription, error) {
	var sub domain.Subscription
	data, err := s.store.Get(ctx, KeySubscription)
	if errors.Is(err, domain.ErrNotFound) {
		return sub, nil
	}
	if err != nil {
		return sub, fmt.Errorf("get subscription: %w", err)
	}
	if err := json.Unmarshal(data, &sub); err != nil {
		return sub, fmt.Errorf("decode subscription: %w", err)
	}
	return sub, nil
}

// SetSubscription stores the subscription. The zero value clears it.
func (s *State) SetSubscription(ctx context.Context, sub domain.Subscription) error {
	if sub.IsZero() {
		return s.store.Delete(ctx, KeySubscription)
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode subscription: %w", err)
	}
	return s.store.Set(ctx, KeySubscription, data)
}

// PageToken returns the stored change-feed cursor, or "" if none.
func (s *State) PageToken(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyPageToken)
}

// SetPageToken stores the cursor. An empty token clears it.
func (s *State) SetPageToken(ctx context.Context, token string) error {
	return s.setString(ctx, KeyPageToken, token)
}

// Watermark returns the latest seen comment modification time for a file.
// The zero time means the file has never been processed.
func (s *State) Watermark(ctx context.Context, fileID string) (time.Time, error) {
	raw, err := s.getString(ctx, WatermarkKeyPrefix+fileID)
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode watermark for %s: %w", fileID, err)
	}
	return t, nil
}

// SetWatermark advances the watermark for a file. A value older than the
// stored one is ignored so the watermark never regresses.
func (s *State) SetWatermark(ctx context.Context, fileID string, t time.Time) error {
	if t.IsZero() {
		return nil
	}
	current, err := s.Watermark(ctx, fileID)
	if err != nil {
		return err
	}
	if !t.After(current) {
		return nil
	}
	return s.setString(ctx, WatermarkKeyPrefix+fileID, t.UTC().Format(time.RFC3339Nano))
}

// TrackedFiles returns the IDs of files that have a watermark.
func (s *State) TrackedFiles(ctx context.Context) ([]string, error) {
	keys, err := s.store.Keys(ctx, WatermarkKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list watermarks: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, WatermarkKeyPrefix))
	}
	return ids, nil
}

// PendingFiles returns files whose last processing failed, sorted by ID.
func (s *State) PendingFiles(ctx context.Context) ([]domain.File, error) {
	keys, err := s.store.Keys(ctx, PendingKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list pending files: %w", err)
	}
	files := make([]domain.File, 0, len(keys))
	for _, k := range keys {
		data, err := s.store.Get(ctx, k)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", k, err)
		}
		var file domain.File
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		files = append(files, file)
	}
	return files, nil
}

// MarkPending records a file to be processed again on the next delivery.
func (s *State) MarkPending(ctx context.Context, file domain.File) error {
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode pending file %s: %w", file.ID, err)
	}
	if err := s.store.Set(ctx, PendingKeyPrefix+file.ID, data); err != nil {
		return fmt.Errorf("set pending file %s: %w", file.ID, err)
	}
	return nil
}

// ClearPending removes a file from the retry set.
func (s *State) ClearPending(ctx context.Context, fileID string) error {
	return s.store.Delete(ctx, PendingKeyPrefix+fileID)
}

// LastDelivery returns the last fully processed delivery, or the zero
// value if none is recorded.
func (s *State) LastDelivery(ctx context.Context) (Delivery, error) {
	var d Delivery
	data, err := s.store.Get(ctx, KeyLastDelivery)
	if errors.Is(err, domain.ErrNotFound) {
		return d, nil
	}
	if err != nil {
		return d, fmt.Errorf("get last delivery: %w", err)
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("decode last delivery: %w", err)
	}
	return d, nil
}

// SetLastDelivery records a fully processed delivery.
func (s *State) SetLastDelivery(ctx context.Context, d Delivery) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode last delivery: %w", err)
	}
	return s.store.Set(ctx, KeyLastDelivery, data)
}

// ClearChannel removes the channel ID, subscription, cursor and last
// delivery. Watermarks and pending files are kept so a later reactivation
// neither replays old comments nor drops failed files.
func (s *State) ClearChannel(ctx context.Context) error {
	for _, key := range []string{KeySubscription, KeyChannelID, KeyPageToken, KeyLastDelivery} {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

func (s *State) getString(ctx context.Context, key string) (string, error) {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return string(data), nil
}

func (s *State) setString(ctx context.Context, key, value string) error {
	if value == "" {
		return s.store.Delete(ctx, key)
	}
	if err := s.store.Set(ctx, key, []byte(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
