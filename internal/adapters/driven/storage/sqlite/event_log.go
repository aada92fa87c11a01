package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// eventLog implements driven.EventLog on the emitted_events table.
// A repeated dedupe key is not recorded again and Emit reports
// driven.ErrDuplicateEvent, so replayed deliveries are recorded once.
type eventLog struct {
	store *Store
}

var _ driven.EventLog = (*eventLog)(nil)

// Emit records an emission unless its dedupe key is already present, in
// which case it returns driven.ErrDuplicateEvent.
func (l *eventLog) Emit(ctx context.Context, event domain.ChangeEvent, meta domain.EventMeta) error {
	emission := domain.Emission{Event: event, Meta: meta}
	payload, err := json.Marshal(emission)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	res, err := l.store.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO emitted_events (dedupe_key, meta_id, file_id, comment_id, summary, ts, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		emission.DedupeKey(),
		meta.ID,
		event.File.ID,
		event.Comment.ID,
		meta.Summary,
		meta.Timestamp.UTC().Format(time.RFC3339Nano),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	if n == 0 {
		return driven.ErrDuplicateEvent
	}
	return nil
}

// Recent returns up to limit emissions, most recent first.
// A limit of zero or less returns every emission.
func (l *eventLog) Recent(ctx context.Context, limit int) ([]domain.Emission, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := l.store.db.QueryContext(ctx, `
		SELECT payload FROM emitted_events ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []domain.Emission //nolint:prealloc // size unknown from query
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		var emission domain.Emission
		if err := json.Unmarshal([]byte(payload), &emission); err != nil {
			return nil, fmt.Errorf("decoding event: %w", err)
		}
		out = append(out, emission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return out, nil
}
