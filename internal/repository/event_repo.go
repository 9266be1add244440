package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"heatzone"

	"github.com/google/uuid"
)

// ErrUnknownEventType rejects writes and filters naming an event kind
// outside heatzone.EventTypes.
var ErrUnknownEventType = errors.New("unknown event type")

// EventSQLite persists the profile event log: saves, dropped payloads,
// and connectivity transitions. It accepts only the known event kinds,
// so the table can never accumulate unclassifiable rows.
type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const sqliteTimeLayout = "2006-01-02 15:04:05"

const (
	insertEventSQL = `INSERT INTO profile_events (id, occurred_at, type, message, meta)
			VALUES (?, ?, ?, ?, ?)`
	selectEventsSQL = `SELECT id, occurred_at, type, message, meta FROM profile_events`
)

// canonicalEventType folds a kind to its stored form and checks it
// against the known set.
func canonicalEventType(t string) (string, error) {
	typ := strings.ToUpper(strings.TrimSpace(t))
	if !heatzone.ValidEventType(typ) {
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, t)
	}
	return typ, nil
}

// Append inserts one event. EventID and OccurredAt are filled when
// empty; the kind must be one of the known event types.
func (r *EventSQLite) Append(ctx context.Context, e heatzone.ProfileEvent) error {
	typ, err := canonicalEventType(e.Type)
	if err != nil {
		return err
	}

	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	occurred := e.OccurredAt.UTC()
	if e.OccurredAt.IsZero() {
		occurred = time.Now().UTC()
	}

	var meta any
	if e.Metadata != nil {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal %s event metadata: %w", typ, err)
		}
		meta = string(b)
	}

	if _, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		occurred.Format(sqliteTimeLayout),
		typ,
		e.Description,
		meta,
	); err != nil {
		return fmt.Errorf("insert %s event: %w", typ, err)
	}
	return nil
}

// List returns events inside [from, to] (inclusive, zero means
// unbounded) and, when typ is non-empty, of that kind only. Results
// come back oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]heatzone.ProfileEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if strings.TrimSpace(typ) != "" {
		canonical, err := canonicalEventType(typ)
		if err != nil {
			return nil, err
		}
		conds = append(conds, "type = ?")
		args = append(args, canonical)
	}

	var q strings.Builder
	q.WriteString(selectEventsSQL)
	if len(conds) > 0 {
		q.WriteString(" WHERE ")
		q.WriteString(strings.Join(conds, " AND "))
	}
	q.WriteString(" ORDER BY occurred_at ASC")

	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := make([]heatzone.ProfileEvent, 0, 64)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanEvent(rows *sql.Rows) (heatzone.ProfileEvent, error) {
	var (
		ev      heatzone.ProfileEvent
		metaStr sql.NullString
	)
	if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &metaStr); err != nil {
		return heatzone.ProfileEvent{}, fmt.Errorf("scan event row: %w", err)
	}
	ev.OccurredAt = ev.OccurredAt.UTC()

	if metaStr.Valid && metaStr.String != "" {
		var v any
		if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
			ev.Metadata = v
		} else {
			ev.Metadata = metaStr.String // keep raw if malformed
		}
	}
	return ev, nil
}
