package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"heatzone"

	"github.com/DATA-DOG/go-sqlmock"
)

// sqlmockArgumentFunc adapts a predicate into a sqlmock.Argument.
type sqlmockArgumentFunc func(driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool { return f(v) }

func newEventMockRepo(t *testing.T) (*EventSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewEventSQLite(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func TestEventSQLite_Append_FillsIDAndTimestamp(t *testing.T) {
	repo, mock, cleanup := newEventMockRepo(t)
	defer cleanup()

	isNonEmptyString := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		return ok && s != ""
	})
	isSQLiteTimestamp := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, err := time.Parse(sqliteTimeLayout, s)
		return err == nil
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profile_events")).
		WithArgs(isNonEmptyString, isSQLiteTimestamp, "SAVE", "profile published", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), heatzone.ProfileEvent{
		Type:        "save", // normalized to upper case
		Description: "profile published",
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
}

func TestEventSQLite_Append_MarshalsMetadata(t *testing.T) {
	repo, mock, cleanup := newEventMockRepo(t)
	defer cleanup()

	at := time.Date(2025, 8, 1, 12, 30, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profile_events")).
		WithArgs("ev-1", "2025-08-01 12:30:00", "DECODE_ERROR", "dropped Day2 payload",
			sqlmockArgumentFunc(func(v driver.Value) bool {
				s, ok := v.(string)
				return ok && s == `{"field":"Day2"}`
			})).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), heatzone.ProfileEvent{
		EventID:     "ev-1",
		OccurredAt:  at,
		Type:        "DECODE_ERROR",
		Description: "dropped Day2 payload",
		Metadata:    map[string]any{"field": "Day2"},
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
}

func TestEventSQLite_Append_RejectsUnknownType(t *testing.T) {
	repo, _, cleanup := newEventMockRepo(t)
	defer cleanup()

	err := repo.Append(context.Background(), heatzone.ProfileEvent{
		Type:        "FURNACE_STARTED",
		Description: "not one of ours",
	})
	if !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestEventSQLite_Append_MetadataMarshalError(t *testing.T) {
	repo, _, cleanup := newEventMockRepo(t)
	defer cleanup()

	err := repo.Append(context.Background(), heatzone.ProfileEvent{
		Type:     "SAVE",
		Metadata: make(chan int), // not marshalable
	})
	if err == nil {
		t.Fatalf("expected marshal error; nothing may be inserted")
	}
}

func TestEventSQLite_Append_ExecError(t *testing.T) {
	repo, mock, cleanup := newEventMockRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profile_events")).
		WillReturnError(errors.New("disk full"))

	err := repo.Append(context.Background(), heatzone.ProfileEvent{Type: "SAVE"})
	if err == nil {
		t.Fatalf("expected error from Exec")
	}
}

func TestEventSQLite_List_FiltersAndOrdering(t *testing.T) {
	repo, mock, cleanup := newEventMockRepo(t)
	defer cleanup()

	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 23, 59, 59, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("ev-1", from.Add(time.Hour), "CONNECT", "broker session up", nil).
		AddRow("ev-2", from.Add(2*time.Hour), "CONNECT", "broker session up", `{"attempt":2}`)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, occurred_at, type, message, meta FROM profile_events WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC")).
		WithArgs(from, to, "CONNECT").
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), from, to, "connect")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventID != "ev-1" || events[1].EventID != "ev-2" {
		t.Fatalf("unexpected order: %+v", events)
	}
	meta, ok := events[1].Metadata.(map[string]any)
	if !ok || meta["attempt"] != float64(2) {
		t.Fatalf("metadata not unmarshaled: %#v", events[1].Metadata)
	}
}

func TestEventSQLite_List_NoFilters(t *testing.T) {
	repo, mock, cleanup := newEventMockRepo(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"})
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, occurred_at, type, message, meta FROM profile_events ORDER BY occurred_at ASC")).
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestEventSQLite_List_KeepsRawMalformedMeta(t *testing.T) {
	repo, mock, cleanup := newEventMockRepo(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("ev-1", time.Now().UTC(), "SAVE", "profile published", "{not json")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, occurred_at, type, message, meta FROM profile_events")).
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if events[0].Metadata != "{not json" {
		t.Fatalf("malformed meta must be kept raw, got %#v", events[0].Metadata)
	}
}

func TestEventSQLite_List_RejectsUnknownTypeFilter(t *testing.T) {
	repo, _, cleanup := newEventMockRepo(t)
	defer cleanup()

	_, err := repo.List(context.Background(), time.Time{}, time.Time{}, "REBOOT")
	if !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestEventSQLite_List_QueryError(t *testing.T) {
	repo, mock, cleanup := newEventMockRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, occurred_at, type, message, meta FROM profile_events")).
		WillReturnError(sql.ErrConnDone)

	if _, err := repo.List(context.Background(), time.Time{}, time.Time{}, ""); err == nil {
		t.Fatalf("expected query error")
	}
}
