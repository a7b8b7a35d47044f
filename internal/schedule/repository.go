package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Repository persists scheduled events.
type Repository interface {
	List(ctx context.Context) ([]Event, error)
	Create(ctx context.Context, ev *Event) error
}

const eventColumns = `id, device_id, action, at, repeat, created_at`

// SQLiteRepository implements Repository on the scheduled_events table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// List returns every event ordered by time, then creation.
func (r *SQLiteRepository) List(ctx context.Context) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM scheduled_events ORDER BY at, created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying scheduled events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		ev, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning scheduled event: %w", scanErr)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scheduled events: %w", err)
	}
	return events, nil
}

// Create inserts ev. CreatedAt is set when zero.
func (r *SQLiteRepository) Create(ctx context.Context, ev *Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO scheduled_events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		ev.ID,
		ev.DeviceID,
		string(ev.Action),
		ev.At.UTC().Format(time.RFC3339),
		string(ev.Repeat),
		ev.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrEventExists
		}
		return fmt.Errorf("inserting scheduled event: %w", err)
	}
	return nil
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var ev Event
	var action, repeat, at, createdAt string

	if err := rows.Scan(&ev.ID, &ev.DeviceID, &action, &at, &repeat, &createdAt); err != nil {
		return Event{}, err
	}
	ev.Action = Action(action)
	ev.Repeat = Repeat(repeat)

	var err error
	if ev.At, err = time.Parse(time.RFC3339, at); err != nil {
		return Event{}, fmt.Errorf("parsing at %q: %w", at, err)
	}
	if ev.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Event{}, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	return ev, nil
}

func isUniqueConstraintError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "primary key")
}
