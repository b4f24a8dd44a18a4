package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/actuator"
	"github.com/nerrad567/aircontrol-core/internal/aqi"
	"github.com/nerrad567/aircontrol-core/internal/room"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// ErrInvalidEntry is returned when an event lacks the fields a row needs.
var ErrInvalidEntry = errors.New("history: invalid entry")

// Entry is one recorded actuator change.
type Entry struct {
	ID        string        `json:"id"`
	Room      room.ID       `json:"room"`
	Actuator  room.Actuator `json:"actuator"`
	From      room.State    `json:"from"`
	To        room.State    `json:"to"`
	Source    string        `json:"source"`
	Severity  aqi.Severity  `json:"severity"`
	CreatedAt time.Time     `json:"created_at"`
}

// Repository stores actuator history in the actuator_history table.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a repository over an open, migrated database.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *Repository: Repository instance ready for use
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Record inserts one state change.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - ev: Confirmed change from the dispatcher
//
// Returns:
//   - error: ErrInvalidEntry for incomplete events, otherwise the database error
func (r *Repository) Record(ctx context.Context, ev actuator.StateChangeEvent) error {
	if ev.ID == "" || ev.Room.Validate() != nil || !ev.Actuator.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidEntry, ev)
	}
	at := ev.At
	if at.IsZero() {
		at = r.now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO actuator_history (id, room_id, actuator, from_state, to_state, source, severity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		ev.Room.String(),
		string(ev.Actuator),
		string(ev.From),
		string(ev.To),
		ev.Source,
		int(ev.Severity),
		at.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting actuator history: %w", err)
	}
	return nil
}

// HandleStateChange implements actuator.EventSink.
func (r *Repository) HandleStateChange(ctx context.Context, ev actuator.StateChangeEvent) error {
	return r.Record(ctx, ev)
}

// List returns recent changes of a room, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - id: Room to list
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []Entry: Entries ordered by created_at DESC, never nil
//   - error: nil on success, otherwise the underlying query error
func (r *Repository) List(ctx context.Context, id room.ID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_id, actuator, from_state, to_state, source, severity, created_at
		 FROM actuator_history
		 WHERE room_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		id.String(),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying actuator history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e        Entry
			roomID   string
			act      string
			from, to string
			severity int
			millis   int64
		)
		if err := rows.Scan(&e.ID, &roomID, &act, &from, &to, &e.Source, &severity, &millis); err != nil {
			return nil, fmt.Errorf("scanning actuator history: %w", err)
		}
		if e.Room, err = room.ParseID(roomID); err != nil {
			return nil, fmt.Errorf("scanning actuator history: %w", err)
		}
		e.Actuator = room.Actuator(act)
		e.From, e.To = room.State(from), room.State(to)
		e.Severity = aqi.Severity(severity)
		e.CreatedAt = time.UnixMilli(millis).UTC()
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actuator history: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the retention period.
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *Repository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := r.now().Add(-olderThan).UnixMilli()
	result, err := r.db.ExecContext(ctx, "DELETE FROM actuator_history WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting actuator history: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
