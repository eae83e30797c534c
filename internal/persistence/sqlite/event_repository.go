package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/mentorhub/internal/persistence"
)

// EventRepository implements persistence.EventRepository on SQLite.
type EventRepository struct {
	pool *ConnectionPool
}

// NewEventRepository creates a SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool}
}

// CreateEvent inserts a calendar event row.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `INSERT INTO events
		(id, title, description, start_at, end_at, event_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Title,
		event.Description,
		event.StartAt.UTC().Format(time.RFC3339),
		event.EndAt.UTC().Format(time.RFC3339),
		event.Type,
		event.CreatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// ListEvents returns all events ordered by start time.
func (r *EventRepository) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	rows, err := r.pool.db.QueryContext(ctx, `SELECT
		id, title, description, start_at, end_at, event_type, created_at
		FROM events ORDER BY start_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		var event persistence.Event
		var startAtStr, endAtStr, createdAtStr string
		if err := rows.Scan(&event.ID, &event.Title, &event.Description,
			&startAtStr, &endAtStr, &event.Type, &createdAtStr); err != nil {
			return nil, mapError(err)
		}
		if event.StartAt, err = time.Parse(time.RFC3339, startAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse start_at: %w", err)
		}
		if event.EndAt, err = time.Parse(time.RFC3339, endAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse end_at: %w", err)
		}
		if event.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return events, nil
}
