package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/mentorhub/internal/persistence"
)

// AvailabilityRepository implements persistence.AvailabilityRepository on
// SQLite. Templates are replaced wholesale: a save deletes the mentor's
// previous slots and inserts the normalized schedule in one transaction.
type AvailabilityRepository struct {
	pool *ConnectionPool
}

// NewAvailabilityRepository creates a SQLite availability repository.
func NewAvailabilityRepository(pool *ConnectionPool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// SaveTemplate replaces the mentor's template with the provided schedule.
func (r *AvailabilityRepository) SaveTemplate(ctx context.Context, template persistence.AvailabilityTemplate) error {
	if template.MentorID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		updatedAt := template.UpdatedAt.UTC().Format(time.RFC3339)
		_, err := tx.Exec(`INSERT INTO availability_templates (mentor_id, timezone, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (mentor_id) DO UPDATE SET timezone = excluded.timezone, updated_at = excluded.updated_at`,
			template.MentorID, template.Timezone, updatedAt)
		if err != nil {
			return mapError(err)
		}

		if _, err := tx.Exec("DELETE FROM availability_slots WHERE mentor_id = ?", template.MentorID); err != nil {
			return mapError(err)
		}

		for _, day := range template.Schedule {
			for position, slot := range day.Slots {
				available := 0
				if slot.Available {
					available = 1
				}
				_, err := tx.Exec(`INSERT INTO availability_slots
					(mentor_id, day, position, start_time, end_time, available)
					VALUES (?, ?, ?, ?, ?, ?)`,
					template.MentorID, day.Day, position, slot.StartTime, slot.EndTime, available)
				if err != nil {
					return mapError(err)
				}
			}
		}

		return nil
	})
}

// GetTemplate loads the mentor's template with slots in stored day order.
func (r *AvailabilityRepository) GetTemplate(ctx context.Context, mentorID string) (persistence.AvailabilityTemplate, error) {
	if mentorID == "" {
		return persistence.AvailabilityTemplate{}, persistence.ErrNotFound
	}

	var template persistence.AvailabilityTemplate
	var updatedAtStr string

	err := r.pool.db.QueryRowContext(ctx,
		"SELECT mentor_id, timezone, updated_at FROM availability_templates WHERE mentor_id = ?",
		mentorID,
	).Scan(&template.MentorID, &template.Timezone, &updatedAtStr)
	if err != nil {
		return persistence.AvailabilityTemplate{}, mapError(err)
	}

	if template.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.AvailabilityTemplate{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT day, start_time, end_time, available
		 FROM availability_slots
		 WHERE mentor_id = ?
		 ORDER BY rowid ASC`,
		mentorID)
	if err != nil {
		return persistence.AvailabilityTemplate{}, mapError(err)
	}
	defer rows.Close()

	dayIndex := make(map[string]int)
	for rows.Next() {
		var day, start, end string
		var available int
		if err := rows.Scan(&day, &start, &end, &available); err != nil {
			return persistence.AvailabilityTemplate{}, mapError(err)
		}

		slot := persistence.TimeSlot{StartTime: start, EndTime: end, Available: available != 0}
		if idx, ok := dayIndex[day]; ok {
			template.Schedule[idx].Slots = append(template.Schedule[idx].Slots, slot)
			continue
		}
		dayIndex[day] = len(template.Schedule)
		template.Schedule = append(template.Schedule, persistence.DayAvailability{
			Day:   day,
			Slots: []persistence.TimeSlot{slot},
		})
	}

	if err := rows.Err(); err != nil {
		return persistence.AvailabilityTemplate{}, mapError(err)
	}

	return template, nil
}
