package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/mentorhub/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository on SQLite.
type SessionRepository struct {
	pool *ConnectionPool
}

// NewSessionRepository creates a SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, mentor_id, student_id, title, description, scheduled_at, duration,
	session_type, status, actual_duration, mentor_rating, mentor_notes, mentor_feedback,
	completed_at, created_at, updated_at`

// CreateSession inserts a new session row.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.MentorID,
		session.StudentID,
		session.Title,
		session.Description,
		session.ScheduledAt.UTC().Format(time.RFC3339),
		session.Duration,
		session.SessionType,
		session.Status,
		nullInt(session.ActualDuration),
		nullInt(session.MentorRating),
		nullString(session.MentorNotes),
		nullString(session.MentorFeedback),
		nullTime(session.CompletedAt),
		session.CreatedAt.UTC().Format(time.RFC3339),
		session.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetSession retrieves a session by id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	if id == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// UpdateSession rewrites the mutable columns of an existing session.
func (r *SessionRepository) UpdateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, `UPDATE sessions SET
		title = ?, description = ?, scheduled_at = ?, duration = ?, session_type = ?,
		status = ?, actual_duration = ?, mentor_rating = ?, mentor_notes = ?,
		mentor_feedback = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		session.Title,
		session.Description,
		session.ScheduledAt.UTC().Format(time.RFC3339),
		session.Duration,
		session.SessionType,
		session.Status,
		nullInt(session.ActualDuration),
		nullInt(session.MentorRating),
		nullString(session.MentorNotes),
		nullString(session.MentorFeedback),
		nullTime(session.CompletedAt),
		session.UpdatedAt.UTC().Format(time.RFC3339),
		session.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListSessions returns sessions matching the filter ordered by scheduled
// time ascending, ties broken by id.
func (r *SessionRepository) ListSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if filter.MentorID != "" {
		conditions = append(conditions, "mentor_id = ?")
		args = append(args, filter.MentorID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ",")+")")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY scheduled_at ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return sessions, nil
}

// BulkComplete applies one completion payload to every listed session inside
// a single transaction. Any id that is missing or not in-progress rolls the
// whole batch back.
func (r *SessionRepository) BulkComplete(ctx context.Context, ids []string, completion persistence.Completion, updatedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		completedAt := completion.CompletedAt.UTC().Format(time.RFC3339)
		// Optional text fields stay NULL when absent.
		notes := sql.NullString{String: completion.Notes, Valid: completion.Notes != ""}
		feedback := sql.NullString{String: completion.Feedback, Valid: completion.Feedback != ""}
		for _, id := range ids {
			result, err := tx.Exec(`UPDATE sessions SET
				status = 'completed', actual_duration = ?, mentor_rating = ?,
				mentor_notes = ?, mentor_feedback = ?, completed_at = ?, updated_at = ?
				WHERE id = ? AND status = 'in-progress'`,
				completion.ActualDuration,
				completion.Rating,
				notes,
				feedback,
				completedAt,
				updatedAt.UTC().Format(time.RFC3339),
				id,
			)
			if err != nil {
				return mapError(err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if affected == 0 {
				var exists int
				if err := tx.QueryRow("SELECT COUNT(1) FROM sessions WHERE id = ?", id).Scan(&exists); err != nil {
					return mapError(err)
				}
				if exists == 0 {
					return persistence.ErrNotFound
				}
				return persistence.ErrConstraintViolation
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var scheduledAtStr, createdAtStr, updatedAtStr string
	var actualDuration, mentorRating sql.NullInt64
	var mentorNotes, mentorFeedback, completedAtStr sql.NullString

	err := row.Scan(
		&session.ID,
		&session.MentorID,
		&session.StudentID,
		&session.Title,
		&session.Description,
		&scheduledAtStr,
		&session.Duration,
		&session.SessionType,
		&session.Status,
		&actualDuration,
		&mentorRating,
		&mentorNotes,
		&mentorFeedback,
		&completedAtStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	if actualDuration.Valid {
		value := int(actualDuration.Int64)
		session.ActualDuration = &value
	}
	if mentorRating.Valid {
		value := int(mentorRating.Int64)
		session.MentorRating = &value
	}
	if mentorNotes.Valid {
		session.MentorNotes = &mentorNotes.String
	}
	if mentorFeedback.Valid {
		session.MentorFeedback = &mentorFeedback.String
	}

	if session.ScheduledAt, err = time.Parse(time.RFC3339, scheduledAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse scheduled_at: %w", err)
	}
	if completedAtStr.Valid {
		completedAt, err := time.Parse(time.RFC3339, completedAtStr.String)
		if err != nil {
			return persistence.Session{}, fmt.Errorf("failed to parse completed_at: %w", err)
		}
		session.CompletedAt = &completedAt
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return session, nil
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.UTC().Format(time.RFC3339), Valid: true}
}
