package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/session-system/models"
)

var ErrExternalAttendeeNotFound = errors.New("external attendee not found")

// ExternalAttendeeRepository хранит снимок внешнего состава сессии.
type ExternalAttendeeRepository interface {
	// CopyFromGroup снимает текущий внешний состав группы в сессию одним
	// запросом. Дубликаты по (session, first_name, last_name) схлопываются.
	CopyFromGroup(ctx context.Context, exec SQLExecutor, sessionID, groupID int) (int, error)
	ListBySession(ctx context.Context, sessionID int) ([]*models.SessionExternalAttendee, error)
	Count(ctx context.Context, exec SQLExecutor, sessionID int) (int, error)
	SetPresence(ctx context.Context, sessionID, attendeeID int, present bool, note string) error
}

type postgresExternalAttendeeRepository struct {
	db *sql.DB
}

func NewPostgresExternalAttendeeRepository(db *sql.DB) ExternalAttendeeRepository {
	return &postgresExternalAttendeeRepository{db: db}
}

func (r *postgresExternalAttendeeRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresExternalAttendeeRepository) CopyFromGroup(ctx context.Context, exec SQLExecutor, sessionID, groupID int) (int, error) {
	query := `
		INSERT INTO session_external_attendees (session_id, first_name, last_name, note)
		SELECT $1, m.first_name, m.last_name, m.note
		FROM group_external_members m
		WHERE m.group_id = $2
		ON CONFLICT (session_id, first_name, last_name) DO NOTHING`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, sessionID, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to copy group roster into session: %w", err)
	}
	copied, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(copied), nil
}

func (r *postgresExternalAttendeeRepository) ListBySession(ctx context.Context, sessionID int) ([]*models.SessionExternalAttendee, error) {
	query := `
		SELECT id, session_id, first_name, last_name, note, present
		FROM session_external_attendees
		WHERE session_id = $1
		ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list external attendees: %w", err)
	}
	defer rows.Close()

	attendees := make([]*models.SessionExternalAttendee, 0)
	for rows.Next() {
		var a models.SessionExternalAttendee
		if err := rows.Scan(&a.ID, &a.SessionID, &a.FirstName, &a.LastName, &a.Note, &a.Present); err != nil {
			return nil, fmt.Errorf("failed to scan external attendee row: %w", err)
		}
		attendees = append(attendees, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating external attendee rows: %w", err)
	}
	return attendees, nil
}

func (r *postgresExternalAttendeeRepository) Count(ctx context.Context, exec SQLExecutor, sessionID int) (int, error) {
	query := `SELECT COUNT(*) FROM session_external_attendees WHERE session_id = $1`
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx, query, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count external attendees: %w", err)
	}
	return count, nil
}

func (r *postgresExternalAttendeeRepository) SetPresence(ctx context.Context, sessionID, attendeeID int, present bool, note string) error {
	query := `
		UPDATE session_external_attendees
		SET present = $1, note = $2
		WHERE id = $3 AND session_id = $4`

	result, err := r.db.ExecContext(ctx, query, present, note, attendeeID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to set external attendee presence: %w", err)
	}
	return checkAffectedRows(result, ErrExternalAttendeeNotFound)
}
