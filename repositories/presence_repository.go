package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/session-system/models"
)

// PresenceRepository хранит отметки присутствия внутренних участников.
type PresenceRepository interface {
	Upsert(ctx context.Context, presence *models.SessionPresence) error
	ListBySession(ctx context.Context, sessionID int) ([]*models.SessionPresence, error)
}

type postgresPresenceRepository struct {
	db *sql.DB
}

func NewPostgresPresenceRepository(db *sql.DB) PresenceRepository {
	return &postgresPresenceRepository{db: db}
}

func (r *postgresPresenceRepository) Upsert(ctx context.Context, presence *models.SessionPresence) error {
	query := `
		INSERT INTO session_presences (session_id, user_id, present, note, marked_by, marked_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (session_id, user_id)
		DO UPDATE SET
			present = EXCLUDED.present,
			note = EXCLUDED.note,
			marked_by = EXCLUDED.marked_by,
			marked_at = NOW()
		RETURNING id, marked_at`

	err := r.db.QueryRowContext(ctx, query,
		presence.SessionID, presence.UserID, presence.Present,
		presence.Note, presence.MarkedBy,
	).Scan(&presence.ID, &presence.MarkedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert presence: %w", err)
	}
	return nil
}

func (r *postgresPresenceRepository) ListBySession(ctx context.Context, sessionID int) ([]*models.SessionPresence, error) {
	query := `
		SELECT id, session_id, user_id, present, note, marked_by, marked_at
		FROM session_presences
		WHERE session_id = $1
		ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list presences: %w", err)
	}
	defer rows.Close()

	presences := make([]*models.SessionPresence, 0)
	for rows.Next() {
		var p models.SessionPresence
		if err := rows.Scan(&p.ID, &p.SessionID, &p.UserID, &p.Present, &p.Note, &p.MarkedBy, &p.MarkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan presence row: %w", err)
		}
		presences = append(presences, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating presence rows: %w", err)
	}
	return presences, nil
}
