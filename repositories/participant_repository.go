package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/session-system/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrParticipantUserInvalid = errors.New("participant user conflict or invalid")
)

type ParticipantRepository interface {
	// Add добавляет участника сессии. Возвращает false без ошибки,
	// если участник уже записан (ON CONFLICT DO NOTHING).
	Add(ctx context.Context, exec SQLExecutor, sessionID, userID int) (bool, error)
	Remove(ctx context.Context, exec SQLExecutor, sessionID, userID int) error
	Exists(ctx context.Context, exec SQLExecutor, sessionID, userID int) (bool, error)
	Count(ctx context.Context, exec SQLExecutor, sessionID int) (int, error)
	ListBySession(ctx context.Context, sessionID int) ([]*models.User, error)
	ListSessionIDsByUser(ctx context.Context, userID int) ([]int, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) Add(ctx context.Context, exec SQLExecutor, sessionID, userID int) (bool, error) {
	query := `
		INSERT INTO session_participants (session_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (session_id, user_id) DO NOTHING`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, sessionID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return false, ErrParticipantUserInvalid
		}
		return false, fmt.Errorf("failed to add participant: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *postgresParticipantRepository) Remove(ctx context.Context, exec SQLExecutor, sessionID, userID int) error {
	query := `DELETE FROM session_participants WHERE session_id = $1 AND user_id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) Exists(ctx context.Context, exec SQLExecutor, sessionID, userID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM session_participants WHERE session_id = $1 AND user_id = $2)`
	var exists bool
	err := r.getExecutor(exec).QueryRowContext(ctx, query, sessionID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}

func (r *postgresParticipantRepository) Count(ctx context.Context, exec SQLExecutor, sessionID int) (int, error) {
	query := `SELECT COUNT(*) FROM session_participants WHERE session_id = $1`
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx, query, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) ListBySession(ctx context.Context, sessionID int) ([]*models.User, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, u.role
		FROM session_participants p
		JOIN users u ON p.user_id = u.id
		WHERE p.session_id = $1
		ORDER BY p.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		users = append(users, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return users, nil
}

func (r *postgresParticipantRepository) ListSessionIDsByUser(ctx context.Context, userID int) ([]int, error) {
	query := `SELECT session_id FROM session_participants WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user sessions: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session ids: %w", err)
	}
	return ids, nil
}
