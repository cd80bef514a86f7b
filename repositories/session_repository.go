package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/session-system/models"
	"github.com/lib/pq"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionSportInvalid  = errors.New("session sport conflict or invalid")
	ErrSessionGroupInvalid  = errors.New("session group conflict or invalid")
	ErrSessionDataViolation = errors.New("session data violates constraints")
)

// SessionListFilter — опциональные фильтры списка сессий.
type SessionListFilter struct {
	SportID   *int
	GroupID   *int
	CreatorID *int
	DateFrom  *time.Time
	DateTo    *time.Time
	Statuses  []models.SessionStatus
}

type SessionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, session *models.SportSession) error
	GetByID(ctx context.Context, id int) (*models.SportSession, error)
	// GetByIDForUpdate блокирует строку сессии на время транзакции,
	// сериализуя join/leave против одной сессии.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.SportSession, error)
	List(ctx context.Context, filter SessionListFilter) ([]*models.SportSession, error)
	Update(ctx context.Context, session *models.SportSession) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.SessionStatus) error
	UpdateTeamRefs(ctx context.Context, exec SQLExecutor, id, homeTeamID, awayTeamID int) error
	UpdateScores(ctx context.Context, exec SQLExecutor, id int, scoreHome, scoreAway int) error
	Delete(ctx context.Context, id int) error
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func mapSessionError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			switch pqErr.Constraint {
			case "sport_sessions_sport_id_fkey":
				return ErrSessionSportInvalid
			case "sport_sessions_group_id_fkey":
				return ErrSessionGroupInvalid
			}
		case "23514": // check_violation
			return ErrSessionDataViolation
		}
	}
	return nil
}

const sessionColumns = `s.id, s.title, s.sport_id, s.description, s.location, s.latitude, s.longitude,
	s.date, s.start_time, s.event_type, s.format, s.visibility, s.group_id,
	s.status, s.max_players, s.min_players_per_team, s.max_players_per_team,
	s.creator_id, s.home_team_id, s.away_team_id, s.score_home, s.score_away,
	s.created_at, s.updated_at`

// attendeeCountSubquery считает внутренних участников вместе с внешним составом.
const attendeeCountSubquery = `(
	(SELECT COUNT(*) FROM session_participants p WHERE p.session_id = s.id) +
	(SELECT COUNT(*) FROM session_external_attendees e WHERE e.session_id = s.id)
)`

func scanSession(rowScanner interface {
	Scan(dest ...interface{}) error
}, s *models.SportSession, withCount bool) error {
	dest := []interface{}{
		&s.ID, &s.Title, &s.SportID, &s.Description, &s.Location, &s.Latitude, &s.Longitude,
		&s.Date, &s.StartTime, &s.EventType, &s.Format, &s.Visibility, &s.GroupID,
		&s.Status, &s.MaxPlayers, &s.MinPerTeam, &s.MaxPerTeam,
		&s.CreatorID, &s.HomeTeamID, &s.AwayTeamID, &s.ScoreHome, &s.ScoreAway,
		&s.CreatedAt, &s.UpdatedAt,
	}
	if withCount {
		dest = append(dest, &s.AttendeeCount)
	}
	return rowScanner.Scan(dest...)
}

func (r *postgresSessionRepository) Create(ctx context.Context, exec SQLExecutor, session *models.SportSession) error {
	query := `
		INSERT INTO sport_sessions (
			title, sport_id, description, location, latitude, longitude,
			date, start_time, event_type, format, visibility, group_id,
			status, max_players, min_players_per_team, max_players_per_team,
			creator_id, home_team_id, away_team_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		session.Title, session.SportID, session.Description, session.Location,
		session.Latitude, session.Longitude,
		session.Date, session.StartTime, session.EventType, session.Format,
		session.Visibility, session.GroupID,
		session.Status, session.MaxPlayers, session.MinPerTeam, session.MaxPerTeam,
		session.CreatorID, session.HomeTeamID, session.AwayTeamID,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		if mapped := mapSessionError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id int) (*models.SportSession, error) {
	query := `SELECT ` + sessionColumns + `, ` + attendeeCountSubquery + `
		FROM sport_sessions s WHERE s.id = $1`

	s := &models.SportSession{}
	if err := scanSession(r.db.QueryRowContext(ctx, query, id), s, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %d: %w", id, err)
	}
	return s, nil
}

func (r *postgresSessionRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.SportSession, error) {
	// FOR UPDATE нельзя совмещать с агрегатным подзапросом в одном SELECT,
	// поэтому сначала берём блокировку, затем считаем участников тем же exec.
	query := `SELECT ` + sessionColumns + ` FROM sport_sessions s WHERE s.id = $1 FOR UPDATE OF s`

	executor := r.getExecutor(exec)
	s := &models.SportSession{}
	if err := scanSession(executor.QueryRowContext(ctx, query, id), s, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to lock session %d: %w", id, err)
	}

	countQuery := `SELECT ` + attendeeCountSubquery + ` FROM sport_sessions s WHERE s.id = $1`
	if err := executor.QueryRowContext(ctx, countQuery, id).Scan(&s.AttendeeCount); err != nil {
		return nil, fmt.Errorf("failed to count session attendees: %w", err)
	}
	return s, nil
}

func (r *postgresSessionRepository) List(ctx context.Context, filter SessionListFilter) ([]*models.SportSession, error) {
	var queryBuilder strings.Builder
	args := make([]interface{}, 0, 6)

	queryBuilder.WriteString(`SELECT ` + sessionColumns + `, ` + attendeeCountSubquery + `
		FROM sport_sessions s WHERE 1=1`)

	if filter.SportID != nil {
		args = append(args, *filter.SportID)
		queryBuilder.WriteString(fmt.Sprintf(" AND s.sport_id = $%d", len(args)))
	}
	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		queryBuilder.WriteString(fmt.Sprintf(" AND s.group_id = $%d", len(args)))
	}
	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		queryBuilder.WriteString(fmt.Sprintf(" AND s.creator_id = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		queryBuilder.WriteString(fmt.Sprintf(" AND s.date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		queryBuilder.WriteString(fmt.Sprintf(" AND s.date <= $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, pq.Array(statusStrings(filter.Statuses)))
		queryBuilder.WriteString(fmt.Sprintf(" AND s.status = ANY($%d)", len(args)))
	}
	queryBuilder.WriteString(" ORDER BY s.date ASC, s.start_time ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.SportSession, 0)
	for rows.Next() {
		var s models.SportSession
		if err := scanSession(rows, &s, true); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}

func statusStrings(statuses []models.SessionStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *postgresSessionRepository) Update(ctx context.Context, session *models.SportSession) error {
	query := `
		UPDATE sport_sessions
		SET title = $1, description = $2, location = $3, latitude = $4, longitude = $5,
			date = $6, start_time = $7, max_players = $8,
			min_players_per_team = $9, max_players_per_team = $10,
			visibility = $11, updated_at = NOW()
		WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		session.Title, session.Description, session.Location,
		session.Latitude, session.Longitude,
		session.Date, session.StartTime, session.MaxPlayers,
		session.MinPerTeam, session.MaxPerTeam,
		session.Visibility, session.ID,
	)
	if err != nil {
		if mapped := mapSessionError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update session %d: %w", session.ID, err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.SessionStatus) error {
	query := `UPDATE sport_sessions SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) UpdateTeamRefs(ctx context.Context, exec SQLExecutor, id, homeTeamID, awayTeamID int) error {
	query := `UPDATE sport_sessions SET home_team_id = $1, away_team_id = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, homeTeamID, awayTeamID, id)
	if err != nil {
		return fmt.Errorf("failed to update session team refs: %w", err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) UpdateScores(ctx context.Context, exec SQLExecutor, id int, scoreHome, scoreAway int) error {
	query := `UPDATE sport_sessions SET score_home = $1, score_away = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, scoreHome, scoreAway, id)
	if err != nil {
		return fmt.Errorf("failed to update session scores: %w", err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sport_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}
