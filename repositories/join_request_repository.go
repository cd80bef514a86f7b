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
	ErrJoinRequestNotFound    = errors.New("join request not found")
	ErrJoinRequestUserInvalid = errors.New("join request user conflict or invalid")
)

type JoinRequestRepository interface {
	// Upsert создаёт PENDING-заявку. Повторный вызов поверх REJECTED
	// сбрасывает заявку обратно в PENDING, поверх PENDING ничего не меняет.
	Upsert(ctx context.Context, exec SQLExecutor, request *models.GroupJoinRequest) error
	FindByID(ctx context.Context, id int) (*models.GroupJoinRequest, error)
	FindByGroupAndUser(ctx context.Context, groupID, userID int) (*models.GroupJoinRequest, error)
	ListByGroup(ctx context.Context, groupID int, status *models.JoinRequestStatus) ([]*models.GroupJoinRequest, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.JoinRequestStatus) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresJoinRequestRepository struct {
	db *sql.DB
}

func NewPostgresJoinRequestRepository(db *sql.DB) JoinRequestRepository {
	return &postgresJoinRequestRepository{db: db}
}

func (r *postgresJoinRequestRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresJoinRequestRepository) Upsert(ctx context.Context, exec SQLExecutor, request *models.GroupJoinRequest) error {
	query := `
		INSERT INTO group_join_requests (group_id, user_id, message, status)
		VALUES ($1, $2, $3, 'PENDING')
		ON CONFLICT (group_id, user_id)
		DO UPDATE SET
			status = 'PENDING',
			message = EXCLUDED.message,
			created_at = NOW()
		WHERE group_join_requests.status = 'REJECTED'
		RETURNING id, status, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		request.GroupID, request.UserID, request.Message,
	).Scan(&request.ID, &request.Status, &request.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Конфликт с PENDING-заявкой: DO UPDATE не сработал из-за WHERE,
			// существующая заявка остаётся как есть.
			return r.loadExisting(ctx, exec, request)
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrJoinRequestUserInvalid
		}
		return fmt.Errorf("failed to upsert join request: %w", err)
	}
	return nil
}

func (r *postgresJoinRequestRepository) loadExisting(ctx context.Context, exec SQLExecutor, request *models.GroupJoinRequest) error {
	query := `
		SELECT id, status, created_at
		FROM group_join_requests
		WHERE group_id = $1 AND user_id = $2`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, request.GroupID, request.UserID).
		Scan(&request.ID, &request.Status, &request.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to load existing join request: %w", err)
	}
	return nil
}

const joinRequestColumns = `id, group_id, user_id, message, status, created_at`

func (r *postgresJoinRequestRepository) FindByID(ctx context.Context, id int) (*models.GroupJoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM group_join_requests WHERE id = $1`
	req := &models.GroupJoinRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.GroupID, &req.UserID, &req.Message, &req.Status, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("failed to find join request %d: %w", id, err)
	}
	return req, nil
}

func (r *postgresJoinRequestRepository) FindByGroupAndUser(ctx context.Context, groupID, userID int) (*models.GroupJoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM group_join_requests WHERE group_id = $1 AND user_id = $2`
	req := &models.GroupJoinRequest{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&req.ID, &req.GroupID, &req.UserID, &req.Message, &req.Status, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("failed to find join request: %w", err)
	}
	return req, nil
}

func (r *postgresJoinRequestRepository) ListByGroup(ctx context.Context, groupID int, status *models.JoinRequestStatus) ([]*models.GroupJoinRequest, error) {
	query := `
		SELECT r.id, r.group_id, r.user_id, r.message, r.status, r.created_at,
			u.id, u.first_name, u.last_name, u.email, u.role
		FROM group_join_requests r
		JOIN users u ON r.user_id = u.id
		WHERE r.group_id = $1`
	args := []interface{}{groupID}
	if status != nil {
		args = append(args, *status)
		query += ` AND r.status = $2`
	}
	query += ` ORDER BY r.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.GroupJoinRequest, 0)
	for rows.Next() {
		var req models.GroupJoinRequest
		var u models.User
		if err := rows.Scan(
			&req.ID, &req.GroupID, &req.UserID, &req.Message, &req.Status, &req.CreatedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role,
		); err != nil {
			return nil, fmt.Errorf("failed to scan join request row: %w", err)
		}
		req.User = &u
		requests = append(requests, &req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating join request rows: %w", err)
	}
	return requests, nil
}

func (r *postgresJoinRequestRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.JoinRequestStatus) error {
	query := `UPDATE group_join_requests SET status = $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update join request status: %w", err)
	}
	return checkAffectedRows(result, ErrJoinRequestNotFound)
}

func (r *postgresJoinRequestRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM group_join_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete join request %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrJoinRequestNotFound)
}
