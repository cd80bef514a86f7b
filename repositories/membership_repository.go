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
	ErrMembershipNotFound     = errors.New("group membership not found")
	ErrMembershipUserInvalid  = errors.New("membership user conflict or invalid")
	ErrMembershipGroupInvalid = errors.New("membership group conflict or invalid")
)

type MembershipRepository interface {
	// Activate создаёт членство или реактивирует существующую запись
	// (ON CONFLICT по паре group/user). Возвращает true только для
	// свежесозданной строки, false для повторного вызова.
	Activate(ctx context.Context, exec SQLExecutor, groupID, userID int, role models.MemberRole) (bool, error)
	Find(ctx context.Context, groupID, userID int) (*models.GroupMember, error)
	ListByGroup(ctx context.Context, groupID int) ([]*models.GroupMember, error)
	ListActiveUserIDs(ctx context.Context, groupID int) ([]int, error)
	UpdateRole(ctx context.Context, groupID, userID int, role models.MemberRole) error
	UpdateStatus(ctx context.Context, groupID, userID int, status models.MemberStatus) error
	Delete(ctx context.Context, exec SQLExecutor, groupID, userID int) error
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

func (r *postgresMembershipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMembershipRepository) Activate(ctx context.Context, exec SQLExecutor, groupID, userID int, role models.MemberRole) (bool, error) {
	// xmax = 0 отличает свежевставленную строку от обновлённой; роль
	// существующей записи намеренно не трогаем, эскалация ролей только
	// через явный UpdateRole.
	query := `
		INSERT INTO group_members (group_id, user_id, role, status)
		VALUES ($1, $2, $3, 'active')
		ON CONFLICT (group_id, user_id)
		DO UPDATE SET status = 'active'
		RETURNING (xmax = 0)`

	var inserted bool
	err := r.getExecutor(exec).QueryRowContext(ctx, query, groupID, userID, role).Scan(&inserted)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "group_members_user_id_fkey":
				return false, ErrMembershipUserInvalid
			case "group_members_group_id_fkey":
				return false, ErrMembershipGroupInvalid
			}
		}
		return false, fmt.Errorf("failed to activate membership: %w", err)
	}
	return inserted, nil
}

func (r *postgresMembershipRepository) Find(ctx context.Context, groupID, userID int) (*models.GroupMember, error) {
	query := `
		SELECT id, group_id, user_id, role, status, joined_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2`

	m := &models.GroupMember{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return m, nil
}

func (r *postgresMembershipRepository) ListByGroup(ctx context.Context, groupID int) ([]*models.GroupMember, error) {
	query := `
		SELECT m.id, m.group_id, m.user_id, m.role, m.status, m.joined_at,
			u.id, u.first_name, u.last_name, u.email, u.role
		FROM group_members m
		JOIN users u ON m.user_id = u.id
		WHERE m.group_id = $1
		ORDER BY m.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.GroupMember, 0)
	for rows.Next() {
		var m models.GroupMember
		var u models.User
		if err := rows.Scan(
			&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		m.User = &u
		members = append(members, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}

func (r *postgresMembershipRepository) ListActiveUserIDs(ctx context.Context, groupID int) ([]int, error) {
	query := `SELECT user_id FROM group_members WHERE group_id = $1 AND status = 'active'`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active member ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member ids: %w", err)
	}
	return ids, nil
}

func (r *postgresMembershipRepository) UpdateRole(ctx context.Context, groupID, userID int, role models.MemberRole) error {
	query := `UPDATE group_members SET role = $1 WHERE group_id = $2 AND user_id = $3`
	result, err := r.db.ExecContext(ctx, query, role, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresMembershipRepository) UpdateStatus(ctx context.Context, groupID, userID int, status models.MemberStatus) error {
	query := `UPDATE group_members SET status = $1 WHERE group_id = $2 AND user_id = $3`
	result, err := r.db.ExecContext(ctx, query, status, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member status: %w", err)
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresMembershipRepository) Delete(ctx context.Context, exec SQLExecutor, groupID, userID int) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}
