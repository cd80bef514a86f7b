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
	ErrExternalMemberNotFound = errors.New("external member not found")
	ErrExternalMemberConflict = errors.New("external member already in roster")
)

// ExternalMemberRepository хранит внешний состав группы: людей без
// аккаунта, которых тренер ведёт вручную.
type ExternalMemberRepository interface {
	Create(ctx context.Context, member *models.GroupExternalMember) error
	ListByGroup(ctx context.Context, groupID int) ([]*models.GroupExternalMember, error)
	Delete(ctx context.Context, groupID, memberID int) error
}

type postgresExternalMemberRepository struct {
	db *sql.DB
}

func NewPostgresExternalMemberRepository(db *sql.DB) ExternalMemberRepository {
	return &postgresExternalMemberRepository{db: db}
}

func (r *postgresExternalMemberRepository) Create(ctx context.Context, member *models.GroupExternalMember) error {
	query := `
		INSERT INTO group_external_members (group_id, first_name, last_name, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		member.GroupID, member.FirstName, member.LastName, member.Note,
	).Scan(&member.ID, &member.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrExternalMemberConflict
		}
		return fmt.Errorf("failed to create external member: %w", err)
	}
	return nil
}

func (r *postgresExternalMemberRepository) ListByGroup(ctx context.Context, groupID int) ([]*models.GroupExternalMember, error) {
	query := `
		SELECT id, group_id, first_name, last_name, note, created_at
		FROM group_external_members
		WHERE group_id = $1
		ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list external members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.GroupExternalMember, 0)
	for rows.Next() {
		var m models.GroupExternalMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.FirstName, &m.LastName, &m.Note, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan external member row: %w", err)
		}
		members = append(members, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating external member rows: %w", err)
	}
	return members, nil
}

func (r *postgresExternalMemberRepository) Delete(ctx context.Context, groupID, memberID int) error {
	query := `DELETE FROM group_external_members WHERE id = $1 AND group_id = $2`
	result, err := r.db.ExecContext(ctx, query, memberID, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete external member %d: %w", memberID, err)
	}
	return checkAffectedRows(result, ErrExternalMemberNotFound)
}
