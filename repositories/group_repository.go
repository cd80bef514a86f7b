package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/session-system/models"
	"github.com/lib/pq"
)

var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrGroupNameConflict = errors.New("group name is already in use")
	ErrGroupSportInvalid = errors.New("group sport conflict or invalid")
	ErrGroupOwnerInvalid = errors.New("group owner conflict or invalid")
)

// GroupListFilter — опциональные фильтры списка групп.
type GroupListFilter struct {
	SportID *int
	City    *string
	Query   *string
}

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Group, error)
	List(ctx context.Context, filter GroupListFilter) ([]*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	UpdateCoverKey(ctx context.Context, id int, coverKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func mapGroupError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			return ErrGroupNameConflict
		case "23503": // foreign_key_violation
			switch pqErr.Constraint {
			case "groups_sport_id_fkey":
				return ErrGroupSportInvalid
			case "groups_owner_id_fkey":
				return ErrGroupOwnerInvalid
			}
		}
	}
	return nil
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	query := `
		INSERT INTO groups (name, sport_id, city, description, group_type, owner_id, cover_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		group.Name, group.SportID, group.City, group.Description,
		group.Type, group.OwnerID, group.CoverKey,
	).Scan(&group.ID, &group.CreatedAt)

	if err != nil {
		if mapped := mapGroupError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

const groupColumns = `g.id, g.name, g.sport_id, g.city, g.description, g.group_type, g.owner_id, g.cover_key, g.created_at`

func (r *postgresGroupRepository) scanGroup(rowScanner interface {
	Scan(dest ...interface{}) error
}, g *models.Group) error {
	return rowScanner.Scan(
		&g.ID, &g.Name, &g.SportID, &g.City, &g.Description,
		&g.Type, &g.OwnerID, &g.CoverKey, &g.CreatedAt,
	)
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	query := `
		SELECT ` + groupColumns + `,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id AND m.status = 'active')
		FROM groups g
		WHERE g.id = $1`

	g := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.SportID, &g.City, &g.Description,
		&g.Type, &g.OwnerID, &g.CoverKey, &g.CreatedAt,
		&g.MembersCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group %d: %w", id, err)
	}
	return g, nil
}

// GetByIDForUpdate блокирует строку группы на время транзакции (FOR UPDATE),
// чтобы сериализовать join/approve против одной группы.
func (r *postgresGroupRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id = $1 FOR UPDATE OF g`
	g := &models.Group{}
	if err := r.scanGroup(r.getExecutor(exec).QueryRowContext(ctx, query, id), g); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to lock group %d: %w", id, err)
	}
	return g, nil
}

func (r *postgresGroupRepository) List(ctx context.Context, filter GroupListFilter) ([]*models.Group, error) {
	var queryBuilder strings.Builder
	args := make([]interface{}, 0, 3)

	queryBuilder.WriteString(`
		SELECT ` + groupColumns + `,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id AND m.status = 'active')
		FROM groups g
		WHERE 1=1`)

	if filter.SportID != nil {
		args = append(args, *filter.SportID)
		queryBuilder.WriteString(fmt.Sprintf(" AND g.sport_id = $%d", len(args)))
	}
	if filter.City != nil {
		args = append(args, *filter.City)
		queryBuilder.WriteString(fmt.Sprintf(" AND g.city ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if filter.Query != nil {
		args = append(args, *filter.Query)
		n := len(args)
		queryBuilder.WriteString(fmt.Sprintf(" AND (g.name ILIKE '%%' || $%d || '%%' OR g.description ILIKE '%%' || $%d || '%%')", n, n))
	}
	queryBuilder.WriteString(" ORDER BY g.created_at DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(
			&g.ID, &g.Name, &g.SportID, &g.City, &g.Description,
			&g.Type, &g.OwnerID, &g.CoverKey, &g.CreatedAt,
			&g.MembersCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, &g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}
	return groups, nil
}

func (r *postgresGroupRepository) Update(ctx context.Context, group *models.Group) error {
	query := `
		UPDATE groups
		SET name = $1, city = $2, description = $3, group_type = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		group.Name, group.City, group.Description, group.Type, group.ID,
	)
	if err != nil {
		if mapped := mapGroupError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update group %d: %w", group.ID, err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) UpdateCoverKey(ctx context.Context, id int, coverKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE groups SET cover_key = $1 WHERE id = $2`, coverKey, id)
	if err != nil {
		return fmt.Errorf("failed to update group cover key: %w", err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) Delete(ctx context.Context, id int) error {
	// Членства, заявки и внешний состав каскадируются по FK;
	// сессии сохраняют ссылку через ON DELETE SET NULL.
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}
