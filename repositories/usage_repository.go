package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/session-system/models"
)

var ErrUsageFieldInvalid = errors.New("unknown usage field")

// usageFieldColumns ограничивает имена колонок белым списком, поле приходит
// из кода, не из запроса, но подстановку в SQL всё равно не делаем вслепую.
var usageFieldColumns = map[models.UsageField]string{
	models.UsageSessionsCreated:  "sessions_created",
	models.UsageSessionsJoined:   "sessions_joined",
	models.UsageGroupsCreated:    "groups_created",
	models.UsageGroupsJoined:     "groups_joined",
	models.UsageTrainingsCreated: "trainings_created",
}

type UsageRepository interface {
	// Get возвращает счётчики за месяц; при отсутствии строки — нулевые
	// значения без ошибки.
	Get(ctx context.Context, userID int, yearMonth string) (*models.UserMonthlyUsage, error)
	// GetForUpdate лениво создаёт строку месяца и блокирует её на время
	// транзакции. Сериализует пары "проверка + списание" для одного
	// пользователя: два конкурентных действия у потолка не пройдут оба.
	GetForUpdate(ctx context.Context, exec SQLExecutor, userID int, yearMonth string) (*models.UserMonthlyUsage, error)
	// Increment атомарно увеличивает счётчик, создавая строку месяца при
	// первом обращении.
	Increment(ctx context.Context, userID int, yearMonth string, field models.UsageField) error
}

type postgresUsageRepository struct {
	db *sql.DB
}

func NewPostgresUsageRepository(db *sql.DB) UsageRepository {
	return &postgresUsageRepository{db: db}
}

func (r *postgresUsageRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUsageRepository) Get(ctx context.Context, userID int, yearMonth string) (*models.UserMonthlyUsage, error) {
	query := `
		SELECT id, user_id, year_month,
			sessions_created, sessions_joined,
			groups_created, groups_joined, trainings_created,
			updated_at
		FROM user_monthly_usage
		WHERE user_id = $1 AND year_month = $2`

	u := &models.UserMonthlyUsage{}
	err := r.db.QueryRowContext(ctx, query, userID, yearMonth).Scan(
		&u.ID, &u.UserID, &u.YearMonth,
		&u.SessionsCreated, &u.SessionsJoined,
		&u.GroupsCreated, &u.GroupsJoined, &u.TrainingsCreated,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.UserMonthlyUsage{UserID: userID, YearMonth: yearMonth}, nil
		}
		return nil, fmt.Errorf("failed to get monthly usage: %w", err)
	}
	return u, nil
}

func (r *postgresUsageRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, userID int, yearMonth string) (*models.UserMonthlyUsage, error) {
	e := r.getExecutor(exec)

	insert := `
		INSERT INTO user_monthly_usage (user_id, year_month)
		VALUES ($1, $2)
		ON CONFLICT (user_id, year_month) DO NOTHING`
	if _, err := e.ExecContext(ctx, insert, userID, yearMonth); err != nil {
		return nil, fmt.Errorf("failed to ensure monthly usage row: %w", err)
	}

	query := `
		SELECT id, user_id, year_month,
			sessions_created, sessions_joined,
			groups_created, groups_joined, trainings_created,
			updated_at
		FROM user_monthly_usage
		WHERE user_id = $1 AND year_month = $2
		FOR UPDATE`

	u := &models.UserMonthlyUsage{}
	err := e.QueryRowContext(ctx, query, userID, yearMonth).Scan(
		&u.ID, &u.UserID, &u.YearMonth,
		&u.SessionsCreated, &u.SessionsJoined,
		&u.GroupsCreated, &u.GroupsJoined, &u.TrainingsCreated,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to lock monthly usage: %w", err)
	}
	return u, nil
}

func (r *postgresUsageRepository) Increment(ctx context.Context, userID int, yearMonth string, field models.UsageField) error {
	column, ok := usageFieldColumns[field]
	if !ok {
		return ErrUsageFieldInvalid
	}

	query := fmt.Sprintf(`
		INSERT INTO user_monthly_usage (user_id, year_month, %s)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, year_month)
		DO UPDATE SET %s = user_monthly_usage.%s + 1, updated_at = NOW()`,
		column, column, column)

	if _, err := r.db.ExecContext(ctx, query, userID, yearMonth); err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}
	return nil
}
