package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/session-system/models"
	"github.com/Dosada05/session-system/repositories"
)

// QuotaService — месячная книга учёта. Check всегда выполняется до
// побочного эффекта, Charge — только после его фиксации.
type QuotaService interface {
	// CheckUnder возвращает ErrQuotaExceeded, если счётчик пользователя за
	// текущий месяц достиг потолка плана. nil-лимит означает безлимит.
	// Строка счётчика блокируется через exec: внутри транзакции вызывающей
	// операции пары "проверка + списание" одного пользователя сериализуются.
	CheckUnder(ctx context.Context, exec repositories.SQLExecutor, userID int, field models.UsageField, limits models.PlanLimits) error
	// Charge увеличивает счётчик. Ошибка записи логируется и не
	// пробрасывается: недоучёт терпим, ложный отказ — нет.
	Charge(ctx context.Context, userID int, field models.UsageField)
	CurrentUsage(ctx context.Context, userID int) (*models.UserMonthlyUsage, error)
}

type quotaService struct {
	usageRepo repositories.UsageRepository
	clock     Clock
	logger    *slog.Logger
}

func NewQuotaService(usageRepo repositories.UsageRepository, clock Clock, logger *slog.Logger) QuotaService {
	return &quotaService{
		usageRepo: usageRepo,
		clock:     clock,
		logger:    logger,
	}
}

func (s *quotaService) CheckUnder(ctx context.Context, exec repositories.SQLExecutor, userID int, field models.UsageField, limits models.PlanLimits) error {
	limit := limits.LimitFor(field)
	if limit == nil {
		return nil
	}

	month := models.YearMonthOf(s.clock.Now())
	usage, err := s.usageRepo.GetForUpdate(ctx, exec, userID, month)
	if err != nil {
		return fmt.Errorf("failed to load usage for quota check: %w", err)
	}
	if usage.Get(field) >= *limit {
		return fmt.Errorf("%w: %s limit is %d", ErrQuotaExceeded, field, *limit)
	}
	return nil
}

func (s *quotaService) Charge(ctx context.Context, userID int, field models.UsageField) {
	month := models.YearMonthOf(s.clock.Now())
	if err := s.usageRepo.Increment(ctx, userID, month, field); err != nil {
		s.logger.WarnContext(ctx, "failed to charge usage counter",
			slog.Int("user_id", userID),
			slog.String("field", string(field)),
			slog.String("month", month),
			slog.Any("error", err),
		)
	}
}

func (s *quotaService) CurrentUsage(ctx context.Context, userID int) (*models.UserMonthlyUsage, error) {
	month := models.YearMonthOf(s.clock.Now())
	usage, err := s.usageRepo.Get(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load current usage: %w", err)
	}
	return usage, nil
}
