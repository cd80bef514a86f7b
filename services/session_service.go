package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/session-system/models"
	"github.com/Dosada05/session-system/repositories"
)

// SessionNotifier получает уведомления об изменениях сессии, реализация
// живёт в live-хабе. Вызовы fire-and-forget.
type SessionNotifier interface {
	NotifySessionUpdate(sessionID int, status models.SessionStatus, attendeeCount int)
}

type CreateSessionInput struct {
	Title       string                   `json:"title"`
	SportID     int                      `json:"sport_id"`
	Description *string                  `json:"description,omitempty"`
	Location    string                   `json:"location"`
	Latitude    *float64                 `json:"latitude,omitempty"`
	Longitude   *float64                 `json:"longitude,omitempty"`
	Date        time.Time                `json:"date"`
	StartTime   time.Time                `json:"start_time"`
	EventType   models.SessionEventType  `json:"event_type"`
	Format      models.SessionFormat     `json:"format"`
	Visibility  models.SessionVisibility `json:"visibility"`
	GroupID     *int                     `json:"group_id,omitempty"`
	MaxPlayers  int                      `json:"max_players"`
	MinPerTeam  *int                     `json:"min_players_per_team,omitempty"`
	MaxPerTeam  *int                     `json:"max_players_per_team,omitempty"`
	Draft       bool                     `json:"draft"`

	HomeTeamName string `json:"home_team_name,omitempty"`
	AwayTeamName string `json:"away_team_name,omitempty"`
}

// UpdateSessionInput — частичное обновление, nil-поля не меняются.
// Формат, видимость и привязка к группе после создания неизменны.
type UpdateSessionInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	MaxPlayers  *int       `json:"max_players,omitempty"`
	MinPerTeam  *int       `json:"min_players_per_team,omitempty"`
	MaxPerTeam  *int       `json:"max_players_per_team,omitempty"`
}

type SessionService interface {
	Create(ctx context.Context, actorID int, input CreateSessionInput) (*models.SportSession, error)
	Update(ctx context.Context, sessionID, actorID int, input UpdateSessionInput) (*models.SportSession, error)
	GetByID(ctx context.Context, id int) (*models.SportSession, error)
	List(ctx context.Context, filter repositories.SessionListFilter) ([]*models.SportSession, error)
	Join(ctx context.Context, sessionID, actorID int) (*models.SportSession, error)
	Leave(ctx context.Context, sessionID, actorID int) (*models.SportSession, error)
	Publish(ctx context.Context, sessionID, actorID int) (*models.SportSession, error)
	Lock(ctx context.Context, sessionID, actorID int) (*models.SportSession, error)
	Cancel(ctx context.Context, sessionID, actorID int) (*models.SportSession, error)
	SetScore(ctx context.Context, sessionID, actorID, scoreHome, scoreAway int) (*models.SportSession, error)
	Delete(ctx context.Context, sessionID, actorID int) error
}

type sessionService struct {
	db              *sql.DB
	sessionRepo     repositories.SessionRepository
	participantRepo repositories.ParticipantRepository
	teamRepo        repositories.TeamRepository
	externalRepo    repositories.ExternalAttendeeRepository
	membershipRepo  repositories.MembershipRepository
	groupRepo       repositories.GroupRepository
	userRepo        repositories.UserRepository
	planResolver    PlanResolver
	quota           QuotaService
	audit           AuditService
	notifier        SessionNotifier
	clock           Clock
	logger          *slog.Logger
}

func NewSessionService(
	db *sql.DB,
	sessionRepo repositories.SessionRepository,
	participantRepo repositories.ParticipantRepository,
	teamRepo repositories.TeamRepository,
	externalRepo repositories.ExternalAttendeeRepository,
	membershipRepo repositories.MembershipRepository,
	groupRepo repositories.GroupRepository,
	userRepo repositories.UserRepository,
	planResolver PlanResolver,
	quota QuotaService,
	audit AuditService,
	notifier SessionNotifier,
	clock Clock,
	logger *slog.Logger,
) SessionService {
	return &sessionService{
		db:              db,
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		teamRepo:        teamRepo,
		externalRepo:    externalRepo,
		membershipRepo:  membershipRepo,
		groupRepo:       groupRepo,
		userRepo:        userRepo,
		planResolver:    planResolver,
		quota:           quota,
		audit:           audit,
		notifier:        notifier,
		clock:           clock,
		logger:          logger,
	}
}

func (s *sessionService) getActor(ctx context.Context, actorID int) (*models.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load actor %d: %w", actorID, err)
	}
	return actor, nil
}

// applyStatus пересчитывает производный статус и лениво обновляет кэш в БД.
// Терминальные состояния и DRAFT не трогаем: CANCELED/FINISHED «липкие» после
// ручного перевода, DRAFT выходит только через Publish.
func (s *sessionService) applyStatus(ctx context.Context, exec repositories.SQLExecutor, session *models.SportSession) models.SessionStatus {
	if session.Status.IsTerminal() || session.Status == models.SessionDraft {
		return session.Status
	}
	computed := session.ComputeStatus(s.clock.Now())
	if computed == session.Status {
		return session.Status
	}
	if err := s.sessionRepo.UpdateStatus(ctx, exec, session.ID, computed); err != nil {
		s.logger.WarnContext(ctx, "failed to persist recomputed session status",
			slog.Int("session_id", session.ID),
			slog.String("status", string(computed)),
			slog.Any("error", err),
		)
		return session.Status
	}
	session.Status = computed
	return computed
}

func validateCapacity(format models.SessionFormat, maxPlayers int, minPerTeam, maxPerTeam *int) error {
	if maxPlayers <= 0 {
		return fmt.Errorf("%w: max_players must be positive", ErrValidationFailed)
	}
	switch format {
	case models.FormatSolo:
	case models.FormatVersus1v1:
		if maxPlayers != 2 {
			return fmt.Errorf("%w: 1v1 format requires exactly 2 players", ErrValidationFailed)
		}
	case models.FormatTeam, models.FormatVersusTeam:
		if maxPerTeam == nil {
			return fmt.Errorf("%w: team format requires max players per team", ErrValidationFailed)
		}
		if minPerTeam != nil && *minPerTeam > *maxPerTeam {
			return fmt.Errorf("%w: min per team exceeds max per team", ErrValidationFailed)
		}
	default:
		return fmt.Errorf("%w: unknown session format", ErrValidationFailed)
	}
	return nil
}

func validateCreateInput(input CreateSessionInput) error {
	if input.Title == "" || input.Location == "" || input.Date.IsZero() {
		return ErrValidationFailed
	}
	if err := validateCapacity(input.Format, input.MaxPlayers, input.MinPerTeam, input.MaxPerTeam); err != nil {
		return err
	}
	switch input.Visibility {
	case models.VisibilityPublic, models.VisibilityPrivate:
		if input.GroupID != nil && input.Visibility != models.VisibilityPublic {
			return fmt.Errorf("%w: group reference requires GROUP visibility", ErrValidationFailed)
		}
	case models.VisibilityGroup:
		if input.GroupID == nil {
			return fmt.Errorf("%w: GROUP visibility requires a group", ErrValidationFailed)
		}
	default:
		return fmt.Errorf("%w: unknown session visibility", ErrValidationFailed)
	}
	return nil
}

func (s *sessionService) Create(ctx context.Context, actorID int, input CreateSessionInput) (*models.SportSession, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	// Непривилегированный пользователь создаёт только публичные
	// не-тренировочные сессии без привязки к группе.
	if !actor.IsCoach() {
		if input.Visibility != models.VisibilityPublic || input.GroupID != nil {
			return nil, fmt.Errorf("%w: only public sessions are available on this plan", ErrForbiddenOperation)
		}
		if input.EventType == models.EventTraining {
			return nil, fmt.Errorf("%w: trainings require a coach role", ErrForbiddenOperation)
		}
	}

	_, limits := s.planResolver.Resolve(actor)

	quotaField := models.UsageSessionsCreated
	if input.EventType == models.EventTraining {
		if input.GroupID == nil {
			return nil, fmt.Errorf("%w: training sessions require a group", ErrValidationFailed)
		}
		if !limits.CanCreateTrainings {
			return nil, fmt.Errorf("%w: trainings are disabled", ErrCapabilityDisabled)
		}
		quotaField = models.UsageTrainingsCreated
	}

	if input.GroupID != nil {
		group, err := s.groupRepo.GetByID(ctx, *input.GroupID)
		if err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return nil, ErrGroupNotFound
			}
			return nil, fmt.Errorf("failed to load group: %w", err)
		}
		member, err := s.membershipRepo.Find(ctx, group.ID, actorID)
		if err != nil {
			if errors.Is(err, repositories.ErrMembershipNotFound) {
				return nil, fmt.Errorf("%w: group members only", ErrForbiddenOperation)
			}
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !member.IsActive() {
			return nil, fmt.Errorf("%w: group members only", ErrForbiddenOperation)
		}
		// Спорт наследуется от группы, не выбирается независимо.
		input.SportID = group.SportID
	}

	session := &models.SportSession{
		Title:       input.Title,
		SportID:     input.SportID,
		Description: input.Description,
		Location:    input.Location,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EventType:   input.EventType,
		Format:      input.Format,
		Visibility:  input.Visibility,
		GroupID:     input.GroupID,
		Status:      models.SessionOpen,
		MaxPlayers:  input.MaxPlayers,
		MinPerTeam:  input.MinPerTeam,
		MaxPerTeam:  input.MaxPerTeam,
		CreatorID:   actorID,
	}
	if input.Draft {
		session.Status = models.SessionDraft
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Проверка квоты блокирует строку счётчика до конца транзакции.
	if err := s.quota.CheckUnder(ctx, tx, actorID, quotaField, limits); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Create(ctx, tx, session); err != nil {
		if errors.Is(err, repositories.ErrSessionSportInvalid) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Создатель всегда участник собственной сессии.
	if _, err := s.participantRepo.Add(ctx, tx, session.ID, actorID); err != nil {
		return nil, fmt.Errorf("failed to add creator as participant: %w", err)
	}
	session.AttendeeCount = 1

	if session.Format == models.FormatVersusTeam {
		if err := s.createSides(ctx, tx, session, input.HomeTeamName, input.AwayTeamName); err != nil {
			return nil, err
		}
	}

	// Снимок внешнего состава группы: копия на момент создания, не ссылка.
	if session.GroupID != nil {
		copied, err := s.externalRepo.CopyFromGroup(ctx, tx, session.ID, *session.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot group roster: %w", err)
		}
		session.AttendeeCount += copied
	}

	if !input.Draft {
		if computed := session.ComputeStatus(s.clock.Now()); computed != session.Status {
			if err := s.sessionRepo.UpdateStatus(ctx, tx, session.ID, computed); err != nil {
				return nil, fmt.Errorf("failed to set initial status: %w", err)
			}
			session.Status = computed
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session creation: %w", err)
	}

	// Квота списывается только после фиксации.
	s.quota.Charge(ctx, actorID, quotaField)
	s.audit.Record(ctx, actorID, "session.create", "session", session.ID, map[string]string{
		"event_type": string(session.EventType),
		"format":     string(session.Format),
	})

	return session, nil
}

func (s *sessionService) createSides(ctx context.Context, tx *sql.Tx, session *models.SportSession, homeName, awayName string) error {
	if homeName == "" {
		homeName = "Home"
	}
	if awayName == "" {
		awayName = "Away"
	}
	home := &models.Team{Name: homeName, SessionID: session.ID}
	away := &models.Team{Name: awayName, SessionID: session.ID}
	if err := s.teamRepo.Create(ctx, tx, home); err != nil {
		return fmt.Errorf("failed to create home team: %w", err)
	}
	if err := s.teamRepo.Create(ctx, tx, away); err != nil {
		return fmt.Errorf("failed to create away team: %w", err)
	}
	if err := s.sessionRepo.UpdateTeamRefs(ctx, tx, session.ID, home.ID, away.ID); err != nil {
		return fmt.Errorf("failed to link session teams: %w", err)
	}
	session.HomeTeamID = &home.ID
	session.AwayTeamID = &away.ID
	return nil
}

// Update правит карточку сессии, доступно создателю или админу.
// Формат, видимость и группа фиксируются при создании и здесь не меняются.
func (s *sessionService) Update(ctx context.Context, sessionID, actorID int, input UpdateSessionInput) (*models.SportSession, error) {
	session, err := s.loadManaged(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionTerminal
	}

	if input.Title != nil {
		session.Title = *input.Title
	}
	if input.Description != nil {
		session.Description = input.Description
	}
	if input.Location != nil {
		session.Location = *input.Location
	}
	if input.Latitude != nil {
		session.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		session.Longitude = input.Longitude
	}
	if input.Date != nil {
		session.Date = *input.Date
	}
	if input.StartTime != nil {
		session.StartTime = *input.StartTime
	}
	if input.MaxPlayers != nil {
		session.MaxPlayers = *input.MaxPlayers
	}
	if input.MinPerTeam != nil {
		session.MinPerTeam = input.MinPerTeam
	}
	if input.MaxPerTeam != nil {
		session.MaxPerTeam = input.MaxPerTeam
	}

	if session.Title == "" || session.Location == "" || session.Date.IsZero() {
		return nil, ErrValidationFailed
	}
	if err := validateCapacity(session.Format, session.MaxPlayers, session.MinPerTeam, session.MaxPerTeam); err != nil {
		return nil, err
	}
	// Вместимость не опускается ниже уже записавшихся.
	if session.MaxPlayers < session.AttendeeCount {
		return nil, fmt.Errorf("%w: max_players is below current attendance", ErrValidationFailed)
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	// Изменение вместимости или времени может поменять производный статус.
	s.applyStatus(ctx, nil, session)

	s.audit.Record(ctx, actorID, "session.update", "session", sessionID, nil)
	s.notify(session)
	return session, nil
}

func (s *sessionService) GetByID(ctx context.Context, id int) (*models.SportSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	// Статус актуализируется лениво при чтении, фонового планировщика нет.
	s.applyStatus(ctx, nil, session)
	return session, nil
}

func (s *sessionService) List(ctx context.Context, filter repositories.SessionListFilter) ([]*models.SportSession, error) {
	sessions, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, session := range sessions {
		s.applyStatus(ctx, nil, session)
	}
	return sessions, nil
}

// Join выполняет цепочку предусловий в фиксированном порядке, первый отказ
// выигрывает. Проверка вместимости и вставка участника сериализуются
// блокировкой строки сессии.
func (s *sessionService) Join(ctx context.Context, sessionID, actorID int) (*models.SportSession, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session, err := s.sessionRepo.GetByIDForUpdate(ctx, tx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}

	// 1. Групповая сессия доступна только активным членам группы.
	if session.Visibility == models.VisibilityGroup && session.GroupID != nil {
		member, err := s.membershipRepo.Find(ctx, *session.GroupID, actorID)
		if err != nil {
			if errors.Is(err, repositories.ErrMembershipNotFound) {
				return nil, fmt.Errorf("%w: group members only", ErrForbiddenOperation)
			}
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !member.IsActive() {
			return nil, fmt.Errorf("%w: group members only", ErrForbiddenOperation)
		}
	}

	// 2. Начавшаяся, заблокированная или завершённая сессия не принимает новых.
	// LOCKED из-за заполненности пропускаем дальше: такой отказ отчитывается
	// как "session full" на шаге 5, а не общим "not joinable".
	status := s.applyStatus(ctx, tx, session)
	if session.HasStarted(s.clock.Now()) ||
		status == models.SessionCanceled || status == models.SessionFinished ||
		status == models.SessionDraft ||
		(status == models.SessionLocked && !session.IsFull()) {
		return nil, ErrSessionNotJoinable
	}

	// 3. Повторный join идемпотентен, не ошибка.
	exists, err := s.participantRepo.Exists(ctx, tx, sessionID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if exists {
		return session, nil
	}

	// 4. Квота.
	_, limits := s.planResolver.Resolve(actor)
	if err := s.quota.CheckUnder(ctx, tx, actorID, models.UsageSessionsJoined, limits); err != nil {
		return nil, err
	}

	// 5. Вместимость.
	if session.IsFull() {
		return nil, ErrSessionFull
	}

	// 6. Эффект.
	added, err := s.participantRepo.Add(ctx, tx, sessionID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}
	if added {
		session.AttendeeCount++
	}
	s.applyStatus(ctx, tx, session)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit join: %w", err)
	}

	if added {
		s.quota.Charge(ctx, actorID, models.UsageSessionsJoined)
	}
	s.audit.Record(ctx, actorID, "session.join", "session", sessionID, nil)
	s.notify(session)
	return session, nil
}

func (s *sessionService) Leave(ctx context.Context, sessionID, actorID int) (*models.SportSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session, err := s.sessionRepo.GetByIDForUpdate(ctx, tx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}

	// 1. Создатель не покидает собственную сессию, только удаляет её.
	if session.CreatorID == actorID {
		return nil, ErrCreatorCannotLeave
	}

	// 2. Выйти можно только будучи участником.
	exists, err := s.participantRepo.Exists(ctx, tx, sessionID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if !exists {
		return nil, ErrNotParticipant
	}

	// 3. Из завершённой или начавшейся сессии выхода нет.
	status := s.applyStatus(ctx, tx, session)
	if session.HasStarted(s.clock.Now()) ||
		status == models.SessionCanceled || status == models.SessionFinished {
		return nil, ErrSessionNotLeavable
	}

	// 4. Эффект. Счётчики монотонны: квота не возвращается.
	if err := s.participantRepo.Remove(ctx, tx, sessionID, actorID); err != nil {
		return nil, fmt.Errorf("failed to remove participant: %w", err)
	}
	session.AttendeeCount--
	s.applyStatus(ctx, tx, session)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit leave: %w", err)
	}

	s.audit.Record(ctx, actorID, "session.leave", "session", sessionID, nil)
	s.notify(session)
	return session, nil
}

func (s *sessionService) loadManaged(ctx context.Context, sessionID, actorID int) (*models.SportSession, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.CreatorID != actorID && !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	return session, nil
}

// Publish принудительно открывает запись: снимает и DRAFT, и ручной LOCKED,
// затем пересчитывает производный статус.
func (s *sessionService) Publish(ctx context.Context, sessionID, actorID int) (*models.SportSession, error) {
	session, err := s.loadManaged(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionTerminal
	}
	session.Status = models.SessionOpen
	if computed := session.ComputeStatus(s.clock.Now()); computed != session.Status {
		session.Status = computed
	}
	if err := s.sessionRepo.UpdateStatus(ctx, nil, sessionID, session.Status); err != nil {
		return nil, fmt.Errorf("failed to publish session: %w", err)
	}
	s.audit.Record(ctx, actorID, "session.publish", "session", sessionID, nil)
	s.notify(session)
	return session, nil
}

// Lock вручную закрывает запись, независимо от заполненности.
func (s *sessionService) Lock(ctx context.Context, sessionID, actorID int) (*models.SportSession, error) {
	session, err := s.loadManaged(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionTerminal
	}
	session.Status = models.SessionLocked
	if err := s.sessionRepo.UpdateStatus(ctx, nil, sessionID, session.Status); err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	s.audit.Record(ctx, actorID, "session.lock", "session", sessionID, nil)
	s.notify(session)
	return session, nil
}

// Cancel — ручная отмена, после неё автопересчёт сессию не оживит.
func (s *sessionService) Cancel(ctx context.Context, sessionID, actorID int) (*models.SportSession, error) {
	session, err := s.loadManaged(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionTerminal
	}
	session.Status = models.SessionCanceled
	if err := s.sessionRepo.UpdateStatus(ctx, nil, sessionID, session.Status); err != nil {
		return nil, fmt.Errorf("failed to cancel session: %w", err)
	}
	s.audit.Record(ctx, actorID, "session.cancel", "session", sessionID, nil)
	s.notify(session)
	return session, nil
}

// SetScore записывает счёт обеих сторон и принудительно завершает сессию.
func (s *sessionService) SetScore(ctx context.Context, sessionID, actorID, scoreHome, scoreAway int) (*models.SportSession, error) {
	if scoreHome < 0 || scoreAway < 0 {
		return nil, fmt.Errorf("%w: scores must be non-negative", ErrValidationFailed)
	}
	session, err := s.loadManaged(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	if session.Format != models.FormatVersus1v1 && session.Format != models.FormatVersusTeam {
		return nil, ErrSessionNotTeamMode
	}
	if session.Status == models.SessionCanceled {
		return nil, ErrSessionTerminal
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.sessionRepo.UpdateScores(ctx, tx, sessionID, scoreHome, scoreAway); err != nil {
		return nil, fmt.Errorf("failed to update scores: %w", err)
	}
	if err := s.sessionRepo.UpdateStatus(ctx, tx, sessionID, models.SessionFinished); err != nil {
		return nil, fmt.Errorf("failed to finish session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit score: %w", err)
	}

	session.ScoreHome = &scoreHome
	session.ScoreAway = &scoreAway
	session.Status = models.SessionFinished

	s.audit.Record(ctx, actorID, "session.score", "session", sessionID, map[string]string{
		"score_home": fmt.Sprint(scoreHome),
		"score_away": fmt.Sprint(scoreAway),
	})
	s.notify(session)
	return session, nil
}

func (s *sessionService) Delete(ctx context.Context, sessionID, actorID int) error {
	if _, err := s.loadManaged(ctx, sessionID, actorID); err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.audit.Record(ctx, actorID, "session.delete", "session", sessionID, nil)
	return nil
}

func (s *sessionService) notify(session *models.SportSession) {
	if s.notifier != nil {
		s.notifier.NotifySessionUpdate(session.ID, session.Status, session.AttendeeCount)
	}
}
