package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/session-system/models"
	"github.com/Dosada05/session-system/repositories"
	"github.com/Dosada05/session-system/storage"
	"golang.org/x/sync/errgroup"
)

// GroupCreationPolicy — платформенная политика создания групп,
// задаётся конфигурацией, не кодом.
type GroupCreationPolicy string

const (
	PolicyAnyMember      GroupCreationPolicy = "ANY_MEMBER"
	PolicyCoachOnly      GroupCreationPolicy = "COACH_ONLY"
	PolicyPremiumOnly    GroupCreationPolicy = "PREMIUM_ONLY"
	PolicyCoachOrPremium GroupCreationPolicy = "COACH_OR_PREMIUM"
)

type CreateGroupInput struct {
	Name        string           `json:"name"`
	SportID     int              `json:"sport_id"`
	City        string           `json:"city"`
	Description string           `json:"description"`
	Type        models.GroupType `json:"group_type"`
}

type UpdateGroupInput struct {
	Name        *string           `json:"name,omitempty"`
	City        *string           `json:"city,omitempty"`
	Description *string           `json:"description,omitempty"`
	Type        *models.GroupType `json:"group_type,omitempty"`
}

// JoinGroupResult описывает исход попытки вступления: немедленное
// членство (OPEN) или заявка на рассмотрении (PRIVATE).
type JoinGroupResult struct {
	Membership *models.GroupMember      `json:"membership,omitempty"`
	Request    *models.GroupJoinRequest `json:"request,omitempty"`
}

type GroupService interface {
	Create(ctx context.Context, actorID int, input CreateGroupInput) (*models.Group, error)
	GetByID(ctx context.Context, id int) (*models.Group, error)
	List(ctx context.Context, filter repositories.GroupListFilter) ([]*models.Group, error)
	Update(ctx context.Context, groupID, actorID int, input UpdateGroupInput) (*models.Group, error)
	Delete(ctx context.Context, groupID, actorID int) error

	Join(ctx context.Context, groupID, actorID int, message *string) (*JoinGroupResult, error)
	Leave(ctx context.Context, groupID, actorID int) error
	ApproveRequest(ctx context.Context, groupID, requestID, actorID int) error
	RejectRequest(ctx context.Context, groupID, requestID, actorID int) error
	ListRequests(ctx context.Context, groupID, actorID int) ([]*models.GroupJoinRequest, error)
	AddMember(ctx context.Context, groupID, userID, actorID int) error
	RemoveMember(ctx context.Context, groupID, userID, actorID int) error
	ListMembers(ctx context.Context, groupID int) ([]*models.GroupMember, error)

	AddExternalMember(ctx context.Context, groupID, actorID int, member *models.GroupExternalMember) error
	ListExternalMembers(ctx context.Context, groupID, actorID int) ([]*models.GroupExternalMember, error)
	RemoveExternalMember(ctx context.Context, groupID, memberID, actorID int) error

	UploadCover(ctx context.Context, groupID, actorID int, contentType string, file io.Reader) (*models.Group, error)
}

type groupService struct {
	db             *sql.DB
	groupRepo      repositories.GroupRepository
	membershipRepo repositories.MembershipRepository
	requestRepo    repositories.JoinRequestRepository
	externalRepo   repositories.ExternalMemberRepository
	sportRepo      repositories.SportRepository
	userRepo       repositories.UserRepository
	planResolver   PlanResolver
	quota          QuotaService
	audit          AuditService
	uploader       storage.FileUploader
	policy         GroupCreationPolicy
	logger         *slog.Logger
}

func NewGroupService(
	db *sql.DB,
	groupRepo repositories.GroupRepository,
	membershipRepo repositories.MembershipRepository,
	requestRepo repositories.JoinRequestRepository,
	externalRepo repositories.ExternalMemberRepository,
	sportRepo repositories.SportRepository,
	userRepo repositories.UserRepository,
	planResolver PlanResolver,
	quota QuotaService,
	audit AuditService,
	uploader storage.FileUploader,
	policy GroupCreationPolicy,
	logger *slog.Logger,
) GroupService {
	return &groupService{
		db:             db,
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		requestRepo:    requestRepo,
		externalRepo:   externalRepo,
		sportRepo:      sportRepo,
		userRepo:       userRepo,
		planResolver:   planResolver,
		quota:          quota,
		audit:          audit,
		uploader:       uploader,
		policy:         policy,
		logger:         logger,
	}
}

func (s *groupService) getActor(ctx context.Context, actorID int) (*models.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load actor %d: %w", actorID, err)
	}
	return actor, nil
}

func (s *groupService) checkCreationPolicy(actor *models.User) error {
	if actor.IsAdmin() {
		return nil
	}
	switch s.policy {
	case PolicyAnyMember, "":
		return nil
	case PolicyCoachOnly:
		if actor.IsCoach() {
			return nil
		}
	case PolicyPremiumOnly:
		if actor.IsPremium {
			return nil
		}
	case PolicyCoachOrPremium:
		if actor.IsCoach() || actor.IsPremium {
			return nil
		}
	}
	return ErrCreationPolicy
}

func (s *groupService) Create(ctx context.Context, actorID int, input CreateGroupInput) (*models.Group, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" || input.SportID == 0 {
		return nil, ErrValidationFailed
	}
	switch input.Type {
	case models.GroupTypeOpen, models.GroupTypePrivate, models.GroupTypeCoachOnly:
	default:
		return nil, fmt.Errorf("%w: unknown group type", ErrValidationFailed)
	}

	if err := s.checkCreationPolicy(actor); err != nil {
		return nil, err
	}

	// Флаг возможности блокирует раньше числовой квоты.
	_, limits := s.planResolver.Resolve(actor)
	if !limits.CanCreateGroups {
		return nil, fmt.Errorf("%w: group creation is disabled", ErrCapabilityDisabled)
	}

	if _, err := s.sportRepo.GetByID(ctx, input.SportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to check sport: %w", err)
	}

	group := &models.Group{
		Name:        strings.TrimSpace(input.Name),
		SportID:     input.SportID,
		City:        input.City,
		Description: input.Description,
		Type:        input.Type,
		OwnerID:     actorID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Проверка квоты блокирует строку счётчика до конца транзакции.
	if err := s.quota.CheckUnder(ctx, tx, actorID, models.UsageGroupsCreated, limits); err != nil {
		return nil, err
	}

	if err := s.groupRepo.Create(ctx, tx, group); err != nil {
		if errors.Is(err, repositories.ErrGroupNameConflict) {
			return nil, ErrGroupNameConflict
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	// Группа никогда не бывает без владельца: членство OWNER создаётся
	// в той же транзакции, что и сама группа.
	if _, err := s.membershipRepo.Activate(ctx, tx, group.ID, actorID, models.MemberRoleOwner); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group creation: %w", err)
	}

	s.quota.Charge(ctx, actorID, models.UsageGroupsCreated)
	s.audit.Record(ctx, actorID, "group.create", "group", group.ID, map[string]string{
		"group_type": string(group.Type),
	})

	group.MembersCount = 1
	return group, nil
}

// GetByID собирает карточку группы: спорт, владелец и состав
// загружаются параллельно.
func (s *groupService) GetByID(ctx context.Context, id int) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sport, err := s.sportRepo.GetByID(gctx, group.SportID)
		if err != nil {
			return fmt.Errorf("failed to load group sport: %w", err)
		}
		s.populateSportLogoURL(sport)
		group.Sport = sport
		return nil
	})
	g.Go(func() error {
		owner, err := s.userRepo.GetByID(gctx, group.OwnerID)
		if err != nil {
			return fmt.Errorf("failed to load group owner: %w", err)
		}
		owner.PasswordHash = ""
		group.Owner = owner
		return nil
	})
	g.Go(func() error {
		members, err := s.membershipRepo.ListByGroup(gctx, group.ID)
		if err != nil {
			return fmt.Errorf("failed to load group members: %w", err)
		}
		group.Members = make([]models.GroupMember, 0, len(members))
		for _, m := range members {
			group.Members = append(group.Members, *m)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.populateCoverURL(group)
	return group, nil
}

func (s *groupService) List(ctx context.Context, filter repositories.GroupListFilter) ([]*models.Group, error) {
	groups, err := s.groupRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	for _, group := range groups {
		s.populateCoverURL(group)
	}
	return groups, nil
}

// canManage: владелец, менеджер или админ платформы.
func (s *groupService) canManage(ctx context.Context, group *models.Group, actor *models.User) (bool, error) {
	if actor.IsAdmin() || group.OwnerID == actor.ID {
		return true, nil
	}
	member, err := s.membershipRepo.Find(ctx, group.ID, actor.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return member.IsActive() && member.CanManage(), nil
}

func (s *groupService) loadManaged(ctx context.Context, groupID, actorID int) (*models.Group, *models.User, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, fmt.Errorf("failed to get group: %w", err)
	}
	ok, err := s.canManage(ctx, group, actor)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrForbiddenOperation
	}
	return group, actor, nil
}

func (s *groupService) Update(ctx context.Context, groupID, actorID int, input UpdateGroupInput) (*models.Group, error) {
	group, _, err := s.loadManaged(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrValidationFailed
		}
		group.Name = strings.TrimSpace(*input.Name)
	}
	if input.City != nil {
		group.City = *input.City
	}
	if input.Description != nil {
		group.Description = *input.Description
	}
	if input.Type != nil {
		switch *input.Type {
		case models.GroupTypeOpen, models.GroupTypePrivate, models.GroupTypeCoachOnly:
			group.Type = *input.Type
		default:
			return nil, fmt.Errorf("%w: unknown group type", ErrValidationFailed)
		}
	}

	if err := s.groupRepo.Update(ctx, group); err != nil {
		if errors.Is(err, repositories.ErrGroupNameConflict) {
			return nil, ErrGroupNameConflict
		}
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	s.audit.Record(ctx, actorID, "group.update", "group", groupID, nil)
	return group, nil
}

func (s *groupService) Delete(ctx context.Context, groupID, actorID int) error {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return err
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to get group: %w", err)
	}
	// Удаление жёстче управления: только владелец или админ.
	if group.OwnerID != actorID && !actor.IsAdmin() {
		return ErrForbiddenOperation
	}

	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if group.CoverKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *group.CoverKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete group cover",
				slog.Int("group_id", groupID), slog.Any("error", err))
		}
	}
	s.audit.Record(ctx, actorID, "group.delete", "group", groupID, nil)
	return nil
}

// Join реализует семантику вступления по типу группы: OPEN — немедленное
// членство, PRIVATE — заявка, COACH_ONLY — отказ всегда.
func (s *groupService) Join(ctx context.Context, groupID, actorID int, message *string) (*JoinGroupResult, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group, err := s.groupRepo.GetByIDForUpdate(ctx, tx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to lock group: %w", err)
	}

	// Владелец и так всегда член: no-op с успехом.
	if group.OwnerID == actorID {
		member, err := s.membershipRepo.Find(ctx, groupID, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to load owner membership: %w", err)
		}
		return &JoinGroupResult{Membership: member}, nil
	}

	switch group.Type {
	case models.GroupTypeCoachOnly:
		return nil, ErrGroupInvitationOnly

	case models.GroupTypePrivate:
		request := &models.GroupJoinRequest{GroupID: groupID, UserID: actorID, Message: message}
		if err := s.requestRepo.Upsert(ctx, tx, request); err != nil {
			return nil, fmt.Errorf("failed to upsert join request: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit join request: %w", err)
		}
		s.audit.Record(ctx, actorID, "group.join_request", "group", groupID, nil)
		return &JoinGroupResult{Request: request}, nil

	case models.GroupTypeOpen:
		existing, err := s.membershipRepo.Find(ctx, groupID, actorID)
		if err != nil && !errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if existing != nil && existing.IsActive() {
			// Повторный join — no-op, квота не списывается.
			return &JoinGroupResult{Membership: existing}, nil
		}

		_, limits := s.planResolver.Resolve(actor)
		if err := s.quota.CheckUnder(ctx, tx, actorID, models.UsageGroupsJoined, limits); err != nil {
			return nil, err
		}
		if _, err := s.membershipRepo.Activate(ctx, tx, groupID, actorID, models.MemberRoleMember); err != nil {
			return nil, fmt.Errorf("failed to activate membership: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit join: %w", err)
		}

		// Списываем только на переходе в ACTIVE.
		s.quota.Charge(ctx, actorID, models.UsageGroupsJoined)
		s.audit.Record(ctx, actorID, "group.join", "group", groupID, nil)

		member, err := s.membershipRepo.Find(ctx, groupID, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to load membership: %w", err)
		}
		return &JoinGroupResult{Membership: member}, nil
	}

	return nil, fmt.Errorf("%w: unknown group type", ErrValidationFailed)
}

func (s *groupService) Leave(ctx context.Context, groupID, actorID int) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to get group: %w", err)
	}
	// Владелец не выходит из собственной группы: сначала передача
	// владения, которой здесь нет, значит жёсткий запрет.
	if group.OwnerID == actorID {
		return ErrOwnerCannotLeave
	}

	if err := s.membershipRepo.Delete(ctx, nil, groupID, actorID); err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	// Счётчик groups_joined монотонный: выход его не уменьшает.
	s.audit.Record(ctx, actorID, "group.leave", "group", groupID, nil)
	return nil
}

// ApproveRequest идемпотентен: заявка на уже состоящего в группе
// пользователя тихо удаляется без повторного списания квоты.
func (s *groupService) ApproveRequest(ctx context.Context, groupID, requestID, actorID int) error {
	if _, _, err := s.loadManaged(ctx, groupID, actorID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.groupRepo.GetByIDForUpdate(ctx, tx, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to lock group: %w", err)
	}

	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrJoinRequestNotFound) {
			return ErrJoinRequestNotFound
		}
		return fmt.Errorf("failed to load join request: %w", err)
	}
	if request.GroupID != groupID {
		return ErrJoinRequestNotFound
	}

	existing, err := s.membershipRepo.Find(ctx, groupID, request.UserID)
	if err != nil && !errors.Is(err, repositories.ErrMembershipNotFound) {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if existing != nil && existing.IsActive() {
		// Членство уже есть: заявка избыточна, просто убираем её.
		if err := s.requestRepo.Delete(ctx, tx, requestID); err != nil && !errors.Is(err, repositories.ErrJoinRequestNotFound) {
			return fmt.Errorf("failed to delete redundant request: %w", err)
		}
		return tx.Commit()
	}

	// Квота проверяется у заявителя, не у одобряющего.
	requester, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load requester: %w", err)
	}
	_, limits := s.planResolver.Resolve(requester)
	if err := s.quota.CheckUnder(ctx, tx, request.UserID, models.UsageGroupsJoined, limits); err != nil {
		return err
	}

	if _, err := s.membershipRepo.Activate(ctx, tx, groupID, request.UserID, models.MemberRoleMember); err != nil {
		return fmt.Errorf("failed to activate membership: %w", err)
	}
	// Долговременная запись — членство; заявка после одобрения удаляется.
	if err := s.requestRepo.Delete(ctx, tx, requestID); err != nil {
		return fmt.Errorf("failed to consume join request: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approval: %w", err)
	}

	s.quota.Charge(ctx, request.UserID, models.UsageGroupsJoined)
	s.audit.Record(ctx, actorID, "group.approve_request", "group", groupID, map[string]string{
		"user_id": fmt.Sprint(request.UserID),
	})
	return nil
}

// RejectRequest идемпотентен: повторный отказ по исчезнувшей заявке — успех.
func (s *groupService) RejectRequest(ctx context.Context, groupID, requestID, actorID int) error {
	if _, _, err := s.loadManaged(ctx, groupID, actorID); err != nil {
		return err
	}

	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrJoinRequestNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load join request: %w", err)
	}
	if request.GroupID != groupID {
		return ErrJoinRequestNotFound
	}

	if err := s.requestRepo.Delete(ctx, nil, requestID); err != nil && !errors.Is(err, repositories.ErrJoinRequestNotFound) {
		return fmt.Errorf("failed to delete join request: %w", err)
	}
	s.audit.Record(ctx, actorID, "group.reject_request", "group", groupID, map[string]string{
		"user_id": fmt.Sprint(request.UserID),
	})
	return nil
}

func (s *groupService) ListRequests(ctx context.Context, groupID, actorID int) ([]*models.GroupJoinRequest, error) {
	if _, _, err := s.loadManaged(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	pending := models.JoinRequestPending
	requests, err := s.requestRepo.ListByGroup(ctx, groupID, &pending)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	return requests, nil
}

// AddMember — административное добавление. Квоту заявителя не трогаем:
// self-service вступление и админское добавление учитываются по разным
// правилам, и здесь выбран вариант «админские не считаются».
func (s *groupService) AddMember(ctx context.Context, groupID, userID, actorID int) error {
	group, _, err := s.loadManaged(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if group.OwnerID == userID {
		return ErrOwnerImmutable
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to check user: %w", err)
	}

	if _, err := s.membershipRepo.Activate(ctx, nil, groupID, userID, models.MemberRoleMember); err != nil {
		return fmt.Errorf("failed to activate membership: %w", err)
	}
	s.audit.Record(ctx, actorID, "group.add_member", "group", groupID, map[string]string{
		"user_id": fmt.Sprint(userID),
	})
	return nil
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, userID, actorID int) error {
	group, _, err := s.loadManaged(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if group.OwnerID == userID {
		return ErrOwnerImmutable
	}

	if err := s.membershipRepo.Delete(ctx, nil, groupID, userID); err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	s.audit.Record(ctx, actorID, "group.remove_member", "group", groupID, map[string]string{
		"user_id": fmt.Sprint(userID),
	})
	return nil
}

func (s *groupService) ListMembers(ctx context.Context, groupID int) ([]*models.GroupMember, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	members, err := s.membershipRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	for _, m := range members {
		if m.User != nil {
			m.User.PasswordHash = ""
		}
	}
	return members, nil
}

func (s *groupService) AddExternalMember(ctx context.Context, groupID, actorID int, member *models.GroupExternalMember) error {
	if _, _, err := s.loadManaged(ctx, groupID, actorID); err != nil {
		return err
	}
	if strings.TrimSpace(member.FirstName) == "" || strings.TrimSpace(member.LastName) == "" {
		return ErrValidationFailed
	}
	member.GroupID = groupID
	if err := s.externalRepo.Create(ctx, member); err != nil {
		return fmt.Errorf("failed to add external member: %w", err)
	}
	s.audit.Record(ctx, actorID, "group.add_external", "group", groupID, nil)
	return nil
}

func (s *groupService) ListExternalMembers(ctx context.Context, groupID, actorID int) ([]*models.GroupExternalMember, error) {
	if _, _, err := s.loadManaged(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	members, err := s.externalRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list external members: %w", err)
	}
	return members, nil
}

func (s *groupService) RemoveExternalMember(ctx context.Context, groupID, memberID, actorID int) error {
	if _, _, err := s.loadManaged(ctx, groupID, actorID); err != nil {
		return err
	}
	if err := s.externalRepo.Delete(ctx, groupID, memberID); err != nil {
		if errors.Is(err, repositories.ErrExternalMemberNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove external member: %w", err)
	}
	return nil
}

func (s *groupService) UploadCover(ctx context.Context, groupID, actorID int, contentType string, file io.Reader) (*models.Group, error) {
	group, _, err := s.loadManaged(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	oldKey := group.CoverKey
	key := fmt.Sprintf("groups/%d/cover%s", groupID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload group cover: %w", err)
	}
	if err := s.groupRepo.UpdateCoverKey(ctx, groupID, &key); err != nil {
		return nil, fmt.Errorf("failed to save cover key: %w", err)
	}
	group.CoverKey = &key

	if oldKey != nil && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous cover",
				slog.Int("group_id", groupID), slog.Any("error", err))
		}
	}

	s.populateCoverURL(group)
	return group, nil
}

func (s *groupService) populateCoverURL(group *models.Group) {
	if group.CoverKey != nil && *group.CoverKey != "" && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*group.CoverKey); url != "" {
			group.CoverURL = &url
		}
	}
}

func (s *groupService) populateSportLogoURL(sport *models.Sport) {
	if sport != nil && sport.LogoKey != nil && *sport.LogoKey != "" && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*sport.LogoKey); url != "" {
			sport.LogoURL = &url
		}
	}
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported image content type: %s", contentType)
	}
}
