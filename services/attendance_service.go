package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/session-system/models"
	"github.com/Dosada05/session-system/repositories"
	"golang.org/x/sync/errgroup"
)

// AttendanceSheet — сводка явки по сессии: внутренние участники,
// внешний состав и отметки присутствия.
type AttendanceSheet struct {
	Session      *models.SportSession              `json:"session"`
	Participants []*models.User                    `json:"participants"`
	External     []*models.SessionExternalAttendee `json:"external_attendees"`
	Presences    []*models.SessionPresence         `json:"presences"`
}

type AttendanceService interface {
	GetSheet(ctx context.Context, sessionID, actorID int) (*AttendanceSheet, error)
	MarkPresence(ctx context.Context, sessionID, actorID, userID int, present bool, note string) (*models.SessionPresence, error)
	MarkExternalPresence(ctx context.Context, sessionID, attendeeID, actorID int, present bool, note string) error
}

type attendanceService struct {
	sessionRepo     repositories.SessionRepository
	participantRepo repositories.ParticipantRepository
	externalRepo    repositories.ExternalAttendeeRepository
	presenceRepo    repositories.PresenceRepository
	membershipRepo  repositories.MembershipRepository
	userRepo        repositories.UserRepository
}

func NewAttendanceService(
	sessionRepo repositories.SessionRepository,
	participantRepo repositories.ParticipantRepository,
	externalRepo repositories.ExternalAttendeeRepository,
	presenceRepo repositories.PresenceRepository,
	membershipRepo repositories.MembershipRepository,
	userRepo repositories.UserRepository,
) AttendanceService {
	return &attendanceService{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		externalRepo:    externalRepo,
		presenceRepo:    presenceRepo,
		membershipRepo:  membershipRepo,
		userRepo:        userRepo,
	}
}

// canMark: создатель сессии, админ платформы или управляющий группой,
// к которой привязана сессия.
func (s *attendanceService) canMark(ctx context.Context, session *models.SportSession, actor *models.User) (bool, error) {
	if actor.IsAdmin() || session.CreatorID == actor.ID {
		return true, nil
	}
	if session.GroupID == nil {
		return false, nil
	}
	member, err := s.membershipRepo.Find(ctx, *session.GroupID, actor.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return member.IsActive() && member.CanManage(), nil
}

func (s *attendanceService) loadSessionActor(ctx context.Context, sessionID, actorID int) (*models.SportSession, *models.User, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to load actor: %w", err)
	}
	return session, actor, nil
}

// GetSheet собирает три списка параллельно.
func (s *attendanceService) GetSheet(ctx context.Context, sessionID, actorID int) (*AttendanceSheet, error) {
	session, actor, err := s.loadSessionActor(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canMark(ctx, session, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbiddenOperation
	}

	sheet := &AttendanceSheet{Session: session}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		participants, err := s.participantRepo.ListBySession(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		sheet.Participants = participants
		return nil
	})
	g.Go(func() error {
		external, err := s.externalRepo.ListBySession(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to list external attendees: %w", err)
		}
		sheet.External = external
		return nil
	})
	g.Go(func() error {
		presences, err := s.presenceRepo.ListBySession(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to list presences: %w", err)
		}
		sheet.Presences = presences
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sheet, nil
}

// MarkPresence ставит или обновляет отметку. Запись присутствия не
// требует действующего участия: она переживает выход из сессии.
func (s *attendanceService) MarkPresence(ctx context.Context, sessionID, actorID, userID int, present bool, note string) (*models.SessionPresence, error) {
	session, actor, err := s.loadSessionActor(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canMark(ctx, session, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbiddenOperation
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	presence := &models.SessionPresence{
		SessionID: sessionID,
		UserID:    userID,
		Present:   present,
		Note:      note,
		MarkedBy:  &actorID,
	}
	if err := s.presenceRepo.Upsert(ctx, presence); err != nil {
		return nil, fmt.Errorf("failed to mark presence: %w", err)
	}
	return presence, nil
}

func (s *attendanceService) MarkExternalPresence(ctx context.Context, sessionID, attendeeID, actorID int, present bool, note string) error {
	session, actor, err := s.loadSessionActor(ctx, sessionID, actorID)
	if err != nil {
		return err
	}
	ok, err := s.canMark(ctx, session, actor)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbiddenOperation
	}

	if err := s.externalRepo.SetPresence(ctx, sessionID, attendeeID, present, note); err != nil {
		if errors.Is(err, repositories.ErrExternalAttendeeNotFound) {
			return ErrAttendeeNotFound
		}
		return fmt.Errorf("failed to mark external presence: %w", err)
	}
	return nil
}
