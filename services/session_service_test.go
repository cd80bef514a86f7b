package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/session-system/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type sessionEnv struct {
	svc          SessionService
	sessions     *fakeSessionRepo
	participants *fakeParticipantRepo
	teams        *fakeTeamRepo
	external     *fakeExternalAttendeeRepo
	memberships  *fakeMembershipRepo
	groups       *fakeGroupRepo
	users        *fakeUserRepo
	usage        *fakeUsageRepo
	notifier     *fakeNotifier
}

func newSessionEnv(users ...*models.User) *sessionEnv {
	participants := newFakeParticipantRepo()
	env := &sessionEnv{
		sessions:     newFakeSessionRepo(participants),
		participants: participants,
		teams:        newFakeTeamRepo(),
		external:     newFakeExternalAttendeeRepo(),
		memberships:  newFakeMembershipRepo(),
		groups:       newFakeGroupRepo(),
		users:        newFakeUserRepo(users...),
		usage:        newFakeUsageRepo(),
		notifier:     &fakeNotifier{},
	}
	clock := FixedClock{Time: testNow}
	logger := testLogger()
	env.svc = NewSessionService(
		newTestDB(),
		env.sessions,
		env.participants,
		env.teams,
		env.external,
		env.memberships,
		env.groups,
		env.users,
		NewRolePlanResolver(nil),
		NewQuotaService(env.usage, clock, logger),
		NewAuditService(&fakeAuditRepo{}, clock, logger),
		env.notifier,
		clock,
		logger,
	)
	return env
}

// seedSession кладёт сессию в хранилище и записывает участников.
func (env *sessionEnv) seedSession(s *models.SportSession, participantIDs ...int) *models.SportSession {
	env.sessions.put(s)
	for _, id := range participantIDs {
		env.participants.Add(context.Background(), nil, s.ID, id)
	}
	return s
}

func futureSession(creatorID, maxPlayers int) *models.SportSession {
	return &models.SportSession{
		Title:      "Evening game",
		SportID:    1,
		Location:   "Central court",
		Date:       testNow,
		StartTime:  time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC),
		EventType:  models.EventFriendly,
		Format:     models.FormatVersus1v1,
		Visibility: models.VisibilityPublic,
		Status:     models.SessionOpen,
		MaxPlayers: maxPlayers,
		CreatorID:  creatorID,
	}
}

func plainUser(id int) *models.User {
	return &models.User{ID: id, FirstName: "User", Role: models.RoleUser}
}

func coachUser(id int) *models.User {
	return &models.User{ID: id, FirstName: "Coach", Role: models.RoleCoach}
}

func TestJoinFillsSessionThenReportsFull(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2), plainUser(3))
	s := env.seedSession(futureSession(1, 2), 1)

	got, err := env.svc.Join(context.Background(), s.ID, 2)
	if err != nil {
		t.Fatalf("Join: unexpected error: %v", err)
	}
	if got.Status != models.SessionLocked {
		t.Errorf("status after filling = %s, want %s", got.Status, models.SessionLocked)
	}
	if got.AttendeeCount != 2 {
		t.Errorf("attendee count = %d, want 2", got.AttendeeCount)
	}
	if stored := env.sessions.sessions[s.ID].Status; stored != models.SessionLocked {
		t.Errorf("stored status = %s, want %s", stored, models.SessionLocked)
	}
	usage, _ := env.usage.Get(context.Background(), 2, models.YearMonthOf(testNow))
	if usage.SessionsJoined != 1 {
		t.Errorf("sessions_joined = %d, want 1", usage.SessionsJoined)
	}
	if len(env.notifier.calls) == 0 {
		t.Error("expected a live notification after join")
	}

	if _, err := env.svc.Join(context.Background(), s.ID, 3); !errors.Is(err, ErrSessionFull) {
		t.Errorf("third join error = %v, want ErrSessionFull", err)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2))
	s := env.seedSession(futureSession(1, 4), 1)

	if _, err := env.svc.Join(context.Background(), s.ID, 2); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := env.svc.Join(context.Background(), s.ID, 2); err != nil {
		t.Fatalf("repeated join: %v", err)
	}

	usage, _ := env.usage.Get(context.Background(), 2, models.YearMonthOf(testNow))
	if usage.SessionsJoined != 1 {
		t.Errorf("sessions_joined after double join = %d, want 1", usage.SessionsJoined)
	}
	if n := len(env.participants.members[s.ID]); n != 2 {
		t.Errorf("participants = %d, want 2", n)
	}
}

func TestJoinQuotaExceeded(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2))
	s := env.seedSession(futureSession(1, 10), 1)
	// FREE-план: 3 вступления в месяц.
	env.usage.set(2, models.YearMonthOf(testNow), models.UsageSessionsJoined, 3)

	if _, err := env.svc.Join(context.Background(), s.ID, 2); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("join error = %v, want ErrQuotaExceeded", err)
	}
	if env.participants.members[s.ID][2] {
		t.Error("participant must not be added when quota is exceeded")
	}
	// Проверка квоты идёт через блокирующее чтение строки счётчика.
	if env.usage.lockedGets == 0 {
		t.Error("join must check quota under the counter row lock")
	}
}

func TestJoinGroupSessionRequiresActiveMembership(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2), plainUser(3))
	s := futureSession(1, 10)
	s.Visibility = models.VisibilityGroup
	s.GroupID = intp(7)
	env.seedSession(s, 1)
	env.memberships.addMember(7, 3, models.MemberRoleMember, models.MemberStatusBanned)

	if _, err := env.svc.Join(context.Background(), s.ID, 2); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("non-member join error = %v, want ErrForbiddenOperation", err)
	}
	if _, err := env.svc.Join(context.Background(), s.ID, 3); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("banned member join error = %v, want ErrForbiddenOperation", err)
	}
}

func TestJoinRejectsUnjoinableStates(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2))

	tests := []struct {
		name  string
		setup func(s *models.SportSession)
	}{
		{"draft", func(s *models.SportSession) { s.Status = models.SessionDraft }},
		{"canceled", func(s *models.SportSession) { s.Status = models.SessionCanceled }},
		{"finished", func(s *models.SportSession) { s.Status = models.SessionFinished }},
		{"started", func(s *models.SportSession) {
			s.StartTime = time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := futureSession(1, 10)
			tt.setup(s)
			env.seedSession(s, 1)
			if _, err := env.svc.Join(context.Background(), s.ID, 2); !errors.Is(err, ErrSessionNotJoinable) {
				t.Errorf("join error = %v, want ErrSessionNotJoinable", err)
			}
		})
	}
}

func TestLeaveRules(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2), plainUser(3))
	s := env.seedSession(futureSession(1, 2), 1, 2)
	s.Status = models.SessionLocked
	env.usage.set(2, models.YearMonthOf(testNow), models.UsageSessionsJoined, 1)

	if _, err := env.svc.Leave(context.Background(), s.ID, 1); !errors.Is(err, ErrCreatorCannotLeave) {
		t.Errorf("creator leave error = %v, want ErrCreatorCannotLeave", err)
	}
	if _, err := env.svc.Leave(context.Background(), s.ID, 3); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("outsider leave error = %v, want ErrNotParticipant", err)
	}

	got, err := env.svc.Leave(context.Background(), s.ID, 2)
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	// Освободившееся место снова открывает запись.
	if got.Status != models.SessionOpen {
		t.Errorf("status after leave = %s, want %s", got.Status, models.SessionOpen)
	}
	// Счётчики монотонны: выход квоту не возвращает.
	usage, _ := env.usage.Get(context.Background(), 2, models.YearMonthOf(testNow))
	if usage.SessionsJoined != 1 {
		t.Errorf("sessions_joined after leave = %d, want 1", usage.SessionsJoined)
	}
}

func TestLeaveFromFinishedSession(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2))
	s := futureSession(1, 10)
	s.Status = models.SessionFinished
	env.seedSession(s, 1, 2)

	if _, err := env.svc.Leave(context.Background(), s.ID, 2); !errors.Is(err, ErrSessionNotLeavable) {
		t.Errorf("leave error = %v, want ErrSessionNotLeavable", err)
	}
}

func TestCreateQuotaExceeded(t *testing.T) {
	env := newSessionEnv(plainUser(1))
	// FREE-план: одна сессия в месяц.
	env.usage.set(1, models.YearMonthOf(testNow), models.UsageSessionsCreated, 1)

	input := CreateSessionInput{
		Title:      "Second game",
		SportID:    1,
		Location:   "Court",
		Date:       testNow,
		StartTime:  time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC),
		EventType:  models.EventFriendly,
		Format:     models.FormatSolo,
		Visibility: models.VisibilityPublic,
		MaxPlayers: 10,
	}
	if _, err := env.svc.Create(context.Background(), 1, input); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("create error = %v, want ErrQuotaExceeded", err)
	}
	if len(env.sessions.sessions) != 0 {
		t.Error("session must not be persisted when quota is exceeded")
	}
}

func TestCreateChargesQuotaAndAddsCreator(t *testing.T) {
	env := newSessionEnv(plainUser(1))

	input := CreateSessionInput{
		Title:      "First game",
		SportID:    1,
		Location:   "Court",
		Date:       testNow,
		StartTime:  time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC),
		EventType:  models.EventFriendly,
		Format:     models.FormatVersus1v1,
		Visibility: models.VisibilityPublic,
		MaxPlayers: 2,
	}
	s, err := env.svc.Create(context.Background(), 1, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Status != models.SessionOpen {
		t.Errorf("status = %s, want %s", s.Status, models.SessionOpen)
	}
	if !env.participants.members[s.ID][1] {
		t.Error("creator must be a participant of the new session")
	}
	usage, _ := env.usage.Get(context.Background(), 1, models.YearMonthOf(testNow))
	if usage.SessionsCreated != 1 {
		t.Errorf("sessions_created = %d, want 1", usage.SessionsCreated)
	}
}

func TestCreateValidation(t *testing.T) {
	env := newSessionEnv(plainUser(1), coachUser(2))

	base := CreateSessionInput{
		Title:      "Game",
		SportID:    1,
		Location:   "Court",
		Date:       testNow,
		StartTime:  time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC),
		EventType:  models.EventFriendly,
		Format:     models.FormatSolo,
		Visibility: models.VisibilityPublic,
		MaxPlayers: 10,
	}

	tests := []struct {
		name    string
		actorID int
		mutate  func(in *CreateSessionInput)
		wantErr error
	}{
		{"1v1 wrong capacity", 1, func(in *CreateSessionInput) {
			in.Format = models.FormatVersus1v1
			in.MaxPlayers = 4
		}, ErrValidationFailed},
		{"team format without max per team", 1, func(in *CreateSessionInput) {
			in.Format = models.FormatVersusTeam
		}, ErrValidationFailed},
		{"min per team above max", 2, func(in *CreateSessionInput) {
			in.Format = models.FormatTeam
			in.MinPerTeam = intp(6)
			in.MaxPerTeam = intp(5)
		}, ErrValidationFailed},
		{"group visibility without group", 1, func(in *CreateSessionInput) {
			in.Visibility = models.VisibilityGroup
		}, ErrValidationFailed},
		{"non-coach private session", 1, func(in *CreateSessionInput) {
			in.Visibility = models.VisibilityPrivate
		}, ErrForbiddenOperation},
		{"non-coach training", 1, func(in *CreateSessionInput) {
			in.EventType = models.EventTraining
		}, ErrForbiddenOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			if _, err := env.svc.Create(context.Background(), tt.actorID, in); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateVersusTeamBuildsSides(t *testing.T) {
	env := newSessionEnv(coachUser(1))

	input := CreateSessionInput{
		Title:        "Derby",
		SportID:      1,
		Location:     "Stadium",
		Date:         testNow,
		StartTime:    time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC),
		EventType:    models.EventFriendly,
		Format:       models.FormatVersusTeam,
		Visibility:   models.VisibilityPublic,
		MaxPlayers:   10,
		MinPerTeam:   intp(3),
		MaxPerTeam:   intp(5),
		HomeTeamName: "Reds",
	}
	s, err := env.svc.Create(context.Background(), 1, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.HomeTeamID == nil || s.AwayTeamID == nil {
		t.Fatal("both team refs must be set for VERSUS_TEAM")
	}
	home, _ := env.teams.GetByID(context.Background(), *s.HomeTeamID)
	away, _ := env.teams.GetByID(context.Background(), *s.AwayTeamID)
	if home.Name != "Reds" {
		t.Errorf("home team name = %q, want %q", home.Name, "Reds")
	}
	if away.Name != "Away" {
		t.Errorf("away team name = %q, want default %q", away.Name, "Away")
	}
}

func TestCreateGroupSessionSnapshotsRoster(t *testing.T) {
	env := newSessionEnv(coachUser(1))
	env.groups.groups[7] = &models.Group{ID: 7, Name: "Morning runners", SportID: 3, OwnerID: 1}
	env.memberships.addMember(7, 1, models.MemberRoleOwner, models.MemberStatusActive)
	env.external.groupRoster[7] = 2

	input := CreateSessionInput{
		Title:      "Group run",
		SportID:    99, // игнорируется: спорт наследуется от группы
		Location:   "Park",
		Date:       testNow,
		StartTime:  time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC),
		EventType:  models.EventFriendly,
		Format:     models.FormatSolo,
		Visibility: models.VisibilityGroup,
		GroupID:    intp(7),
		MaxPlayers: 10,
	}
	s, err := env.svc.Create(context.Background(), 1, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.SportID != 3 {
		t.Errorf("sport_id = %d, want inherited 3", s.SportID)
	}
	if s.AttendeeCount != 3 {
		t.Errorf("attendee count = %d, want creator + 2 externals = 3", s.AttendeeCount)
	}
	if env.external.copied[s.ID] != 2 {
		t.Errorf("copied roster = %d, want 2", env.external.copied[s.ID])
	}
}

func TestCreateTrainingRequiresCapability(t *testing.T) {
	env := newSessionEnv(coachUser(1), &models.User{ID: 2, Role: models.RoleUser, IsPremium: true})
	env.groups.groups[7] = &models.Group{ID: 7, Name: "Squad", SportID: 3, OwnerID: 1}
	env.memberships.addMember(7, 1, models.MemberRoleOwner, models.MemberStatusActive)

	input := CreateSessionInput{
		Title:      "Practice",
		SportID:    3,
		Location:   "Gym",
		Date:       testNow,
		StartTime:  time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC),
		EventType:  models.EventTraining,
		Format:     models.FormatSolo,
		Visibility: models.VisibilityGroup,
		GroupID:    intp(7),
		MaxPlayers: 20,
	}
	if _, err := env.svc.Create(context.Background(), 1, input); err != nil {
		t.Errorf("coach training create: %v", err)
	}
	usage, _ := env.usage.Get(context.Background(), 1, models.YearMonthOf(testNow))
	if usage.TrainingsCreated != 1 {
		t.Errorf("trainings_created = %d, want 1", usage.TrainingsCreated)
	}
	if usage.SessionsCreated != 0 {
		t.Errorf("sessions_created = %d, want 0: trainings use their own bucket", usage.SessionsCreated)
	}
}

func TestPublishDraft(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2))
	s := futureSession(1, 10)
	s.Status = models.SessionDraft
	env.seedSession(s, 1)

	got, err := env.svc.Publish(context.Background(), s.ID, 1)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got.Status != models.SessionOpen {
		t.Errorf("status = %s, want %s", got.Status, models.SessionOpen)
	}

	// Публиковать может только создатель или админ.
	s2 := futureSession(1, 10)
	s2.Status = models.SessionDraft
	env.seedSession(s2, 1)
	if _, err := env.svc.Publish(context.Background(), s2.ID, 2); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("foreign publish error = %v, want ErrForbiddenOperation", err)
	}
}

func TestPublishReopensManuallyLockedSession(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2))
	s := env.seedSession(futureSession(1, 10), 1)

	if _, err := env.svc.Lock(context.Background(), s.ID, 1); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	got, err := env.svc.Publish(context.Background(), s.ID, 1)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	// Ручной LOCKED не навсегда: Publish принудительно открывает запись.
	if got.Status != models.SessionOpen {
		t.Errorf("status after publish = %s, want %s", got.Status, models.SessionOpen)
	}
	if _, err := env.svc.Join(context.Background(), s.ID, 2); err != nil {
		t.Errorf("join after publish: %v", err)
	}
}

func TestUpdateSession(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2))
	s := env.seedSession(futureSession(1, 2), 1, 2)
	s.Status = models.SessionLocked

	if _, err := env.svc.Update(context.Background(), s.ID, 2, UpdateSessionInput{}); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("foreign update error = %v, want ErrForbiddenOperation", err)
	}
	if _, err := env.svc.Update(context.Background(), s.ID, 1, UpdateSessionInput{MaxPlayers: intp(1)}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("shrink below attendance error = %v, want ErrValidationFailed", err)
	}
	if _, err := env.svc.Update(context.Background(), s.ID, 1, UpdateSessionInput{MaxPlayers: intp(5)}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("1v1 capacity change error = %v, want ErrValidationFailed", err)
	}

	title := "Renamed game"
	got, err := env.svc.Update(context.Background(), s.ID, 1, UpdateSessionInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != title {
		t.Errorf("title = %q, want %q", got.Title, title)
	}
	if stored := env.sessions.sessions[s.ID].Title; stored != title {
		t.Errorf("stored title = %q, want %q", stored, title)
	}

	canceled := futureSession(1, 10)
	canceled.Status = models.SessionCanceled
	env.seedSession(canceled, 1)
	if _, err := env.svc.Update(context.Background(), canceled.ID, 1, UpdateSessionInput{Title: &title}); !errors.Is(err, ErrSessionTerminal) {
		t.Errorf("terminal update error = %v, want ErrSessionTerminal", err)
	}
}

func TestUpdateGrowingCapacityReopensSession(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2), plainUser(3))
	s := futureSession(1, 2)
	s.Format = models.FormatSolo
	s.Status = models.SessionLocked
	env.seedSession(s, 1, 2)

	got, err := env.svc.Update(context.Background(), s.ID, 1, UpdateSessionInput{MaxPlayers: intp(4)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != models.SessionOpen {
		t.Errorf("status = %s, want %s after capacity grows", got.Status, models.SessionOpen)
	}
	if _, err := env.svc.Join(context.Background(), s.ID, 3); err != nil {
		t.Errorf("join into freed capacity: %v", err)
	}
}

func TestManualCancelIsSticky(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2), plainUser(3), plainUser(4))
	s := env.seedSession(futureSession(1, 10), 1, 2)

	if _, err := env.svc.Cancel(context.Background(), s.ID, 1); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	// Достаточная явка не оживляет отменённую вручную сессию.
	env.participants.Add(context.Background(), nil, s.ID, 3)
	env.participants.Add(context.Background(), nil, s.ID, 4)
	got, err := env.svc.GetByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.SessionCanceled {
		t.Errorf("status = %s, want sticky %s", got.Status, models.SessionCanceled)
	}

	if _, err := env.svc.Lock(context.Background(), s.ID, 1); !errors.Is(err, ErrSessionTerminal) {
		t.Errorf("lock after cancel error = %v, want ErrSessionTerminal", err)
	}
}

func TestGetByIDRecomputesLazily(t *testing.T) {
	env := newSessionEnv(plainUser(1), plainUser(2))
	s := futureSession(1, 10)
	s.StartTime = time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC) // уже началась
	env.seedSession(s, 1, 2)

	got, err := env.svc.GetByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.SessionFinished {
		t.Errorf("status = %s, want %s", got.Status, models.SessionFinished)
	}
	if stored := env.sessions.sessions[s.ID].Status; stored != models.SessionFinished {
		t.Errorf("stored status = %s, want persisted %s", stored, models.SessionFinished)
	}
}

func TestSetScore(t *testing.T) {
	env := newSessionEnv(plainUser(1))

	s := futureSession(1, 2)
	env.seedSession(s, 1)
	if _, err := env.svc.SetScore(context.Background(), s.ID, 1, -1, 0); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("negative score error = %v, want ErrValidationFailed", err)
	}

	got, err := env.svc.SetScore(context.Background(), s.ID, 1, 3, 2)
	if err != nil {
		t.Fatalf("SetScore: %v", err)
	}
	if got.Status != models.SessionFinished {
		t.Errorf("status = %s, want %s", got.Status, models.SessionFinished)
	}
	if got.ScoreHome == nil || *got.ScoreHome != 3 || got.ScoreAway == nil || *got.ScoreAway != 2 {
		t.Error("scores not recorded")
	}

	solo := futureSession(1, 10)
	solo.Format = models.FormatSolo
	env.seedSession(solo, 1)
	if _, err := env.svc.SetScore(context.Background(), solo.ID, 1, 1, 1); !errors.Is(err, ErrSessionNotTeamMode) {
		t.Errorf("solo score error = %v, want ErrSessionNotTeamMode", err)
	}

	canceled := futureSession(1, 2)
	canceled.Status = models.SessionCanceled
	env.seedSession(canceled, 1)
	if _, err := env.svc.SetScore(context.Background(), canceled.ID, 1, 1, 1); !errors.Is(err, ErrSessionTerminal) {
		t.Errorf("canceled score error = %v, want ErrSessionTerminal", err)
	}
}
