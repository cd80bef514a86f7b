package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/session-system/models"
	"github.com/Dosada05/session-system/repositories"
)

// Сервисы управляют транзакциями сами, поэтому тестам нужен *sql.DB,
// чей Begin/Commit/Rollback ничего не делает. Все реальные запросы
// уходят в фейковые репозитории, соединение никогда не используется.

type nopConnector struct{}

func (nopConnector) Connect(context.Context) (driver.Conn, error) { return nopConn{}, nil }
func (nopConnector) Driver() driver.Driver                        { return nopDriver{} }

type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (nopConn) Close() error                        { return nil }
func (nopConn) Begin() (driver.Tx, error)           { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

func newTestDB() *sql.DB { return sql.OpenDB(nopConnector{}) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intp(v int) *int { return &v }

// --- users ---

type fakeUserRepo struct {
	users map[int]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = len(r.users) + 1
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Search(context.Context, string, int) ([]*models.User, error) {
	return nil, nil
}

// --- sessions ---

type fakeSessionRepo struct {
	sessions      map[int]*models.SportSession
	participants  *fakeParticipantRepo
	externalCount map[int]int
	nextID        int
}

func newFakeSessionRepo(participants *fakeParticipantRepo) *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:      make(map[int]*models.SportSession),
		participants:  participants,
		externalCount: make(map[int]int),
		nextID:        1,
	}
}

func (r *fakeSessionRepo) put(s *models.SportSession) *models.SportSession {
	if s.ID == 0 {
		s.ID = r.nextID
		r.nextID++
	}
	r.sessions[s.ID] = s
	return s
}

func (r *fakeSessionRepo) attendeeCount(id int) int {
	n := r.externalCount[id]
	if r.participants != nil {
		n += len(r.participants.members[id])
	}
	return n
}

func (r *fakeSessionRepo) Create(_ context.Context, _ repositories.SQLExecutor, session *models.SportSession) error {
	session.ID = r.nextID
	r.nextID++
	session.CreatedAt = time.Now()
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id int) (*models.SportSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	cp := *s
	cp.AttendeeCount = r.attendeeCount(id)
	return &cp, nil
}

func (r *fakeSessionRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.SportSession, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeSessionRepo) List(_ context.Context, _ repositories.SessionListFilter) ([]*models.SportSession, error) {
	out := make([]*models.SportSession, 0, len(r.sessions))
	for id := range r.sessions {
		s, _ := r.GetByID(context.Background(), id)
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *models.SportSession) error {
	if _, ok := r.sessions[session.ID]; !ok {
		return repositories.ErrSessionNotFound
	}
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.SessionStatus) error {
	s, ok := r.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	s.Status = status
	return nil
}

func (r *fakeSessionRepo) UpdateTeamRefs(_ context.Context, _ repositories.SQLExecutor, id, homeTeamID, awayTeamID int) error {
	s, ok := r.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	s.HomeTeamID = &homeTeamID
	s.AwayTeamID = &awayTeamID
	return nil
}

func (r *fakeSessionRepo) UpdateScores(_ context.Context, _ repositories.SQLExecutor, id int, scoreHome, scoreAway int) error {
	s, ok := r.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	s.ScoreHome = &scoreHome
	s.ScoreAway = &scoreAway
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.sessions[id]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// --- participants ---

type fakeParticipantRepo struct {
	members map[int]map[int]bool
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{members: make(map[int]map[int]bool)}
}

func (r *fakeParticipantRepo) Add(_ context.Context, _ repositories.SQLExecutor, sessionID, userID int) (bool, error) {
	if r.members[sessionID] == nil {
		r.members[sessionID] = make(map[int]bool)
	}
	if r.members[sessionID][userID] {
		return false, nil
	}
	r.members[sessionID][userID] = true
	return true, nil
}

func (r *fakeParticipantRepo) Remove(_ context.Context, _ repositories.SQLExecutor, sessionID, userID int) error {
	if !r.members[sessionID][userID] {
		return repositories.ErrParticipantNotFound
	}
	delete(r.members[sessionID], userID)
	return nil
}

func (r *fakeParticipantRepo) Exists(_ context.Context, _ repositories.SQLExecutor, sessionID, userID int) (bool, error) {
	return r.members[sessionID][userID], nil
}

func (r *fakeParticipantRepo) Count(_ context.Context, _ repositories.SQLExecutor, sessionID int) (int, error) {
	return len(r.members[sessionID]), nil
}

func (r *fakeParticipantRepo) ListBySession(context.Context, int) ([]*models.User, error) {
	return nil, nil
}

func (r *fakeParticipantRepo) ListSessionIDsByUser(context.Context, int) ([]int, error) {
	return nil, nil
}

// --- teams ---

type fakeTeamRepo struct {
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
}

func (r *fakeTeamRepo) Create(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	team.ID = r.nextID
	r.nextID++
	cp := *team
	r.teams[team.ID] = &cp
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTeamRepo) ListBySession(_ context.Context, sessionID int) ([]*models.Team, error) {
	var out []*models.Team
	for _, t := range r.teams {
		if t.SessionID == sessionID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- external attendees ---

type fakeExternalAttendeeRepo struct {
	groupRoster map[int]int // groupID -> размер внешнего состава
	copied      map[int]int // sessionID -> сколько скопировано
}

func newFakeExternalAttendeeRepo() *fakeExternalAttendeeRepo {
	return &fakeExternalAttendeeRepo{
		groupRoster: make(map[int]int),
		copied:      make(map[int]int),
	}
}

func (r *fakeExternalAttendeeRepo) CopyFromGroup(_ context.Context, _ repositories.SQLExecutor, sessionID, groupID int) (int, error) {
	n := r.groupRoster[groupID]
	r.copied[sessionID] = n
	return n, nil
}

func (r *fakeExternalAttendeeRepo) ListBySession(context.Context, int) ([]*models.SessionExternalAttendee, error) {
	return nil, nil
}

func (r *fakeExternalAttendeeRepo) Count(_ context.Context, _ repositories.SQLExecutor, sessionID int) (int, error) {
	return r.copied[sessionID], nil
}

func (r *fakeExternalAttendeeRepo) SetPresence(context.Context, int, int, bool, string) error {
	return nil
}

// --- memberships ---

type memberKey struct{ groupID, userID int }

type fakeMembershipRepo struct {
	members map[memberKey]*models.GroupMember
	nextID  int
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{members: make(map[memberKey]*models.GroupMember), nextID: 1}
}

func (r *fakeMembershipRepo) addMember(groupID, userID int, role models.MemberRole, status models.MemberStatus) {
	r.members[memberKey{groupID, userID}] = &models.GroupMember{
		ID:      r.nextID,
		GroupID: groupID,
		UserID:  userID,
		Role:    role,
		Status:  status,
	}
	r.nextID++
}

func (r *fakeMembershipRepo) Activate(_ context.Context, _ repositories.SQLExecutor, groupID, userID int, role models.MemberRole) (bool, error) {
	key := memberKey{groupID, userID}
	if m, ok := r.members[key]; ok {
		m.Status = models.MemberStatusActive
		return false, nil
	}
	r.addMember(groupID, userID, role, models.MemberStatusActive)
	return true, nil
}

func (r *fakeMembershipRepo) Find(_ context.Context, groupID, userID int) (*models.GroupMember, error) {
	m, ok := r.members[memberKey{groupID, userID}]
	if !ok {
		return nil, repositories.ErrMembershipNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMembershipRepo) ListByGroup(_ context.Context, groupID int) ([]*models.GroupMember, error) {
	var out []*models.GroupMember
	for _, m := range r.members {
		if m.GroupID == groupID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) ListActiveUserIDs(_ context.Context, groupID int) ([]int, error) {
	var out []int
	for _, m := range r.members {
		if m.GroupID == groupID && m.IsActive() {
			out = append(out, m.UserID)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) UpdateRole(_ context.Context, groupID, userID int, role models.MemberRole) error {
	m, ok := r.members[memberKey{groupID, userID}]
	if !ok {
		return repositories.ErrMembershipNotFound
	}
	m.Role = role
	return nil
}

func (r *fakeMembershipRepo) UpdateStatus(_ context.Context, groupID, userID int, status models.MemberStatus) error {
	m, ok := r.members[memberKey{groupID, userID}]
	if !ok {
		return repositories.ErrMembershipNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeMembershipRepo) Delete(_ context.Context, _ repositories.SQLExecutor, groupID, userID int) error {
	key := memberKey{groupID, userID}
	if _, ok := r.members[key]; !ok {
		return repositories.ErrMembershipNotFound
	}
	delete(r.members, key)
	return nil
}

// --- groups ---

type fakeGroupRepo struct {
	groups map[int]*models.Group
	nextID int
}

func newFakeGroupRepo(groups ...*models.Group) *fakeGroupRepo {
	r := &fakeGroupRepo{groups: make(map[int]*models.Group), nextID: 1}
	for _, g := range groups {
		r.groups[g.ID] = g
		if g.ID >= r.nextID {
			r.nextID = g.ID + 1
		}
	}
	return r
}

func (r *fakeGroupRepo) Create(_ context.Context, _ repositories.SQLExecutor, group *models.Group) error {
	for _, g := range r.groups {
		if g.Name == group.Name {
			return repositories.ErrGroupNameConflict
		}
	}
	group.ID = r.nextID
	r.nextID++
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id int) (*models.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGroupRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Group, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeGroupRepo) List(context.Context, repositories.GroupListFilter) ([]*models.Group, error) {
	return nil, nil
}

func (r *fakeGroupRepo) Update(_ context.Context, group *models.Group) error {
	if _, ok := r.groups[group.ID]; !ok {
		return repositories.ErrGroupNotFound
	}
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) UpdateCoverKey(_ context.Context, id int, coverKey *string) error {
	g, ok := r.groups[id]
	if !ok {
		return repositories.ErrGroupNotFound
	}
	g.CoverKey = coverKey
	return nil
}

func (r *fakeGroupRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.groups[id]; !ok {
		return repositories.ErrGroupNotFound
	}
	delete(r.groups, id)
	return nil
}

// --- join requests ---

type fakeJoinRequestRepo struct {
	requests map[int]*models.GroupJoinRequest
	nextID   int
}

func newFakeJoinRequestRepo() *fakeJoinRequestRepo {
	return &fakeJoinRequestRepo{requests: make(map[int]*models.GroupJoinRequest), nextID: 1}
}

func (r *fakeJoinRequestRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, request *models.GroupJoinRequest) error {
	for _, existing := range r.requests {
		if existing.GroupID == request.GroupID && existing.UserID == request.UserID {
			if existing.Status == models.JoinRequestRejected {
				existing.Status = models.JoinRequestPending
				existing.Message = request.Message
			}
			*request = *existing
			return nil
		}
	}
	request.ID = r.nextID
	r.nextID++
	request.Status = models.JoinRequestPending
	cp := *request
	r.requests[request.ID] = &cp
	return nil
}

func (r *fakeJoinRequestRepo) FindByID(_ context.Context, id int) (*models.GroupJoinRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, repositories.ErrJoinRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeJoinRequestRepo) FindByGroupAndUser(_ context.Context, groupID, userID int) (*models.GroupJoinRequest, error) {
	for _, req := range r.requests {
		if req.GroupID == groupID && req.UserID == userID {
			cp := *req
			return &cp, nil
		}
	}
	return nil, repositories.ErrJoinRequestNotFound
}

func (r *fakeJoinRequestRepo) ListByGroup(_ context.Context, groupID int, status *models.JoinRequestStatus) ([]*models.GroupJoinRequest, error) {
	var out []*models.GroupJoinRequest
	for _, req := range r.requests {
		if req.GroupID != groupID {
			continue
		}
		if status != nil && req.Status != *status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeJoinRequestRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.JoinRequestStatus) error {
	req, ok := r.requests[id]
	if !ok {
		return repositories.ErrJoinRequestNotFound
	}
	req.Status = status
	return nil
}

func (r *fakeJoinRequestRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.requests[id]; !ok {
		return repositories.ErrJoinRequestNotFound
	}
	delete(r.requests, id)
	return nil
}

// --- external group members ---

type fakeExternalMemberRepo struct {
	members map[int]*models.GroupExternalMember
	nextID  int
}

func newFakeExternalMemberRepo() *fakeExternalMemberRepo {
	return &fakeExternalMemberRepo{members: make(map[int]*models.GroupExternalMember), nextID: 1}
}

func (r *fakeExternalMemberRepo) Create(_ context.Context, member *models.GroupExternalMember) error {
	member.ID = r.nextID
	r.nextID++
	cp := *member
	r.members[member.ID] = &cp
	return nil
}

func (r *fakeExternalMemberRepo) ListByGroup(_ context.Context, groupID int) ([]*models.GroupExternalMember, error) {
	var out []*models.GroupExternalMember
	for _, m := range r.members {
		if m.GroupID == groupID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeExternalMemberRepo) Delete(_ context.Context, groupID, memberID int) error {
	m, ok := r.members[memberID]
	if !ok || m.GroupID != groupID {
		return repositories.ErrExternalMemberNotFound
	}
	delete(r.members, memberID)
	return nil
}

// --- sports ---

type fakeSportRepo struct {
	sports map[int]*models.Sport
}

func newFakeSportRepo(sports ...*models.Sport) *fakeSportRepo {
	r := &fakeSportRepo{sports: make(map[int]*models.Sport)}
	for _, s := range sports {
		r.sports[s.ID] = s
	}
	return r
}

func (r *fakeSportRepo) GetByID(_ context.Context, id int) (*models.Sport, error) {
	s, ok := r.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSportRepo) List(context.Context) ([]*models.Sport, error) {
	var out []*models.Sport
	for _, s := range r.sports {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

// --- usage ---

type usageKey struct {
	userID    int
	yearMonth string
}

type fakeUsageRepo struct {
	usage      map[usageKey]*models.UserMonthlyUsage
	lockedGets int
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{usage: make(map[usageKey]*models.UserMonthlyUsage)}
}

func (r *fakeUsageRepo) set(userID int, yearMonth string, field models.UsageField, value int) {
	u := r.row(userID, yearMonth)
	for i := 0; i < value; i++ {
		r.bump(u, field)
	}
}

func (r *fakeUsageRepo) row(userID int, yearMonth string) *models.UserMonthlyUsage {
	key := usageKey{userID, yearMonth}
	if u, ok := r.usage[key]; ok {
		return u
	}
	u := &models.UserMonthlyUsage{UserID: userID, YearMonth: yearMonth}
	r.usage[key] = u
	return u
}

func (r *fakeUsageRepo) bump(u *models.UserMonthlyUsage, field models.UsageField) {
	switch field {
	case models.UsageSessionsCreated:
		u.SessionsCreated++
	case models.UsageSessionsJoined:
		u.SessionsJoined++
	case models.UsageGroupsCreated:
		u.GroupsCreated++
	case models.UsageGroupsJoined:
		u.GroupsJoined++
	case models.UsageTrainingsCreated:
		u.TrainingsCreated++
	}
}

func (r *fakeUsageRepo) Get(_ context.Context, userID int, yearMonth string) (*models.UserMonthlyUsage, error) {
	if u, ok := r.usage[usageKey{userID, yearMonth}]; ok {
		cp := *u
		return &cp, nil
	}
	return &models.UserMonthlyUsage{UserID: userID, YearMonth: yearMonth}, nil
}

func (r *fakeUsageRepo) GetForUpdate(_ context.Context, _ repositories.SQLExecutor, userID int, yearMonth string) (*models.UserMonthlyUsage, error) {
	r.lockedGets++
	cp := *r.row(userID, yearMonth)
	return &cp, nil
}

func (r *fakeUsageRepo) Increment(_ context.Context, userID int, yearMonth string, field models.UsageField) error {
	r.bump(r.row(userID, yearMonth), field)
	return nil
}

// --- audit ---

type fakeAuditRepo struct {
	events []*models.AuditEvent
}

func (r *fakeAuditRepo) Insert(_ context.Context, event *models.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

// --- notifier ---

type notifyCall struct {
	sessionID     int
	status        models.SessionStatus
	attendeeCount int
}

type fakeNotifier struct {
	calls []notifyCall
}

func (n *fakeNotifier) NotifySessionUpdate(sessionID int, status models.SessionStatus, attendeeCount int) {
	n.calls = append(n.calls, notifyCall{sessionID, status, attendeeCount})
}
