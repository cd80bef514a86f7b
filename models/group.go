package models

import "time"

// GroupType определяет семантику вступления, соответствует ENUM в БД.
type GroupType string

const (
	GroupTypeCoachOnly GroupType = "COACH_ONLY" // только через явное добавление owner/manager
	GroupTypeOpen      GroupType = "OPEN"       // немедленное вступление
	GroupTypePrivate   GroupType = "PRIVATE"    // заявка + подтверждение owner
)

type Group struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	SportID     int       `json:"sport_id" db:"sport_id"`
	City        string    `json:"city" db:"city"`
	Description string    `json:"description" db:"description"`
	Type        GroupType `json:"group_type" db:"group_type"`
	OwnerID     int       `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	CoverKey *string `json:"-" db:"cover_key"`
	CoverURL *string `json:"cover_url,omitempty" db:"-"`

	Sport        *Sport        `json:"sport,omitempty" db:"-"`
	Owner        *User         `json:"owner,omitempty" db:"-"`
	Members      []GroupMember `json:"members,omitempty" db:"-"`
	MembersCount int           `json:"members_count" db:"-"`
}

func (g *Group) IsOpen() bool      { return g.Type == GroupTypeOpen }
func (g *Group) IsPrivate() bool   { return g.Type == GroupTypePrivate }
func (g *Group) IsCoachOnly() bool { return g.Type == GroupTypeCoachOnly }

type MemberRole string

const (
	MemberRoleOwner   MemberRole = "owner"
	MemberRoleManager MemberRole = "manager"
	MemberRoleMember  MemberRole = "member"
)

type MemberStatus string

const (
	MemberStatusActive MemberStatus = "active"
	MemberStatusBanned MemberStatus = "banned"
)

// GroupMember — членство пользователя в группе, пара (group, user) уникальна.
type GroupMember struct {
	ID       int          `json:"id" db:"id"`
	GroupID  int          `json:"group_id" db:"group_id"`
	UserID   int          `json:"user_id" db:"user_id"`
	Role     MemberRole   `json:"role" db:"role"`
	Status   MemberStatus `json:"status" db:"status"`
	JoinedAt time.Time    `json:"joined_at" db:"joined_at"`

	User *User `json:"user,omitempty" db:"-"`
}

func (m *GroupMember) IsActive() bool { return m.Status == MemberStatusActive }

func (m *GroupMember) CanManage() bool {
	return m.Role == MemberRoleOwner || m.Role == MemberRoleManager
}

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "PENDING"
	JoinRequestApproved JoinRequestStatus = "APPROVED"
	JoinRequestRejected JoinRequestStatus = "REJECTED"
)

// GroupJoinRequest — заявка на вступление в PRIVATE-группу.
// После approve заявка удаляется: постоянной записью остаётся членство.
type GroupJoinRequest struct {
	ID        int               `json:"id" db:"id"`
	GroupID   int               `json:"group_id" db:"group_id"`
	UserID    int               `json:"user_id" db:"user_id"`
	Message   *string           `json:"message,omitempty" db:"message"`
	Status    JoinRequestStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}

// GroupExternalMember — участник без аккаунта в составе группы.
// При создании сессии копируется в SessionExternalAttendee (снимок, не ссылка).
type GroupExternalMember struct {
	ID        int       `json:"id" db:"id"`
	GroupID   int       `json:"group_id" db:"group_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
