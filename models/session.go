package models

import "time"

// SessionStatus представляет статусы сессии, соответствующие ENUM в БД.
// Значение производное: его всегда можно пересчитать из (даты, вместимости,
// числа участников), поле в БД — только кэш.
type SessionStatus string

const (
	SessionDraft    SessionStatus = "DRAFT"
	SessionOpen     SessionStatus = "OPEN"
	SessionLocked   SessionStatus = "LOCKED"
	SessionFinished SessionStatus = "FINISHED"
	SessionCanceled SessionStatus = "CANCELED"
)

// IsTerminal: FINISHED и CANCELED — конечные состояния, автопересчёт их не трогает.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionFinished || s == SessionCanceled
}

type SessionVisibility string

const (
	VisibilityPrivate SessionVisibility = "PRIVATE"
	VisibilityGroup   SessionVisibility = "GROUP"
	VisibilityPublic  SessionVisibility = "PUBLIC"
)

type SessionEventType string

const (
	EventTraining    SessionEventType = "TRAINING"
	EventFriendly    SessionEventType = "FRIENDLY"
	EventCompetition SessionEventType = "COMPETITION"
)

type SessionFormat string

const (
	FormatSolo       SessionFormat = "SOLO"
	FormatTeam       SessionFormat = "TEAM"
	FormatVersus1v1  SessionFormat = "VERSUS_1V1"
	FormatVersusTeam SessionFormat = "VERSUS_TEAM"
)

// SportSession — спортивная сессия с ограниченной вместимостью.
type SportSession struct {
	ID          int      `json:"id" db:"id"`
	Title       string   `json:"title" db:"title"`
	SportID     int      `json:"sport_id" db:"sport_id"`
	Description *string  `json:"description,omitempty" db:"description"`
	Location    string   `json:"location" db:"location"`
	Latitude    *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64 `json:"longitude,omitempty" db:"longitude"`

	Date      time.Time `json:"date" db:"date"`
	StartTime time.Time `json:"start_time" db:"start_time"`

	EventType  SessionEventType  `json:"event_type" db:"event_type"`
	Format     SessionFormat     `json:"format" db:"format"`
	Visibility SessionVisibility `json:"visibility" db:"visibility"`
	GroupID    *int              `json:"group_id,omitempty" db:"group_id"`

	Status     SessionStatus `json:"status" db:"status"`
	MaxPlayers int           `json:"max_players" db:"max_players"`
	MinPerTeam *int          `json:"min_players_per_team,omitempty" db:"min_players_per_team"`
	MaxPerTeam *int          `json:"max_players_per_team,omitempty" db:"max_players_per_team"`

	CreatorID  int  `json:"creator_id" db:"creator_id"`
	HomeTeamID *int `json:"home_team_id,omitempty" db:"home_team_id"`
	AwayTeamID *int `json:"away_team_id,omitempty" db:"away_team_id"`
	ScoreHome  *int `json:"score_home,omitempty" db:"score_home"`
	ScoreAway  *int `json:"score_away,omitempty" db:"score_away"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// AttendeeCount = внутренние участники + внешние, заполняется репозиторием.
	AttendeeCount int `json:"attendee_count" db:"-"`

	Sport        *Sport `json:"sport,omitempty" db:"-"`
	Creator      *User  `json:"creator,omitempty" db:"-"`
	Participants []User `json:"participants,omitempty" db:"-"`
}

// StartsAt собирает дату и время начала в один момент.
func (s *SportSession) StartsAt() time.Time {
	return time.Date(
		s.Date.Year(), s.Date.Month(), s.Date.Day(),
		s.StartTime.Hour(), s.StartTime.Minute(), 0, 0,
		time.UTC,
	)
}

func (s *SportSession) HasStarted(now time.Time) bool {
	return !now.Before(s.StartsAt())
}

func (s *SportSession) RequiresTeams() bool {
	return s.Format == FormatTeam || s.Format == FormatVersusTeam
}

func (s *SportSession) IsFull() bool {
	return s.AttendeeCount >= s.MaxPlayers
}

func (s *SportSession) AvailableSpots() int {
	if spots := s.MaxPlayers - s.AttendeeCount; spots > 0 {
		return spots
	}
	return 0
}

// RequiredPlayers — минимум участников, при котором сессия состоится.
// Командный режим с min на команду требует обе стороны; вырожденный случай
// maxPlayers < 2 сохранён намеренно (соло-сессия на одного).
func (s *SportSession) RequiredPlayers() int {
	if s.RequiresTeams() && s.MinPerTeam != nil {
		if required := 2 * *s.MinPerTeam; required > 2 {
			return required
		}
		return 2
	}
	if s.MaxPlayers < 2 {
		return s.MaxPlayers
	}
	return 2
}

// ComputeStatus — чистая функция (session, now) -> status.
// Прошедшая сессия: FINISHED при достаточной явке, иначе CANCELED.
// Будущая: LOCKED при полной вместимости, иначе OPEN.
func (s *SportSession) ComputeStatus(now time.Time) SessionStatus {
	if s.HasStarted(now) {
		if s.AttendeeCount >= s.RequiredPlayers() {
			return SessionFinished
		}
		return SessionCanceled
	}
	if s.IsFull() {
		return SessionLocked
	}
	return SessionOpen
}
