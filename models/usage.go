package models

import "time"

// UsageField — имя месячного счётчика.
type UsageField string

const (
	UsageSessionsCreated  UsageField = "sessions_created"
	UsageSessionsJoined   UsageField = "sessions_joined"
	UsageGroupsCreated    UsageField = "groups_created"
	UsageGroupsJoined     UsageField = "groups_joined"
	UsageTrainingsCreated UsageField = "trainings_created"
)

// UserMonthlyUsage — счётчики за календарный месяц, пара (user, year_month)
// уникальна. Счётчики монотонны: выход из сессии/группы их не уменьшает.
type UserMonthlyUsage struct {
	ID               int       `json:"id" db:"id"`
	UserID           int       `json:"user_id" db:"user_id"`
	YearMonth        string    `json:"year_month" db:"year_month"` // "YYYY-MM"
	SessionsCreated  int       `json:"sessions_created" db:"sessions_created"`
	SessionsJoined   int       `json:"sessions_joined" db:"sessions_joined"`
	GroupsCreated    int       `json:"groups_created" db:"groups_created"`
	GroupsJoined     int       `json:"groups_joined" db:"groups_joined"`
	TrainingsCreated int       `json:"trainings_created" db:"trainings_created"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Get возвращает значение счётчика по имени поля.
func (u *UserMonthlyUsage) Get(field UsageField) int {
	switch field {
	case UsageSessionsCreated:
		return u.SessionsCreated
	case UsageSessionsJoined:
		return u.SessionsJoined
	case UsageGroupsCreated:
		return u.GroupsCreated
	case UsageGroupsJoined:
		return u.GroupsJoined
	case UsageTrainingsCreated:
		return u.TrainingsCreated
	}
	return 0
}

// YearMonthOf форматирует ключ месяца для момента времени.
func YearMonthOf(t time.Time) string {
	return t.Format("2006-01")
}
