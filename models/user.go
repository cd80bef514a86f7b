package models

import "time"

// UserRole соответствует ENUM user_role в БД.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleCoach UserRole = "coach"
	RoleUser  UserRole = "user"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	// IsPremium выставляется биллингом, движок ему доверяет.
	IsPremium bool      `json:"is_premium" db:"is_premium"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsCoach учитывает и роль, и staff-флаг: админ может всё, что может коуч.
func (u *User) IsCoach() bool {
	return u.Role == RoleCoach || u.IsAdmin()
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff
}
