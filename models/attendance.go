package models

import "time"

// SessionExternalAttendee — снимок внешнего участника на момент создания
// сессии, тройка (session, first_name, last_name) уникальна.
type SessionExternalAttendee struct {
	ID        int    `json:"id" db:"id"`
	SessionID int    `json:"session_id" db:"session_id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Note      string `json:"note" db:"note"`
	Present   bool   `json:"present" db:"present"`
}

// SessionPresence — отметка присутствия, пара (session, user) уникальна.
// Не связана с членством: запись может пережить выход участника.
type SessionPresence struct {
	ID        int       `json:"id" db:"id"`
	SessionID int       `json:"session_id" db:"session_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Present   bool      `json:"present" db:"present"`
	Note      string    `json:"note" db:"note"`
	MarkedBy  *int      `json:"marked_by,omitempty" db:"marked_by"`
	MarkedAt  time.Time `json:"marked_at" db:"marked_at"`
}
