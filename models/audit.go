package models

import "time"

// AuditEvent — минимальная запись журнала действий.
// В metadata только компактные технические поля (ids/status), без
// персональных данных.
type AuditEvent struct {
	ID         int               `json:"id" db:"id"`
	When       time.Time         `json:"when" db:"when"`
	ActorID    *int              `json:"actor_id,omitempty" db:"actor_id"`
	Verb       string            `json:"verb" db:"verb"` // "session.create", "group.create", ...
	ObjectType string            `json:"object_type" db:"object_type"`
	ObjectID   string            `json:"object_id" db:"object_id"`
	Metadata   map[string]string `json:"metadata,omitempty" db:"-"`
}
