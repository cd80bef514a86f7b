package models

// PlanKey — тарифный план подписки.
type PlanKey string

const (
	PlanFree    PlanKey = "FREE"
	PlanPremium PlanKey = "PREMIUM"
	PlanCoach   PlanKey = "COACH"
)

// PlanLimits — потолки счётчиков и флаги возможностей для плана.
// nil означает "без ограничений".
type PlanLimits struct {
	SessionsCreatePerMonth  *int `json:"sessions_create_per_month"`
	SessionsJoinPerMonth    *int `json:"sessions_join_per_month"`
	MaxGroupsCreated        *int `json:"max_groups_created"`
	MaxGroupsJoined         *int `json:"max_groups_joined"`
	TrainingsCreatePerMonth *int `json:"trainings_create_per_month"`

	CanCreateGroups    bool `json:"can_create_groups"`
	CanCreateTrainings bool `json:"can_create_trainings"`
}

// LimitFor возвращает потолок для счётчика (nil = безлимит).
func (l PlanLimits) LimitFor(field UsageField) *int {
	switch field {
	case UsageSessionsCreated:
		return l.SessionsCreatePerMonth
	case UsageSessionsJoined:
		return l.SessionsJoinPerMonth
	case UsageGroupsCreated:
		return l.MaxGroupsCreated
	case UsageGroupsJoined:
		return l.MaxGroupsJoined
	case UsageTrainingsCreated:
		return l.TrainingsCreatePerMonth
	}
	return nil
}

func intPtr(v int) *int { return &v }

// DefaultPlanLimits — таблица лимитов по умолчанию. Передаётся в движки
// явно через конструктор, а не читается из глобального состояния.
func DefaultPlanLimits() map[PlanKey]PlanLimits {
	return map[PlanKey]PlanLimits{
		PlanFree: {
			SessionsCreatePerMonth:  intPtr(1),
			SessionsJoinPerMonth:    intPtr(3),
			MaxGroupsCreated:        intPtr(1),
			MaxGroupsJoined:         intPtr(1),
			TrainingsCreatePerMonth: intPtr(0),
			CanCreateGroups:         false,
			CanCreateTrainings:      false,
		},
		PlanPremium: {
			TrainingsCreatePerMonth: intPtr(0),
			CanCreateGroups:         true,
			CanCreateTrainings:      false,
		},
		PlanCoach: {
			SessionsCreatePerMonth: intPtr(20),
			CanCreateGroups:        true,
			CanCreateTrainings:     true,
		},
	}
}
