package services

import "github.com/Dosada05/session-system/models"

// PlanResolver отдаёт план и его лимиты для пользователя. Реальный
// провайдер подписок живёт снаружи, движку достаточно интерфейса.
type PlanResolver interface {
	Resolve(user *models.User) (models.PlanKey, models.PlanLimits)
}

type rolePlanResolver struct {
	limits map[models.PlanKey]models.PlanLimits
}

// NewRolePlanResolver строит резолвер поверх таблицы лимитов.
// План выводится из роли и флага подписки: coach/admin -> COACH,
// premium -> PREMIUM, остальные -> FREE.
func NewRolePlanResolver(limits map[models.PlanKey]models.PlanLimits) PlanResolver {
	if limits == nil {
		limits = models.DefaultPlanLimits()
	}
	return &rolePlanResolver{limits: limits}
}

func (r *rolePlanResolver) Resolve(user *models.User) (models.PlanKey, models.PlanLimits) {
	key := models.PlanFree
	switch {
	case user.IsCoach():
		key = models.PlanCoach
	case user.IsPremium:
		key = models.PlanPremium
	}
	return key, r.limits[key]
}
