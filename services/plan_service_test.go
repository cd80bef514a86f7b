package services

import (
	"testing"

	"github.com/Dosada05/session-system/models"
)

func TestRolePlanResolver(t *testing.T) {
	resolver := NewRolePlanResolver(nil)

	tests := []struct {
		name string
		user *models.User
		want models.PlanKey
	}{
		{"regular user", &models.User{Role: models.RoleUser}, models.PlanFree},
		{"premium user", &models.User{Role: models.RoleUser, IsPremium: true}, models.PlanPremium},
		{"coach", &models.User{Role: models.RoleCoach}, models.PlanCoach},
		{"admin", &models.User{Role: models.RoleAdmin}, models.PlanCoach},
		{"staff", &models.User{Role: models.RoleUser, IsStaff: true}, models.PlanCoach},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, _ := resolver.Resolve(tt.user)
			if key != tt.want {
				t.Errorf("plan = %s, want %s", key, tt.want)
			}
		})
	}
}

func TestCoachLimitsAllowTrainings(t *testing.T) {
	resolver := NewRolePlanResolver(nil)

	_, limits := resolver.Resolve(&models.User{Role: models.RoleCoach})
	if !limits.CanCreateTrainings || !limits.CanCreateGroups {
		t.Error("coach plan must allow trainings and groups")
	}

	_, free := resolver.Resolve(&models.User{Role: models.RoleUser})
	if free.CanCreateTrainings || free.CanCreateGroups {
		t.Error("free plan must not allow trainings or groups")
	}
}
