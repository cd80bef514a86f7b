package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/session-system/middleware"
	"github.com/Dosada05/session-system/repositories"
	"github.com/Dosada05/session-system/services"
)

// UsageHandler отдаёт текущие месячные счётчики и лимиты плана актора.
type UsageHandler struct {
	quotaService services.QuotaService
	planResolver services.PlanResolver
	userRepo     repositories.UserRepository
}

func NewUsageHandler(quotaService services.QuotaService, planResolver services.PlanResolver, userRepo repositories.UserRepository) *UsageHandler {
	return &UsageHandler{
		quotaService: quotaService,
		planResolver: planResolver,
		userRepo:     userRepo,
	}
}

func (h *UsageHandler) Current(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			notFoundResponse(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	usage, err := h.quotaService.CurrentUsage(r.Context(), actorID)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	planKey, limits := h.planResolver.Resolve(user)
	response := jsonResponse{
		"usage": usage,
		"plan": jsonResponse{
			"key":    planKey,
			"limits": limits,
		},
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
