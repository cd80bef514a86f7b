package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/session-system/middleware"
	"github.com/Dosada05/session-system/models"
	"github.com/Dosada05/session-system/repositories"
	"github.com/Dosada05/session-system/services"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateSessionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.Create(r.Context(), actorID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}

	var input services.UpdateSessionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.Update(r.Context(), sessionID, actorID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	session, err := h.sessionService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.SessionListFilter{}
	q := r.URL.Query()
	if v := q.Get("sport_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.SportID = &id
		}
	}
	if v := q.Get("group_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.GroupID = &id
		}
	}
	if v := q.Get("creator_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.CreatorID = &id
		}
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateTo = &t
		}
	}
	if v := q.Get("status"); v != "" {
		filter.Statuses = []models.SessionStatus{models.SessionStatus(v)}
	}

	sessions, err := h.sessionService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"sessions": sessions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) withActor(w http.ResponseWriter, r *http.Request) (sessionID, actorID int, ok bool) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return 0, 0, false
	}
	sessionID, err = idParam(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return sessionID, actorID, true
}

func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	session, err := h.sessionService.Join(r.Context(), sessionID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	session, err := h.sessionService.Leave(r.Context(), sessionID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) Publish(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	session, err := h.sessionService.Publish(r.Context(), sessionID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) Lock(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	session, err := h.sessionService.Lock(r.Context(), sessionID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	session, err := h.sessionService.Cancel(r.Context(), sessionID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) SetScore(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}

	var input struct {
		ScoreHome int `json:"score_home"`
		ScoreAway int `json:"score_away"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.SetScore(r.Context(), sessionID, actorID, input.ScoreHome, input.ScoreAway)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	if err := h.sessionService.Delete(r.Context(), sessionID, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
