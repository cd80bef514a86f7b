package handlers

import (
	"net/http"

	"github.com/Dosada05/session-system/middleware"
	"github.com/Dosada05/session-system/services"
)

type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

func NewAttendanceHandler(attendanceService services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

func (h *AttendanceHandler) withActor(w http.ResponseWriter, r *http.Request) (sessionID, actorID int, ok bool) {
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

func (h *AttendanceHandler) GetSheet(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	sheet, err := h.attendanceService.GetSheet(r.Context(), sessionID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"sheet": sheet}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AttendanceHandler) MarkPresence(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}

	var input struct {
		UserID  int    `json:"user_id"`
		Present bool   `json:"present"`
		Note    string `json:"note"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	presence, err := h.attendanceService.MarkPresence(r.Context(), sessionID, actorID, input.UserID, input.Present, input.Note)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"presence": presence}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AttendanceHandler) MarkExternalPresence(w http.ResponseWriter, r *http.Request) {
	sessionID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	attendeeID, err := idParam(r, "attendeeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Present bool   `json:"present"`
		Note    string `json:"note"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.attendanceService.MarkExternalPresence(r.Context(), sessionID, attendeeID, actorID, input.Present, input.Note); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
