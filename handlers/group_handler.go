package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/session-system/middleware"
	"github.com/Dosada05/session-system/models"
	"github.com/Dosada05/session-system/repositories"
	"github.com/Dosada05/session-system/services"
)

type GroupHandler struct {
	groupService services.GroupService
}

func NewGroupHandler(groupService services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) withActor(w http.ResponseWriter, r *http.Request) (groupID, actorID int, ok bool) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return 0, 0, false
	}
	groupID, err = idParam(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return groupID, actorID, true
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateGroupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.groupService.Create(r.Context(), actorID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	group, err := h.groupService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.GroupListFilter{}
	q := r.URL.Query()
	if v := q.Get("sport_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.SportID = &id
		}
	}
	if v := q.Get("city"); v != "" {
		filter.City = &v
	}
	if v := q.Get("q"); v != "" {
		filter.Query = &v
	}

	groups, err := h.groupService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}

	var input services.UpdateGroupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.groupService.Update(r.Context(), groupID, actorID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	if err := h.groupService.Delete(r.Context(), groupID, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}

	var input struct {
		Message *string `json:"message,omitempty"`
	}
	// Тело опционально: OPEN-группам сообщение не нужно.
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	result, err := h.groupService.Join(r.Context(), groupID, actorID, input.Message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Request != nil {
		status = http.StatusAccepted
	}
	if err := writeJSON(w, status, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	if err := h.groupService.Leave(r.Context(), groupID, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	requests, err := h.groupService.ListRequests(r.Context(), groupID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"requests": requests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	requestID, err := idParam(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.groupService.ApproveRequest(r.Context(), groupID, requestID, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	requestID, err := idParam(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.groupService.RejectRequest(r.Context(), groupID, requestID, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	members, err := h.groupService.ListMembers(r.Context(), groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"members": members}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	userID, err := idParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.groupService.AddMember(r.Context(), groupID, userID, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	userID, err := idParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.groupService.RemoveMember(r.Context(), groupID, userID, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) AddExternalMember(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}

	var member models.GroupExternalMember
	if err := readJSON(w, r, &member); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.groupService.AddExternalMember(r.Context(), groupID, actorID, &member); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"external_member": member}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) ListExternalMembers(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	members, err := h.groupService.ListExternalMembers(r.Context(), groupID, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"external_members": members}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GroupHandler) RemoveExternalMember(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}
	memberID, err := idParam(r, "memberID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.groupService.RemoveExternalMember(r.Context(), groupID, memberID, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	groupID, actorID, ok := h.withActor(w, r)
	if !ok {
		return
	}

	contentType := r.Header.Get("Content-Type")
	group, err := h.groupService.UploadCover(r.Context(), groupID, actorID, contentType, r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
