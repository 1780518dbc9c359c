// Package api exposes the member platform over HTTP. Handlers are thin
// translators: request parsing and status mapping here, business logic in
// the member service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/audience-hub/internal/domain"
	"github.com/ignite/audience-hub/internal/member"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	members *member.Service
}

// NewHandlers creates a Handlers instance backed by the member service.
func NewHandlers(members *member.Service) *Handlers {
	return &Handlers{members: members}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service-layer sentinels to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, member.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, member.ErrValidation):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, member.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// HandleHealth reports service liveness.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleListMembers returns a paginated member list.
// Query params: search, order (created_at|email|name|email_open_rate),
// direction (asc|desc), limit, offset.
func (h *Handlers) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := member.ListFilter{
		Search:     q.Get("search"),
		OrderBy:    q.Get("order"),
		Descending: q.Get("direction") == "desc",
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	members, total, err := h.members.List(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"members": members,
		"total":   total,
	})
}

// HandleGetMember returns one member with labels loaded.
func (h *Handlers) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.members.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

type memberPayload struct {
	Email      *string              `json:"email"`
	Name       *string              `json:"name"`
	Status     *domain.MemberStatus `json:"status"`
	Subscribed *bool                `json:"subscribed"`
	Labels     *[]string            `json:"labels"`
}

// HandleCreateMember creates a member.
func (h *Handlers) HandleCreateMember(w http.ResponseWriter, r *http.Request) {
	var p memberPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	in := member.AddInput{Subscribed: p.Subscribed}
	if p.Email != nil {
		in.Email = *p.Email
	}
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Status != nil {
		in.Status = *p.Status
	}
	if p.Labels != nil {
		in.Labels = *p.Labels
	}

	m, err := h.members.Add(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

// HandleUpdateMember edits a member. Absent fields are left untouched.
func (h *Handlers) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var p memberPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	in := member.EditInput{
		Email:      p.Email,
		Name:       p.Name,
		Status:     p.Status,
		Subscribed: p.Subscribed,
		Labels:     p.Labels,
	}
	m, err := h.members.Edit(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// HandleDeleteMember removes a member. Subscribe-event history is retained.
func (h *Handlers) HandleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.members.Destroy(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListLabels returns all labels with member counts.
func (h *Handlers) HandleListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.members.ListLabels(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"labels": labels})
}
