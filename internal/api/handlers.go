// Package api exposes HTTP handlers for the activity registry.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"example.com/mergington/internal/domain"
	"example.com/mergington/internal/observability"
)

// FrontendEntry is where the root path redirects.
const FrontendEntry = "/static/index.html"

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", rootRedirect)
	mux.HandleFunc("GET /healthz", healthz)
	mux.HandleFunc("GET /activities", h.listActivities)
	mux.HandleFunc("GET /activities/{activity_name}", h.getActivity)
	mux.HandleFunc("POST /activities/{activity_name}/signup", h.signup)
	mux.HandleFunc("POST /activities/{activity_name}/unregister", h.unregister)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func rootRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, FrontendEntry, http.StatusTemporaryRedirect)
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, orderedActivities(activities))
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.service.GetActivity(r.Context(), r.PathValue("activity_name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

// emailParam reads the required email query parameter. Only an absent
// parameter is rejected; empty and blank values pass through unchanged.
func emailParam(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	query := r.URL.Query()
	if !query.Has("email") {
		observability.RecordRejection(operation, "email_required")
		writeDomainError(w, domain.ErrEmailRequired)
		return "", false
	}
	return query.Get("email"), true
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("activity_name")
	email, ok := emailParam(w, r, observability.OperationSignup)
	if !ok {
		return
	}

	if _, err := h.service.Signup(r.Context(), name, email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Signed up %s for %s", email, name),
	})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("activity_name")
	email, ok := emailParam(w, r, observability.OperationUnregister)
	if !ok {
		return
	}

	if _, err := h.service.Unregister(r.Context(), name, email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Unregistered %s from %s", email, name),
	})
}

// ActivityView is the public shape of one activity.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// ListActivitiesResponse maps activity name to its view. It is the decoded
// form of GET /activities; the server writes keys in registry order.
type ListActivitiesResponse map[string]ActivityView

// orderedActivities encodes as a JSON object whose keys follow slice order.
type orderedActivities []domain.Activity

func (o orderedActivities) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, activity := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(activity.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(toActivityView(activity))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Activity not found")
	case errors.Is(err, domain.ErrAlreadySignedUp):
		writeError(w, http.StatusBadRequest, "already_signed_up", "Student is already signed up for this activity")
	case errors.Is(err, domain.ErrNotSignedUp):
		writeError(w, http.StatusBadRequest, "not_signed_up", "Student is not signed up for this activity")
	case errors.Is(err, domain.ErrActivityFull):
		writeError(w, http.StatusBadRequest, "activity_full", "Activity is full")
	case errors.Is(err, domain.ErrEmailRequired):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "email query parameter is required")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Type: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(activity domain.Activity) ActivityView {
	participants := activity.Participants
	if participants == nil {
		participants = []string{}
	}
	return ActivityView{
		Description:     activity.Description,
		Schedule:        activity.Schedule,
		MaxParticipants: activity.MaxParticipants,
		Participants:    participants,
	}
}
