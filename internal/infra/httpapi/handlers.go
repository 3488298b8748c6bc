package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"student_request_triage/internal/app"
	"student_request_triage/internal/domain/protocol"

	"github.com/sirupsen/logrus"
)

// Handler exposes the triage operations as a JSON API for the reviewer
// frontend.
type Handler struct {
	service *app.TriageService
	logger  *logrus.Entry
}

func NewHandler(service *app.TriageService, logger *logrus.Entry) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register wires all routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/requests", h.handleSnapshot)
	mux.HandleFunc("POST /api/requests/refresh", h.handleRefresh)
	mux.HandleFunc("POST /api/filters/student", h.handleSetStudent)
	mux.HandleFunc("POST /api/filters/question", h.handleSetQuestion)
	mux.HandleFunc("POST /api/filters/apply", h.handleApplyFilters)
	mux.HandleFunc("POST /api/filters/reset", h.handleResetFilters)
	mux.HandleFunc("POST /api/requests/{id}/toggle", h.handleToggle)
	mux.HandleFunc("POST /api/requests/{id}/protocol", h.handleSubmitProtocol)
	mux.HandleFunc("POST /api/requests/{id}/email", h.handleSendEmail)
}

type valueBody struct {
	Value string `json:"value"`
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.logger.WithError(err).Error("Manual refresh failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) handleSetStudent(w http.ResponseWriter, r *http.Request) {
	var body valueBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.service.SetStudent(body.Value)
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) handleSetQuestion(w http.ResponseWriter, r *http.Request) {
	var body valueBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.service.SetQuestion(body.Value)
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) handleApplyFilters(w http.ResponseWriter, _ *http.Request) {
	h.service.ApplyFilters()
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) handleResetFilters(w http.ResponseWriter, _ *http.Request) {
	h.service.ResetFilters()
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	toggled := h.service.ToggleExpand(requestID)
	writeJSON(w, http.StatusOK, map[string]any{
		"toggled":  toggled,
		"snapshot": h.service.Snapshot(),
	})
}

func (h *Handler) handleSubmitProtocol(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	var in protocol.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.service.SubmitProtocol(r.Context(), requestID, in)
	if err != nil {
		var fieldErrs protocol.FieldErrors
		if errors.As(err, &fieldErrs) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "validation failed",
				"fields": fieldErrs,
			})
			return
		}
		h.writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	state, err := h.service.SendEmail(r.Context(), requestID)
	if err != nil {
		h.writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, requestID string, err error) {
	h.logger.WithField("request_id", requestID).WithError(err).Warn("Request action rejected")
	status := http.StatusConflict
	if errors.Is(err, app.ErrRequestNotFound) {
		status = http.StatusNotFound
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
