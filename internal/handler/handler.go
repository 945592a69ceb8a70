// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/patterns42/workshop-registration/internal/attendee"
	"github.com/patterns42/workshop-registration/internal/model"
	"github.com/patterns42/workshop-registration/internal/service"
)

// RegistrationHandler holds all HTTP handlers for the registration app.
type RegistrationHandler struct {
	svc     *service.RegistrationService
	slotIDs []int
}

// NewRegistrationHandler constructs a RegistrationHandler. slotIDs are
// the timeslots the selection form submits, e.g. {2, 4}.
func NewRegistrationHandler(svc *service.RegistrationService, slotIDs []int) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, slotIDs: slotIDs}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Root handles GET /
func (h *RegistrationHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	fmt.Fprint(w, "<h1>Workshop registration</h1><p>Use your personal link to pick sessions.</p>")
}

// Statistics handles GET /stats
// Returns the public popularity report as JSON.
func (h *RegistrationHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// SelectionPage handles GET /{hash}
// Returns the attendee's registration page data. An unknown hash is an
// access failure, not a 500.
func (h *RegistrationHandler) SelectionPage(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	page, err := h.svc.SelectionPage(r.Context(), hash)
	if err != nil {
		if errors.Is(err, attendee.ErrUnknownAttendee) {
			writeError(w, http.StatusForbidden, "invalid hash")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load registration page")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// SaveSessions handles POST /{hash}
// Reads one form field per configured slot (session-2, session-4, ...)
// and submits them as a single all-or-nothing registration. On success
// the client is redirected back to its selection page.
func (h *RegistrationHandler) SaveSessions(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	picks := make([]model.SessionPick, 0, len(h.slotIDs))
	for _, slotID := range h.slotIDs {
		title := r.PostFormValue(fmt.Sprintf("session-%d", slotID))
		if title == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("missing selection for slot %d", slotID))
			return
		}
		picks = append(picks, model.SessionPick{SlotID: slotID, Title: title})
	}

	_, err := h.svc.Register(r.Context(), hash, picks)
	if err != nil {
		switch {
		case errors.Is(err, attendee.ErrUnknownAttendee):
			writeError(w, http.StatusForbidden, "invalid hash")
		case errors.Is(err, service.ErrCapacityExceeded):
			writeError(w, http.StatusBadRequest, "invalid data, some sessions might already be full")
		default:
			writeError(w, http.StatusInternalServerError, "failed to save registration")
		}
		return
	}

	http.Redirect(w, r, "/"+hash, http.StatusSeeOther)
}

// AdminExport handles GET /admin/registrations
// Returns every attendee's current registration as delimiter-joined
// plain text. Basic auth is applied by the router.
func (h *RegistrationHandler) AdminExport(w http.ResponseWriter, r *http.Request) {
	export, err := h.svc.AdminExport(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export registrations")
		return
	}
	w.Header().Set("Content-Type", "text/plain;charset=UTF-8")
	fmt.Fprint(w, export)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
