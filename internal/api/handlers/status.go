package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"waypoint-route-service/internal/api/dto"
	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/ports"

	"github.com/go-chi/chi/v5"
)

// StatusHandler exposes the per-session waypoint status document.
type StatusHandler struct {
	Store ports.StatusStore
}

// Get handles GET /sessions/{session}/status.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := strings.TrimSpace(chi.URLParam(r, "session"))

	statuses, err := h.Store.Load(r.Context(), session)
	if err != nil {
		writeDomainError(w, r, "status.get", err)
		return
	}

	res := dto.SessionStatusResponse{Session: session, Statuses: make(map[string]string, len(statuses))}
	for name, s := range statuses {
		res.Statuses[name] = string(s)
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Put handles PUT /sessions/{session}/status/{system}. Only systems the
// session already knows can be updated.
func (h *StatusHandler) Put(w http.ResponseWriter, r *http.Request) {
	session := strings.TrimSpace(chi.URLParam(r, "session"))
	system := strings.TrimSpace(chi.URLParam(r, "system"))
	if session == "" || system == "" {
		writeError(w, r, http.StatusBadRequest, "session and system are required")
		return
	}

	var req dto.StatusUpdateRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	current, err := h.Store.Load(r.Context(), session)
	if err != nil {
		writeDomainError(w, r, "status.put", err)
		return
	}
	if _, ok := current[system]; !ok {
		writeDomainError(w, r, "status.put", fmt.Errorf("system %q in session %q: %w", system, session, domain.ErrNotFound))
		return
	}

	if err := h.Store.Save(r.Context(), session, map[string]domain.Status{system: status}); err != nil {
		writeDomainError(w, r, "status.put", err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"system": system, "status": string(status)})
}
