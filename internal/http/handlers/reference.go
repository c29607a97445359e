package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/medspa-frontdesk/internal/frontdesk"
)

// ReferenceHandler serves departments, doctors, free slots and the dashboard.
type ReferenceHandler struct {
	svc *frontdesk.Service
}

// NewReferenceHandler creates the reference data handler.
func NewReferenceHandler(svc *frontdesk.Service) *ReferenceHandler {
	return &ReferenceHandler{svc: svc}
}

// Departments handles GET /api/departments.
func (h *ReferenceHandler) Departments(w http.ResponseWriter, r *http.Request) {
	deps, err := h.svc.Departments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"departments": deps})
}

// Doctors handles GET /api/departments/{departmentID}/doctors.
func (h *ReferenceHandler) Doctors(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.Doctors(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctors": docs})
}

// Slots handles GET /api/doctors/{doctorID}/slots?date=.
func (h *ReferenceHandler) Slots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	slots, err := h.svc.AvailableSlots(r.Context(), chi.URLParam(r, "doctorID"), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctorId": chi.URLParam(r, "doctorID"), "date": date, "slots": slots})
}

// Dashboard handles GET /api/dashboard.
func (h *ReferenceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
