package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/medspa-frontdesk/internal/frontdesk"
	"github.com/wolfman30/medspa-frontdesk/internal/query"
	"github.com/wolfman30/medspa-frontdesk/internal/records"
	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

// PatientsHandler serves patient registration and the records table.
type PatientsHandler struct {
	svc    *frontdesk.Service
	logger *logging.Logger
}

// NewPatientsHandler creates the patients handler.
func NewPatientsHandler(svc *frontdesk.Service, logger *logging.Logger) *PatientsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PatientsHandler{svc: svc, logger: logger}
}

// ageField accepts an age sent either as a JSON number or a string.
type ageField string

func (a *ageField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = ageField(s)
		return nil
	}
	if string(b) == "null" {
		*a = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = ageField(n.String())
	return nil
}

type patientRequest struct {
	Name    string   `json:"name"`
	Age     ageField `json:"age"`
	Gender  string   `json:"gender"`
	Contact string   `json:"contact"`
	Email   string   `json:"email"`
	Address string   `json:"address"`
}

func (p patientRequest) input() records.PatientInput {
	return records.PatientInput{
		Name:    p.Name,
		Age:     string(p.Age),
		Gender:  p.Gender,
		Contact: p.Contact,
		Email:   p.Email,
		Address: p.Address,
	}
}

type patientResponse struct {
	Message string          `json:"message"`
	Patient records.Patient `json:"patient"`
}

type patientListResponse struct {
	Patients []query.PatientRow `json:"patients"`
	Total    int                `json:"total"`
}

type deletePatientResponse struct {
	Message             string `json:"message"`
	RemovedAppointments int    `json:"removedAppointments"`
}

// Register handles POST /api/patients.
func (h *PatientsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	ctx, notice := frontdesk.CaptureNotice(r.Context())
	p, err := h.svc.RegisterPatient(ctx, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	n, _ := notice()
	writeJSON(w, http.StatusCreated, patientResponse{Message: n.Message, Patient: p})
}

// List handles GET /api/patients?q=.
func (h *PatientsHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListPatients(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patientListResponse{Patients: rows, Total: len(rows)})
}

// Get handles GET /api/patients/{patientID}.
func (h *PatientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPatient(r.Context(), chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update handles PUT /api/patients/{patientID}.
func (h *PatientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	ctx, notice := frontdesk.CaptureNotice(r.Context())
	p, err := h.svc.UpdatePatient(ctx, chi.URLParam(r, "patientID"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	n, _ := notice()
	writeJSON(w, http.StatusOK, patientResponse{Message: n.Message, Patient: p})
}

// Delete handles DELETE /api/patients/{patientID}, removing their appointments too.
func (h *PatientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, notice := frontdesk.CaptureNotice(r.Context())
	removed, err := h.svc.DeletePatient(ctx, chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, err)
		return
	}
	n, _ := notice()
	writeJSON(w, http.StatusOK, deletePatientResponse{Message: n.Message, RemovedAppointments: removed})
}

// Bookings handles GET /api/patients/{patientID}/appointments.
func (h *PatientsHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.PatientBookings(r.Context(), chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": bookings})
}

// LastRegistered handles GET /api/patients/last-registered.
func (h *PatientsHandler) LastRegistered(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.LastRegisteredPatientID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"patientId": strings.TrimSpace(id)})
}
