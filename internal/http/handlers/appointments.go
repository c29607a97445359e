package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/medspa-frontdesk/internal/export"
	"github.com/wolfman30/medspa-frontdesk/internal/frontdesk"
	"github.com/wolfman30/medspa-frontdesk/internal/query"
	"github.com/wolfman30/medspa-frontdesk/internal/records"
	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

// AppointmentsHandler serves booking, the appointments table and exports.
type AppointmentsHandler struct {
	svc    *frontdesk.Service
	logger *logging.Logger
}

// NewAppointmentsHandler creates the appointments handler.
func NewAppointmentsHandler(svc *frontdesk.Service, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{svc: svc, logger: logger}
}

type bookingRequest struct {
	PatientID    string `json:"patientId"`
	DepartmentID string `json:"departmentId"`
	DoctorID     string `json:"doctorId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

type rescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type appointmentResponse struct {
	Message     string              `json:"message"`
	Appointment records.Appointment `json:"appointment"`
}

type appointmentListResponse struct {
	Appointments []query.AppointmentRow `json:"appointments"`
	Total        int                    `json:"total"`
}

// Book handles POST /api/appointments.
func (h *AppointmentsHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	ctx, notice := frontdesk.CaptureNotice(r.Context())
	appt, err := h.svc.BookAppointment(ctx, records.BookingInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	n, _ := notice()
	writeJSON(w, http.StatusCreated, appointmentResponse{Message: n.Message, Appointment: appt})
}

// List handles GET /api/appointments?q=.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListAppointments(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appointmentListResponse{Appointments: rows, Total: len(rows)})
}

// Get handles GET /api/appointments/{appointmentID}.
func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.svc.GetAppointment(r.Context(), chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Reschedule handles PATCH /api/appointments/{appointmentID}.
func (h *AppointmentsHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	ctx, notice := frontdesk.CaptureNotice(r.Context())
	appt, err := h.svc.RescheduleAppointment(ctx, chi.URLParam(r, "appointmentID"), req.Date, req.Time)
	if err != nil {
		writeError(w, err)
		return
	}
	n, _ := notice()
	writeJSON(w, http.StatusOK, appointmentResponse{Message: n.Message, Appointment: appt})
}

// Delete handles DELETE /api/appointments/{appointmentID}.
func (h *AppointmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, notice := frontdesk.CaptureNotice(r.Context())
	if err := h.svc.DeleteAppointment(ctx, chi.URLParam(r, "appointmentID")); err != nil {
		writeError(w, err)
		return
	}
	n, _ := notice()
	writeJSON(w, http.StatusOK, messageResponse{Message: n.Message})
}

// Export handles GET /api/appointments/export as a CSV download.
func (h *AppointmentsHandler) Export(w http.ResponseWriter, r *http.Request) {
	exp, err := h.svc.ExportAppointmentsCSV(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(exp.Data); err != nil {
		h.logger.Warn("handlers: export write failed", "error", err)
	}
}

// Archive handles POST /api/appointments/export/archive.
func (h *AppointmentsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ArchiveAppointmentsCSV(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
