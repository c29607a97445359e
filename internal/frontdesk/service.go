// Package frontdesk is the request/response API of the front desk: patient
// registration, booking, queries and exports over one explicit store handle.
package frontdesk

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/medspa-frontdesk/internal/booking"
	"github.com/wolfman30/medspa-frontdesk/internal/directory"
	"github.com/wolfman30/medspa-frontdesk/internal/export"
	"github.com/wolfman30/medspa-frontdesk/internal/identity"
	"github.com/wolfman30/medspa-frontdesk/internal/notify"
	"github.com/wolfman30/medspa-frontdesk/internal/observability/metrics"
	"github.com/wolfman30/medspa-frontdesk/internal/query"
	"github.com/wolfman30/medspa-frontdesk/internal/records"
	"github.com/wolfman30/medspa-frontdesk/internal/store"
	"github.com/wolfman30/medspa-frontdesk/internal/validation"
	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

var frontdeskTracer = otel.Tracer("frontdesk.internal.frontdesk")

// ErrArchiveDisabled is returned by ArchiveAppointmentsCSV when no bucket is configured.
var ErrArchiveDisabled = export.ErrArchiveDisabled

// Config wires a Service. Store is required; everything else has a default.
type Config struct {
	Store        *store.Store
	IDs          *identity.Generator
	Resolver     *identity.Resolver
	Engine       *booking.Engine
	Notifier     notify.Notifier
	Confirmer    *notify.Confirmer
	Archiver     *export.Archiver
	Metrics      *metrics.FrontdeskMetrics
	Logger       *logging.Logger
	StatusLabels bool
}

// Service runs every front-desk operation. Mutations are serialised; reads
// work on a fresh snapshot.
type Service struct {
	mu sync.Mutex

	store        *store.Store
	ids          *identity.Generator
	resolver     *identity.Resolver
	engine       *booking.Engine
	notifier     notify.Notifier
	confirmer    *notify.Confirmer
	archiver     *export.Archiver
	metrics      *metrics.FrontdeskMetrics
	logger       *logging.Logger
	statusLabels bool
}

// NewService constructs the front-desk service.
func NewService(cfg Config) *Service {
	if cfg.Store == nil {
		panic("frontdesk: store required")
	}
	if cfg.IDs == nil {
		cfg.IDs = identity.NewGenerator(identity.StrategyPrefixed)
	}
	if cfg.Resolver == nil {
		cfg.Resolver = identity.NewResolver(identity.PolicyNameContact)
	}
	if cfg.Engine == nil {
		cfg.Engine = booking.NewEngine(cfg.IDs, nil, nil)
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		store:        cfg.Store,
		ids:          cfg.IDs,
		resolver:     cfg.Resolver,
		engine:       cfg.Engine,
		notifier:     cfg.Notifier,
		confirmer:    cfg.Confirmer,
		archiver:     cfg.Archiver,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		statusLabels: cfg.StatusLabels,
	}
}

// op tracks one operation for tracing, metrics and notification.
type op struct {
	s      *Service
	name   string
	span   trace.Span
	start  time.Time
	notify bool
}

func (s *Service) begin(ctx context.Context, name string, mutating bool, attrs ...attribute.KeyValue) (context.Context, *op) {
	ctx, span := frontdeskTracer.Start(ctx, "frontdesk."+name)
	span.SetAttributes(attrs...)
	return ctx, &op{s: s, name: name, span: span, start: time.Now(), notify: mutating}
}

// end closes the operation. success is the notice for a successful mutation.
func (o *op) end(ctx context.Context, err error, success string) {
	defer o.span.End()
	o.s.metrics.ObserveOperation(o.name, outcome(err), time.Since(o.start).Seconds())
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
		switch {
		case errors.Is(err, records.ErrDuplicate):
			o.s.metrics.ObserveRejection("duplicate")
		case errors.Is(err, records.ErrSlotConflict):
			o.s.metrics.ObserveRejection("slot_conflict")
		case errors.Is(err, records.ErrPastDate):
			o.s.metrics.ObserveRejection("past_date")
		}
		if outcome(err) == "error" {
			o.s.logger.Error("frontdesk: operation failed", "operation", o.name, "error", err)
		}
	}
	if !o.notify {
		return
	}
	if err != nil {
		deliver(ctx, o.s.notifier, notify.Notice{Operation: o.name, Message: Describe(err)})
		return
	}
	deliver(ctx, o.s.notifier, notify.Notice{Operation: o.name, Message: success, OK: true})
}

func (s *Service) options() query.Options {
	return query.Options{Now: s.engine.Now(), Location: s.engine.Location(), StatusLabels: s.statusLabels}
}

// RegisterPatient validates the form, rejects duplicates under the configured
// policy and stores the new patient together with the last-registered id.
func (s *Service) RegisterPatient(ctx context.Context, in records.PatientInput) (patient records.Patient, err error) {
	ctx, o := s.begin(ctx, "register_patient", true)
	defer func() { o.end(ctx, err, msgPatientRegistered+patient.ID) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = validation.Patient(in); err != nil {
		return records.Patient{}, err
	}
	patients, err := s.store.Patients(ctx)
	if err != nil {
		return records.Patient{}, err
	}
	if err = s.resolver.FindDuplicatePatient(in, patients, ""); err != nil {
		return records.Patient{}, err
	}
	id, err := s.ids.Next(records.KindPatient, identity.PatientIDs(patients))
	if err != nil {
		return records.Patient{}, err
	}

	p := buildPatient(in)
	p.ID = id
	p.CreatedAt = s.engine.Now().UTC()

	batch := s.store.NewBatch().
		PutPatients(append(patients, p)).
		PutLastRegisteredPatientID(p.ID)
	if err = s.store.Commit(ctx, batch); err != nil {
		return records.Patient{}, err
	}
	s.logger.Info("frontdesk: patient registered", "patient_id", p.ID)
	return p, nil
}

// UpdatePatient replaces a patient's editable fields.
func (s *Service) UpdatePatient(ctx context.Context, id string, in records.PatientInput) (patient records.Patient, err error) {
	ctx, o := s.begin(ctx, "update_patient", true, attribute.String("frontdesk.patient_id", id))
	defer func() { o.end(ctx, err, msgPatientUpdated) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	patients, err := s.store.Patients(ctx)
	if err != nil {
		return records.Patient{}, err
	}
	idx := indexOfPatient(patients, id)
	if idx < 0 {
		return records.Patient{}, records.NotFound(records.KindPatient, id)
	}
	if err = validation.Patient(in); err != nil {
		return records.Patient{}, err
	}
	if err = s.resolver.FindDuplicatePatient(in, patients, id); err != nil {
		return records.Patient{}, err
	}

	updated := buildPatient(in)
	updated.ID = id
	updated.CreatedAt = patients[idx].CreatedAt
	now := s.engine.Now().UTC()
	updated.UpdatedAt = &now

	next := append([]records.Patient(nil), patients...)
	next[idx] = updated
	if err = s.store.Commit(ctx, s.store.NewBatch().PutPatients(next)); err != nil {
		return records.Patient{}, err
	}
	return updated, nil
}

// GetPatient returns one patient.
func (s *Service) GetPatient(ctx context.Context, id string) (patient records.Patient, err error) {
	ctx, o := s.begin(ctx, "get_patient", false)
	defer func() { o.end(ctx, err, "") }()

	patients, err := s.store.Patients(ctx)
	if err != nil {
		return records.Patient{}, err
	}
	idx := indexOfPatient(patients, id)
	if idx < 0 {
		return records.Patient{}, records.NotFound(records.KindPatient, id)
	}
	return patients[idx], nil
}

// ListPatients returns the records table filtered by search.
func (s *Service) ListPatients(ctx context.Context, search string) (rows []query.PatientRow, err error) {
	ctx, o := s.begin(ctx, "list_patients", false)
	defer func() { o.end(ctx, err, "") }()

	patients, err := s.store.Patients(ctx)
	if err != nil {
		return nil, err
	}
	return query.PatientRows(patients, search), nil
}

// DeletePatient removes the patient and every appointment they hold in one
// commit and reports how many appointments went with them.
func (s *Service) DeletePatient(ctx context.Context, id string) (removed int, err error) {
	ctx, o := s.begin(ctx, "delete_patient", true, attribute.String("frontdesk.patient_id", id))
	defer func() { o.end(ctx, err, msgPatientDeleted) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	patients, err := s.store.Patients(ctx)
	if err != nil {
		return 0, err
	}
	idx := indexOfPatient(patients, id)
	if idx < 0 {
		return 0, records.NotFound(records.KindPatient, id)
	}
	appts, err := s.store.Appointments(ctx)
	if err != nil {
		return 0, err
	}
	last, err := s.store.LastRegisteredPatientID(ctx)
	if err != nil {
		return 0, err
	}

	remainingPatients := make([]records.Patient, 0, len(patients)-1)
	remainingPatients = append(remainingPatients, patients[:idx]...)
	remainingPatients = append(remainingPatients, patients[idx+1:]...)

	remainingAppts := make([]records.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.PatientID == id {
			removed++
			continue
		}
		remainingAppts = append(remainingAppts, a)
	}

	batch := s.store.NewBatch().PutPatients(remainingPatients).PutAppointments(remainingAppts)
	if last == id {
		batch.PutLastRegisteredPatientID("")
	}
	if err = s.store.Commit(ctx, batch); err != nil {
		return 0, err
	}
	s.metrics.ObserveCascade(removed)
	s.logger.Info("frontdesk: patient deleted", "patient_id", id, "appointments_removed", removed)
	return removed, nil
}

// LastRegisteredPatientID returns the id used to preselect the booking form.
func (s *Service) LastRegisteredPatientID(ctx context.Context) (string, error) {
	return s.store.LastRegisteredPatientID(ctx)
}

// BookAppointment books a slot after every booking guard passes.
func (s *Service) BookAppointment(ctx context.Context, in records.BookingInput) (appt records.Appointment, err error) {
	ctx, o := s.begin(ctx, "book_appointment", true,
		attribute.String("frontdesk.doctor_id", in.DoctorID),
		attribute.String("frontdesk.date", in.Date),
	)
	defer func() { o.end(ctx, err, msgAppointmentBooked) }()

	snap, appt, err := s.createAppointment(ctx, in)
	if err != nil {
		return records.Appointment{}, err
	}
	// The confirmation goes out after the lock is released.
	s.confirm(ctx, snap, appt, false)
	return appt, nil
}

func (s *Service) createAppointment(ctx context.Context, in records.BookingInput) (records.Snapshot, records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return snap, records.Appointment{}, err
	}
	appt, err := s.engine.Create(snap, in)
	if err != nil {
		return snap, records.Appointment{}, err
	}
	if err := s.store.Commit(ctx, s.store.NewBatch().PutAppointments(append(snap.Appointments, appt))); err != nil {
		return snap, records.Appointment{}, err
	}
	return snap, appt, nil
}

// RescheduleAppointment moves an appointment to a new date and slot.
func (s *Service) RescheduleAppointment(ctx context.Context, id, date, slot string) (appt records.Appointment, err error) {
	ctx, o := s.begin(ctx, "reschedule_appointment", true, attribute.String("frontdesk.appointment_id", id))
	defer func() { o.end(ctx, err, msgAppointmentUpdated) }()

	snap, appt, err := s.moveAppointment(ctx, id, date, slot)
	if err != nil {
		return records.Appointment{}, err
	}
	s.confirm(ctx, snap, appt, true)
	return appt, nil
}

func (s *Service) moveAppointment(ctx context.Context, id, date, slot string) (records.Snapshot, records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return snap, records.Appointment{}, err
	}
	idx := indexOfAppointment(snap.Appointments, id)
	if idx < 0 {
		return snap, records.Appointment{}, records.NotFound(records.KindAppointment, id)
	}
	appt, err := s.engine.Reschedule(snap, snap.Appointments[idx], date, slot)
	if err != nil {
		return snap, records.Appointment{}, err
	}
	next := append([]records.Appointment(nil), snap.Appointments...)
	next[idx] = appt
	if err := s.store.Commit(ctx, s.store.NewBatch().PutAppointments(next)); err != nil {
		return snap, records.Appointment{}, err
	}
	return snap, appt, nil
}

// GetAppointment returns one appointment.
func (s *Service) GetAppointment(ctx context.Context, id string) (appt records.Appointment, err error) {
	ctx, o := s.begin(ctx, "get_appointment", false)
	defer func() { o.end(ctx, err, "") }()

	appts, err := s.store.Appointments(ctx)
	if err != nil {
		return records.Appointment{}, err
	}
	idx := indexOfAppointment(appts, id)
	if idx < 0 {
		return records.Appointment{}, records.NotFound(records.KindAppointment, id)
	}
	return appts[idx], nil
}

// DeleteAppointment removes one appointment.
func (s *Service) DeleteAppointment(ctx context.Context, id string) (err error) {
	ctx, o := s.begin(ctx, "delete_appointment", true, attribute.String("frontdesk.appointment_id", id))
	defer func() { o.end(ctx, err, msgAppointmentDeleted) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	appts, err := s.store.Appointments(ctx)
	if err != nil {
		return err
	}
	idx := indexOfAppointment(appts, id)
	if idx < 0 {
		return records.NotFound(records.KindAppointment, id)
	}
	next := make([]records.Appointment, 0, len(appts)-1)
	next = append(next, appts[:idx]...)
	next = append(next, appts[idx+1:]...)
	return s.store.Commit(ctx, s.store.NewBatch().PutAppointments(next))
}

// ListAppointments returns the appointments table filtered by search.
func (s *Service) ListAppointments(ctx context.Context, search string) (rows []query.AppointmentRow, err error) {
	ctx, o := s.begin(ctx, "list_appointments", false)
	defer func() { o.end(ctx, err, "") }()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.AppointmentRows(snap, search, s.options()), nil
}

// PatientBookings lists one patient's appointments. Unknown patients have none.
func (s *Service) PatientBookings(ctx context.Context, patientID string) (bookings []query.Booking, err error) {
	ctx, o := s.begin(ctx, "patient_bookings", false)
	defer func() { o.end(ctx, err, "") }()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.PatientBookings(snap, patientID, s.options()), nil
}

// ExportAppointmentsCSV renders every appointment as CSV.
func (s *Service) ExportAppointmentsCSV(ctx context.Context) (exp export.Export, err error) {
	ctx, o := s.begin(ctx, "export_appointments", false)
	defer func() { o.end(ctx, err, "") }()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return export.Export{}, err
	}
	exp = export.Appointments(snap, s.options())
	s.metrics.ObserveExport(exp.Rows)
	return exp, nil
}

// ArchiveAppointmentsCSV renders the export and uploads it to the archive bucket.
func (s *Service) ArchiveAppointmentsCSV(ctx context.Context) (res *export.ArchiveResult, err error) {
	ctx, o := s.begin(ctx, "archive_appointments", true)
	defer func() { o.end(ctx, err, msgExportArchived) }()

	if !s.archiver.Enabled() {
		return nil, ErrArchiveDisabled
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	exp := export.Appointments(snap, s.options())
	res, err = s.archiver.Archive(ctx, exp)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveExport(exp.Rows)
	return res, nil
}

// Summary returns the dashboard counters.
func (s *Service) Summary(ctx context.Context) (summary query.Summary, err error) {
	ctx, o := s.begin(ctx, "summary", false)
	defer func() { o.end(ctx, err, "") }()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return query.Summary{}, err
	}
	return query.Summarize(snap, s.options()), nil
}

// Departments lists the clinic's departments.
func (s *Service) Departments(ctx context.Context) ([]records.Department, error) {
	return s.store.Departments(ctx)
}

// Doctors lists doctors, narrowed to one department when departmentID is set.
func (s *Service) Doctors(ctx context.Context, departmentID string) ([]records.Doctor, error) {
	docs, err := s.store.Doctors(ctx)
	if err != nil {
		return nil, err
	}
	departmentID = strings.TrimSpace(departmentID)
	if departmentID == "" {
		return docs, nil
	}
	deps, err := s.store.Departments(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := (records.Snapshot{Departments: deps}).FindDepartment(departmentID); !ok {
		return nil, records.NotFound(records.KindDepartment, departmentID)
	}
	return directory.DoctorsIn(docs, departmentID), nil
}

// AvailableSlots returns the doctor's free slots on date. Without a date every
// slot is returned.
func (s *Service) AvailableSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	doc, ok := snap.FindDoctor(strings.TrimSpace(doctorID))
	if !ok {
		return nil, records.NotFound(records.KindDoctor, doctorID)
	}
	date = strings.TrimSpace(date)
	if date == "" {
		return append([]string(nil), doc.Slots...), nil
	}
	if _, err := booking.ParseDate(date, s.engine.Location()); err != nil {
		return nil, records.Invalid("date", "Date must be YYYY-MM-DD")
	}
	if !booking.IsFutureDate(date, s.engine.Now(), s.engine.Location()) {
		return nil, &records.PastDateError{Date: date}
	}
	return s.engine.AvailableSlots(doc, date, snap.Appointments), nil
}

// confirm emails the patient about a booking. Delivery problems are logged and
// never undo the booking.
func (s *Service) confirm(ctx context.Context, snap records.Snapshot, appt records.Appointment, rescheduled bool) {
	if s.confirmer == nil {
		return
	}
	p, ok := snap.FindPatient(appt.PatientID)
	if !ok {
		return
	}
	doc, _ := snap.FindDoctor(appt.DoctorID)
	dep, _ := snap.FindDepartment(appt.DepartmentID)
	_, err := s.confirmer.Send(ctx, notify.Confirmation{
		PatientName:   p.Name,
		PatientEmail:  p.Email,
		AppointmentID: appt.ID,
		Doctor:        doc.Name,
		Department:    dep.Name,
		Date:          appt.Date,
		Time:          appt.Time,
		Rescheduled:   rescheduled,
	})
	if err != nil {
		s.logger.Warn("frontdesk: confirmation email failed", "appointment_id", appt.ID, "error", err)
	}
}

func buildPatient(in records.PatientInput) records.Patient {
	age, _ := validation.ParseAge(in.Age)
	return records.Patient{
		Name:    strings.Join(strings.Fields(in.Name), " "),
		Age:     age,
		Gender:  strings.TrimSpace(in.Gender),
		Contact: strings.TrimSpace(in.Contact),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
	}
}

func indexOfPatient(patients []records.Patient, id string) int {
	for i, p := range patients {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func indexOfAppointment(appts []records.Appointment, id string) int {
	for i, a := range appts {
		if a.ID == id {
			return i
		}
	}
	return -1
}
