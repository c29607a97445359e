// Package booking enforces the guards that keep appointment slots consistent:
// referential presence, the future-date rule and per-doctor slot uniqueness.
package booking

import (
	"strings"
	"time"

	"github.com/wolfman30/medspa-frontdesk/internal/identity"
	"github.com/wolfman30/medspa-frontdesk/internal/records"
)

// DateLayout is the calendar-date format used for appointment dates.
const DateLayout = "2006-01-02"

// Engine validates booking and reschedule requests against a snapshot.
// It never writes; callers commit the returned appointment themselves.
type Engine struct {
	ids *identity.Generator
	now func() time.Time
	loc *time.Location
}

// NewEngine builds an engine. A nil clock means time.Now; a nil location means time.Local.
func NewEngine(ids *identity.Generator, now func() time.Time, loc *time.Location) *Engine {
	if ids == nil {
		ids = identity.NewGenerator(identity.StrategyPrefixed)
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{ids: ids, now: now, loc: loc}
}

// Location is the clinic-local zone used for day comparisons.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Create checks a booking form and returns the appointment to persist.
func (e *Engine) Create(snap records.Snapshot, in records.BookingInput) (records.Appointment, error) {
	in = trimBooking(in)

	switch {
	case in.PatientID == "":
		return records.Appointment{}, records.Invalid("patient", "Select patient")
	case in.DepartmentID == "":
		return records.Appointment{}, records.Invalid("department", "Select department")
	case in.DoctorID == "":
		return records.Appointment{}, records.Invalid("doctor", "Select doctor")
	}
	if err := e.checkDate(in.Date); err != nil {
		return records.Appointment{}, err
	}
	if in.Time == "" {
		return records.Appointment{}, records.Invalid("time", "Select a time slot")
	}

	if _, ok := snap.FindPatient(in.PatientID); !ok {
		return records.Appointment{}, records.NotFound(records.KindPatient, in.PatientID)
	}
	if _, ok := snap.FindDepartment(in.DepartmentID); !ok {
		return records.Appointment{}, records.NotFound(records.KindDepartment, in.DepartmentID)
	}
	doctor, ok := snap.FindDoctor(in.DoctorID)
	if !ok {
		return records.Appointment{}, records.NotFound(records.KindDoctor, in.DoctorID)
	}
	if !doctor.HasSlot(in.Time) {
		return records.Appointment{}, records.Invalid("time", "Select one of the doctor's time slots")
	}
	if IsSlotTaken(snap.Appointments, in.DoctorID, in.Date, in.Time, "") {
		return records.Appointment{}, &records.SlotConflictError{DoctorID: in.DoctorID, Date: in.Date, Time: in.Time}
	}

	id, err := e.ids.Next(records.KindAppointment, identity.AppointmentIDs(snap.Appointments))
	if err != nil {
		return records.Appointment{}, err
	}
	return records.Appointment{
		ID:           id,
		PatientID:    in.PatientID,
		DepartmentID: in.DepartmentID,
		DoctorID:     in.DoctorID,
		Date:         in.Date,
		Time:         in.Time,
		CreatedAt:    e.now().UTC(),
	}, nil
}

// Reschedule moves an existing appointment to a new date and time. The slot
// check skips the appointment itself so keeping the same slot never conflicts.
func (e *Engine) Reschedule(snap records.Snapshot, existing records.Appointment, date, slot string) (records.Appointment, error) {
	date = strings.TrimSpace(date)
	slot = strings.TrimSpace(slot)

	if err := e.checkDate(date); err != nil {
		return records.Appointment{}, err
	}
	if slot == "" {
		return records.Appointment{}, records.Invalid("time", "Select a time slot")
	}
	doctor, ok := snap.FindDoctor(existing.DoctorID)
	if !ok {
		return records.Appointment{}, records.NotFound(records.KindDoctor, existing.DoctorID)
	}
	if !doctor.HasSlot(slot) {
		return records.Appointment{}, records.Invalid("time", "Select one of the doctor's time slots")
	}
	if IsSlotTaken(snap.Appointments, existing.DoctorID, date, slot, existing.ID) {
		return records.Appointment{}, &records.SlotConflictError{DoctorID: existing.DoctorID, Date: date, Time: slot}
	}

	updated := existing
	updated.Date = date
	updated.Time = slot
	stamp := e.now().UTC()
	updated.UpdatedAt = &stamp
	return updated, nil
}

// AvailableSlots returns the doctor's slots still free on date, in slot order.
func (e *Engine) AvailableSlots(doctor records.Doctor, date string, appts []records.Appointment) []string {
	free := make([]string, 0, len(doctor.Slots))
	for _, s := range doctor.Slots {
		if !IsSlotTaken(appts, doctor.ID, date, s, "") {
			free = append(free, s)
		}
	}
	return free
}

func (e *Engine) checkDate(date string) error {
	if date == "" {
		return records.Invalid("date", "Select date")
	}
	if _, err := ParseDate(date, e.loc); err != nil {
		return records.Invalid("date", "Date must be YYYY-MM-DD")
	}
	if !IsFutureDate(date, e.now(), e.loc) {
		return &records.PastDateError{Date: date}
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date as local midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// IsFutureDate reports whether date falls on or after now's calendar day in loc.
// Unparseable dates are never in the future.
func IsFutureDate(date string, now time.Time, loc *time.Location) bool {
	picked, err := ParseDate(date, loc)
	if err != nil {
		return false
	}
	return !picked.Before(StartOfDay(now, loc))
}

// IsSlotTaken reports whether any appointment other than excludeID holds the
// doctor's slot on date.
func IsSlotTaken(appts []records.Appointment, doctorID, date, slot, excludeID string) bool {
	for _, a := range appts {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if a.DoctorID == doctorID && a.Date == date && a.Time == slot {
			return true
		}
	}
	return false
}

func trimBooking(in records.BookingInput) records.BookingInput {
	return records.BookingInput{
		PatientID:    strings.TrimSpace(in.PatientID),
		DepartmentID: strings.TrimSpace(in.DepartmentID),
		DoctorID:     strings.TrimSpace(in.DoctorID),
		Date:         strings.TrimSpace(in.Date),
		Time:         strings.TrimSpace(in.Time),
	}
}
