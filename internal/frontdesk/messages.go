package frontdesk

import (
	"errors"

	"github.com/wolfman30/medspa-frontdesk/internal/records"
)

// Success messages shown to the desk.
const (
	msgPatientRegistered   = "Patient Registered! ID: "
	msgPatientUpdated      = "Patient updated!"
	msgPatientDeleted      = "Patient and their appointments deleted."
	msgAppointmentBooked   = "Appointment booked!"
	msgAppointmentUpdated  = "Appointment updated!"
	msgAppointmentDeleted  = "Appointment deleted!"
	msgExportArchived      = "Appointments exported to archive"
	msgSomethingWentWrong  = "Something went wrong. Please try again."
	msgDuplicateByContact  = "A patient with the same name & contact already exists"
	msgDuplicateByEmail    = "A patient with the same name & email already exists"
	msgPastDate            = "Date must be today or future"
	msgSlotTaken           = "This slot is already booked for the doctor"
	msgArchiveNotAvailable = "Export archive is not configured"
)

// Describe turns an operation error into the message shown to the desk.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var (
		verr *records.ValidationError
		derr *records.DuplicateRecordError
		nerr *records.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Reason
	case errors.As(err, &derr):
		if derr.Field == "email" {
			return msgDuplicateByEmail
		}
		return msgDuplicateByContact
	case errors.Is(err, records.ErrPastDate):
		return msgPastDate
	case errors.Is(err, records.ErrSlotConflict):
		return msgSlotTaken
	case errors.As(err, &nerr):
		return notFoundMessage(nerr.Kind)
	case errors.Is(err, ErrArchiveDisabled):
		return msgArchiveNotAvailable
	default:
		return msgSomethingWentWrong
	}
}

func notFoundMessage(kind records.Kind) string {
	switch kind {
	case records.KindPatient:
		return "Patient not found"
	case records.KindAppointment:
		return "Appointment not found"
	case records.KindDoctor:
		return "Doctor not found"
	case records.KindDepartment:
		return "Department not found"
	default:
		return "Record not found"
	}
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, records.ErrValidation):
		return "validation"
	case errors.Is(err, records.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, records.ErrPastDate):
		return "past_date"
	case errors.Is(err, records.ErrSlotConflict):
		return "slot_conflict"
	case errors.Is(err, records.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
