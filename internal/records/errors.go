package records

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate is matched by every DuplicateRecordError.
	ErrDuplicate = errors.New("duplicate record")

	// ErrPastDate is matched by every PastDateError.
	ErrPastDate = errors.New("date is in the past")

	// ErrSlotConflict is matched by every SlotConflictError.
	ErrSlotConflict = errors.New("slot already booked")

	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("record not found")
)

// ValidationError reports a field that failed a syntactic rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DuplicateRecordError reports the existing patient a submission collides with.
type DuplicateRecordError struct {
	ConflictingID string
	Field         string // "contact" or "email"
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("duplicate patient: same name and %s as %s", e.Field, e.ConflictingID)
}

func (e *DuplicateRecordError) Is(target error) bool { return target == ErrDuplicate }

// PastDateError reports an appointment date before the current local day.
type PastDateError struct {
	Date string
}

func (e *PastDateError) Error() string {
	return fmt.Sprintf("appointment date %s is before today", e.Date)
}

func (e *PastDateError) Is(target error) bool { return target == ErrPastDate }

// SlotConflictError reports a doctor/date/time triple that is already booked.
type SlotConflictError struct {
	DoctorID string
	Date     string
	Time     string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("doctor %s is already booked on %s at %s", e.DoctorID, e.Date, e.Time)
}

func (e *SlotConflictError) Is(target error) bool { return target == ErrSlotConflict }

// NotFoundError reports an id that no longer resolves.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Invalid is shorthand for a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound is shorthand for a NotFoundError.
func NotFound(kind Kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}
