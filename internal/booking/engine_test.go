package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medspa-frontdesk/internal/identity"
	"github.com/wolfman30/medspa-frontdesk/internal/records"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(identity.NewGenerator(identity.StrategySequential), func() time.Time { return fixedNow }, time.UTC)
}

func baseSnapshot() records.Snapshot {
	return records.Snapshot{
		Patients:    []records.Patient{{ID: "p1", Name: "Jane Doe"}, {ID: "p2", Name: "John Roe"}},
		Departments: []records.Department{{ID: "dep1", Name: "Cardiology"}},
		Doctors: []records.Doctor{
			{ID: "d1", Name: "Dr. Rao", DepartmentID: "dep1", Slots: []string{"10:00 AM", "11:00 AM", "12:00 PM"}},
		},
	}
}

func TestIsFutureDate(t *testing.T) {
	assert.True(t, IsFutureDate("2099-01-01", fixedNow, time.UTC))
	assert.True(t, IsFutureDate("2026-03-10", fixedNow, time.UTC), "today counts as future")
	assert.False(t, IsFutureDate("2026-03-09", fixedNow, time.UTC))
	assert.False(t, IsFutureDate("not-a-date", fixedNow, time.UTC))
}

func TestIsFutureDateUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 15:30 UTC is already the 11th at UTC+10
	assert.False(t, IsFutureDate("2026-03-10", fixedNow, loc))
	assert.True(t, IsFutureDate("2026-03-11", fixedNow, loc))
}

func TestCreateSucceeds(t *testing.T) {
	e := newTestEngine()
	appt, err := e.Create(baseSnapshot(), records.BookingInput{
		PatientID: "p1", DepartmentID: "dep1", DoctorID: "d1", Date: "2026-03-11", Time: "10:00 AM",
	})
	require.NoError(t, err)
	assert.Equal(t, "1", appt.ID)
	assert.Equal(t, "p1", appt.PatientID)
	assert.Equal(t, fixedNow, appt.CreatedAt)
	assert.Nil(t, appt.UpdatedAt)
}

func TestCreateReferentialGuards(t *testing.T) {
	valid := records.BookingInput{PatientID: "p1", DepartmentID: "dep1", DoctorID: "d1", Date: "2026-03-11", Time: "10:00 AM"}
	tests := []struct {
		name  string
		mut   func(*records.BookingInput)
		field string
	}{
		{"no patient", func(in *records.BookingInput) { in.PatientID = " " }, "patient"},
		{"no department", func(in *records.BookingInput) { in.DepartmentID = "" }, "department"},
		{"no doctor", func(in *records.BookingInput) { in.DoctorID = "" }, "doctor"},
		{"no date", func(in *records.BookingInput) { in.Date = "" }, "date"},
		{"bad date", func(in *records.BookingInput) { in.Date = "11/03/2026" }, "date"},
		{"no time", func(in *records.BookingInput) { in.Time = "" }, "time"},
		{"time not offered", func(in *records.BookingInput) { in.Time = "3:00 PM" }, "time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mut(&in)
			_, err := newTestEngine().Create(baseSnapshot(), in)
			var vErr *records.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestCreateUnknownReferences(t *testing.T) {
	valid := records.BookingInput{PatientID: "p1", DepartmentID: "dep1", DoctorID: "d1", Date: "2026-03-11", Time: "10:00 AM"}
	tests := []struct {
		name string
		mut  func(*records.BookingInput)
		kind records.Kind
	}{
		{"patient", func(in *records.BookingInput) { in.PatientID = "ghost" }, records.KindPatient},
		{"department", func(in *records.BookingInput) { in.DepartmentID = "ghost" }, records.KindDepartment},
		{"doctor", func(in *records.BookingInput) { in.DoctorID = "ghost" }, records.KindDoctor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mut(&in)
			_, err := newTestEngine().Create(baseSnapshot(), in)
			var nf *records.NotFoundError
			require.True(t, errors.As(err, &nf), "got %v", err)
			assert.Equal(t, tt.kind, nf.Kind)
		})
	}
}

func TestCreateRejectsPastDate(t *testing.T) {
	_, err := newTestEngine().Create(baseSnapshot(), records.BookingInput{
		PatientID: "p1", DepartmentID: "dep1", DoctorID: "d1", Date: "2026-03-09", Time: "10:00 AM",
	})
	assert.ErrorIs(t, err, records.ErrPastDate)
}

func TestCreateRejectsTakenSlot(t *testing.T) {
	snap := baseSnapshot()
	snap.Appointments = []records.Appointment{{ID: "1", PatientID: "p1", DoctorID: "d1", Date: "2026-03-11", Time: "10:00 AM"}}

	_, err := newTestEngine().Create(snap, records.BookingInput{
		PatientID: "p2", DepartmentID: "dep1", DoctorID: "d1", Date: "2026-03-11", Time: "10:00 AM",
	})
	var conflict *records.SlotConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "d1", conflict.DoctorID)
	assert.Equal(t, "2026-03-11", conflict.Date)
	assert.Equal(t, "10:00 AM", conflict.Time)
}

func TestRescheduleToOwnSlotNeverConflicts(t *testing.T) {
	snap := baseSnapshot()
	existing := records.Appointment{ID: "1", PatientID: "p1", DepartmentID: "dep1", DoctorID: "d1", Date: "2026-03-11", Time: "10:00 AM"}
	snap.Appointments = []records.Appointment{existing}

	updated, err := newTestEngine().Reschedule(snap, existing, existing.Date, existing.Time)
	require.NoError(t, err)
	assert.Equal(t, "1", updated.ID)
	require.NotNil(t, updated.UpdatedAt)
}

func TestRescheduleConflictsWithOtherAppointment(t *testing.T) {
	snap := baseSnapshot()
	mine := records.Appointment{ID: "1", PatientID: "p1", DoctorID: "d1", Date: "2026-03-11", Time: "10:00 AM"}
	theirs := records.Appointment{ID: "2", PatientID: "p2", DoctorID: "d1", Date: "2026-03-11", Time: "11:00 AM"}
	snap.Appointments = []records.Appointment{mine, theirs}

	_, err := newTestEngine().Reschedule(snap, mine, "2026-03-11", "11:00 AM")
	assert.ErrorIs(t, err, records.ErrSlotConflict)

	moved, err := newTestEngine().Reschedule(snap, mine, "2026-03-11", "12:00 PM")
	require.NoError(t, err)
	assert.Equal(t, "12:00 PM", moved.Time)
	assert.Equal(t, "10:00 AM", mine.Time, "input appointment must not be mutated")
}

func TestReschedulePastDateAndUnknownDoctor(t *testing.T) {
	snap := baseSnapshot()
	existing := records.Appointment{ID: "1", DoctorID: "d1", Date: "2026-03-11", Time: "10:00 AM"}

	_, err := newTestEngine().Reschedule(snap, existing, "2026-01-01", "10:00 AM")
	assert.ErrorIs(t, err, records.ErrPastDate)

	orphan := records.Appointment{ID: "9", DoctorID: "gone", Date: "2026-03-11", Time: "10:00 AM"}
	_, err = newTestEngine().Reschedule(snap, orphan, "2026-03-12", "10:00 AM")
	assert.ErrorIs(t, err, records.ErrNotFound)
}

func TestAvailableSlots(t *testing.T) {
	snap := baseSnapshot()
	snap.Appointments = []records.Appointment{
		{ID: "1", DoctorID: "d1", Date: "2026-03-11", Time: "11:00 AM"},
		{ID: "2", DoctorID: "d2", Date: "2026-03-11", Time: "10:00 AM"},
	}
	free := newTestEngine().AvailableSlots(snap.Doctors[0], "2026-03-11", snap.Appointments)
	assert.Equal(t, []string{"10:00 AM", "12:00 PM"}, free)
}

func TestIsSlotTaken(t *testing.T) {
	appts := []records.Appointment{{ID: "1", DoctorID: "d1", Date: "2026-03-11", Time: "10:00 AM"}}
	assert.True(t, IsSlotTaken(appts, "d1", "2026-03-11", "10:00 AM", ""))
	assert.False(t, IsSlotTaken(appts, "d1", "2026-03-11", "10:00 AM", "1"))
	assert.False(t, IsSlotTaken(appts, "d2", "2026-03-11", "10:00 AM", ""))
	assert.False(t, IsSlotTaken(appts, "d1", "2026-03-12", "10:00 AM", ""))
}
