// Package query joins appointments to patients, doctors and departments and
// projects the rows shown in the front-desk tables and exports.
package query

import (
	"strings"
	"time"

	"github.com/wolfman30/medspa-frontdesk/internal/booking"
	"github.com/wolfman30/medspa-frontdesk/internal/records"
)

// Unknown is displayed for foreign keys that no longer resolve.
const Unknown = "Unknown"

// Appointment status labels.
const (
	StatusToday     = "Today"
	StatusUpcoming  = "Upcoming"
	StatusCompleted = "Completed"
)

// Options carries the clock and display settings for projections.
type Options struct {
	Now          time.Time
	Location     *time.Location
	StatusLabels bool
}

// AppointmentRow is one line of the appointments table.
type AppointmentRow struct {
	Number       int    `json:"number"`
	ID           string `json:"id"`
	PatientID    string `json:"patientId"`
	Patient      string `json:"patient"`
	Contact      string `json:"contact"`
	DepartmentID string `json:"departmentId"`
	Department   string `json:"department"`
	DoctorID     string `json:"doctorId"`
	Doctor       string `json:"doctor"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Status       string `json:"status,omitempty"`
}

// PatientRow is one line of the patient records table.
type PatientRow struct {
	Number int `json:"number"`
	records.Patient
}

// Booking is an appointment of a single patient with names resolved.
type Booking struct {
	ID         string `json:"id"`
	Department string `json:"department"`
	Doctor     string `json:"doctor"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status,omitempty"`
}

// Summary holds the dashboard counters.
type Summary struct {
	Patients     int `json:"patients"`
	Appointments int `json:"appointments"`
	Today        int `json:"today"`
	Upcoming     int `json:"upcoming"`
	Completed    int `json:"completed"`
}

// Joined is an appointment with its references looked up. Missing references
// leave the corresponding Found flag false.
type Joined struct {
	records.Appointment
	Patient         records.Patient
	PatientFound    bool
	Department      records.Department
	DepartmentFound bool
	Doctor          records.Doctor
	DoctorFound     bool
}

// Join resolves every appointment in insertion order.
func Join(snap records.Snapshot) []Joined {
	patients := make(map[string]records.Patient, len(snap.Patients))
	for _, p := range snap.Patients {
		patients[p.ID] = p
	}
	deps := make(map[string]records.Department, len(snap.Departments))
	for _, d := range snap.Departments {
		deps[d.ID] = d
	}
	docs := make(map[string]records.Doctor, len(snap.Doctors))
	for _, d := range snap.Doctors {
		docs[d.ID] = d
	}

	out := make([]Joined, len(snap.Appointments))
	for i, a := range snap.Appointments {
		j := Joined{Appointment: a}
		j.Patient, j.PatientFound = patients[a.PatientID]
		j.Department, j.DepartmentFound = deps[a.DepartmentID]
		j.Doctor, j.DoctorFound = docs[a.DoctorID]
		out[i] = j
	}
	return out
}

// AppointmentRows builds the appointments table. Number is the position in
// the full collection, so filtered rows keep their original numbering.
func AppointmentRows(snap records.Snapshot, search string, opts Options) []AppointmentRow {
	needle := normalizeSearch(search)
	rows := make([]AppointmentRow, 0, len(snap.Appointments))
	for i, j := range Join(snap) {
		row := AppointmentRow{
			Number:       i + 1,
			ID:           j.ID,
			PatientID:    j.PatientID,
			Patient:      nameOr(j.Patient.Name, j.PatientFound, Unknown),
			Contact:      nameOr(j.Patient.Contact, j.PatientFound, ""),
			DepartmentID: j.DepartmentID,
			Department:   nameOr(j.Department.Name, j.DepartmentFound, Unknown),
			DoctorID:     j.DoctorID,
			Doctor:       nameOr(j.Doctor.Name, j.DoctorFound, Unknown),
			Date:         j.Date,
			Time:         j.Time,
		}
		if !row.matches(needle) {
			continue
		}
		if opts.StatusLabels {
			row.Status = Status(j.Date, opts.Now, opts.Location)
		}
		rows = append(rows, row)
	}
	return rows
}

func (r AppointmentRow) matches(needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Patient), needle) ||
		strings.Contains(strings.ToLower(r.Department), needle) ||
		strings.Contains(strings.ToLower(r.Doctor), needle) ||
		strings.Contains(strings.ToLower(r.Date), needle)
}

// PatientRows builds the records table, matching the search against name,
// contact, email and address. Rows are numbered after filtering.
func PatientRows(patients []records.Patient, search string) []PatientRow {
	needle := normalizeSearch(search)
	rows := make([]PatientRow, 0, len(patients))
	for _, p := range patients {
		blob := strings.ToLower(strings.Join([]string{p.Name, p.Contact, p.Email, p.Address}, " "))
		if needle != "" && !strings.Contains(blob, needle) {
			continue
		}
		rows = append(rows, PatientRow{Number: len(rows) + 1, Patient: p})
	}
	return rows
}

// PatientBookings lists the appointments held by one patient.
func PatientBookings(snap records.Snapshot, patientID string, opts Options) []Booking {
	out := make([]Booking, 0)
	for _, j := range Join(snap) {
		if j.PatientID != patientID {
			continue
		}
		b := Booking{
			ID:         j.ID,
			Department: nameOr(j.Department.Name, j.DepartmentFound, Unknown),
			Doctor:     nameOr(j.Doctor.Name, j.DoctorFound, Unknown),
			Date:       j.Date,
			Time:       j.Time,
		}
		if opts.StatusLabels {
			b.Status = Status(j.Date, opts.Now, opts.Location)
		}
		out = append(out, b)
	}
	return out
}

// Status labels an appointment date relative to today in loc. Dates that do
// not parse count as completed.
func Status(date string, now time.Time, loc *time.Location) string {
	picked, err := booking.ParseDate(date, loc)
	if err != nil {
		return StatusCompleted
	}
	today := booking.StartOfDay(now, loc)
	switch {
	case picked.Equal(today):
		return StatusToday
	case picked.After(today):
		return StatusUpcoming
	default:
		return StatusCompleted
	}
}

// Summarize counts records for the dashboard.
func Summarize(snap records.Snapshot, opts Options) Summary {
	s := Summary{Patients: len(snap.Patients), Appointments: len(snap.Appointments)}
	for _, a := range snap.Appointments {
		switch Status(a.Date, opts.Now, opts.Location) {
		case StatusToday:
			s.Today++
		case StatusUpcoming:
			s.Upcoming++
		default:
			s.Completed++
		}
	}
	return s
}

func normalizeSearch(search string) string {
	return strings.ToLower(strings.TrimSpace(search))
}

func nameOr(name string, found bool, fallback string) string {
	if !found {
		return fallback
	}
	return name
}
