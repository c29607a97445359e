// Package records defines the persisted front-desk record schemas and the
// error taxonomy shared by every component that reads or mutates them.
package records

import "time"

// Collection keys used by the store.
const (
	KeyPatients                = "patients"
	KeyAppointments            = "appointments"
	KeyDepartments             = "departments"
	KeyDoctors                 = "doctors"
	KeyLastRegisteredPatientID = "lastRegisteredPatientId"
)

// Kind names a record collection. It appears in NotFoundError and drives id prefixes.
type Kind string

const (
	KindPatient     Kind = "patient"
	KindAppointment Kind = "appointment"
	KindDepartment  Kind = "department"
	KindDoctor      Kind = "doctor"
)

// Patient is a registered clinic patient.
type Patient struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Age       int        `json:"age"`
	Gender    string     `json:"gender"`
	Contact   string     `json:"contact"`
	Email     string     `json:"email,omitempty"`
	Address   string     `json:"address,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// PatientInput is the raw registration/edit form as submitted by the caller.
// Age stays a string so the validator sees exactly what was typed.
type PatientInput struct {
	Name    string `json:"name"`
	Age     string `json:"age"`
	Gender  string `json:"gender"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Appointment books a doctor's slot on a calendar date for a patient.
// DepartmentID is stored as submitted and is not re-derived from the doctor.
type Appointment struct {
	ID           string     `json:"id"`
	PatientID    string     `json:"patientId"`
	DepartmentID string     `json:"departmentId"`
	DoctorID     string     `json:"doctorId"`
	Date         string     `json:"date"` // YYYY-MM-DD
	Time         string     `json:"time"` // one of the doctor's slot labels
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// BookingInput is the raw booking form.
type BookingInput struct {
	PatientID    string `json:"patientId"`
	DepartmentID string `json:"departmentId"`
	DoctorID     string `json:"doctorId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

// Department is read-only reference data.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Doctor is read-only reference data. Slots are ordered labels such as "10:00 AM".
type Doctor struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	DepartmentID string   `json:"departmentId"`
	Slots        []string `json:"slots"`
}

// HasSlot reports whether label is one of the doctor's slots.
func (d Doctor) HasSlot(label string) bool {
	for _, s := range d.Slots {
		if s == label {
			return true
		}
	}
	return false
}

// Snapshot is a point-in-time copy of every collection. Nothing in a snapshot
// aliases what the store holds, so callers may modify it freely.
type Snapshot struct {
	Patients     []Patient
	Appointments []Appointment
	Departments  []Department
	Doctors      []Doctor
}

// FindPatient returns the patient with id, if any.
func (s Snapshot) FindPatient(id string) (Patient, bool) {
	for _, p := range s.Patients {
		if p.ID == id {
			return p, true
		}
	}
	return Patient{}, false
}

// FindAppointment returns the appointment with id, if any.
func (s Snapshot) FindAppointment(id string) (Appointment, bool) {
	for _, a := range s.Appointments {
		if a.ID == id {
			return a, true
		}
	}
	return Appointment{}, false
}

// FindDepartment returns the department with id, if any.
func (s Snapshot) FindDepartment(id string) (Department, bool) {
	for _, d := range s.Departments {
		if d.ID == id {
			return d, true
		}
	}
	return Department{}, false
}

// FindDoctor returns the doctor with id, if any.
func (s Snapshot) FindDoctor(id string) (Doctor, bool) {
	for _, d := range s.Doctors {
		if d.ID == id {
			return d, true
		}
	}
	return Doctor{}, false
}
