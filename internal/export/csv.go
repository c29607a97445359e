// Package export renders the appointment table as CSV and archives exports to S3.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/medspa-frontdesk/internal/query"
	"github.com/wolfman30/medspa-frontdesk/internal/records"
)

// ContentType of every export.
const ContentType = "text/csv;charset=utf-8"

var (
	baseColumns   = []string{"AppointmentID", "Patient", "Contact", "Department", "Doctor", "Date", "Time"}
	statusColumns = append(append([]string(nil), baseColumns...), "Status")
)

// Export is a rendered CSV file.
type Export struct {
	FileName    string
	Data        []byte
	Rows        int
	GeneratedAt time.Time
}

// Columns returns the header for the given status setting.
func Columns(statusLabels bool) []string {
	if statusLabels {
		return append([]string(nil), statusColumns...)
	}
	return append([]string(nil), baseColumns...)
}

// FileName is appointments_<YYYY-MM-DD>.csv using the UTC date of t.
func FileName(t time.Time) string {
	return fmt.Sprintf("appointments_%s.csv", t.UTC().Format("2006-01-02"))
}

// Appointments renders every appointment in insertion order. Unresolved
// patients, departments and doctors export as empty fields. The header is
// always written, even when there are no appointments.
func Appointments(snap records.Snapshot, opts query.Options) Export {
	header := Columns(opts.StatusLabels)
	lines := make([]string, 0, len(snap.Appointments)+1)
	lines = append(lines, strings.Join(header, ","))

	for _, j := range query.Join(snap) {
		fields := []string{
			j.ID,
			pick(j.Patient.Name, j.PatientFound),
			pick(j.Patient.Contact, j.PatientFound),
			pick(j.Department.Name, j.DepartmentFound),
			pick(j.Doctor.Name, j.DoctorFound),
			j.Date,
			j.Time,
		}
		if opts.StatusLabels {
			fields = append(fields, query.Status(j.Date, opts.Now, opts.Location))
		}
		lines = append(lines, quoteAll(fields))
	}

	return Export{
		FileName:    FileName(opts.Now),
		Data:        []byte(strings.Join(lines, "\n")),
		Rows:        len(snap.Appointments),
		GeneratedAt: opts.Now,
	}
}

// quoteAll wraps every field in double quotes and doubles inner quotes.
func quoteAll(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	return b.String()
}

func pick(v string, found bool) string {
	if !found {
		return ""
	}
	return v
}
