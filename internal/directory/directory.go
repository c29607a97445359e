// Package directory supplies the clinic's department and doctor reference data.
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wolfman30/medspa-frontdesk/internal/records"
)

// Directory is the read-only reference data the booking flow resolves against.
type Directory struct {
	Departments []records.Department `json:"departments"`
	Doctors     []records.Doctor     `json:"doctors"`
}

var standardSlots = []string{"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM", "02:00 PM", "03:00 PM", "04:00 PM"}

// Default returns the built-in clinic directory used when no file is configured.
func Default() Directory {
	morning := standardSlots[:4]
	afternoon := standardSlots[4:]
	return Directory{
		Departments: []records.Department{
			{ID: "dep1", Name: "General Medicine"},
			{ID: "dep2", Name: "Cardiology"},
			{ID: "dep3", Name: "Dermatology"},
			{ID: "dep4", Name: "Orthopedics"},
		},
		Doctors: []records.Doctor{
			{ID: "d1", Name: "Dr. Meera Iyer", DepartmentID: "dep1", Slots: clone(standardSlots)},
			{ID: "d2", Name: "Dr. Arjun Rao", DepartmentID: "dep1", Slots: clone(morning)},
			{ID: "d3", Name: "Dr. Kavita Shah", DepartmentID: "dep2", Slots: clone(standardSlots)},
			{ID: "d4", Name: "Dr. Samuel Green", DepartmentID: "dep3", Slots: clone(afternoon)},
			{ID: "d5", Name: "Dr. Laura Chen", DepartmentID: "dep4", Slots: clone(morning)},
		},
	}
}

// LoadFile reads a directory from a JSON file shaped like
// {"departments": [...], "doctors": [...]}.
func LoadFile(path string) (Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Directory{}, fmt.Errorf("directory: read %s: %w", path, err)
	}
	var dir Directory
	if err := json.Unmarshal(data, &dir); err != nil {
		return Directory{}, fmt.Errorf("directory: decode %s: %w", path, err)
	}
	if err := dir.Validate(); err != nil {
		return Directory{}, err
	}
	return dir, nil
}

// Load returns the directory at path, or Default when path is empty.
func Load(path string) (Directory, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Validate checks ids are present and unique and that every doctor belongs
// to a known department and offers at least one slot.
func (d Directory) Validate() error {
	deps := make(map[string]struct{}, len(d.Departments))
	for i, dep := range d.Departments {
		if strings.TrimSpace(dep.ID) == "" {
			return fmt.Errorf("directory: department at position %d has no id", i)
		}
		if _, dup := deps[dep.ID]; dup {
			return fmt.Errorf("directory: duplicate department id %q", dep.ID)
		}
		deps[dep.ID] = struct{}{}
	}
	docs := make(map[string]struct{}, len(d.Doctors))
	for i, doc := range d.Doctors {
		if strings.TrimSpace(doc.ID) == "" {
			return fmt.Errorf("directory: doctor at position %d has no id", i)
		}
		if _, dup := docs[doc.ID]; dup {
			return fmt.Errorf("directory: duplicate doctor id %q", doc.ID)
		}
		docs[doc.ID] = struct{}{}
		if _, ok := deps[doc.DepartmentID]; !ok {
			return fmt.Errorf("directory: doctor %q references unknown department %q", doc.ID, doc.DepartmentID)
		}
		if len(doc.Slots) == 0 {
			return fmt.Errorf("directory: doctor %q has no slots", doc.ID)
		}
	}
	return nil
}

// DoctorsIn returns the doctors of one department in directory order.
func DoctorsIn(doctors []records.Doctor, departmentID string) []records.Doctor {
	out := make([]records.Doctor, 0, len(doctors))
	for _, doc := range doctors {
		if doc.DepartmentID == departmentID {
			out = append(out, doc)
		}
	}
	return out
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
