// Package validation holds the field-level rules applied to patient forms.
// Every rule is pure and ignores storage state.
package validation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wolfman30/medspa-frontdesk/internal/records"
)

var (
	namePattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z\s]+$`)
	contactPattern = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const maxAge = 130

var allowedGenders = map[string]struct{}{
	"male":   {},
	"female": {},
	"other":  {},
	"m":      {},
	"f":      {},
	"o":      {},
}

// Name accepts letters and internal spaces, at least two characters after trimming.
func Name(raw string) bool {
	return namePattern.MatchString(strings.TrimSpace(raw))
}

// Age accepts an integer strictly between 0 and 130.
func Age(raw string) bool {
	_, ok := ParseAge(raw)
	return ok
}

// ParseAge returns the parsed age when it satisfies Age.
func ParseAge(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 || n >= maxAge {
		return 0, false
	}
	return n, true
}

// Gender accepts a non-empty selection from the allowed set, case-insensitively.
func Gender(raw string) bool {
	_, ok := allowedGenders[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Contact accepts exactly ten digits after trimming.
func Contact(raw string) bool {
	return contactPattern.MatchString(strings.TrimSpace(raw))
}

// Email accepts the empty string (not provided) or a local@domain.tld shape.
func Email(raw string) bool {
	v := strings.TrimSpace(raw)
	return v == "" || emailPattern.MatchString(v)
}

// Patient checks every field in form order and returns the first failure as a
// *records.ValidationError.
func Patient(in records.PatientInput) error {
	switch {
	case !Name(in.Name):
		return records.Invalid("name", "Enter a valid name")
	case !Age(in.Age):
		return records.Invalid("age", "Age must be greater than 0")
	case !Gender(in.Gender):
		return records.Invalid("gender", "Please select gender")
	case !Contact(in.Contact):
		return records.Invalid("contact", "Contact must be 10 digits")
	case !Email(in.Email):
		return records.Invalid("email", "Enter a valid email")
	}
	return nil
}
