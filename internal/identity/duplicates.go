package identity

import (
	"strings"

	"github.com/wolfman30/medspa-frontdesk/internal/records"
)

// Policy decides when two patient submissions are the same person.
type Policy string

const (
	// PolicyNameContact matches on normalized name plus contact number.
	PolicyNameContact Policy = "name_contact"
	// PolicyNameEmail matches on normalized name plus normalized email, only when an email is given.
	PolicyNameEmail Policy = "name_email"
	// PolicyEither applies both rules, contact first.
	PolicyEither Policy = "either"
)

// ParsePolicy maps a config value to a Policy, defaulting to name_contact.
func ParsePolicy(v string) Policy {
	switch Policy(strings.ToLower(strings.TrimSpace(v))) {
	case PolicyNameEmail:
		return PolicyNameEmail
	case PolicyEither:
		return PolicyEither
	default:
		return PolicyNameContact
	}
}

// Resolver finds duplicate patients under a policy.
type Resolver struct {
	policy Policy
}

// NewResolver creates a resolver for policy.
func NewResolver(policy Policy) *Resolver {
	return &Resolver{policy: policy}
}

// Policy reports the active policy.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// FindDuplicatePatient returns a *records.DuplicateRecordError naming the first
// existing patient that collides with candidate, ignoring excludeID.
func (r *Resolver) FindDuplicatePatient(candidate records.PatientInput, existing []records.Patient, excludeID string) error {
	name := NormalizeName(candidate.Name)
	contact := strings.TrimSpace(candidate.Contact)
	email := NormalizeEmail(candidate.Email)

	checkContact := r.policy == PolicyNameContact || r.policy == PolicyEither
	checkEmail := (r.policy == PolicyNameEmail || r.policy == PolicyEither) && email != ""

	if checkContact {
		for _, p := range existing {
			if p.ID == excludeID {
				continue
			}
			if NormalizeName(p.Name) == name && strings.TrimSpace(p.Contact) == contact {
				return &records.DuplicateRecordError{ConflictingID: p.ID, Field: "contact"}
			}
		}
	}
	if checkEmail {
		for _, p := range existing {
			if p.ID == excludeID {
				continue
			}
			if NormalizeName(p.Name) == name && NormalizeEmail(p.Email) == email {
				return &records.DuplicateRecordError{ConflictingID: p.ID, Field: "email"}
			}
		}
	}
	return nil
}

// NormalizeName lowercases and collapses whitespace.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// NormalizeEmail trims and lowercases.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
