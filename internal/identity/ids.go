// Package identity assigns record identifiers and detects duplicate patients.
package identity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/wolfman30/medspa-frontdesk/internal/records"
)

// Strategy selects how new identifiers are minted.
type Strategy string

const (
	// StrategyPrefixed mints "p_3f9c0a1b2c4d" style tokens.
	StrategyPrefixed Strategy = "prefixed"
	// StrategySequential mints max(existing numeric id)+1.
	StrategySequential Strategy = "sequential"
)

// ParseStrategy maps a config value to a Strategy, defaulting to prefixed.
func ParseStrategy(v string) Strategy {
	if Strategy(strings.ToLower(strings.TrimSpace(v))) == StrategySequential {
		return StrategySequential
	}
	return StrategyPrefixed
}

const maxDraws = 8

// Generator mints identifiers that are unique within a collection.
type Generator struct {
	strategy Strategy
	random   func() string
}

// NewGenerator creates a generator for the given strategy.
func NewGenerator(strategy Strategy) *Generator {
	return &Generator{strategy: strategy, random: uuid.NewString}
}

// Strategy reports the generator's strategy.
func (g *Generator) Strategy() Strategy {
	return g.strategy
}

// Next returns an id for kind that does not appear in existing.
func (g *Generator) Next(kind records.Kind, existing []string) (string, error) {
	if g.strategy == StrategySequential {
		return nextSequential(existing), nil
	}

	taken := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		taken[id] = struct{}{}
	}
	for i := 0; i < maxDraws; i++ {
		id := prefix(kind) + "_" + strings.ReplaceAll(g.random(), "-", "")[:12]
		if _, clash := taken[id]; !clash {
			return id, nil
		}
	}
	return "", fmt.Errorf("identity: could not mint a unique %s id", kind)
}

func nextSequential(existing []string) string {
	highest := 0
	for _, id := range existing {
		if n, err := strconv.Atoi(id); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

func prefix(kind records.Kind) string {
	switch kind {
	case records.KindPatient:
		return "p"
	case records.KindAppointment:
		return "a"
	default:
		return string(kind)[:1]
	}
}

// PatientIDs lists the ids in a patient collection.
func PatientIDs(patients []records.Patient) []string {
	ids := make([]string, 0, len(patients))
	for _, p := range patients {
		ids = append(ids, p.ID)
	}
	return ids
}

// AppointmentIDs lists the ids in an appointment collection.
func AppointmentIDs(appts []records.Appointment) []string {
	ids := make([]string, 0, len(appts))
	for _, a := range appts {
		ids = append(ids, a.ID)
	}
	return ids
}
