package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wolfman30/medspa-frontdesk/internal/records"
	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

// Store is the typed adapter over a KV backend. It holds no collection state
// of its own: every read decodes a fresh copy from the backend.
type Store struct {
	kv     KV
	logger *logging.Logger
}

// New wraps a backend.
func New(kv KV, logger *logging.Logger) *Store {
	if kv == nil {
		panic("store: backend required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Patients loads the patient collection.
func (s *Store) Patients(ctx context.Context) ([]records.Patient, error) {
	var out []records.Patient
	if err := s.load(ctx, records.KeyPatients, &out); err != nil {
		return nil, err
	}
	ids := make([]string, len(out))
	for i, p := range out {
		ids[i] = p.ID
	}
	if err := checkIDs(records.KindPatient, ids); err != nil {
		return nil, err
	}
	return out, nil
}

// Appointments loads the appointment collection in insertion order.
func (s *Store) Appointments(ctx context.Context) ([]records.Appointment, error) {
	var out []records.Appointment
	if err := s.load(ctx, records.KeyAppointments, &out); err != nil {
		return nil, err
	}
	ids := make([]string, len(out))
	for i, a := range out {
		ids[i] = a.ID
	}
	if err := checkIDs(records.KindAppointment, ids); err != nil {
		return nil, err
	}
	return out, nil
}

// Departments loads the department reference data.
func (s *Store) Departments(ctx context.Context) ([]records.Department, error) {
	var out []records.Department
	if err := s.load(ctx, records.KeyDepartments, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Doctors loads the doctor reference data.
func (s *Store) Doctors(ctx context.Context) ([]records.Doctor, error) {
	var out []records.Doctor
	if err := s.load(ctx, records.KeyDoctors, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Snapshot loads every collection.
func (s *Store) Snapshot(ctx context.Context) (records.Snapshot, error) {
	var (
		snap records.Snapshot
		err  error
	)
	if snap.Patients, err = s.Patients(ctx); err != nil {
		return records.Snapshot{}, err
	}
	if snap.Appointments, err = s.Appointments(ctx); err != nil {
		return records.Snapshot{}, err
	}
	if snap.Departments, err = s.Departments(ctx); err != nil {
		return records.Snapshot{}, err
	}
	if snap.Doctors, err = s.Doctors(ctx); err != nil {
		return records.Snapshot{}, err
	}
	return snap, nil
}

// LastRegisteredPatientID returns the id remembered for preselecting the
// booking form, or "" when none is stored.
func (s *Store) LastRegisteredPatientID(ctx context.Context) (string, error) {
	var id string
	if err := s.load(ctx, records.KeyLastRegisteredPatientID, &id); err != nil {
		return "", err
	}
	return id, nil
}

// EnsureReferenceData writes departments and doctors unless both are already
// stored. It reports whether anything was written.
func (s *Store) EnsureReferenceData(ctx context.Context, deps []records.Department, docs []records.Doctor) (bool, error) {
	_, depErr := s.kv.Get(ctx, records.KeyDepartments)
	_, docErr := s.kv.Get(ctx, records.KeyDoctors)
	if depErr == nil && docErr == nil {
		return false, nil
	}
	for _, err := range []error{depErr, docErr} {
		if err != nil && !errors.Is(err, ErrKeyNotFound) {
			return false, fmt.Errorf("store: probe reference data: %w", err)
		}
	}
	batch := s.NewBatch().PutDepartments(deps).PutDoctors(docs)
	if err := s.Commit(ctx, batch); err != nil {
		return false, err
	}
	s.logger.Info("store: seeded reference data", "departments", len(deps), "doctors", len(docs))
	return true, nil
}

// Ping checks that the backend answers a read.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.kv.Get(ctx, records.KeyDepartments); err != nil && !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// Batch collects whole-collection replacements for one atomic commit.
type Batch struct {
	writes map[string][]byte
	err    error
}

// NewBatch starts an empty batch.
func (s *Store) NewBatch() *Batch {
	return &Batch{writes: make(map[string][]byte)}
}

// PutPatients replaces the patient collection.
func (b *Batch) PutPatients(patients []records.Patient) *Batch {
	ids := make([]string, len(patients))
	for i, p := range patients {
		ids[i] = p.ID
	}
	if err := checkIDs(records.KindPatient, ids); err != nil {
		b.fail(err)
		return b
	}
	return b.put(records.KeyPatients, nonNil(patients))
}

// PutAppointments replaces the appointment collection.
func (b *Batch) PutAppointments(appts []records.Appointment) *Batch {
	ids := make([]string, len(appts))
	for i, a := range appts {
		ids[i] = a.ID
	}
	if err := checkIDs(records.KindAppointment, ids); err != nil {
		b.fail(err)
		return b
	}
	return b.put(records.KeyAppointments, nonNil(appts))
}

// PutDepartments replaces the department reference data.
func (b *Batch) PutDepartments(deps []records.Department) *Batch {
	return b.put(records.KeyDepartments, nonNil(deps))
}

// PutDoctors replaces the doctor reference data.
func (b *Batch) PutDoctors(docs []records.Doctor) *Batch {
	return b.put(records.KeyDoctors, nonNil(docs))
}

// PutLastRegisteredPatientID remembers the most recently registered patient.
func (b *Batch) PutLastRegisteredPatientID(id string) *Batch {
	return b.put(records.KeyLastRegisteredPatientID, id)
}

// Empty reports whether the batch has nothing to write.
func (b *Batch) Empty() bool {
	return len(b.writes) == 0
}

func (b *Batch) put(key string, v any) *Batch {
	if b.err != nil {
		return b
	}
	data, err := json.Marshal(v)
	if err != nil {
		b.fail(fmt.Errorf("store: marshal %s: %w", key, err))
		return b
	}
	b.writes[key] = data
	return b
}

func (b *Batch) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Commit writes the batch atomically. A batch that failed to build writes nothing.
func (s *Store) Commit(ctx context.Context, b *Batch) error {
	if b == nil || b.Empty() {
		return b.errOrNil()
	}
	if b.err != nil {
		return b.err
	}
	if err := s.kv.Commit(ctx, b.writes); err != nil {
		return err
	}
	s.logger.Debug("store: committed batch", "keys", sortedKeys(b.writes))
	return nil
}

func (b *Batch) errOrNil() error {
	if b == nil {
		return nil
	}
	return b.err
}

func (s *Store) load(ctx context.Context, key string, dst any) error {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

// checkIDs enforces non-empty, unique ids at the storage boundary.
func checkIDs(kind records.Kind, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("store: %s at position %d has no id", kind, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("store: duplicate %s id %q", kind, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
