package frontdesk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medspa-frontdesk/internal/notify"
	"github.com/wolfman30/medspa-frontdesk/internal/records"
	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

const racers = 40

func TestConcurrentBookingsOfOneSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p, err := h.svc.RegisterPatient(ctx, jane())
	require.NoError(t, err)

	in := records.BookingInput{PatientID: p.ID, DepartmentID: "dep1", DoctorID: "d1", Date: tomorrow, Time: "09:00 AM"}
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		booked    int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := h.svc.BookAppointment(ctx, in)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, records.ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, booked)
	assert.Equal(t, racers-1, conflicts)
	appts, err := h.store.Appointments(ctx)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestConcurrentDuplicateRegistrations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		registered int
		duplicates int
	)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := h.svc.RegisterPatient(ctx, jane())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				registered++
			case errors.Is(err, records.ErrDuplicate):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, registered)
	assert.Equal(t, racers-1, duplicates)
	patients, err := h.store.Patients(ctx)
	require.NoError(t, err)
	assert.Len(t, patients, 1)
}

func TestSlowConfirmationDoesNotBlockOtherMutations(t *testing.T) {
	sender := newBlockingSender()
	h := newHarness(t, func(c *Config) {
		c.Confirmer = notify.NewConfirmer(sender, "Sunrise Clinic", logging.Discard())
	})
	ctx := context.Background()
	p, err := h.svc.RegisterPatient(ctx, jane())
	require.NoError(t, err)

	booked := make(chan error, 1)
	go func() {
		_, err := h.svc.BookAppointment(ctx, records.BookingInput{PatientID: p.ID, DepartmentID: "dep1", DoctorID: "d1", Date: tomorrow, Time: "10:00 AM"})
		booked <- err
	}()
	select {
	case <-sender.started:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation was never sent")
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.RegisterPatient(ctx, records.PatientInput{Name: "John Roe", Age: "41", Gender: "M", Contact: "9990001111"})
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		close(sender.release)
		t.Fatal("registration waited behind a pending confirmation email")
	}

	close(sender.release)
	require.NoError(t, <-booked)
}
