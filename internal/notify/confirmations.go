package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

// Confirmation describes a booked or moved appointment for the patient email.
type Confirmation struct {
	PatientName   string
	PatientEmail  string
	AppointmentID string
	Doctor        string
	Department    string
	Date          string
	Time          string
	Rescheduled   bool
}

// Confirmer emails appointment confirmations to patients who gave an address.
type Confirmer struct {
	sender EmailSender
	clinic string
	logger *logging.Logger
}

// NewConfirmer creates a confirmer that signs emails with clinicName.
func NewConfirmer(sender EmailSender, clinicName string, logger *logging.Logger) *Confirmer {
	if logger == nil {
		logger = logging.Default()
	}
	if clinicName == "" {
		clinicName = "the clinic"
	}
	return &Confirmer{sender: sender, clinic: clinicName, logger: logger}
}

// Send delivers the confirmation. Patients without an email are skipped and
// report false.
func (c *Confirmer) Send(ctx context.Context, conf Confirmation) (bool, error) {
	if c == nil || c.sender == nil || strings.TrimSpace(conf.PatientEmail) == "" {
		return false, nil
	}
	if err := c.sender.Send(ctx, c.message(conf)); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Confirmer) message(conf Confirmation) EmailMessage {
	verb := "booked"
	if conf.Rescheduled {
		verb = "rescheduled"
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment at %s has been %s.\n\nDoctor: %s\nDepartment: %s\nDate: %s\nTime: %s\nReference: %s\n",
		conf.PatientName, c.clinic, verb, conf.Doctor, conf.Department, conf.Date, conf.Time, conf.AppointmentID,
	)
	return EmailMessage{
		To:      strings.TrimSpace(conf.PatientEmail),
		ToName:  conf.PatientName,
		Subject: fmt.Sprintf("Appointment %s: %s at %s", verb, conf.Date, conf.Time),
		Body:    body,
	}
}
