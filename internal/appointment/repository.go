package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service. The
// multi-step mutations (claim+insert, release+delete) are each one
// transaction so a crash can never leave a slot half-booked.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// CreateWithClaim inserts the appointment and flips its slot
	// Available→Pending in one transaction. The flip is a conditional
	// update guarded on the stored status still being Available; when the
	// guard matches no row, everything rolls back and the error is
	// schedule.ErrSlotTaken.
	CreateWithClaim(ctx context.Context, appt *Appointment) error

	// UpdatePatientFields overwrites the patient-identity fields only; the
	// slot binding is never touched.
	UpdatePatientFields(ctx context.Context, appt *Appointment) error

	// ConfirmSlot flips the bound slot Pending→Confirmed, conditional on
	// it still being Pending and bound to this appointment.
	// schedule.ErrInvalidTransition when the guard matches no row.
	ConfirmSlot(ctx context.Context, scheduleID, slotID, appointmentID uuid.UUID) error

	// DeleteWithRelease releases the slot back to Available and removes the
	// appointment row in one transaction, release first.
	DeleteWithRelease(ctx context.Context, appt *Appointment) error

	ListPending(ctx context.Context) ([]PendingBooking, error)
}
