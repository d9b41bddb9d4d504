package schedule

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrSlotTaken         = errors.New("slot is already pending or confirmed")
	ErrInvalidTransition = errors.New("invalid slot status transition")
)

// Claim moves an Available slot to Pending and binds the appointment to it.
// Any other starting status is ErrSlotTaken: losing the booking race is a
// normal negative outcome, not a fault.
//
// Claim, Confirm and Release mutate only the in-memory slot; persisting the
// transition, under the per-schedule lock and with a conditional write on
// the stored status, is the caller's responsibility.
func Claim(s *Slot, appointmentID uuid.UUID) error {
	if s.Status != StatusAvailable {
		return ErrSlotTaken
	}
	ref := appointmentID
	s.Status = StatusPending
	s.AppointmentID = &ref
	return nil
}

// Confirm moves a Pending slot to Confirmed. There is no direct path from
// Available to Confirmed.
func Confirm(s *Slot) error {
	if s.Status != StatusPending {
		return ErrInvalidTransition
	}
	s.Status = StatusConfirmed
	return nil
}

// Release returns a slot to Available and clears its appointment binding.
// Idempotent: releasing an already-Available slot is a no-op.
func Release(s *Slot) {
	s.Status = StatusAvailable
	s.AppointmentID = nil
}
