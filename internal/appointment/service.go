package appointment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/scheduling/internal/notify"
	redisclient "github.com/clinicdesk/scheduling/internal/redis"
	"github.com/clinicdesk/scheduling/internal/schedule"
)

var (
	ErrSlotUnavailable = errors.New("slot is no longer available")
	ErrScheduleBusy    = errors.New("schedule is currently being modified, please retry")
)

// PatientFields are the identity fields a booking carries. Editing an
// appointment may change these and nothing else.
type PatientFields struct {
	FullName string
	Gender   string
	Age      int
	Phone    string
	Message  string
}

type Service struct {
	repo      Repository
	schedules schedule.Repository
	locker    redisclient.Locker
	notifier  notify.Notifier
}

func NewService(repo Repository, schedules schedule.Repository, locker redisclient.Locker, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:      repo,
		schedules: schedules,
		locker:    locker,
		notifier:  notifier,
	}
}

// Create books a slot for a patient. The claim runs under the per-schedule
// lock with a fresh read of the slot, and the storage layer re-checks the
// status on write, so two racing requests for the same slot produce exactly
// one appointment; the loser gets ErrSlotUnavailable and no writes.
func (s *Service) Create(ctx context.Context, doctorID, scheduleID, slotID uuid.UUID, patient PatientFields) (*Appointment, error) {
	doctor, err := s.schedules.GetDoctorByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	sched, err := s.schedules.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	// A schedule is only addressable through its own doctor; otherwise the
	// stored appointment and the notification would name the wrong one.
	if sched.DoctorID != doctorID {
		return nil, schedule.ErrScheduleNotFound
	}
	if slot := sched.FindSlot(slotID); slot == nil {
		return nil, schedule.ErrSlotNotFound
	}

	var (
		created *Appointment
		booked  schedule.Slot
	)

	err = s.locker.WithScheduleLock(ctx, schedule.LockKey(sched.DoctorID, sched.Date), func(lockCtx context.Context) error {
		// Re-read inside the critical section; the pre-check above may be stale.
		fresh, err := s.schedules.GetScheduleByID(lockCtx, scheduleID)
		if err != nil {
			return err
		}
		slot := fresh.FindSlot(slotID)
		if slot == nil {
			return schedule.ErrSlotNotFound
		}

		appt := &Appointment{
			ID:         uuid.New(),
			FullName:   patient.FullName,
			Gender:     patient.Gender,
			Age:        patient.Age,
			Phone:      patient.Phone,
			Message:    patient.Message,
			DoctorID:   doctorID,
			ScheduleID: fresh.ID,
			SlotID:     slotID,
		}

		if err := schedule.Claim(slot, appt.ID); err != nil {
			return err
		}
		if err := s.repo.CreateWithClaim(lockCtx, appt); err != nil {
			return err
		}

		created = appt
		booked = *slot
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrSlotTaken):
			return nil, ErrSlotUnavailable
		case errors.Is(err, redisclient.ErrLockNotAcquired):
			return nil, ErrScheduleBusy
		}
		return nil, err
	}

	s.announceBooking(doctor, sched.Date, booked, created)

	return created, nil
}

// announceBooking fires the admin notification off the request path. A
// failed send is logged and swallowed; the booking already happened.
func (s *Service) announceBooking(doctor *schedule.Doctor, date time.Time, slot schedule.Slot, appt *Appointment) {
	b := notify.Booking{
		PatientName:      appt.FullName,
		Phone:            appt.Phone,
		DoctorName:       doctor.Name,
		DoctorDepartment: doctor.Department,
		AppointmentDate:  FormatAppointmentDate(date, slot.StartMin),
		Message:          appt.Message,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := s.notifier.BookingRequested(ctx, b); err != nil {
			log.Printf("booking notification failed for appointment %s: %v", appt.ID, err)
		}
	}()
}

// Edit updates the patient-identity fields of an existing appointment. The
// slot binding is never re-targeted.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, patient PatientFields) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	appt.FullName = patient.FullName
	appt.Gender = patient.Gender
	appt.Age = patient.Age
	appt.Phone = patient.Phone
	appt.Message = patient.Message

	if err := s.repo.UpdatePatientFields(ctx, appt); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return appt, nil
}

// Confirm moves the appointment's slot from Pending to Confirmed.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) error {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	sched, err := s.schedules.GetScheduleByID(ctx, appt.ScheduleID)
	if err != nil {
		return err
	}

	return s.locker.WithScheduleLock(ctx, schedule.LockKey(sched.DoctorID, sched.Date), func(lockCtx context.Context) error {
		fresh, err := s.schedules.GetScheduleByID(lockCtx, appt.ScheduleID)
		if err != nil {
			return err
		}
		slot := fresh.FindSlot(appt.SlotID)
		if slot == nil {
			return schedule.ErrSlotNotFound
		}
		if err := schedule.Confirm(slot); err != nil {
			return err
		}
		return s.repo.ConfirmSlot(lockCtx, appt.ScheduleID, appt.SlotID, appt.ID)
	})
}

// Delete releases the slot back to Available and removes the appointment,
// as one transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	sched, err := s.schedules.GetScheduleByID(ctx, appt.ScheduleID)
	if err != nil {
		return err
	}

	return s.locker.WithScheduleLock(ctx, schedule.LockKey(sched.DoctorID, sched.Date), func(lockCtx context.Context) error {
		return s.repo.DeleteWithRelease(lockCtx, appt)
	})
}

// ListPending returns every booking still awaiting confirmation, for the
// admin review screen.
func (s *Service) ListPending(ctx context.Context) ([]PendingBooking, error) {
	bookings, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending bookings: %w", err)
	}
	return bookings, nil
}
