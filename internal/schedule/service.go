package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/clinicdesk/scheduling/internal/redis"
)

var (
	ErrOverlap          = errors.New("slot range overlaps an existing slot")
	ErrInvalidRange     = errors.New("end time must be after start time")
	ErrInvalidStatus    = errors.New("invalid slot status")
	ErrNoSlotsGenerated = errors.New("no slots generated from the given windows")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
}

func NewService(repo Repository, locker redisclient.Locker) *Service {
	return &Service{repo: repo, locker: locker}
}

// LockKey identifies the mutual-exclusion boundary for one schedule
// aggregate. Keyed by (doctor, date) rather than schedule id so the
// first-creation race and later slot mutations contend on the same lock.
func LockKey(doctorID uuid.UUID, date time.Time) string {
	return doctorID.String() + ":" + NormalizeDate(date).Format("2006-01-02")
}

// CreateSchedule generates slots for every window and appends them to the
// doctor's schedule for that date, creating the aggregate lazily. The whole
// batch is rejected on any overlap; nothing is partially inserted.
func (s *Service) CreateSchedule(ctx context.Context, doctorID uuid.UUID, date time.Time, sessionDuration int, windows []Window) (*Schedule, error) {
	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		return nil, err
	}

	candidates, err := GenerateWindows(windows, sessionDuration)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoSlotsGenerated
	}

	date = NormalizeDate(date)
	var result *Schedule

	err = s.locker.WithScheduleLock(ctx, LockKey(doctorID, date), func(lockCtx context.Context) error {
		sched, err := s.repo.GetScheduleByDoctorAndDate(lockCtx, doctorID, date)
		if err != nil {
			if !errors.Is(err, ErrScheduleNotFound) {
				return fmt.Errorf("load schedule: %w", err)
			}
			sched = &Schedule{ID: uuid.New(), DoctorID: doctorID, Date: date}
		}

		if idx := FirstOverlap(candidates, sched.Slots); idx >= 0 {
			return fmt.Errorf("%w: %s-%s", ErrOverlap,
				ToDisplay(candidates[idx].StartMin), ToDisplay(candidates[idx].EndMin))
		}

		slots := make([]Slot, 0, len(candidates))
		for _, c := range candidates {
			slots = append(slots, Slot{
				ID:         uuid.New(),
				ScheduleID: sched.ID,
				StartMin:   c.StartMin,
				EndMin:     c.EndMin,
				StartTime:  ToDisplay(c.StartMin),
				EndTime:    ToDisplay(c.EndMin),
				Status:     StatusAvailable,
			})
		}

		if err := s.repo.AppendSlots(lockCtx, sched, slots); err != nil {
			return fmt.Errorf("append slots: %w", err)
		}

		sched.Slots = append(sched.Slots, slots...)
		result = sched
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListAvailable returns the schedule's Available slots whose start instant
// on that date is after asOf. A missing schedule is not an error; there is
// simply nothing to book.
func (s *Service) ListAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, asOf time.Time) (*Schedule, []Slot, error) {
	sched, err := s.repo.GetScheduleByDoctorAndDate(ctx, doctorID, NormalizeDate(date))
	if err != nil {
		if errors.Is(err, ErrScheduleNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("load schedule: %w", err)
	}

	available := make([]Slot, 0, len(sched.Slots))
	for _, slot := range sched.Slots {
		if slot.Status != StatusAvailable {
			continue
		}
		if !slot.StartInstant(sched.Date).After(asOf) {
			continue
		}
		available = append(available, slot)
	}
	return sched, available, nil
}

// ListSchedulesByDoctor returns every schedule for a doctor, newest first,
// together with the doctor record.
func (s *Service) ListSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID) (*Doctor, []Schedule, error) {
	doctor, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		return nil, nil, err
	}
	schedules, err := s.repo.ListSchedulesByDoctor(ctx, doctorID)
	if err != nil {
		return nil, nil, fmt.Errorf("list schedules: %w", err)
	}
	return doctor, schedules, nil
}

// EditSlot overwrites one slot's bounds and status. startText and endText
// are 24-hour "HH:MM"; the stored display form is recomputed. Rejected when
// the new range collides with any sibling slot.
func (s *Service) EditSlot(ctx context.Context, scheduleID, slotID uuid.UUID, startText, endText string, status SlotStatus) (*Slot, error) {
	newStart, err := ToMinutes(startText)
	if err != nil {
		return nil, err
	}
	newEnd, err := ToMinutes(endText)
	if err != nil {
		return nil, err
	}
	if newEnd <= newStart {
		return nil, ErrInvalidRange
	}
	switch status {
	case StatusAvailable, StatusPending, StatusConfirmed:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	sched, err := s.repo.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	var updated *Slot
	err = s.locker.WithScheduleLock(ctx, LockKey(sched.DoctorID, sched.Date), func(lockCtx context.Context) error {
		sched, err := s.repo.GetScheduleByID(lockCtx, scheduleID)
		if err != nil {
			return err
		}
		slot := sched.FindSlot(slotID)
		if slot == nil {
			return ErrSlotNotFound
		}
		if Overlaps(SlotRange{StartMin: newStart, EndMin: newEnd}, sched.Slots, slotID) {
			return ErrOverlap
		}

		// The appointment reference exists iff the slot is claimed. Editing
		// back to Available releases the binding; Pending/Confirmed cannot be
		// set by hand on a slot no appointment backs.
		if status == StatusAvailable {
			slot.AppointmentID = nil
		} else if slot.AppointmentID == nil {
			return fmt.Errorf("%w: no appointment backs status %q", ErrInvalidTransition, status)
		}

		slot.StartMin = newStart
		slot.EndMin = newEnd
		slot.StartTime = ToDisplay(newStart)
		slot.EndTime = ToDisplay(newEnd)
		slot.Status = status

		if err := s.repo.UpdateSlot(lockCtx, slot); err != nil {
			return fmt.Errorf("update slot: %w", err)
		}
		updated = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteSlot removes one slot from its schedule.
func (s *Service) DeleteSlot(ctx context.Context, scheduleID, slotID uuid.UUID) error {
	sched, err := s.repo.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		return err
	}

	return s.locker.WithScheduleLock(ctx, LockKey(sched.DoctorID, sched.Date), func(lockCtx context.Context) error {
		return s.repo.DeleteSlot(lockCtx, scheduleID, slotID)
	})
}

// ReleaseOrphanedPending repairs slots stuck Pending with no backing
// appointment. Run periodically by the reconciler.
func (s *Service) ReleaseOrphanedPending(ctx context.Context) (int64, error) {
	n, err := s.repo.ReleaseOrphanedPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("release orphaned pending slots: %w", err)
	}
	return n, nil
}
