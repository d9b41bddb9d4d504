package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound   = errors.New("doctor not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrSlotNotFound     = errors.New("slot not found")
)

// Repository contains all DB interactions needed by the schedule service.
type Repository interface {
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)

	GetScheduleByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	GetScheduleByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*Schedule, error)
	ListSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Schedule, error)

	// AppendSlots persists the schedule row if it does not exist yet and
	// inserts all slots in one transaction. When a concurrent creation for
	// the same (doctor, date) won first, the insert resolves to the winner's
	// aggregate and sched.ID is rewritten to it.
	AppendSlots(ctx context.Context, sched *Schedule, slots []Slot) error

	// UpdateSlot overwrites a slot's bounds and status in place.
	// ErrSlotNotFound when no row matches.
	UpdateSlot(ctx context.Context, slot *Slot) error

	DeleteSlot(ctx context.Context, scheduleID, slotID uuid.UUID) error

	// ReleaseOrphanedPending flips Pending slots whose appointment no longer
	// exists back to Available, returning how many were repaired.
	ReleaseOrphanedPending(ctx context.Context) (int64, error)
}
