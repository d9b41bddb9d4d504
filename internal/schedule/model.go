package schedule

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	StatusAvailable SlotStatus = "Available"
	StatusPending   SlotStatus = "Pending"
	StatusConfirmed SlotStatus = "Confirmed"
)

// SlotRange is a half-open [StartMin, EndMin) minute-of-day interval.
type SlotRange struct {
	StartMin int
	EndMin   int
}

// Intersects reports whether two half-open ranges share any instant.
// Touching endpoints do not intersect.
func (r SlotRange) Intersects(other SlotRange) bool {
	return r.StartMin < other.EndMin && other.StartMin < r.EndMin
}

// Slot is one bookable time range within a schedule. StartTime/EndTime are
// the stored "hh:mm AM/PM" display forms of StartMin/EndMin.
type Slot struct {
	ID            uuid.UUID
	ScheduleID    uuid.UUID
	StartMin      int
	EndMin        int
	StartTime     string
	EndTime       string
	Status        SlotStatus
	AppointmentID *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (s *Slot) Range() SlotRange {
	return SlotRange{StartMin: s.StartMin, EndMin: s.EndMin}
}

// StartInstant anchors the slot's start minute on its schedule date.
func (s *Slot) StartInstant(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		s.StartMin/60, s.StartMin%60, 0, 0, date.Location())
}

// Schedule is the aggregate root: every slot for one doctor on one date.
// (DoctorID, Date) is unique at the persistence layer.
type Schedule struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	Date      time.Time
	Slots     []Slot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FindSlot returns the slot with the given id, or nil. Lookup is always by
// identifier, never by position, so concurrent inserts and deletes cannot
// redirect a mutation to the wrong slot.
func (s *Schedule) FindSlot(id uuid.UUID) *Slot {
	for i := range s.Slots {
		if s.Slots[i].ID == id {
			return &s.Slots[i]
		}
	}
	return nil
}

type Doctor struct {
	ID           uuid.UUID
	Name         string
	Department   string
	Gender       string
	ProfileImage *string
	Facebook     *string
	Instagram    *string
	LinkedIn     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeDate strips the time-of-day component; schedules are keyed by
// calendar day on the facility-local clock.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
