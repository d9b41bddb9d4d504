package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/scheduling/internal/schedule"
)

// Appointment is a patient's request against exactly one slot. It exists
// iff its slot is Pending or Confirmed and the slot points back at it.
type Appointment struct {
	ID         uuid.UUID
	FullName   string
	Gender     string
	Age        int
	Phone      string
	Message    string
	DoctorID   uuid.UUID
	ScheduleID uuid.UUID
	SlotID     uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PendingBooking is one row of the admin listing: booking details joined
// with the doctor and the human-readable slot start.
type PendingBooking struct {
	AppointmentID    uuid.UUID
	FullName         string
	Gender           string
	Age              int
	Phone            string
	Message          string
	Status           schedule.SlotStatus
	DoctorName       string
	DoctorDepartment string
	AppointmentDate  string
}

// FormatAppointmentDate renders a slot start on its schedule date the way
// booking notifications show it, e.g. "Friday, 25 July 2025 10:20 AM".
func FormatAppointmentDate(date time.Time, startMin int) string {
	at := time.Date(date.Year(), date.Month(), date.Day(),
		startMin/60, startMin%60, 0, 0, date.Location())
	return at.Format("Monday, 2 January 2006 03:04 PM")
}
