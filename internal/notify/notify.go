package notify

import "context"

// Booking carries everything the admin alert needs. Notification is
// strictly best-effort: a failed send is logged by the caller and never
// unwinds the booking it announces.
type Booking struct {
	PatientName      string
	Phone            string
	DoctorName       string
	DoctorDepartment string
	AppointmentDate  string
	Message          string
}

type Notifier interface {
	BookingRequested(ctx context.Context, b Booking) error
}

// Nop discards every notification. Used when no bot token is configured
// and in tests.
type Nop struct{}

func (Nop) BookingRequested(ctx context.Context, b Booking) error { return nil }
