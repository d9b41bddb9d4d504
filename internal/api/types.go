package api

import (
	"github.com/google/uuid"

	"github.com/clinicdesk/scheduling/internal/appointment"
	"github.com/clinicdesk/scheduling/internal/schedule"
)

type TimeWindow struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type CreateScheduleRequest struct {
	DoctorID        string       `json:"doctor_id" validate:"required,uuid"`
	Date            string       `json:"date" validate:"required,datetime=2006-01-02"`
	SessionDuration int          `json:"session_duration" validate:"required,gt=0"`
	TimeWindows     []TimeWindow `json:"time_windows" validate:"required,min=1,dive"`
}

type EditSlotRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=Available Pending Confirmed"`
}

type CreateAppointmentRequest struct {
	FullName   string `json:"fullname" validate:"required"`
	Gender     string `json:"gender" validate:"required"`
	Age        int    `json:"age" validate:"required,gte=1"`
	Phone      string `json:"phone" validate:"required"`
	Message    string `json:"message" validate:"required"`
	DoctorID   string `json:"doctor_id" validate:"required,uuid"`
	ScheduleID string `json:"schedule_id" validate:"required,uuid"`
	SlotID     string `json:"slot_id" validate:"required,uuid"`
}

type EditAppointmentRequest struct {
	FullName string `json:"fullname" validate:"required"`
	Gender   string `json:"gender" validate:"required"`
	Age      int    `json:"age" validate:"required,gte=1"`
	Phone    string `json:"phone" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

type SlotResponse struct {
	ID            uuid.UUID  `json:"id"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	Status        string     `json:"status"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
}

type ScheduleResponse struct {
	ID       uuid.UUID      `json:"id"`
	DoctorID uuid.UUID      `json:"doctor_id"`
	Date     string         `json:"date"`
	Slots    []SlotResponse `json:"slots"`
}

type AvailableSlotsResponse struct {
	ScheduleID *uuid.UUID     `json:"schedule_id,omitempty"`
	Slots      []SlotResponse `json:"slots"`
}

type DoctorSchedulesResponse struct {
	Doctor    DoctorResponse     `json:"doctor"`
	Schedules []ScheduleResponse `json:"schedules"`
}

type DoctorResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
}

type AppointmentResponse struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"fullname"`
	Gender     string    `json:"gender"`
	Age        int       `json:"age"`
	Phone      string    `json:"phone"`
	Message    string    `json:"message"`
	DoctorID   uuid.UUID `json:"doctor_id"`
	ScheduleID uuid.UUID `json:"schedule_id"`
	SlotID     uuid.UUID `json:"slot_id"`
}

type PendingBookingResponse struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	FullName         string    `json:"fullname"`
	Gender           string    `json:"gender"`
	Age              int       `json:"age"`
	Phone            string    `json:"phone"`
	Message          string    `json:"message"`
	Status           string    `json:"status"`
	DoctorName       string    `json:"doctor_name"`
	DoctorDepartment string    `json:"doctor_department"`
	AppointmentDate  string    `json:"appointment_date"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toSlotResponse(s schedule.Slot) SlotResponse {
	return SlotResponse{
		ID:            s.ID,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Status:        string(s.Status),
		AppointmentID: s.AppointmentID,
	}
}

func toScheduleResponse(s *schedule.Schedule) ScheduleResponse {
	slots := make([]SlotResponse, 0, len(s.Slots))
	for _, slot := range s.Slots {
		slots = append(slots, toSlotResponse(slot))
	}
	return ScheduleResponse{
		ID:       s.ID,
		DoctorID: s.DoctorID,
		Date:     s.Date.Format("2006-01-02"),
		Slots:    slots,
	}
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:         a.ID,
		FullName:   a.FullName,
		Gender:     a.Gender,
		Age:        a.Age,
		Phone:      a.Phone,
		Message:    a.Message,
		DoctorID:   a.DoctorID,
		ScheduleID: a.ScheduleID,
		SlotID:     a.SlotID,
	}
}
