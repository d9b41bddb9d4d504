package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/scheduling/internal/schedule"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.FullName,
		&a.Gender,
		&a.Age,
		&a.Phone,
		&a.Message,
		&a.DoctorID,
		&a.ScheduleID,
		&a.SlotID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, fullname, gender, age, phone, message, doctor_id, schedule_id, slot_id, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) CreateWithClaim(ctx context.Context, appt *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (id, fullname, gender, age, phone, message, doctor_id, schedule_id, slot_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	`, appt.ID, appt.FullName, appt.Gender, appt.Age, appt.Phone, appt.Message,
		appt.DoctorID, appt.ScheduleID, appt.SlotID)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	// First writer wins: the status guard decides the race even if two
	// requests slipped past the schedule lock.
	tag, err := tx.Exec(ctx, `
		UPDATE slots
		SET status = 'Pending',
		    appointment_id = $3,
		    updated_at = now()
		WHERE id = $2 AND schedule_id = $1 AND status = 'Available'
	`, appt.ScheduleID, appt.SlotID, appt.ID)
	if err != nil {
		return fmt.Errorf("claim slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrSlotTaken
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) UpdatePatientFields(ctx context.Context, appt *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET fullname = $2,
		    gender = $3,
		    age = $4,
		    phone = $5,
		    message = $6,
		    updated_at = now()
		WHERE id = $1
	`, appt.ID, appt.FullName, appt.Gender, appt.Age, appt.Phone, appt.Message)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) ConfirmSlot(ctx context.Context, scheduleID, slotID, appointmentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE slots
		SET status = 'Confirmed',
		    updated_at = now()
		WHERE id = $2 AND schedule_id = $1 AND appointment_id = $3 AND status = 'Pending'
	`, scheduleID, slotID, appointmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrInvalidTransition
	}
	return nil
}

func (r *PgRepository) DeleteWithRelease(ctx context.Context, appt *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Release precedes the delete inside the same transaction, so a crash
	// cannot leave the slot Pending with no owning appointment.
	_, err = tx.Exec(ctx, `
		UPDATE slots
		SET status = 'Available',
		    appointment_id = NULL,
		    updated_at = now()
		WHERE id = $2 AND schedule_id = $1
	`, appt.ScheduleID, appt.SlotID)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, appt.ID)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) ListPending(ctx context.Context) ([]PendingBooking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.fullname, a.gender, a.age, a.phone, a.message,
		       s.status, d.name, d.department, sch.schedule_date, s.start_min
		FROM slots s
		JOIN schedules sch ON sch.id = s.schedule_id
		JOIN doctors d ON d.id = sch.doctor_id
		JOIN appointments a ON a.id = s.appointment_id
		WHERE s.status = 'Pending'
		ORDER BY sch.schedule_date, s.start_min
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PendingBooking
	for rows.Next() {
		var b PendingBooking
		var date time.Time
		var startMin int
		err := rows.Scan(
			&b.AppointmentID,
			&b.FullName,
			&b.Gender,
			&b.Age,
			&b.Phone,
			&b.Message,
			&b.Status,
			&b.DoctorName,
			&b.DoctorDepartment,
			&date,
			&startMin,
		)
		if err != nil {
			return nil, err
		}
		b.AppointmentDate = FormatAppointmentDate(date, startMin)
		result = append(result, b)
	}
	return result, rows.Err()
}
