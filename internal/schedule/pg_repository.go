package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Department,
		&d.Gender,
		&d.ProfileImage,
		&d.Facebook,
		&d.Instagram,
		&d.LinkedIn,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.Date,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	err := row.Scan(
		&s.ID,
		&s.ScheduleID,
		&s.StartMin,
		&s.EndMin,
		&s.StartTime,
		&s.EndTime,
		&s.Status,
		&s.AppointmentID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

const slotColumns = `id, schedule_id, start_min, end_min, start_time, end_time, status, appointment_id, created_at, updated_at`

func (r *PgRepository) loadSlots(ctx context.Context, scheduleID uuid.UUID) ([]Slot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE schedule_id = $1
		ORDER BY start_min, id
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// Interface methods

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, department, gender, profile_image, facebook_link, instagram_link, linkedin_link, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetScheduleByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, schedule_date, created_at, updated_at
		FROM schedules
		WHERE id = $1
	`, id)
	sched, err := scanSchedule(row)
	if err != nil {
		return nil, err
	}

	sched.Slots, err = r.loadSlots(ctx, sched.ID)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	return sched, nil
}

func (r *PgRepository) GetScheduleByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*Schedule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, schedule_date, created_at, updated_at
		FROM schedules
		WHERE doctor_id = $1 AND schedule_date = $2
	`, doctorID, date)
	sched, err := scanSchedule(row)
	if err != nil {
		return nil, err
	}

	sched.Slots, err = r.loadSlots(ctx, sched.ID)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	return sched, nil
}

func (r *PgRepository) ListSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Schedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, schedule_date, created_at, updated_at
		FROM schedules
		WHERE doctor_id = $1
		ORDER BY schedule_date DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].Slots, err = r.loadSlots(ctx, result[i].ID)
		if err != nil {
			return nil, fmt.Errorf("load slots: %w", err)
		}
	}
	return result, nil
}

func (r *PgRepository) AppendSlots(ctx context.Context, sched *Schedule, slots []Slot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// The unique index on (doctor_id, schedule_date) decides the
	// first-creation race; the loser adopts the winner's aggregate id.
	_, err = tx.Exec(ctx, `
		INSERT INTO schedules (id, doctor_id, schedule_date, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (doctor_id, schedule_date) DO NOTHING
	`, sched.ID, sched.DoctorID, sched.Date)
	if err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}

	var resolvedID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id FROM schedules
		WHERE doctor_id = $1 AND schedule_date = $2
	`, sched.DoctorID, sched.Date).Scan(&resolvedID)
	if err != nil {
		return fmt.Errorf("resolve schedule id: %w", err)
	}
	sched.ID = resolvedID

	for i := range slots {
		slots[i].ScheduleID = resolvedID
		_, err = tx.Exec(ctx, `
			INSERT INTO slots (id, schedule_id, start_min, end_min, start_time, end_time, status, appointment_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, now(), now())
		`, slots[i].ID, resolvedID, slots[i].StartMin, slots[i].EndMin, slots[i].StartTime, slots[i].EndTime, slots[i].Status)
		if err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `UPDATE schedules SET updated_at = now() WHERE id = $1`, resolvedID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) UpdateSlot(ctx context.Context, slot *Slot) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE slots
		SET start_min = $3,
		    end_min = $4,
		    start_time = $5,
		    end_time = $6,
		    status = $7,
		    appointment_id = $8,
		    updated_at = now()
		WHERE id = $2 AND schedule_id = $1
	`, slot.ScheduleID, slot.ID, slot.StartMin, slot.EndMin, slot.StartTime, slot.EndTime, slot.Status, slot.AppointmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *PgRepository) DeleteSlot(ctx context.Context, scheduleID, slotID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM slots
		WHERE id = $2 AND schedule_id = $1
	`, scheduleID, slotID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *PgRepository) ReleaseOrphanedPending(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE slots
		SET status = 'Available',
		    appointment_id = NULL,
		    updated_at = now()
		WHERE status = 'Pending'
		  AND (appointment_id IS NULL
		       OR NOT EXISTS (SELECT 1 FROM appointments a WHERE a.id = slots.appointment_id))
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
