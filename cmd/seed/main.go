package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/scheduling/internal/db"
	"github.com/clinicdesk/scheduling/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.RunMigrations(dsn); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctorIDs, err := seedDoctors(context.Background(), pool, 25)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedSchedules(context.Background(), pool, doctorIDs, 7); err != nil {
		log.Fatalf("seed schedules: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors", count)

	departments := []string{
		"Dermatology",
		"Cardiology",
		"General Medicine",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}
	genders := []string{"Male", "Female"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + gofakeit.Name()
		dept := departments[gofakeit.Number(0, len(departments)-1)]
		gender := genders[gofakeit.Number(0, len(genders)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, department, gender, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, id, name, dept, gender)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return ids, nil
}

// seedSchedules gives every doctor `days` upcoming schedules, each with a
// morning and an afternoon session cut into 30-minute slots.
func seedSchedules(ctx context.Context, pool *pgxpool.Pool, doctorIDs []uuid.UUID, days int) error {
	log.Printf("seeding %d days of schedules for %d doctors", days, len(doctorIDs))

	repo := schedule.NewPgRepository(pool)
	windows := []schedule.Window{
		{Start: "09:00", End: "12:00"},
		{Start: "14:00", End: "17:00"},
	}

	ranges, err := schedule.GenerateWindows(windows, 30)
	if err != nil {
		return err
	}

	today := schedule.NormalizeDate(time.Now())
	for _, doctorID := range doctorIDs {
		for d := 1; d <= days; d++ {
			date := today.AddDate(0, 0, d)
			sched := &schedule.Schedule{ID: uuid.New(), DoctorID: doctorID, Date: date}

			slots := make([]schedule.Slot, 0, len(ranges))
			for _, r := range ranges {
				slots = append(slots, schedule.Slot{
					ID:         uuid.New(),
					ScheduleID: sched.ID,
					StartMin:   r.StartMin,
					EndMin:     r.EndMin,
					StartTime:  schedule.ToDisplay(r.StartMin),
					EndTime:    schedule.ToDisplay(r.EndMin),
					Status:     schedule.StatusAvailable,
				})
			}

			if err := repo.AppendSlots(ctx, sched, slots); err != nil {
				return err
			}
		}
	}

	log.Println("schedules seeded")
	return nil
}
