package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/clinicdesk/scheduling/internal/redis"
)

// memRepo is an in-memory Repository with the same copy-out semantics as the
// Postgres implementation: callers get snapshots, mutations go through the
// write methods.
type memRepo struct {
	mu        sync.Mutex
	doctors   map[uuid.UUID]Doctor
	schedules map[uuid.UUID]*Schedule
}

func newMemRepo() *memRepo {
	return &memRepo{
		doctors:   make(map[uuid.UUID]Doctor),
		schedules: make(map[uuid.UUID]*Schedule),
	}
}

func (r *memRepo) addDoctor(name string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.doctors[id] = Doctor{ID: id, Name: name, Department: "Cardiology"}
	return id
}

func copySchedule(s *Schedule) *Schedule {
	out := *s
	out.Slots = make([]Slot, len(s.Slots))
	copy(out.Slots, s.Slots)
	return &out
}

func (r *memRepo) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (r *memRepo) GetScheduleByID(_ context.Context, id uuid.UUID) (*Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, ErrScheduleNotFound
	}
	return copySchedule(s), nil
}

func (r *memRepo) GetScheduleByDoctorAndDate(_ context.Context, doctorID uuid.UUID, date time.Time) (*Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schedules {
		if s.DoctorID == doctorID && s.Date.Equal(NormalizeDate(date)) {
			return copySchedule(s), nil
		}
	}
	return nil, ErrScheduleNotFound
}

func (r *memRepo) ListSchedulesByDoctor(_ context.Context, doctorID uuid.UUID) ([]Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Schedule
	for _, s := range r.schedules {
		if s.DoctorID == doctorID {
			out = append(out, *copySchedule(s))
		}
	}
	return out, nil
}

func (r *memRepo) AppendSlots(_ context.Context, sched *Schedule, slots []Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stored *Schedule
	for _, s := range r.schedules {
		if s.DoctorID == sched.DoctorID && s.Date.Equal(sched.Date) {
			stored = s
			break
		}
	}
	if stored == nil {
		stored = &Schedule{ID: sched.ID, DoctorID: sched.DoctorID, Date: sched.Date}
		r.schedules[stored.ID] = stored
	}
	sched.ID = stored.ID
	for _, slot := range slots {
		slot.ScheduleID = stored.ID
		stored.Slots = append(stored.Slots, slot)
	}
	return nil
}

func (r *memRepo) UpdateSlot(_ context.Context, slot *Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.schedules[slot.ScheduleID]
	if !ok {
		return ErrSlotNotFound
	}
	target := stored.FindSlot(slot.ID)
	if target == nil {
		return ErrSlotNotFound
	}
	*target = *slot
	return nil
}

func (r *memRepo) DeleteSlot(_ context.Context, scheduleID, slotID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.schedules[scheduleID]
	if !ok {
		return ErrSlotNotFound
	}
	for i := range stored.Slots {
		if stored.Slots[i].ID == slotID {
			stored.Slots = append(stored.Slots[:i], stored.Slots[i+1:]...)
			return nil
		}
	}
	return ErrSlotNotFound
}

func (r *memRepo) ReleaseOrphanedPending(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.schedules {
		for i := range s.Slots {
			if s.Slots[i].Status == StatusPending && s.Slots[i].AppointmentID == nil {
				Release(&s.Slots[i])
				n++
			}
		}
	}
	return n, nil
}

func newTestLocker(t *testing.T) redisclient.Locker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisclient.NewRedisScheduleLocker(client, 2*time.Second)
}

var testDate = time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

func TestCreateSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("generates slots for every window", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo, newTestLocker(t))
		doctorID := repo.addDoctor("Dr. Reyes")

		sched, err := svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{
			{Start: "09:00", End: "10:00"},
			{Start: "14:00", End: "15:00"},
		})
		require.NoError(t, err)
		require.Len(t, sched.Slots, 4)
		assert.Equal(t, "09:00 AM", sched.Slots[0].StartTime)
		assert.Equal(t, "09:30 AM", sched.Slots[0].EndTime)
		assert.Equal(t, "02:00 PM", sched.Slots[2].StartTime)
		for _, slot := range sched.Slots {
			assert.Equal(t, StatusAvailable, slot.Status)
			assert.Nil(t, slot.AppointmentID)
		}

		stored, err := repo.GetScheduleByDoctorAndDate(ctx, doctorID, testDate)
		require.NoError(t, err)
		assert.Len(t, stored.Slots, 4)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo, newTestLocker(t))

		_, err := svc.CreateSchedule(ctx, uuid.New(), testDate, 30, []Window{{Start: "09:00", End: "10:00"}})
		assert.ErrorIs(t, err, ErrDoctorNotFound)
	})

	t.Run("window too short for one slot", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo, newTestLocker(t))
		doctorID := repo.addDoctor("Dr. Reyes")

		_, err := svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{{Start: "09:00", End: "09:20"}})
		assert.ErrorIs(t, err, ErrNoSlotsGenerated)
	})

	t.Run("second batch appends to the same day", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo, newTestLocker(t))
		doctorID := repo.addDoctor("Dr. Reyes")

		first, err := svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{{Start: "09:00", End: "10:00"}})
		require.NoError(t, err)
		second, err := svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{{Start: "14:00", End: "15:00"}})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		stored, err := repo.GetScheduleByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Slots, 4)
	})

	t.Run("overlapping batch is rejected whole", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo, newTestLocker(t))
		doctorID := repo.addDoctor("Dr. Reyes")

		first, err := svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{{Start: "09:00", End: "10:00"}})
		require.NoError(t, err)

		// 09:45 collides with the existing 09:30-10:00 slot; 10:00 onward
		// would be fine, but nothing from the batch may land.
		_, err = svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{{Start: "09:45", End: "11:15"}})
		assert.ErrorIs(t, err, ErrOverlap)

		stored, err := repo.GetScheduleByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Slots, 2)
	})

	t.Run("windows overlapping each other are rejected", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo, newTestLocker(t))
		doctorID := repo.addDoctor("Dr. Reyes")

		_, err := svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{
			{Start: "09:00", End: "10:00"},
			{Start: "09:30", End: "10:30"},
		})
		assert.ErrorIs(t, err, ErrOverlap)
	})

	t.Run("no two stored slots ever intersect", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo, newTestLocker(t))
		doctorID := repo.addDoctor("Dr. Reyes")

		windows := [][]Window{
			{{Start: "09:00", End: "11:00"}},
			{{Start: "11:00", End: "12:00"}},
			{{Start: "10:30", End: "13:00"}}, // collides, must change nothing
			{{Start: "14:00", End: "16:00"}},
		}
		for _, w := range windows {
			_, _ = svc.CreateSchedule(ctx, doctorID, testDate, 30, w)
		}

		stored, err := repo.GetScheduleByDoctorAndDate(ctx, doctorID, testDate)
		require.NoError(t, err)
		for i := range stored.Slots {
			for j := i + 1; j < len(stored.Slots); j++ {
				assert.False(t, stored.Slots[i].Range().Intersects(stored.Slots[j].Range()),
					"slots %d and %d intersect", i, j)
			}
		}
	})
}

func TestListAvailable(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo, newTestLocker(t))
	doctorID := repo.addDoctor("Dr. Reyes")

	sched, err := svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{{Start: "09:00", End: "11:00"}})
	require.NoError(t, err)

	// Mark 09:30-10:00 pending; it must disappear from availability.
	pending := sched.Slots[1]
	require.NoError(t, Claim(&pending, uuid.New()))
	require.NoError(t, repo.UpdateSlot(ctx, &pending))

	t.Run("filters status and past starts", func(t *testing.T) {
		asOf := time.Date(2026, time.September, 1, 9, 15, 0, 0, time.UTC)
		_, available, err := svc.ListAvailable(ctx, doctorID, testDate, asOf)
		require.NoError(t, err)
		require.Len(t, available, 2)
		assert.Equal(t, "10:00 AM", available[0].StartTime)
		assert.Equal(t, "10:30 AM", available[1].StartTime)
	})

	t.Run("missing schedule is empty, not an error", func(t *testing.T) {
		got, available, err := svc.ListAvailable(ctx, doctorID, testDate.AddDate(0, 0, 1), time.Time{})
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Empty(t, available)
	})
}

func TestEditSlot(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *memRepo, *Schedule) {
		repo := newMemRepo()
		svc := NewService(repo, newTestLocker(t))
		doctorID := repo.addDoctor("Dr. Reyes")
		sched, err := svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{{Start: "09:00", End: "10:00"}})
		require.NoError(t, err)
		return svc, repo, sched
	}

	t.Run("rewrites bounds and display form", func(t *testing.T) {
		svc, repo, sched := setup(t)
		updated, err := svc.EditSlot(ctx, sched.ID, sched.Slots[1].ID, "16:00", "16:45", StatusAvailable)
		require.NoError(t, err)
		assert.Equal(t, 960, updated.StartMin)
		assert.Equal(t, 1005, updated.EndMin)
		assert.Equal(t, "04:00 PM", updated.StartTime)
		assert.Equal(t, "04:45 PM", updated.EndTime)

		stored, err := repo.GetScheduleByID(ctx, sched.ID)
		require.NoError(t, err)
		assert.Equal(t, "04:00 PM", stored.FindSlot(sched.Slots[1].ID).StartTime)
	})

	t.Run("edit may keep its own old range", func(t *testing.T) {
		svc, _, sched := setup(t)
		_, err := svc.EditSlot(ctx, sched.ID, sched.Slots[0].ID, "09:00", "09:30", StatusAvailable)
		require.NoError(t, err)
	})

	t.Run("releasing a booked slot clears its binding", func(t *testing.T) {
		svc, repo, sched := setup(t)
		booked := sched.Slots[0]
		require.NoError(t, Claim(&booked, uuid.New()))
		require.NoError(t, repo.UpdateSlot(ctx, &booked))

		updated, err := svc.EditSlot(ctx, sched.ID, booked.ID, "09:00", "09:30", StatusAvailable)
		require.NoError(t, err)
		assert.Equal(t, StatusAvailable, updated.Status)
		assert.Nil(t, updated.AppointmentID)

		stored, err := repo.GetScheduleByID(ctx, sched.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.FindSlot(booked.ID).AppointmentID)
	})

	t.Run("booked slot keeps its binding on reschedule", func(t *testing.T) {
		svc, repo, sched := setup(t)
		booked := sched.Slots[0]
		apptID := uuid.New()
		require.NoError(t, Claim(&booked, apptID))
		require.NoError(t, repo.UpdateSlot(ctx, &booked))

		updated, err := svc.EditSlot(ctx, sched.ID, booked.ID, "16:00", "16:30", StatusPending)
		require.NoError(t, err)
		require.NotNil(t, updated.AppointmentID)
		assert.Equal(t, apptID, *updated.AppointmentID)
	})

	t.Run("pending needs a backing appointment", func(t *testing.T) {
		svc, repo, sched := setup(t)
		_, err := svc.EditSlot(ctx, sched.ID, sched.Slots[0].ID, "09:00", "09:30", StatusPending)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		stored, err := repo.GetScheduleByID(ctx, sched.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAvailable, stored.FindSlot(sched.Slots[0].ID).Status)
	})

	t.Run("confirmed needs a backing appointment", func(t *testing.T) {
		svc, _, sched := setup(t)
		_, err := svc.EditSlot(ctx, sched.ID, sched.Slots[0].ID, "09:00", "09:30", StatusConfirmed)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("collision with sibling", func(t *testing.T) {
		svc, _, sched := setup(t)
		_, err := svc.EditSlot(ctx, sched.ID, sched.Slots[0].ID, "09:00", "09:45", StatusAvailable)
		assert.ErrorIs(t, err, ErrOverlap)
	})

	t.Run("inverted range", func(t *testing.T) {
		svc, _, sched := setup(t)
		_, err := svc.EditSlot(ctx, sched.ID, sched.Slots[0].ID, "10:00", "09:00", StatusAvailable)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("malformed time", func(t *testing.T) {
		svc, _, sched := setup(t)
		_, err := svc.EditSlot(ctx, sched.ID, sched.Slots[0].ID, "9am", "10:00", StatusAvailable)
		assert.ErrorIs(t, err, ErrMalformedTime)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, _, sched := setup(t)
		_, err := svc.EditSlot(ctx, sched.ID, sched.Slots[0].ID, "09:00", "09:30", SlotStatus("Booked"))
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown slot", func(t *testing.T) {
		svc, _, sched := setup(t)
		_, err := svc.EditSlot(ctx, sched.ID, uuid.New(), "09:00", "09:30", StatusAvailable)
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.EditSlot(ctx, uuid.New(), uuid.New(), "09:00", "09:30", StatusAvailable)
		assert.ErrorIs(t, err, ErrScheduleNotFound)
	})
}

func TestDeleteSlot(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo, newTestLocker(t))
	doctorID := repo.addDoctor("Dr. Reyes")

	sched, err := svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{{Start: "09:00", End: "10:00"}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSlot(ctx, sched.ID, sched.Slots[0].ID))

	stored, err := repo.GetScheduleByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Slots, 1)

	assert.ErrorIs(t, svc.DeleteSlot(ctx, sched.ID, sched.Slots[0].ID), ErrSlotNotFound)
	assert.ErrorIs(t, svc.DeleteSlot(ctx, uuid.New(), sched.Slots[1].ID), ErrScheduleNotFound)
}

func TestReleaseOrphanedPending(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo, newTestLocker(t))
	doctorID := repo.addDoctor("Dr. Reyes")

	sched, err := svc.CreateSchedule(ctx, doctorID, testDate, 30, []Window{{Start: "09:00", End: "10:00"}})
	require.NoError(t, err)

	orphan := sched.Slots[0]
	orphan.Status = StatusPending
	require.NoError(t, repo.UpdateSlot(ctx, &orphan))

	n, err := svc.ReleaseOrphanedPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err := repo.GetScheduleByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, stored.FindSlot(orphan.ID).Status)
}
