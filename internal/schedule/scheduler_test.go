package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tidyspot/internal/model"
)

func noopCheck(ctx context.Context, spotID int64) error { return nil }

func TestConfigureAddsOneJobPerEntry(t *testing.T) {
	s := New(noopCheck, zerolog.Nop())

	err := s.Configure(1, []model.ScheduleEntry{
		{Time: "08:00", Days: []string{"mon", "wed", "fri"}},
		{Time: "21:30", Days: []string{"sun"}},
	})
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if got := s.JobCount(1); got != 2 {
		t.Fatalf("expected 2 jobs, got %d", got)
	}
}

func TestReconfigureReplacesJobs(t *testing.T) {
	s := New(noopCheck, zerolog.Nop())

	_ = s.Configure(1, []model.ScheduleEntry{
		{Time: "08:00", Days: []string{"mon"}},
		{Time: "12:00", Days: []string{"tue"}},
	})
	_ = s.Configure(1, []model.ScheduleEntry{
		{Time: "09:00", Days: []string{"sat"}},
	})
	if got := s.JobCount(1); got != 1 {
		t.Fatalf("reconfigure must replace jobs, got %d", got)
	}
}

func TestInvalidDaysDroppedAndEmptyEntrySkipped(t *testing.T) {
	s := New(noopCheck, zerolog.Nop())

	err := s.Configure(2, []model.ScheduleEntry{
		{Time: "08:00", Days: []string{"mon", "notaday"}}, // one valid day survives
		{Time: "09:00", Days: []string{"blursday"}},       // zero valid days, skipped
		{Time: "25:99", Days: []string{"mon"}},            // invalid time, skipped
	})
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if got := s.JobCount(2); got != 1 {
		t.Fatalf("expected 1 surviving job, got %d", got)
	}
}

func TestRemoveDropsAllJobs(t *testing.T) {
	s := New(noopCheck, zerolog.Nop())
	_ = s.Configure(3, []model.ScheduleEntry{{Time: "07:00", Days: []string{"mon"}}})
	s.Remove(3)
	if got := s.JobCount(3); got != 0 {
		t.Fatalf("expected 0 jobs after remove, got %d", got)
	}
}

func TestCronSpecRendering(t *testing.T) {
	s := New(noopCheck, zerolog.Nop())
	spec, ok := s.cronSpec(model.ScheduleEntry{Time: "08:05", Days: []string{"Mon", "SUN"}}, "j")
	if !ok {
		t.Fatalf("expected valid spec")
	}
	if spec != "5 8 * * MON,SUN" {
		t.Fatalf("unexpected spec %q", spec)
	}
}

func TestRunSwallowsCallbackErrors(t *testing.T) {
	called := 0
	s := New(func(ctx context.Context, spotID int64) error {
		called++
		return errors.New("camera offline")
	}, zerolog.Nop())

	now := time.Now()
	s.run(7, now.Format("15:04")) // within grace, error logged not propagated
	if called != 1 {
		t.Fatalf("callback should have run once, got %d", called)
	}
}

func TestRunSkipsPastMisfireGrace(t *testing.T) {
	called := 0
	s := New(func(ctx context.Context, spotID int64) error {
		called++
		return nil
	}, zerolog.Nop())

	stale := time.Now().Add(-10 * time.Minute)
	s.run(7, stale.Format("15:04"))
	if called != 0 {
		t.Fatalf("run past grace must be skipped")
	}
}

func TestRunRecoversPanic(t *testing.T) {
	s := New(func(ctx context.Context, spotID int64) error {
		panic("boom")
	}, zerolog.Nop())

	// Must not panic the scheduler goroutine.
	s.run(7, time.Now().Format("15:04"))
}

func TestMisfireDelay(t *testing.T) {
	now := time.Date(2026, 8, 28, 8, 7, 0, 0, time.Local)
	d, ok := misfireDelay("08:00", now)
	if !ok || d != 7*time.Minute {
		t.Fatalf("expected 7m delay, got %v ok=%v", d, ok)
	}
}
