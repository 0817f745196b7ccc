// Package schedule drives automatic spot checks from per-spot cron jobs.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"tidyspot/internal/model"
)

// misfireGrace is how late a trigger may fire before the run is skipped.
const misfireGrace = 5 * time.Minute

// CheckFunc is invoked with the spot id when a trigger fires.
type CheckFunc func(ctx context.Context, spotID int64) error

var cronDays = map[string]string{
	"mon": "MON", "tue": "TUE", "wed": "WED", "thu": "THU",
	"fri": "FRI", "sat": "SAT", "sun": "SUN",
}

// Scheduler owns one cron runner and the per-spot job registry.
// Reconfiguring a spot removes all of its jobs before adding new ones, so a
// schedule update never leaves stale triggers behind.
type Scheduler struct {
	cron  *cron.Cron
	check CheckFunc
	log   zerolog.Logger

	mu   sync.Mutex
	jobs map[int64][]cron.EntryID
}

func New(check CheckFunc, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		check: check,
		log:   log,
		jobs:  make(map[int64][]cron.EntryID),
	}
}

// Start begins firing triggers.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the runner and waits for running jobs to finish.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// Configure replaces all jobs for a spot with one job per schedule entry.
// Entries with no valid days are skipped; invalid day abbreviations are
// dropped with a warning.
func (s *Scheduler) Configure(spotID int64, entries []model.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.jobs[spotID] {
		s.cron.Remove(id)
	}
	delete(s.jobs, spotID)

	for idx, entry := range entries {
		jobName := fmt.Sprintf("spot_%d_schedule_%d", spotID, idx)

		spec, ok := s.cronSpec(entry, jobName)
		if !ok {
			continue
		}
		entryTime := entry.Time
		id, err := s.cron.AddFunc(spec, func() { s.run(spotID, entryTime) })
		if err != nil {
			return fmt.Errorf("add job %s: %w", jobName, err)
		}
		s.jobs[spotID] = append(s.jobs[spotID], id)
		s.log.Info().Str("job", jobName).Str("spec", spec).Msg("schedule job registered")
	}
	return nil
}

// Remove drops all jobs for a spot, e.g. when it is deleted.
func (s *Scheduler) Remove(spotID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.jobs[spotID] {
		s.cron.Remove(id)
	}
	delete(s.jobs, spotID)
}

// JobCount reports how many jobs a spot currently has.
func (s *Scheduler) JobCount(spotID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs[spotID])
}

// cronSpec renders a schedule entry as "MM HH * * DAYS".
func (s *Scheduler) cronSpec(entry model.ScheduleEntry, jobName string) (string, bool) {
	at, err := time.Parse("15:04", entry.Time)
	if err != nil {
		s.log.Warn().Str("job", jobName).Str("time", entry.Time).
			Msg("invalid schedule time, entry skipped")
		return "", false
	}

	var days []string
	for _, d := range entry.Days {
		cd, ok := cronDays[strings.ToLower(strings.TrimSpace(d))]
		if !ok {
			s.log.Warn().Str("job", jobName).Str("day", d).
				Msg("invalid day abbreviation dropped")
			continue
		}
		days = append(days, cd)
	}
	if len(days) == 0 {
		s.log.Warn().Str("job", jobName).Msg("no valid days, entry skipped")
		return "", false
	}
	return fmt.Sprintf("%d %d * * %s", at.Minute(), at.Hour(), strings.Join(days, ",")), true
}

// run executes the check callback for one trigger. Failures are logged and
// never propagated: one broken spot must not stop others from firing.
func (s *Scheduler) run(spotID int64, entryTime string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error().Int64("spot_id", spotID).Interface("panic", rec).
				Msg("scheduled check panicked")
		}
	}()

	if late, ok := misfireDelay(entryTime, time.Now()); ok && late > misfireGrace {
		s.log.Warn().Int64("spot_id", spotID).Dur("late", late).
			Msg("trigger fired past misfire grace, run skipped")
		return
	}

	s.log.Info().Int64("spot_id", spotID).Msg("scheduled check firing")
	if err := s.check(context.Background(), spotID); err != nil {
		s.log.Error().Int64("spot_id", spotID).Err(err).
			Msg("scheduled check failed")
	}
}

// misfireDelay reports how far past its wall-clock slot a trigger fired.
func misfireDelay(entryTime string, now time.Time) (time.Duration, bool) {
	at, err := time.Parse("15:04", entryTime)
	if err != nil {
		return 0, false
	}
	slot := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if now.Before(slot) {
		return 0, true
	}
	return now.Sub(slot), true
}
