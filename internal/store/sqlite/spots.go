package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tidyspot/internal/model"
)

type spotStore struct {
	db *sql.DB
}

const spotColumns = `id, name, camera_entity, definition, spot_type, voice,
	custom_voice_prompt, personality, status, current_streak, longest_streak,
	snoozed_until, schedule, dream_state_url, dream_state_generating, created_at`

func (s *spotStore) Create(ctx context.Context, sp *model.Spot) (*model.Spot, error) {
	if sp.Name == "" {
		return nil, fmt.Errorf("%w: spot name required", model.ErrValidation)
	}
	if sp.SpotType == "" {
		sp.SpotType = "custom"
	}
	if sp.Voice == "" {
		sp.Voice = "direct"
	}
	if sp.Status == "" {
		sp.Status = model.StatusUnknown
	}
	sp.CreatedAt = time.Now().UTC()

	sched, err := json.Marshal(emptyIfNil(sp.Schedule))
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO spots
		(name, camera_entity, definition, spot_type, voice, custom_voice_prompt,
		 personality, status, current_streak, longest_streak, snoozed_until,
		 schedule, dream_state_url, dream_state_generating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sp.Name, sp.CameraEntity, sp.Definition, sp.SpotType, sp.Voice,
		sp.CustomVoicePrompt, sp.Personality, sp.Status, sp.CurrentStreak,
		sp.LongestStreak, nullTime(sp.SnoozedUntil), string(sched),
		sp.DreamStateURL, boolToInt(sp.DreamStateGenerating),
		sp.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	sp.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *spotStore) Get(ctx context.Context, id int64) (*model.Spot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+spotColumns+` FROM spots WHERE id = ?`, id)
	return scanSpot(row)
}

func (s *spotStore) List(ctx context.Context) ([]*model.Spot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+spotColumns+` FROM spots ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Spot
	for rows.Next() {
		sp, err := scanSpot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (s *spotStore) Update(ctx context.Context, sp *model.Spot) (*model.Spot, error) {
	if sp.Name == "" {
		return nil, fmt.Errorf("%w: spot name required", model.ErrValidation)
	}
	sched, err := json.Marshal(emptyIfNil(sp.Schedule))
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE spots SET
		name = ?, camera_entity = ?, definition = ?, spot_type = ?, voice = ?,
		custom_voice_prompt = ?, personality = ?, schedule = ?
		WHERE id = ?`,
		sp.Name, sp.CameraEntity, sp.Definition, sp.SpotType, sp.Voice,
		sp.CustomVoicePrompt, sp.Personality, string(sched), sp.ID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.Get(ctx, sp.ID)
}

func (s *spotStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM spots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *spotStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE spots SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *spotStore) UpdateStreak(ctx context.Context, id int64, current, longest int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE spots SET current_streak = ?, longest_streak = ? WHERE id = ?`,
		current, longest, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *spotStore) Snooze(ctx context.Context, id int64, until *time.Time) error {
	status := model.StatusSnoozed
	if until == nil {
		status = model.StatusUnknown
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE spots SET snoozed_until = ?, status = ? WHERE id = ?`,
		nullTime(until), status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *spotStore) SetSchedule(ctx context.Context, id int64, entries []model.ScheduleEntry) error {
	sched, err := json.Marshal(emptyIfNil(entries))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE spots SET schedule = ? WHERE id = ?`, string(sched), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *spotStore) SetDreamState(ctx context.Context, id int64, url string, generating bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE spots SET dream_state_url = ?, dream_state_generating = ? WHERE id = ?`,
		url, boolToInt(generating), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSpot(row rowScanner) (*model.Spot, error) {
	var (
		sp         model.Spot
		snoozed    sql.NullString
		schedule   string
		generating int
		createdAt  string
	)
	err := row.Scan(&sp.ID, &sp.Name, &sp.CameraEntity, &sp.Definition,
		&sp.SpotType, &sp.Voice, &sp.CustomVoicePrompt, &sp.Personality,
		&sp.Status, &sp.CurrentStreak, &sp.LongestStreak, &snoozed,
		&schedule, &sp.DreamStateURL, &generating, &createdAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sp.DreamStateGenerating = generating != 0
	if snoozed.Valid && snoozed.String != "" {
		t, err := time.Parse(time.RFC3339Nano, snoozed.String)
		if err != nil {
			return nil, fmt.Errorf("parse snoozed_until: %w", err)
		}
		sp.SnoozedUntil = &t
	}
	if schedule != "" {
		if err := json.Unmarshal([]byte(schedule), &sp.Schedule); err != nil {
			return nil, fmt.Errorf("parse schedule: %w", err)
		}
	}
	if createdAt != "" {
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		sp.CreatedAt = t
	}
	return &sp, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func emptyIfNil(entries []model.ScheduleEntry) []model.ScheduleEntry {
	if entries == nil {
		return []model.ScheduleEntry{}
	}
	return entries
}
