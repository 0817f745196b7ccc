package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tidyspot/internal/model"
)

type gameStore struct {
	db *sql.DB
}

func (s *gameStore) Load(ctx context.Context) (*model.GameState, error) {
	row := s.db.QueryRowContext(ctx, `SELECT total_xp, unlocked,
		challenge_date, challenge_done, resets_today, resets_total,
		last_reset_at FROM gamification WHERE id = 1`)

	var (
		g         model.GameState
		unlocked  string
		done      int
		lastReset sql.NullString
	)
	err := row.Scan(&g.TotalXP, &unlocked, &g.ChallengeDate, &done,
		&g.ResetsToday, &g.ResetsTotal, &lastReset)
	if err == sql.ErrNoRows {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO gamification (id) VALUES (1)`); err != nil {
			return nil, err
		}
		return &model.GameState{Unlocked: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	g.ChallengeDone = done != 0
	if err := json.Unmarshal([]byte(unlocked), &g.Unlocked); err != nil {
		return nil, fmt.Errorf("parse unlocked achievements: %w", err)
	}
	if g.Unlocked == nil {
		g.Unlocked = []string{}
	}
	if lastReset.Valid && lastReset.String != "" {
		if t, err := time.Parse(time.RFC3339Nano, lastReset.String); err == nil {
			g.LastResetAt = &t
		}
	}
	return &g, nil
}

func (s *gameStore) Save(ctx context.Context, g *model.GameState) error {
	unlocked := g.Unlocked
	if unlocked == nil {
		unlocked = []string{}
	}
	unlockedJSON, err := json.Marshal(unlocked)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO gamification
		(id, total_xp, unlocked, challenge_date, challenge_done, resets_today,
		 resets_total, last_reset_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 total_xp = excluded.total_xp,
		 unlocked = excluded.unlocked,
		 challenge_date = excluded.challenge_date,
		 challenge_done = excluded.challenge_done,
		 resets_today = excluded.resets_today,
		 resets_total = excluded.resets_total,
		 last_reset_at = excluded.last_reset_at`,
		g.TotalXP, string(unlockedJSON), g.ChallengeDate,
		boolToInt(g.ChallengeDone), g.ResetsToday, g.ResetsTotal,
		nullTime(g.LastResetAt))
	return err
}
