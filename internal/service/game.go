package service

import (
	"context"
	"fmt"

	"tidyspot/internal/gamify"
	"tidyspot/internal/model"
)

// GamificationView is the assembled progress report for the API.
type GamificationView struct {
	TotalXP      int                 `json:"total_xp"`
	Level        gamify.LevelInfo    `json:"level"`
	Achievements []AchievementStatus `json:"achievements"`
	ResetsToday  int                 `json:"resets_today"`
	ResetsTotal  int                 `json:"resets_total"`
	Challenge    ChallengeStatus     `json:"daily_challenge"`
}

type AchievementStatus struct {
	gamify.Achievement
	Unlocked bool `json:"unlocked"`
}

type ChallengeStatus struct {
	gamify.Challenge
	Completed bool `json:"completed"`
}

// Gamification assembles the full progress view.
func (s *Service) Gamification(ctx context.Context) (*GamificationView, error) {
	game, err := s.store.Game().Load(ctx)
	if err != nil {
		return nil, err
	}

	view := &GamificationView{
		TotalXP:     game.TotalXP,
		Level:       gamify.LevelForXP(game.TotalXP),
		ResetsToday: game.ResetsToday,
		ResetsTotal: game.ResetsTotal,
		Challenge:   s.challengeStatus(game),
	}
	for _, a := range gamify.Achievements {
		view.Achievements = append(view.Achievements, AchievementStatus{
			Achievement: a,
			Unlocked:    containsString(game.Unlocked, a.ID),
		})
	}
	return view, nil
}

// Challenge returns today's rotating challenge and its completion state.
func (s *Service) Challenge(ctx context.Context) (*ChallengeStatus, error) {
	game, err := s.store.Game().Load(ctx)
	if err != nil {
		return nil, err
	}
	status := s.challengeStatus(game)
	return &status, nil
}

// CompleteChallenge marks today's challenge done and awards its XP once
// per day.
func (s *Service) CompleteChallenge(ctx context.Context) (*ChallengeStatus, int, error) {
	game, err := s.store.Game().Load(ctx)
	if err != nil {
		return nil, 0, err
	}
	today := s.today()
	if game.ChallengeDate == today && game.ChallengeDone {
		return nil, 0, fmt.Errorf("daily challenge already completed: %w", model.ErrConflict)
	}

	challenge := gamify.DailyChallenge(s.now())
	game.ChallengeDate = today
	game.ChallengeDone = true
	game.TotalXP += challenge.XPReward
	if err := s.store.Game().Save(ctx, game); err != nil {
		return nil, 0, err
	}
	return &ChallengeStatus{Challenge: challenge, Completed: true}, challenge.XPReward, nil
}

func (s *Service) challengeStatus(game *model.GameState) ChallengeStatus {
	return ChallengeStatus{
		Challenge: gamify.DailyChallenge(s.now()),
		Completed: game.ChallengeDate == s.today() && game.ChallengeDone,
	}
}

func (s *Service) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// addXP bumps the XP total.
func (s *Service) addXP(ctx context.Context, xp int) error {
	game, err := s.store.Game().Load(ctx)
	if err != nil {
		return err
	}
	game.TotalXP += xp
	return s.store.Game().Save(ctx, game)
}

// recordReset bumps the reset counters, rolling the daily counter over at
// midnight UTC. The caller mutates and saves the returned state.
func (s *Service) recordReset(ctx context.Context) (*model.GameState, error) {
	game, err := s.store.Game().Load(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if game.LastResetAt == nil || game.LastResetAt.UTC().Format("2006-01-02") != now.Format("2006-01-02") {
		game.ResetsToday = 0
	}
	game.ResetsToday++
	game.ResetsTotal++
	game.LastResetAt = &now
	return game, nil
}
