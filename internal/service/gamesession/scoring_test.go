package gamesession

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorer_FinalScore_PerfectMediumWithSpeedBonus(t *testing.T) {
	// Безошибочная сессия на medium за 45 секунд:
	// база 100, бонус floor((120-45)/10)=7, итог round(107*1.3)=139
	scorer := NewScorer(DefaultConfig())

	score := scorer.FinalScore(true, 0, 45, DifficultyMedium)

	assert.Equal(t, 139, score)
	assert.Greater(t, score, 100, "Итог с бонусом за скорость должен превышать базу")
}

func TestScorer_FinalScore_PartialWithHints(t *testing.T) {
	// Сессия с ошибками, 2 подсказки, без бонуса за скорость:
	// round((50 - 20 + 0) * 1.0) = 30
	scorer := NewScorer(DefaultConfig())

	score := scorer.FinalScore(false, 2, 150, DifficultyEasy)

	assert.Equal(t, 30, score)
}

func TestScorer_FinalScore_FlooredAtZero(t *testing.T) {
	// Штраф за подсказки может увести сырой счет в минус, итог — ноль
	scorer := NewScorer(DefaultConfig())

	score := scorer.FinalScore(false, 10, 300, DifficultyHard)

	assert.Equal(t, 0, score)
}

func TestScorer_FinalScore_MonotonicInHints(t *testing.T) {
	// Больше подсказок — не больше очков, при прочих равных
	scorer := NewScorer(DefaultConfig())

	prev := scorer.FinalScore(true, 0, 100, DifficultyMedium)
	for hints := 1; hints <= 12; hints++ {
		cur := scorer.FinalScore(true, hints, 100, DifficultyMedium)
		assert.LessOrEqual(t, cur, prev, "Счет не должен расти с числом подсказок (hints=%d)", hints)
		prev = cur
	}
}

func TestScorer_TimeBonus(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	// За порогом бонуса нет
	assert.Equal(t, 0, scorer.TimeBonus(120))
	assert.Equal(t, 0, scorer.TimeBonus(500))

	// Внутри порога: по очку за каждые 10 секунд запаса
	assert.Equal(t, 7, scorer.TimeBonus(45))
	assert.Equal(t, 11, scorer.TimeBonus(5))

	// Максимум при мгновенном решении
	assert.Equal(t, 12, scorer.TimeBonus(0))
}

func TestScorer_MaxScore_PerDifficulty(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	assert.Equal(t, 130, scorer.MaxScore(DifficultyEasy))   // (100+30)*1.0
	assert.Equal(t, 169, scorer.MaxScore(DifficultyMedium)) // (100+30)*1.3
	assert.Equal(t, 208, scorer.MaxScore(DifficultyHard))   // (100+30)*1.6
}

func TestScorer_XPEarned_ProportionalToScore(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	// Полный максимум дает полный BaseXP
	assert.Equal(t, 100, scorer.XPEarned(scorer.MaxScore(DifficultyMedium), DifficultyMedium))

	// Ноль очков — ноль опыта
	assert.Equal(t, 0, scorer.XPEarned(0, DifficultyHard))

	// Пропорция: 139/169 от 100 XP = round(82.2) = 82
	assert.Equal(t, 82, scorer.XPEarned(139, DifficultyMedium))
}

func TestScorer_SubmissionScore_Breakdown(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	// 3 правильных, 1 неправильная, 45 секунд, сессия уже с ошибкой
	b := scorer.SubmissionScore(3, 1, 45, false)

	assert.Equal(t, 55, b.PlacementScore) // 3*20 - 1*5
	assert.Equal(t, 7, b.TimeBonus)
	assert.Equal(t, 0, b.AccuracyBonus, "Бонус за точность только при безошибочной сессии")
	assert.Equal(t, 62, b.Total)
}

func TestScorer_SubmissionScore_AccuracyBonusWhenPerfect(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	b := scorer.SubmissionScore(4, 0, 30, true)

	assert.Equal(t, 80, b.PlacementScore)
	assert.Equal(t, 100, b.AccuracyBonus)
	assert.Equal(t, 80+9+100, b.Total)
}

func TestScorer_SubmissionScore_FlooredAtZero(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	b := scorer.SubmissionScore(0, 6, 300, false)

	assert.Equal(t, -30, b.PlacementScore)
	assert.Equal(t, 0, b.Total, "Итог попытки не опускается ниже нуля")
}

func TestScorer_EvaluateAchievements(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	tests := []struct {
		name     string
		perfect  bool
		hints    int
		elapsed  float64
		expected []string
	}{
		{
			name:     "Идеальная быстрая сессия получает все достижения",
			perfect:  true,
			hints:    0,
			elapsed:  45,
			expected: []string{AchievementFirstPuzzle, AchievementPerfectScore, AchievementSpeedDemon, AchievementNoHints},
		},
		{
			name:     "Идеальная сессия с подсказками не дает perfect_score и no_hints",
			perfect:  true,
			hints:    2,
			elapsed:  45,
			expected: []string{AchievementFirstPuzzle, AchievementSpeedDemon},
		},
		{
			name:     "Медленная сессия с ошибками дает только first_puzzle и no_hints",
			perfect:  false,
			hints:    0,
			elapsed:  90,
			expected: []string{AchievementFirstPuzzle, AchievementNoHints},
		},
		{
			name:     "Ровно 60 секунд — без speed_demon",
			perfect:  false,
			hints:    1,
			elapsed:  60,
			expected: []string{AchievementFirstPuzzle},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := scorer.EvaluateAchievements(tt.perfect, tt.hints, tt.elapsed)

			assert.ElementsMatch(t, tt.expected, AchievementList(set))
		})
	}
}

func TestAchievementList_StableOrderWithoutDuplicates(t *testing.T) {
	set := map[string]struct{}{
		AchievementNoHints:     {},
		AchievementFirstPuzzle: {},
	}

	list := AchievementList(set)

	assert.Equal(t, []string{AchievementFirstPuzzle, AchievementNoHints}, list)
}
