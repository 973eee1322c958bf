package gamesession

import (
	"math"
)

// Коды достижений. Достижения — множество (без дублей и без порядка).
const (
	AchievementFirstPuzzle  = "first_puzzle"
	AchievementPerfectScore = "perfect_score"
	AchievementSpeedDemon   = "speed_demon"
	AchievementNoHints      = "no_hints"
)

// Scorer считает очки, бонусы, XP и достижения по правилам движка.
// Все формулы детерминированы и зависят только от состояния сессии.
type Scorer struct {
	config *Config
}

// NewScorer создает калькулятор очков
func NewScorer(config *Config) *Scorer {
	return &Scorer{config: config}
}

// SubmissionBreakdown — покомпонентная оценка одной попытки submit_solution.
// На итоговый счет сессии не влияет, только на обратную связь игроку.
type SubmissionBreakdown struct {
	PlacementScore int `json:"placement_score"` // +за правильные, -за неправильные расстановки
	TimeBonus      int `json:"time_bonus"`
	AccuracyBonus  int `json:"accuracy_bonus"` // Бонус за безошибочную сессию
	Total          int `json:"total"`
}

// SubmissionScore считает оценку попытки: очки за расстановки, бонус за
// скорость на момент попытки и бонус за точность, если за сессию не было
// ни одной ошибки. Итог не опускается ниже нуля.
func (s *Scorer) SubmissionScore(correct, wrong int, elapsedSec float64, perfectSoFar bool) SubmissionBreakdown {
	b := SubmissionBreakdown{
		PlacementScore: correct*s.config.CorrectPlacement - wrong*s.config.WrongPlacementPenalty,
		TimeBonus:      s.TimeBonus(elapsedSec),
	}
	if perfectSoFar {
		b.AccuracyBonus = s.config.PerfectScore
	}
	b.Total = b.PlacementScore + b.TimeBonus + b.AccuracyBonus
	if b.Total < 0 {
		b.Total = 0
	}
	return b
}

// TimeBonus начисляет бонус за скорость: ноль при elapsed >= порога,
// иначе по одному очку за каждые 10 секунд запаса, но не выше потолка.
func (s *Scorer) TimeBonus(elapsedSec float64) int {
	if elapsedSec >= float64(s.config.TimeThresholdSec) {
		return 0
	}
	bonus := int(math.Floor((float64(s.config.TimeThresholdSec) - elapsedSec) / 10))
	if bonus > s.config.SpeedBonusMax {
		bonus = s.config.SpeedBonusMax
	}
	if bonus < 0 {
		bonus = 0
	}
	return bonus
}

// FinalScore считает итоговый счет завершенной сессии.
// perfect — решение сдано без единой ошибки за всю сессию.
func (s *Scorer) FinalScore(perfect bool, hintsUsed int, elapsedSec float64, difficulty Difficulty) int {
	var base int
	if perfect {
		base = s.config.PerfectScore
	} else {
		base = s.config.PartialBase
	}

	// Штраф за подсказки и бонус за скорость суммируются до умножения
	// на множитель сложности; ниже нуля итог не опускается.
	raw := base - hintsUsed*s.config.HintPenalty + s.TimeBonus(elapsedSec)
	score := int(math.Round(float64(raw) * s.config.Multiplier(difficulty)))
	if score < 0 {
		score = 0
	}
	return score
}

// MaxScore — теоретический максимум для сложности: идеальное решение
// с максимальным бонусом за скорость, умноженное на множитель сложности.
func (s *Scorer) MaxScore(difficulty Difficulty) int {
	return int(math.Round(float64(s.config.PerfectScore+s.config.SpeedBonusMax) * s.config.Multiplier(difficulty)))
}

// XPEarned — опыт пропорционально доле набранных очков от максимума
func (s *Scorer) XPEarned(score int, difficulty Difficulty) int {
	maxScore := s.MaxScore(difficulty)
	if maxScore <= 0 {
		return 0
	}
	baseXP := s.config.BaseXP[difficulty]
	return int(math.Round(float64(baseXP) * float64(score) / float64(maxScore)))
}

// EvaluateAchievements возвращает множество заработанных достижений.
// first_puzzle выдается за каждую завершенную сессию: дедупликация по
// истории игрока — забота слоя персистентности, не движка.
func (s *Scorer) EvaluateAchievements(perfect bool, hintsUsed int, elapsedSec float64) map[string]struct{} {
	achievements := map[string]struct{}{
		AchievementFirstPuzzle: {},
	}
	if perfect && hintsUsed == 0 {
		achievements[AchievementPerfectScore] = struct{}{}
	}
	if elapsedSec < 60 {
		achievements[AchievementSpeedDemon] = struct{}{}
	}
	if hintsUsed == 0 {
		achievements[AchievementNoHints] = struct{}{}
	}
	return achievements
}

// AchievementList разворачивает множество достижений в срез со
// стабильным порядком (для сериализации в результат).
func AchievementList(set map[string]struct{}) []string {
	order := []string{
		AchievementFirstPuzzle,
		AchievementPerfectScore,
		AchievementSpeedDemon,
		AchievementNoHints,
	}
	list := make([]string, 0, len(set))
	for _, code := range order {
		if _, ok := set[code]; ok {
			list = append(list, code)
		}
	}
	return list
}
