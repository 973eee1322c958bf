package gamesession

import (
	"fmt"

	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
)

// GameIDTrafficRules — идентификатор игры-головоломки по правилам дорожного движения
const GameIDTrafficRules = "traffic_rules"

// Difficulty задает уровень сложности сессии
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty разбирает сложность из запроса клиента.
// Пустая строка трактуется как medium, неизвестное значение — ошибка валидации.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "":
		return DifficultyMedium, nil
	case string(DifficultyEasy), string(DifficultyMedium), string(DifficultyHard):
		return Difficulty(s), nil
	default:
		return "", fmt.Errorf("%w: difficulty '%s'", apperrors.ErrValidation, s)
	}
}

// Config содержит настройки игрового движка: константы подсчета очков,
// параметры сложности и границы игрового поля. Все значения типизированы
// и фиксируются при старте процесса, никаких нетипизированных блобов.
type Config struct {
	// Константы подсчета очков
	PerfectScore          int // База при безошибочной сессии
	PartialBase           int // База при сессии с ошибками
	HintPenalty           int // Штраф за каждую использованную подсказку
	SpeedBonusMax         int // Потолок бонуса за скорость
	TimeThresholdSec      int // Порог времени, после которого бонус за скорость не начисляется
	CorrectPlacement      int // Очки за каждую правильную расстановку в submit
	WrongPlacementPenalty int // Штраф за каждую неправильную расстановку в submit

	// Параметры по сложности
	Multipliers  map[Difficulty]float64
	MaxVehicles  map[Difficulty]int
	TimeLimitSec map[Difficulty]int
	BaseXP       map[Difficulty]int

	// Максимальный возраст сессии до принудительной очистки
	SessionMaxAgeHours int

	// Границы координат игрового поля
	BoardWidth  float64
	BoardHeight float64
}

// DefaultConfig возвращает конфигурацию движка по умолчанию
func DefaultConfig() *Config {
	return &Config{
		PerfectScore:          100,
		PartialBase:           50,
		HintPenalty:           10,
		SpeedBonusMax:         30,
		TimeThresholdSec:      120,
		CorrectPlacement:      20,
		WrongPlacementPenalty: 5,
		Multipliers: map[Difficulty]float64{
			DifficultyEasy:   1.0,
			DifficultyMedium: 1.3,
			DifficultyHard:   1.6,
		},
		MaxVehicles: map[Difficulty]int{
			DifficultyEasy:   3,
			DifficultyMedium: 4,
			DifficultyHard:   6,
		},
		TimeLimitSec: map[Difficulty]int{
			DifficultyEasy:   180,
			DifficultyMedium: 120,
			DifficultyHard:   90,
		},
		BaseXP: map[Difficulty]int{
			DifficultyEasy:   50,
			DifficultyMedium: 100,
			DifficultyHard:   150,
		},
		SessionMaxAgeHours: 24,
		BoardWidth:         800,
		BoardHeight:        600,
	}
}

// Multiplier возвращает множитель сложности (1.0 для неизвестной сложности)
func (c *Config) Multiplier(d Difficulty) float64 {
	if m, ok := c.Multipliers[d]; ok {
		return m
	}
	return 1.0
}

// Типы действий игрока. Неизвестный тип — ErrUnknownAction, состояние не меняется.
const (
	ActionMoveVehicle    = "move_vehicle"
	ActionRequestHint    = "request_hint"
	ActionSubmitSolution = "submit_solution"
	ActionResetScenario  = "reset_scenario"
)
