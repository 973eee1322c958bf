package gamesession

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	"github.com/yourusername/trafikk-api/internal/domain/repository"
)

// Engine — игровой движок "Хвем хар форкьёрсретт?" (traffic_rules):
// генерация головоломок, обработка действий и финальный подсчет.
// Движок не делает I/O в игровом ядре: шаблоны читаются на границе
// (при создании сессии), результат персистится вызывающим слоем.
type Engine struct {
	config    *Config
	generator *Generator
	actions   *ActionProcessor
	scorer    *Scorer
}

// NewEngine создает движок поверх каталога шаблонов сценариев
func NewEngine(scenarioRepo repository.ScenarioRepository, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	scorer := NewScorer(config)
	return &Engine{
		config:    config,
		generator: NewGenerator(scenarioRepo, config),
		actions:   NewActionProcessor(config, scorer),
		scorer:    scorer,
	}
}

// ID возвращает идентификатор игры
func (e *Engine) ID() string {
	return GameIDTrafficRules
}

// Config возвращает конфигурацию движка
func (e *Engine) Config() *Config {
	return e.config
}

// NewSession генерирует сценарий и создает состояние новой сессии
func (e *Engine) NewSession(userID uint, scenarioType string, difficulty Difficulty) (*SessionState, error) {
	scenario, solution, err := e.generator.Generate(GameIDTrafficRules, scenarioType, difficulty)
	if err != nil {
		return nil, err
	}

	state := NewSessionState(uuid.New().String(), userID, GameIDTrafficRules, difficulty, scenario, solution)
	log.Printf("[Engine] Новая сессия %s: user=%d, сценарий '%s', сложность %s",
		state.ID, userID, scenario.Title, difficulty)
	return state, nil
}

// ProcessAction применяет действие игрока к сессии
func (e *Engine) ProcessAction(state *SessionState, actionType string, payload map[string]interface{}) (*ActionResult, error) {
	return e.actions.Process(state, actionType, payload)
}

// TimeLimitSec возвращает лимит времени для сложности
func (e *Engine) TimeLimitSec(difficulty Difficulty) int {
	return e.config.TimeLimitSec[difficulty]
}

// Finalize завершает сессию: фиксирует время окончания, считает итоговый
// счет, XP и достижения и собирает результат для персистентности.
// Вызывается ровно один раз на сессию, под мьютексом сессии.
func (e *Engine) Finalize(state *SessionState) *entity.GameResult {
	state.Mu.Lock()
	defer state.Mu.Unlock()

	now := time.Now()
	state.EndedAt = &now

	elapsed := state.ElapsedSec()

	// perfect — безошибочная сессия с полностью правильной расстановкой
	correct := 0
	for vehicleID, entry := range state.Solution {
		if state.Positions[vehicleID] == entry.Position {
			correct++
		}
	}
	perfect := state.PerfectSoFar && correct == len(state.Solution)

	score := e.scorer.FinalScore(perfect, state.HintsUsed, elapsed, state.Difficulty)
	maxScore := e.scorer.MaxScore(state.Difficulty)
	xp := e.scorer.XPEarned(score, state.Difficulty)
	achievements := e.scorer.EvaluateAchievements(perfect, state.HintsUsed, elapsed)

	state.Score = score

	result := &entity.GameResult{
		SessionID:         state.ID,
		UserID:            state.UserID,
		GameID:            state.GameID,
		Score:             score,
		MaxScore:          maxScore,
		CompletionTimeSec: elapsed,
		CorrectAnswers:    correct,
		TotalQuestions:    len(state.Solution),
		XPEarned:          xp,
		Achievements:      entity.StringArray(AchievementList(achievements)),
		PerformanceData: entity.JSONMap{
			"difficulty":    string(state.Difficulty),
			"scenario_type": state.Scenario.ScenarioType,
			"template_id":   state.Scenario.TemplateID,
			"hints_used":    state.HintsUsed,
			"moves_count":   state.MovesCount,
			"perfect":       perfect,
		},
		CompletedAt: now,
	}

	log.Printf("[Engine] Сессия %s завершена: score=%d/%d, xp=%d, достижений=%d, время=%.0fс",
		state.ID, score, maxScore, xp, len(achievements), elapsed)
	return result
}
