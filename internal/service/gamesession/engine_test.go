package gamesession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	mockRepo := new(MockScenarioRepoForGenerator)
	mockRepo.On("GetActiveByType", GameIDTrafficRules, entity.ScenarioIntersection).
		Return([]entity.ScenarioTemplate{intersectionTemplate()}, nil)
	engine := NewEngine(mockRepo, DefaultConfig())
	engine.generator.SetSeed(42)
	return engine
}

func TestEngine_NewSession(t *testing.T) {
	// Arrange
	engine := newTestEngine(t)

	// Act
	state, err := engine.NewSession(7, entity.ScenarioIntersection, DifficultyMedium)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, uint(7), state.UserID)
	assert.Equal(t, GameIDTrafficRules, state.GameID)
	assert.Equal(t, DifficultyMedium, state.Difficulty)
	assert.True(t, state.PerfectSoFar)
	assert.Nil(t, state.EndedAt)
	assert.NotEmpty(t, state.Solution)
	assert.Len(t, state.Solution, len(state.Scenario.Vehicles))
}

func TestEngine_NewSession_UniqueIDs(t *testing.T) {
	engine := newTestEngine(t)

	first, err := engine.NewSession(1, entity.ScenarioIntersection, DifficultyEasy)
	require.NoError(t, err)
	second, err := engine.NewSession(1, entity.ScenarioIntersection, DifficultyEasy)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestEngine_TimeLimitSec(t *testing.T) {
	engine := newTestEngine(t)

	assert.Equal(t, 180, engine.TimeLimitSec(DifficultyEasy))
	assert.Equal(t, 120, engine.TimeLimitSec(DifficultyMedium))
	assert.Equal(t, 90, engine.TimeLimitSec(DifficultyHard))
}

func TestEngine_Finalize_PerfectSession(t *testing.T) {
	// Arrange: все участники на целевых местах, без подсказок
	engine := newTestEngine(t)
	state, err := engine.NewSession(7, entity.ScenarioIntersection, DifficultyMedium)
	require.NoError(t, err)

	for vehicleID, entry := range state.Solution {
		result, err := engine.ProcessAction(state, ActionMoveVehicle, map[string]interface{}{
			"vehicle_id": vehicleID,
			"position":   entry.Position,
		})
		require.NoError(t, err)
		require.True(t, *result.Correct)
	}

	// Act
	result := engine.Finalize(state)

	// Assert
	require.NotNil(t, result)
	assert.Equal(t, state.ID, result.SessionID)
	assert.Equal(t, uint(7), result.UserID)
	assert.Equal(t, GameIDTrafficRules, result.GameID)
	assert.Equal(t, len(state.Solution), result.CorrectAnswers)
	assert.Equal(t, len(state.Solution), result.TotalQuestions)
	assert.Equal(t, 169, result.MaxScore)
	assert.Greater(t, result.Score, 100, "Быстрая безошибочная сессия набирает больше базы")
	assert.Greater(t, result.XPEarned, 0)
	assert.NotNil(t, state.EndedAt)
	assert.Equal(t, result.Score, state.Score)

	// Длительность хранится в секундах без усечения дробной части
	assert.GreaterOrEqual(t, result.CompletionTimeSec, 0.0)
	assert.InDelta(t, state.ElapsedSec(), result.CompletionTimeSec, 0.5)

	// Достижения: быстрая безошибочная сессия без подсказок
	assert.Equal(t, entity.StringArray{
		AchievementFirstPuzzle,
		AchievementPerfectScore,
		AchievementSpeedDemon,
		AchievementNoHints,
	}, result.Achievements)

	assert.Equal(t, string(DifficultyMedium), result.PerformanceData["difficulty"])
	assert.Equal(t, entity.ScenarioIntersection, result.PerformanceData["scenario_type"])
	assert.Equal(t, true, result.PerformanceData["perfect"])
	assert.Equal(t, 0, result.PerformanceData["hints_used"])
}

func TestEngine_Finalize_SubmitDrivenPerfectSession(t *testing.T) {
	// Arrange: решение целиком сдано одним submit_solution, без одиночных ходов
	engine := newTestEngine(t)
	state, err := engine.NewSession(7, entity.ScenarioIntersection, DifficultyMedium)
	require.NoError(t, err)

	positions := make(map[string]interface{}, len(state.Solution))
	for vehicleID, entry := range state.Solution {
		positions[vehicleID] = entry.Position
	}
	submitResult, err := engine.ProcessAction(state, ActionSubmitSolution, map[string]interface{}{
		"positions": positions,
	})
	require.NoError(t, err)
	require.True(t, *submitResult.Complete)
	require.True(t, state.PerfectSoFar)

	// Act
	result := engine.Finalize(state)

	// Assert: подтвержденное полное решение дает безошибочную базу
	assert.Equal(t, len(state.Solution), result.CorrectAnswers)
	assert.Equal(t, true, result.PerformanceData["perfect"])
	assert.Contains(t, result.Achievements, AchievementPerfectScore)
	assert.Greater(t, result.Score, 100, "Итог должен считаться от безошибочной базы с бонусом за скорость")
}

func TestEngine_Finalize_ImperfectSession(t *testing.T) {
	// Arrange: одна ошибка и одна подсказка
	engine := newTestEngine(t)
	state, err := engine.NewSession(7, entity.ScenarioIntersection, DifficultyMedium)
	require.NoError(t, err)

	var anyVehicle string
	for vehicleID := range state.Solution {
		anyVehicle = vehicleID
		break
	}
	_, err = engine.ProcessAction(state, ActionMoveVehicle, map[string]interface{}{
		"vehicle_id": anyVehicle,
		"position":   "plass_999",
	})
	require.NoError(t, err)
	_, err = engine.ProcessAction(state, ActionRequestHint, nil)
	require.NoError(t, err)

	// Act
	result := engine.Finalize(state)

	// Assert: нет достижений за безошибочность и подсказки
	assert.NotContains(t, result.Achievements, AchievementPerfectScore)
	assert.NotContains(t, result.Achievements, AchievementNoHints)
	assert.Contains(t, result.Achievements, AchievementFirstPuzzle)
	assert.Equal(t, false, result.PerformanceData["perfect"])
	assert.Equal(t, 1, result.PerformanceData["hints_used"])
	assert.Less(t, result.Score, result.MaxScore)
}

func TestEngine_Finalize_EmptyBoardIsNotPerfect(t *testing.T) {
	// Без единого хода сессия формально безошибочна, но решение не собрано
	engine := newTestEngine(t)
	state, err := engine.NewSession(7, entity.ScenarioIntersection, DifficultyMedium)
	require.NoError(t, err)

	result := engine.Finalize(state)

	assert.Equal(t, 0, result.CorrectAnswers)
	assert.Equal(t, false, result.PerformanceData["perfect"])
	assert.NotContains(t, result.Achievements, AchievementPerfectScore)
}
