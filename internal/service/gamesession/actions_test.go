package gamesession

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
)

// newActionTestState собирает сессию из двух участников с известным эталоном:
// ambulanse -> plass_1, bil -> plass_2
func newActionTestState() *SessionState {
	scenario := &ScenarioInstance{
		TemplateID:   1,
		ScenarioType: entity.ScenarioIntersection,
		Title:        "Kryss uten lysregulering",
		Vehicles: []entity.VehicleType{
			{ID: "ambulanse", Name: "Ambulanse", Priority: entity.EmergencyPriority},
			{ID: "bil", Name: "Bil", Priority: 1},
		},
	}
	solution := SolutionMap{
		"ambulanse": {VehicleID: "ambulanse", Position: "plass_1", Order: 1, Justification: "Utrykningskjøretøy har alltid forkjørsrett."},
		"bil":       {VehicleID: "bil", Position: "plass_2", Order: 2, Justification: "Følger de ordinære vikepliktsreglene."},
	}
	return NewSessionState("sess-test", 7, GameIDTrafficRules, DifficultyMedium, scenario, solution)
}

func newActionProcessor() *ActionProcessor {
	config := DefaultConfig()
	return NewActionProcessor(config, NewScorer(config))
}

func TestActionProcessor_UnknownAction(t *testing.T) {
	// Arrange
	p := newActionProcessor()
	state := newActionTestState()

	// Act
	result, err := p.Process(state, "teleport", map[string]interface{}{})

	// Assert: ошибка и нетронутое состояние
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownAction)
	assert.Nil(t, result)
	assert.Equal(t, 0, state.MovesCount)
	assert.Equal(t, 0, state.HintsUsed)
	assert.True(t, state.PerfectSoFar)
}

func TestActionProcessor_NoSolutionMap(t *testing.T) {
	p := newActionProcessor()
	state := newActionTestState()
	state.Solution = nil

	result, err := p.Process(state, ActionRequestHint, nil)

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestActionProcessor_MoveVehicle_Correct(t *testing.T) {
	// Arrange
	p := newActionProcessor()
	state := newActionTestState()

	// Act
	result, err := p.Process(state, ActionMoveVehicle, map[string]interface{}{
		"vehicle_id": "ambulanse",
		"position":   "plass_1",
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result.Correct)
	assert.True(t, *result.Correct)
	assert.Equal(t, "Riktig! Ambulanse er plassert riktig.", result.Feedback)
	assert.Equal(t, 1, result.MovesCount)
	assert.Equal(t, "plass_1", state.Positions["ambulanse"])
	assert.True(t, state.PerfectSoFar)
}

func TestActionProcessor_MoveVehicle_Wrong(t *testing.T) {
	// Arrange
	p := newActionProcessor()
	state := newActionTestState()

	// Act
	result, err := p.Process(state, ActionMoveVehicle, map[string]interface{}{
		"vehicle_id": "bil",
		"position":   "plass_1",
	})

	// Assert: позиция записана, но сессия больше не безошибочная
	require.NoError(t, err)
	require.NotNil(t, result.Correct)
	assert.False(t, *result.Correct)
	assert.Equal(t, "Feil plassering for Bil. Prøv igjen!", result.Feedback)
	assert.Equal(t, "plass_1", state.Positions["bil"])
	assert.False(t, state.PerfectSoFar)
}

func TestActionProcessor_MoveVehicle_UnknownVehicle(t *testing.T) {
	p := newActionProcessor()
	state := newActionTestState()

	result, err := p.Process(state, ActionMoveVehicle, map[string]interface{}{
		"vehicle_id": "traktor",
		"position":   "plass_1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Nil(t, result)
	assert.Equal(t, 0, state.MovesCount)
}

func TestActionProcessor_MoveVehicle_MissingFields(t *testing.T) {
	p := newActionProcessor()
	state := newActionTestState()

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"Нет vehicle_id", map[string]interface{}{"position": "plass_1"}},
		{"Нет position", map[string]interface{}{"vehicle_id": "bil"}},
		{"Пустая строка", map[string]interface{}{"vehicle_id": "", "position": "plass_1"}},
		{"Не строка", map[string]interface{}{"vehicle_id": 42, "position": "plass_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Process(state, ActionMoveVehicle, tt.payload)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestActionProcessor_RequestHint(t *testing.T) {
	// Arrange
	p := newActionProcessor()
	state := newActionTestState()

	// Act
	first, err1 := p.Process(state, ActionRequestHint, nil)
	second, err2 := p.Process(state, ActionRequestHint, nil)

	// Assert: счетчик растет, штраф только сообщается
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, 1, first.HintsUsed)
	assert.Equal(t, 2, second.HintsUsed)
	assert.NotEmpty(t, first.Hint)
	assert.Equal(t, p.config.HintPenalty, first.HintPenalty)
	assert.Contains(t, hintPools[entity.ScenarioIntersection], first.Hint)
	assert.True(t, state.PerfectSoFar, "Подсказки не делают сессию небезошибочной")
}

func TestActionProcessor_RequestHint_GenericPoolFallback(t *testing.T) {
	p := newActionProcessor()
	state := newActionTestState()
	state.Scenario.ScenarioType = "ukjent_scenario"

	result, err := p.Process(state, ActionRequestHint, nil)

	require.NoError(t, err)
	assert.Contains(t, genericHints, result.Hint)
}

func TestActionProcessor_SubmitSolution_Complete(t *testing.T) {
	// Arrange
	p := newActionProcessor()
	state := newActionTestState()

	// Act
	result, err := p.Process(state, ActionSubmitSolution, map[string]interface{}{
		"positions": map[string]interface{}{
			"ambulanse": "plass_1",
			"bil":       "plass_2",
		},
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result.Complete)
	assert.True(t, *result.Complete)
	require.NotNil(t, result.Breakdown)
	assert.Equal(t, 2*p.config.CorrectPlacement, result.Breakdown.PlacementScore)
	assert.Equal(t, p.config.PerfectScore, result.Breakdown.AccuracyBonus)
	assert.True(t, state.PerfectSoFar)
	assert.Equal(t, true, state.SessionData["last_submission_complete"])

	// Сданные позиции зафиксированы в состоянии
	assert.Equal(t, "plass_1", state.Positions["ambulanse"])
	assert.Equal(t, "plass_2", state.Positions["bil"])
}

func TestActionProcessor_SubmitSolution_WrongPlacement(t *testing.T) {
	// Arrange
	p := newActionProcessor()
	state := newActionTestState()

	// Act
	result, err := p.Process(state, ActionSubmitSolution, map[string]interface{}{
		"positions": map[string]interface{}{
			"ambulanse": "plass_2",
			"bil":       "plass_2",
		},
	})

	// Assert: ошибка в submit снимает флаг безошибочности
	require.NoError(t, err)
	assert.False(t, *result.Complete)
	assert.False(t, state.PerfectSoFar)
	assert.Equal(t, 0, result.Breakdown.AccuracyBonus)
	assert.Equal(t, p.config.CorrectPlacement-p.config.WrongPlacementPenalty, result.Breakdown.PlacementScore)
}

func TestActionProcessor_SubmitSolution_MissingVehicleNotCountedAsWrong(t *testing.T) {
	// Arrange: расставлена только половина участников
	p := newActionProcessor()
	state := newActionTestState()

	// Act
	result, err := p.Process(state, ActionSubmitSolution, map[string]interface{}{
		"positions": map[string]interface{}{
			"ambulanse": "plass_1",
		},
	})

	// Assert: решение неполное, но пропуск — не ошибка
	require.NoError(t, err)
	assert.False(t, *result.Complete)
	assert.True(t, state.PerfectSoFar)
	assert.Equal(t, p.config.CorrectPlacement, result.Breakdown.PlacementScore)
}

func TestActionProcessor_SubmitSolution_InvalidPayload(t *testing.T) {
	p := newActionProcessor()
	state := newActionTestState()

	_, err := p.Process(state, ActionSubmitSolution, map[string]interface{}{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = p.Process(state, ActionSubmitSolution, map[string]interface{}{"positions": "plass_1"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestActionProcessor_ResetScenario(t *testing.T) {
	// Arrange: сессия с ходами, ошибкой и потраченной подсказкой
	p := newActionProcessor()
	state := newActionTestState()

	_, err := p.Process(state, ActionRequestHint, nil)
	require.NoError(t, err)
	_, err = p.Process(state, ActionMoveVehicle, map[string]interface{}{
		"vehicle_id": "bil", "position": "plass_1",
	})
	require.NoError(t, err)
	require.False(t, state.PerfectSoFar)

	// Act
	result, err := p.Process(state, ActionResetScenario, nil)

	// Assert: поле чистое, флаг восстановлен, подсказки не возвращаются
	require.NoError(t, err)
	assert.Empty(t, state.Positions)
	assert.Equal(t, 0, state.MovesCount)
	assert.True(t, state.PerfectSoFar)
	assert.Equal(t, 1, result.HintsUsed)
	assert.Equal(t, 1, state.HintsUsed)
}

func TestActionProcessor_ConcurrentActionsOnOneSession(t *testing.T) {
	// Параллельные действия по одной сессии сериализуются ее мьютексом:
	// счетчики сходятся точно
	p := newActionProcessor()
	state := newActionTestState()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				_, err := p.Process(state, ActionRequestHint, nil)
				assert.NoError(t, err)
			} else {
				_, err := p.Process(state, ActionMoveVehicle, map[string]interface{}{
					"vehicle_id": "bil",
					"position":   "plass_2",
				})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, state.HintsUsed)
	assert.Equal(t, 10, state.MovesCount)
}

func TestActionProcessor_ResetThenPerfectSubmit(t *testing.T) {
	// Arrange: ошибка, затем сброс
	p := newActionProcessor()
	state := newActionTestState()

	_, err := p.Process(state, ActionMoveVehicle, map[string]interface{}{
		"vehicle_id": "bil", "position": "plass_1",
	})
	require.NoError(t, err)
	_, err = p.Process(state, ActionResetScenario, nil)
	require.NoError(t, err)

	// Act: безошибочный submit после сброса
	result, err := p.Process(state, ActionSubmitSolution, map[string]interface{}{
		"positions": map[string]interface{}{
			"ambulanse": "plass_1",
			"bil":       "plass_2",
		},
	})

	// Assert: бонус за точность начисляется заново
	require.NoError(t, err)
	assert.True(t, *result.Complete)
	assert.Equal(t, p.config.PerfectScore, result.Breakdown.AccuracyBonus)
}
