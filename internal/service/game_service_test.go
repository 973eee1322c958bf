package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
	"github.com/yourusername/trafikk-api/internal/service/gamesession"
)

// ==================== Моки для GameService ====================

// MockScenarioRepoForGame - мок для repository.ScenarioRepository
type MockScenarioRepoForGame struct {
	mock.Mock
}

func (m *MockScenarioRepoForGame) GetActive(gameID string) ([]entity.ScenarioTemplate, error) {
	args := m.Called(gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ScenarioTemplate), args.Error(1)
}

func (m *MockScenarioRepoForGame) GetActiveByType(gameID, scenarioType string) ([]entity.ScenarioTemplate, error) {
	args := m.Called(gameID, scenarioType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ScenarioTemplate), args.Error(1)
}

func (m *MockScenarioRepoForGame) GetByID(id uint) (*entity.ScenarioTemplate, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ScenarioTemplate), args.Error(1)
}

func (m *MockScenarioRepoForGame) Create(template *entity.ScenarioTemplate) error {
	args := m.Called(template)
	return args.Error(0)
}

func (m *MockScenarioRepoForGame) Update(template *entity.ScenarioTemplate) error {
	args := m.Called(template)
	return args.Error(0)
}

func (m *MockScenarioRepoForGame) SetActive(id uint, active bool) error {
	args := m.Called(id, active)
	return args.Error(0)
}

// MockResultRepoForGame - мок для repository.GameResultRepository
type MockResultRepoForGame struct {
	mock.Mock
}

func (m *MockResultRepoForGame) Save(result *entity.GameResult) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockResultRepoForGame) GetBySessionID(sessionID string) (*entity.GameResult, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameResult), args.Error(1)
}

func (m *MockResultRepoForGame) GetUserResults(userID uint, limit, offset int) ([]entity.GameResult, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.GameResult), args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepoForGame) GetUserBestScore(userID uint, gameID string) (int, error) {
	args := m.Called(userID, gameID)
	return args.Int(0), args.Error(1)
}

func (m *MockResultRepoForGame) CountUserResults(userID uint, gameID string) (int64, error) {
	args := m.Called(userID, gameID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepoForGame - мок для repository.UserRepository
type MockUserRepoForGame struct {
	mock.Mock
}

func (m *MockUserRepoForGame) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepoForGame) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepoForGame) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepoForGame) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepoForGame) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepoForGame) AddXP(userID uint, amount int) error {
	args := m.Called(userID, amount)
	return args.Error(0)
}

func (m *MockUserRepoForGame) RecordGamePlayed(userID uint, score int) error {
	args := m.Called(userID, score)
	return args.Error(0)
}

func (m *MockUserRepoForGame) GetLeaderboard(limit, offset int) ([]entity.User, int64, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

// MockCacheRepoForGame - мок для repository.CacheRepository
type MockCacheRepoForGame struct {
	mock.Mock
}

func (m *MockCacheRepoForGame) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepoForGame) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepoForGame) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepoForGame) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepoForGame) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepoForGame) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepoForGame) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepoForGame) ExpireAt(key string, expiration time.Time) error {
	args := m.Called(key, expiration)
	return args.Error(0)
}

func (m *MockCacheRepoForGame) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// ==================== Фикстуры ====================

type gameServiceFixture struct {
	service    *GameService
	resultRepo *MockResultRepoForGame
	userRepo   *MockUserRepoForGame
	cacheRepo  *MockCacheRepoForGame
	store      *gamesession.SessionStore
}

// newGameServiceFixture собирает сервис с реальным движком traffic_rules
// поверх замоканного каталога сценариев
func newGameServiceFixture(t *testing.T) *gameServiceFixture {
	t.Helper()

	scenarioRepo := new(MockScenarioRepoForGame)
	template := entity.ScenarioTemplate{
		ID:           1,
		GameID:       gamesession.GameIDTrafficRules,
		ScenarioType: entity.ScenarioIntersection,
		Title:        "Kryss uten lysregulering",
		VehicleIDs:   entity.StringArray{"bil", "ambulanse", "fotgjenger"},
		Rules:        entity.StringArray{"Høyreregelen gjelder."},
		PointValue:   100,
		IsActive:     true,
	}
	scenarioRepo.On("GetActive", gamesession.GameIDTrafficRules).
		Return([]entity.ScenarioTemplate{template}, nil).Maybe()
	scenarioRepo.On("GetActiveByType", gamesession.GameIDTrafficRules, mock.Anything).
		Return([]entity.ScenarioTemplate{template}, nil).Maybe()

	registry := NewGameRegistry()
	require.NoError(t, registry.Register(gamesession.NewEngine(scenarioRepo, gamesession.DefaultConfig())))

	resultRepo := new(MockResultRepoForGame)
	userRepo := new(MockUserRepoForGame)
	cacheRepo := new(MockCacheRepoForGame)
	store := gamesession.NewSessionStore()

	return &gameServiceFixture{
		service:    NewGameService(registry, store, resultRepo, userRepo, cacheRepo, 24*time.Hour),
		resultRepo: resultRepo,
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		store:      store,
	}
}

// expectCompletionSideEffects настраивает моки на побочные эффекты
// успешного завершения: XP, статистика, счетчик, инвалидация кеша
func (f *gameServiceFixture) expectCompletionSideEffects(userID uint) {
	f.userRepo.On("AddXP", userID, mock.AnythingOfType("int")).Return(nil)
	f.userRepo.On("RecordGamePlayed", userID, mock.AnythingOfType("int")).Return(nil)
	f.cacheRepo.On("Increment", mock.AnythingOfType("string")).Return(int64(1), nil)
	f.cacheRepo.On("ExpireAt", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	f.cacheRepo.On("Delete", "leaderboard:xp").Return(nil)
}

// ==================== StartSession ====================

func TestGameService_StartSession(t *testing.T) {
	// Arrange
	f := newGameServiceFixture(t)

	// Act
	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "medium")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, started)
	assert.Equal(t, uint(7), started.State.UserID)
	assert.Equal(t, gamesession.DifficultyMedium, started.State.Difficulty)
	assert.Equal(t, 120, started.TimeLimitSec)
	assert.Equal(t, 1, f.service.ActiveSessionCount())
}

func TestGameService_StartSession_DefaultDifficulty(t *testing.T) {
	f := newGameServiceFixture(t)

	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "")

	require.NoError(t, err)
	assert.Equal(t, gamesession.DifficultyMedium, started.State.Difficulty)
}

func TestGameService_StartSession_InvalidDifficulty(t *testing.T) {
	f := newGameServiceFixture(t)

	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "nightmare")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Nil(t, started)
	assert.Equal(t, 0, f.service.ActiveSessionCount())
}

func TestGameService_StartSession_UnknownGame(t *testing.T) {
	f := newGameServiceFixture(t)

	started, err := f.service.StartSession(7, "chess", "", "easy")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownGame)
	assert.Nil(t, started)
}

// ==================== GetSession / ProcessAction ====================

func TestGameService_GetSession_Ownership(t *testing.T) {
	// Arrange: сессия пользователя 7
	f := newGameServiceFixture(t)
	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "easy")
	require.NoError(t, err)

	// Act / Assert: владелец получает сессию, чужой — ErrForbidden
	state, err := f.service.GetSession(7, started.State.ID)
	require.NoError(t, err)
	assert.Equal(t, started.State.ID, state.ID)

	_, err = f.service.GetSession(8, started.State.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestGameService_GetSession_Unknown(t *testing.T) {
	f := newGameServiceFixture(t)

	_, err := f.service.GetSession(7, "no-such-session")

	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestGameService_ProcessAction(t *testing.T) {
	// Arrange
	f := newGameServiceFixture(t)
	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "medium")
	require.NoError(t, err)

	// Act
	result, err := f.service.ProcessAction(7, started.State.ID, "request_hint", nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.HintsUsed)
	assert.NotEmpty(t, result.Hint)
}

func TestGameService_ProcessAction_ForeignSession(t *testing.T) {
	f := newGameServiceFixture(t)
	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "medium")
	require.NoError(t, err)

	_, err = f.service.ProcessAction(8, started.State.ID, "request_hint", nil)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

// ==================== CompleteSession ====================

func TestGameService_CompleteSession(t *testing.T) {
	// Arrange
	f := newGameServiceFixture(t)
	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "medium")
	require.NoError(t, err)

	f.resultRepo.On("Save", mock.AnythingOfType("*entity.GameResult")).Return(nil)
	f.expectCompletionSideEffects(7)

	// Act
	result, err := f.service.CompleteSession(7, started.State.ID)

	// Assert: результат посчитан, сессия изъята из хранилища
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, started.State.ID, result.SessionID)
	assert.Equal(t, uint(7), result.UserID)
	assert.Equal(t, 0, f.service.ActiveSessionCount())

	f.resultRepo.AssertExpectations(t)
	f.userRepo.AssertExpectations(t)
	f.cacheRepo.AssertExpectations(t)
}

func TestGameService_CompleteSession_Twice(t *testing.T) {
	// Arrange
	f := newGameServiceFixture(t)
	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "medium")
	require.NoError(t, err)

	f.resultRepo.On("Save", mock.AnythingOfType("*entity.GameResult")).Return(nil)
	f.expectCompletionSideEffects(7)

	_, err = f.service.CompleteSession(7, started.State.ID)
	require.NoError(t, err)

	// Act: повторное завершение той же сессии
	_, err = f.service.CompleteSession(7, started.State.ID)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	f.resultRepo.AssertNumberOfCalls(t, "Save", 1)
}

func TestGameService_CompleteSession_SaveConflictReturnsStored(t *testing.T) {
	// Arrange: персистентность отвечает конфликтом, результат уже в БД
	f := newGameServiceFixture(t)
	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "medium")
	require.NoError(t, err)

	stored := &entity.GameResult{SessionID: started.State.ID, UserID: 7, Score: 42}
	f.resultRepo.On("Save", mock.AnythingOfType("*entity.GameResult")).
		Return(apperrors.ErrConflict)
	f.resultRepo.On("GetBySessionID", started.State.ID).Return(stored, nil)

	// Act
	result, err := f.service.CompleteSession(7, started.State.ID)

	// Assert: возвращается сохраненный результат, без повторных начислений
	require.NoError(t, err)
	assert.Same(t, stored, result)
	f.userRepo.AssertNotCalled(t, "AddXP", mock.Anything, mock.Anything)
}

func TestGameService_CompleteSession_SaveError(t *testing.T) {
	f := newGameServiceFixture(t)
	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "medium")
	require.NoError(t, err)

	dbErr := errors.New("connection reset")
	f.resultRepo.On("Save", mock.AnythingOfType("*entity.GameResult")).Return(dbErr)

	result, err := f.service.CompleteSession(7, started.State.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Nil(t, result)
}

func TestGameService_CompleteSession_XPFailureDoesNotFail(t *testing.T) {
	// Начисления fire-and-forget: их сбой не ломает завершение
	f := newGameServiceFixture(t)
	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "medium")
	require.NoError(t, err)

	f.resultRepo.On("Save", mock.AnythingOfType("*entity.GameResult")).Return(nil)
	f.userRepo.On("AddXP", uint(7), mock.AnythingOfType("int")).Return(errors.New("deadlock"))
	f.userRepo.On("RecordGamePlayed", uint(7), mock.AnythingOfType("int")).Return(nil)
	f.cacheRepo.On("Increment", mock.AnythingOfType("string")).Return(int64(1), nil)
	f.cacheRepo.On("ExpireAt", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	f.cacheRepo.On("Delete", "leaderboard:xp").Return(nil)

	result, err := f.service.CompleteSession(7, started.State.ID)

	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestGameService_ActionAfterCompletion(t *testing.T) {
	// Идентификатор завершенной сессии недействителен для действий
	f := newGameServiceFixture(t)
	started, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "medium")
	require.NoError(t, err)

	f.resultRepo.On("Save", mock.AnythingOfType("*entity.GameResult")).Return(nil)
	f.expectCompletionSideEffects(7)

	_, err = f.service.CompleteSession(7, started.State.ID)
	require.NoError(t, err)

	_, err = f.service.ProcessAction(7, started.State.ID, "request_hint", nil)

	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

// ==================== История результатов ====================

func TestGameService_GetUserResults_ClampsPagination(t *testing.T) {
	// Arrange
	f := newGameServiceFixture(t)
	f.resultRepo.On("GetUserResults", uint(7), 10, 0).
		Return([]entity.GameResult{}, int64(0), nil).Once()
	f.resultRepo.On("GetUserResults", uint(7), 100, 100).
		Return([]entity.GameResult{}, int64(0), nil).Once()

	// Act: невалидные page/pageSize приводятся к безопасным значениям
	_, _, err := f.service.GetUserResults(7, -3, 0)
	require.NoError(t, err)

	_, _, err = f.service.GetUserResults(7, 2, 500)
	require.NoError(t, err)

	// Assert
	f.resultRepo.AssertExpectations(t)
}

func TestGameService_GetUserGameStats(t *testing.T) {
	// Arrange
	f := newGameServiceFixture(t)
	f.resultRepo.On("GetUserBestScore", uint(7), gamesession.GameIDTrafficRules).
		Return(142, nil)
	f.resultRepo.On("CountUserResults", uint(7), gamesession.GameIDTrafficRules).
		Return(int64(5), nil)

	// Act
	stats, err := f.service.GetUserGameStats(7, gamesession.GameIDTrafficRules)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, gamesession.GameIDTrafficRules, stats.GameID)
	assert.Equal(t, int64(5), stats.GamesCompleted)
	assert.Equal(t, 142, stats.BestScore)
	f.resultRepo.AssertExpectations(t)
}

func TestGameService_GetUserGameStats_UnknownGame(t *testing.T) {
	f := newGameServiceFixture(t)

	stats, err := f.service.GetUserGameStats(7, "chess")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownGame)
	assert.Nil(t, stats)
	f.resultRepo.AssertNotCalled(t, "GetUserBestScore", mock.Anything, mock.Anything)
}

func TestGameService_CleanupExpiredSessions(t *testing.T) {
	f := newGameServiceFixture(t)
	_, err := f.service.StartSession(7, gamesession.GameIDTrafficRules, "", "easy")
	require.NoError(t, err)

	// Свежие сессии переживают очистку
	assert.Equal(t, 0, f.service.CleanupExpiredSessions())
	assert.Equal(t, 1, f.service.ActiveSessionCount())
}
