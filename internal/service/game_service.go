package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	"github.com/yourusername/trafikk-api/internal/domain/repository"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
	"github.com/yourusername/trafikk-api/internal/service/gamesession"
)

const (
	// Ключ кеша лидерборда, инвалидируется при каждом завершении игры
	leaderboardCacheKey = "leaderboard:xp"

	// Префикс суточного счетчика завершенных игр
	dailyGamesKeyPrefix = "games:completed:"
)

// StartedSession — ответ на старт сессии: состояние плюс производные
// параметры, которые клиенту нужны сразу (лимит времени, конфиг поля).
type StartedSession struct {
	State        *gamesession.SessionState
	TimeLimitSec int
}

// GameService оркестрирует игровые сессии: старт, действия, завершение,
// персистентность результатов и начисление XP. Активные сессии живут
// только в памяти (SessionStore), в БД попадает лишь итоговый результат.
type GameService struct {
	registry   *GameRegistry
	store      *gamesession.SessionStore
	resultRepo repository.GameResultRepository
	userRepo   repository.UserRepository
	cacheRepo  repository.CacheRepository

	sessionMaxAge time.Duration
}

// NewGameService создает игровой сервис
func NewGameService(
	registry *GameRegistry,
	store *gamesession.SessionStore,
	resultRepo repository.GameResultRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	sessionMaxAge time.Duration,
) *GameService {
	return &GameService{
		registry:      registry,
		store:         store,
		resultRepo:    resultRepo,
		userRepo:      userRepo,
		cacheRepo:     cacheRepo,
		sessionMaxAge: sessionMaxAge,
	}
}

// ListGames возвращает зарегистрированные игры
func (s *GameService) ListGames() []Game {
	return s.registry.List()
}

// StartSession создает новую игровую сессию для пользователя
func (s *GameService) StartSession(userID uint, gameID, scenarioType, difficultyStr string) (*StartedSession, error) {
	difficulty, err := gamesession.ParseDifficulty(difficultyStr)
	if err != nil {
		return nil, err
	}

	game, err := s.registry.Get(gameID)
	if err != nil {
		return nil, err
	}

	state, err := game.NewSession(userID, scenarioType, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.store.Put(state); err != nil {
		return nil, fmt.Errorf("failed to register session: %w", err)
	}

	return &StartedSession{
		State:        state,
		TimeLimitSec: game.TimeLimitSec(difficulty),
	}, nil
}

// GetSession возвращает активную сессию пользователя.
// Чужая сессия — ErrForbidden, завершенная или неизвестная — ErrSessionNotFound.
func (s *GameService) GetSession(userID uint, sessionID string) (*gamesession.SessionState, error) {
	state, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if state.UserID != userID {
		return nil, fmt.Errorf("%w: session belongs to another user", apperrors.ErrForbidden)
	}
	return state, nil
}

// ProcessAction применяет действие игрока к его активной сессии
func (s *GameService) ProcessAction(userID uint, sessionID, actionType string, payload map[string]interface{}) (*gamesession.ActionResult, error) {
	state, err := s.GetSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	game, err := s.registry.Get(state.GameID)
	if err != nil {
		return nil, err
	}

	return game.ProcessAction(state, actionType, payload)
}

// CompleteSession завершает сессию: считает итоговый результат, убирает
// сессию из активного хранилища, персистит результат и начисляет XP.
// После завершения идентификатор сессии недействителен для действий.
func (s *GameService) CompleteSession(userID uint, sessionID string) (*entity.GameResult, error) {
	state, err := s.GetSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	game, err := s.registry.Get(state.GameID)
	if err != nil {
		return nil, err
	}

	result := game.Finalize(state)

	// Сессия убирается из хранилища до персистентности: повторный вызов
	// с тем же идентификатором получит ErrSessionNotFound, а не дубль
	s.store.Remove(sessionID)

	if err := s.resultRepo.Save(result); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			log.Printf("[GameService] Результат сессии %s уже сохранен, пропускаем", sessionID)
			return s.resultRepo.GetBySessionID(sessionID)
		}
		return nil, fmt.Errorf("failed to persist game result: %w", err)
	}

	// Начисления fire-and-forget: их сбой не откатывает посчитанный результат
	if err := s.userRepo.AddXP(userID, result.XPEarned); err != nil {
		log.Printf("[GameService] ERROR: не удалось начислить %d XP пользователю %d: %v", result.XPEarned, userID, err)
	}
	if err := s.userRepo.RecordGamePlayed(userID, result.Score); err != nil {
		log.Printf("[GameService] ERROR: не удалось обновить статистику пользователя %d: %v", userID, err)
	}

	s.bumpDailyCounter(result.GameID)
	if err := s.cacheRepo.Delete(leaderboardCacheKey); err != nil {
		log.Printf("[GameService] Не удалось инвалидировать кеш лидерборда: %v", err)
	}

	return result, nil
}

// GetUserResults возвращает пагинированную историю результатов пользователя
func (s *GameService) GetUserResults(userID uint, page, pageSize int) ([]entity.GameResult, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	} else if pageSize > 100 {
		pageSize = 100
	}
	return s.resultRepo.GetUserResults(userID, pageSize, (page-1)*pageSize)
}

// GameStats — агрегированная статистика пользователя по одной игре
type GameStats struct {
	GameID         string `json:"game_id"`
	GamesCompleted int64  `json:"games_completed"`
	BestScore      int    `json:"best_score"`
}

// GetUserGameStats возвращает агрегаты пользователя по игре из истории
// результатов. Неизвестная игра — ErrUnknownGame.
func (s *GameService) GetUserGameStats(userID uint, gameID string) (*GameStats, error) {
	if _, err := s.registry.Get(gameID); err != nil {
		return nil, err
	}

	best, err := s.resultRepo.GetUserBestScore(userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch best score: %w", err)
	}
	count, err := s.resultRepo.CountUserResults(userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}

	return &GameStats{
		GameID:         gameID,
		GamesCompleted: count,
		BestScore:      best,
	}, nil
}

// GetResultBySessionID возвращает сохраненный результат завершенной сессии
func (s *GameService) GetResultBySessionID(sessionID string) (*entity.GameResult, error) {
	return s.resultRepo.GetBySessionID(sessionID)
}

// CleanupExpiredSessions удаляет из хранилища сессии старше настроенного
// максимального возраста. Идемпотентно, запускается по таймеру снаружи.
func (s *GameService) CleanupExpiredSessions() int {
	return s.store.CleanupExpired(s.sessionMaxAge)
}

// ActiveSessionCount возвращает число активных сессий (для healthcheck)
func (s *GameService) ActiveSessionCount() int {
	return s.store.Len()
}

// bumpDailyCounter ведет суточный счетчик завершенных игр в Redis.
// Ключ истекает в конце суток, сбой счетчика некритичен.
func (s *GameService) bumpDailyCounter(gameID string) {
	now := time.Now()
	key := dailyGamesKeyPrefix + gameID + ":" + now.Format("2006-01-02")

	if _, err := s.cacheRepo.Increment(key); err != nil {
		log.Printf("[GameService] Не удалось обновить суточный счетчик %s: %v", key, err)
		return
	}
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	if err := s.cacheRepo.ExpireAt(key, endOfDay); err != nil {
		log.Printf("[GameService] Не удалось выставить TTL счетчика %s: %v", key, err)
	}
}
