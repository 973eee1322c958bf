package service

import (
	"fmt"
	"sync"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
	"github.com/yourusername/trafikk-api/internal/service/gamesession"
)

// Game — контракт игрового движка. Сервисный слой работает с играми
// только через этот интерфейс, так что новые мини-игры подключаются
// регистрацией движка без изменений в оркестрации.
type Game interface {
	// ID возвращает уникальный идентификатор игры
	ID() string

	// Config возвращает конфигурацию движка (сложности, лимиты, очки)
	Config() *gamesession.Config

	// NewSession генерирует сценарий и создает состояние новой сессии
	NewSession(userID uint, scenarioType string, difficulty gamesession.Difficulty) (*gamesession.SessionState, error)

	// ProcessAction применяет действие игрока к сессии
	ProcessAction(state *gamesession.SessionState, actionType string, payload map[string]interface{}) (*gamesession.ActionResult, error)

	// TimeLimitSec возвращает лимит времени сессии для сложности
	TimeLimitSec(difficulty gamesession.Difficulty) int

	// Finalize завершает сессию и собирает итоговый результат
	Finalize(state *gamesession.SessionState) *entity.GameResult
}

// GameRegistry хранит зарегистрированные игровые движки по идентификатору игры
type GameRegistry struct {
	mu    sync.RWMutex
	games map[string]Game
}

// NewGameRegistry создает пустой реестр игр
func NewGameRegistry() *GameRegistry {
	return &GameRegistry{
		games: make(map[string]Game),
	}
}

// Register добавляет движок в реестр. Повторная регистрация того же
// идентификатора — ошибка конфигурации приложения.
func (r *GameRegistry) Register(game Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.games[game.ID()]; exists {
		return fmt.Errorf("game '%s' is already registered", game.ID())
	}
	r.games[game.ID()] = game
	return nil
}

// Get возвращает движок по идентификатору игры
func (r *GameRegistry) Get(gameID string) (Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	game, ok := r.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownGame, gameID)
	}
	return game, nil
}

// List возвращает все зарегистрированные игры
func (r *GameRegistry) List() []Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Game, 0, len(r.games))
	for _, game := range r.games {
		list = append(list, game)
	}
	return list
}
