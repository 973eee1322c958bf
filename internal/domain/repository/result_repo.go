package repository

import (
	"github.com/yourusername/trafikk-api/internal/domain/entity"
)

// GameResultRepository определяет методы для работы с результатами игр
type GameResultRepository interface {
	// Save сохраняет итоговый результат сессии.
	// Повторное сохранение того же session_id — конфликт (ErrConflict).
	Save(result *entity.GameResult) error

	GetBySessionID(sessionID string) (*entity.GameResult, error)
	GetUserResults(userID uint, limit, offset int) ([]entity.GameResult, int64, error)
	GetUserBestScore(userID uint, gameID string) (int, error)
	CountUserResults(userID uint, gameID string) (int64, error)
}
