package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
)

// GameResultRepo реализует repository.GameResultRepository
type GameResultRepo struct {
	db *gorm.DB
}

// NewGameResultRepo создает новый репозиторий результатов игр
func NewGameResultRepo(db *gorm.DB) *GameResultRepo {
	return &GameResultRepo{db: db}
}

// Save сохраняет итоговый результат сессии.
// Уникальный индекс по session_id превращает повторное сохранение в ErrConflict.
func (r *GameResultRepo) Save(result *entity.GameResult) error {
	if err := r.db.Create(result).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: result for session %s already exists", apperrors.ErrConflict, result.SessionID)
		}
		return err
	}
	return nil
}

// GetBySessionID возвращает результат по идентификатору сессии
func (r *GameResultRepo) GetBySessionID(sessionID string) (*entity.GameResult, error) {
	var result entity.GameResult
	err := r.db.Where("session_id = ?", sessionID).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// GetUserResults возвращает результаты пользователя, новые первыми, с пагинацией
func (r *GameResultRepo) GetUserResults(userID uint, limit, offset int) ([]entity.GameResult, int64, error) {
	var results []entity.GameResult
	var total int64

	err := r.db.Model(&entity.GameResult{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = r.db.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// GetUserBestScore возвращает лучший счет пользователя в игре (0, если игр не было)
func (r *GameResultRepo) GetUserBestScore(userID uint, gameID string) (int, error) {
	var best int
	err := r.db.Model(&entity.GameResult{}).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Select("COALESCE(MAX(score), 0)").
		Scan(&best).Error
	return best, err
}

// CountUserResults возвращает число завершенных игр пользователя в игре
func (r *GameResultRepo) CountUserResults(userID uint, gameID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.GameResult{}).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Count(&count).Error
	return count, err
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
