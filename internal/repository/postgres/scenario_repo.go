package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
)

// ScenarioRepo реализует repository.ScenarioRepository
type ScenarioRepo struct {
	db *gorm.DB
}

// NewScenarioRepo создает новый репозиторий шаблонов сценариев
func NewScenarioRepo(db *gorm.DB) *ScenarioRepo {
	return &ScenarioRepo{db: db}
}

// GetActive возвращает все активные шаблоны для игры
func (r *ScenarioRepo) GetActive(gameID string) ([]entity.ScenarioTemplate, error) {
	var templates []entity.ScenarioTemplate
	err := r.db.Where("game_id = ? AND is_active = ?", gameID, true).
		Order("id").
		Find(&templates).Error
	return templates, err
}

// GetActiveByType возвращает активные шаблоны игры с заданным типом сценария
func (r *ScenarioRepo) GetActiveByType(gameID, scenarioType string) ([]entity.ScenarioTemplate, error) {
	var templates []entity.ScenarioTemplate
	err := r.db.Where("game_id = ? AND scenario_type = ? AND is_active = ?", gameID, scenarioType, true).
		Order("id").
		Find(&templates).Error
	return templates, err
}

// GetByID возвращает шаблон по ID
func (r *ScenarioRepo) GetByID(id uint) (*entity.ScenarioTemplate, error) {
	var template entity.ScenarioTemplate
	err := r.db.First(&template, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// Create сохраняет новый шаблон
func (r *ScenarioRepo) Create(template *entity.ScenarioTemplate) error {
	return r.db.Create(template).Error
}

// Update обновляет шаблон целиком
func (r *ScenarioRepo) Update(template *entity.ScenarioTemplate) error {
	return r.db.Save(template).Error
}

// SetActive включает или выключает шаблон
func (r *ScenarioRepo) SetActive(id uint, active bool) error {
	result := r.db.Model(&entity.ScenarioTemplate{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: scenario template #%d", apperrors.ErrNotFound, id)
	}
	return nil
}
