package service

import (
	"fmt"
	"log"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	"github.com/yourusername/trafikk-api/internal/domain/repository"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
)

// ScenarioService предоставляет админ-операции над каталогом шаблонов сценариев
type ScenarioService struct {
	scenarioRepo repository.ScenarioRepository
}

// NewScenarioService создает новый сервис шаблонов
func NewScenarioService(scenarioRepo repository.ScenarioRepository) *ScenarioService {
	return &ScenarioService{scenarioRepo: scenarioRepo}
}

// ListActive возвращает активные шаблоны игры
func (s *ScenarioService) ListActive(gameID string) ([]entity.ScenarioTemplate, error) {
	return s.scenarioRepo.GetActive(gameID)
}

// GetByID возвращает шаблон по ID
func (s *ScenarioService) GetByID(id uint) (*entity.ScenarioTemplate, error) {
	return s.scenarioRepo.GetByID(id)
}

// Create валидирует и сохраняет новый шаблон. Каждый vehicle_id обязан
// существовать в каталоге участников, иначе активный шаблон мог бы
// породить пустой сценарий.
func (s *ScenarioService) Create(template *entity.ScenarioTemplate) error {
	if err := s.validateVehicleIDs(template.VehicleIDs); err != nil {
		return err
	}
	if err := s.scenarioRepo.Create(template); err != nil {
		return fmt.Errorf("failed to create scenario template: %w", err)
	}
	log.Printf("[ScenarioService] Создан шаблон '%s' (#%d, тип %s)", template.Title, template.ID, template.ScenarioType)
	return nil
}

// Update валидирует и обновляет существующий шаблон
func (s *ScenarioService) Update(template *entity.ScenarioTemplate) error {
	if err := s.validateVehicleIDs(template.VehicleIDs); err != nil {
		return err
	}
	return s.scenarioRepo.Update(template)
}

// SetActive включает или выключает шаблон
func (s *ScenarioService) SetActive(id uint, active bool) error {
	return s.scenarioRepo.SetActive(id, active)
}

func (s *ScenarioService) validateVehicleIDs(ids []string) error {
	catalog := entity.VehicleCatalogByID(entity.DefaultVehicleCatalog())
	for _, id := range ids {
		if _, ok := catalog[id]; !ok {
			return fmt.Errorf("%w: unknown vehicle type '%s'", apperrors.ErrValidation, id)
		}
	}
	return nil
}
