package repository

import (
	"github.com/yourusername/trafikk-api/internal/domain/entity"
)

// ScenarioRepository определяет методы для работы с каталогом шаблонов сценариев.
// Движок использует только чтение; запись нужна админ-операциям и сидингу.
type ScenarioRepository interface {
	// GetActive возвращает все активные шаблоны для игры.
	// Пустой результат — ожидаемый случай, не ошибка репозитория.
	GetActive(gameID string) ([]entity.ScenarioTemplate, error)

	// GetActiveByType возвращает активные шаблоны игры с заданным типом сценария
	GetActiveByType(gameID, scenarioType string) ([]entity.ScenarioTemplate, error)

	GetByID(id uint) (*entity.ScenarioTemplate, error)
	Create(template *entity.ScenarioTemplate) error
	Update(template *entity.ScenarioTemplate) error
	SetActive(id uint, active bool) error
}
