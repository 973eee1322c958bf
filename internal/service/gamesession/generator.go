package gamesession

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	"github.com/yourusername/trafikk-api/internal/domain/repository"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
)

// Generator инстанцирует головоломки: выбирает шаблон из каталога,
// подбирает участников под сложность, строит раскладку поля, случайные
// стартовые позиции и эталонное решение.
type Generator struct {
	scenarioRepo repository.ScenarioRepository
	config       *Config
	catalog      map[string]entity.VehicleType

	// rand.Rand не потокобезопасен, все обращения — под мьютексом
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGenerator создает генератор сценариев поверх каталога шаблонов
func NewGenerator(scenarioRepo repository.ScenarioRepository, config *Config) *Generator {
	return &Generator{
		scenarioRepo: scenarioRepo,
		config:       config,
		catalog:      entity.VehicleCatalogByID(entity.DefaultVehicleCatalog()),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetSeed фиксирует сид генератора случайных чисел (для тестов)
func (g *Generator) SetSeed(seed int64) {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	g.rng = rand.New(rand.NewSource(seed))
}

// Generate создает инстанс сценария и его эталонное решение.
// scenarioType может быть пустым — тогда шаблон выбирается из всех активных.
// Пустой каталог активных шаблонов — ErrNoScenariosAvailable.
func (g *Generator) Generate(gameID, scenarioType string, difficulty Difficulty) (*ScenarioInstance, SolutionMap, error) {
	var templates []entity.ScenarioTemplate
	var err error
	if scenarioType == "" {
		templates, err = g.scenarioRepo.GetActive(gameID)
	} else {
		templates, err = g.scenarioRepo.GetActiveByType(gameID, scenarioType)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch scenario templates: %w", err)
	}
	if len(templates) == 0 {
		return nil, nil, fmt.Errorf("%w: game=%s type=%s", apperrors.ErrNoScenariosAvailable, gameID, scenarioType)
	}

	g.rngMu.Lock()
	defer g.rngMu.Unlock()

	template := templates[g.rng.Intn(len(templates))]

	vehicles, err := g.sampleVehicles(&template, difficulty)
	if err != nil {
		return nil, nil, err
	}

	solution := ResolveSolution(template.ScenarioType, vehicles, g.rng)

	instance := &ScenarioInstance{
		TemplateID:     template.ID,
		ScenarioType:   template.ScenarioType,
		Title:          template.Title,
		Description:    template.Description,
		Layout:         g.buildLayout(template.ScenarioType),
		Vehicles:       vehicles,
		StartPositions: g.randomStartPositions(vehicles),
		Rules:          []string(template.Rules),
		PointValue:     template.PointValue,
	}

	log.Printf("[Generator] Сценарий '%s' (#%d, тип %s): %d участников, сложность %s",
		template.Title, template.ID, template.ScenarioType, len(vehicles), difficulty)

	return instance, solution, nil
}

// sampleVehicles выбирает без повторов до MaxVehicles[difficulty] участников
// из допустимого набора шаблона. Набор никогда не превышает ни лимит
// сложности, ни размер набора шаблона.
func (g *Generator) sampleVehicles(template *entity.ScenarioTemplate, difficulty Difficulty) ([]entity.VehicleType, error) {
	allowed := make([]entity.VehicleType, 0, len(template.VehicleIDs))
	for _, id := range template.VehicleIDs {
		if v, ok := g.catalog[id]; ok {
			allowed = append(allowed, v)
		} else {
			log.Printf("[Generator] WARNING: шаблон #%d ссылается на неизвестный тип '%s', пропускаем", template.ID, id)
		}
	}
	if len(allowed) == 0 {
		// Нарушение инварианта каталога: активный шаблон без единого
		// известного участника. Не глотаем, отдаем наверх с контекстом.
		return nil, fmt.Errorf("scenario template #%d has no known vehicle types (vehicle_ids=%v)", template.ID, template.VehicleIDs)
	}

	n := g.config.MaxVehicles[difficulty]
	if n <= 0 || n > len(allowed) {
		n = len(allowed)
	}

	picked := make([]entity.VehicleType, 0, n)
	for _, idx := range g.rng.Perm(len(allowed))[:n] {
		picked = append(picked, allowed[idx])
	}
	return picked, nil
}

// buildLayout строит типизированную раскладку поля под тип сценария.
// Неизвестный тип — не ошибка: подставляется обобщенная двухполосная улица.
func (g *Generator) buildLayout(scenarioType string) BoardLayout {
	layout := BoardLayout{
		Kind:   scenarioType,
		Width:  g.config.BoardWidth,
		Height: g.config.BoardHeight,
	}

	switch scenarioType {
	case entity.ScenarioIntersection:
		layout.Intersection = &IntersectionLayout{
			ApproachRoads: 4,
			Signs:         []string{"vikeplikt", "stopp"},
		}
	case entity.ScenarioRoundabout:
		layout.Roundabout = &RoundaboutLayout{
			Entrances: 4,
			Exits:     4,
		}
	case entity.ScenarioPedestrian:
		layout.Pedestrian = &PedestrianLayout{
			CrossingPoint: "midt",
			TrafficLight:  g.rng.Intn(2) == 0,
		}
	case entity.ScenarioEmergency:
		layout.Highway = &HighwayLayout{
			Lanes:       3,
			HasShoulder: true,
		}
	case entity.ScenarioMerge:
		side := "right"
		if g.rng.Intn(2) == 0 {
			side = "left"
		}
		layout.Merge = &MergeLayout{
			MainLanes: 2,
			MergeLane: true,
			MergeSide: side,
		}
	case entity.ScenarioSchoolZone:
		layout.SchoolZone = &SchoolZoneLayout{
			SpeedLimit:    30,
			CrossingGuard: g.rng.Intn(2) == 0,
		}
	default:
		layout.Kind = "generic_street"
		layout.Street = &StreetLayout{Lanes: 2}
	}
	return layout
}

// randomStartPositions раздает участникам случайные стартовые координаты
// в пределах поля. Стартовые зоны (start_N) всегда отличаются от целевых
// зон решения (plass_N), так что головоломка не начинается решенной.
func (g *Generator) randomStartPositions(vehicles []entity.VehicleType) map[string]StartPosition {
	rotations := []int{0, 90, 180, 270}
	positions := make(map[string]StartPosition, len(vehicles))
	for i, idx := range g.rng.Perm(len(vehicles)) {
		v := vehicles[idx]
		positions[v.ID] = StartPosition{
			X:        g.rng.Float64() * g.config.BoardWidth,
			Y:        g.rng.Float64() * g.config.BoardHeight,
			Rotation: rotations[g.rng.Intn(len(rotations))],
			Zone:     fmt.Sprintf("start_%d", i+1),
		}
	}
	return positions
}
