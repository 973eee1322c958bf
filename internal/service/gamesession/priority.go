package gamesession

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
)

// ResolveSolution строит эталонное решение: каждому участнику — ровно одно
// целевое место с порядком проезда (непрерывно с 1) и обоснованием.
//
// Функция детерминирована для данных входов, за одним исключением:
// партиционирование кольцевой развязки "внутри/въезжает" выбирается случайно
// для каждого участника — это часть игровой механики. rng инжектируется,
// чтобы тесты могли зафиксировать сид.
func ResolveSolution(scenarioType string, vehicles []entity.VehicleType, rng *rand.Rand) SolutionMap {
	var ordered []entity.VehicleType

	switch scenarioType {
	case entity.ScenarioRoundabout:
		ordered = resolveRoundabout(vehicles, rng)
	case entity.ScenarioEmergency:
		ordered = resolveEmergencyFirst(vehicles)
	default:
		// intersection_priority и все прочие (включая неизвестные) типы:
		// статический приоритет по убыванию, стабильно при равенстве
		ordered = sortByPriority(vehicles)
	}

	solution := make(SolutionMap, len(ordered))
	for i, v := range ordered {
		order := i + 1
		solution[v.ID] = SolutionEntry{
			VehicleID:     v.ID,
			Position:      fmt.Sprintf("plass_%d", order),
			Order:         order,
			Justification: justificationFor(v),
		}
	}
	return solution
}

// sortByPriority сортирует по статическому приоритету по убыванию.
// Сортировка стабильная: участники с равным приоритетом сохраняют
// исходный порядок следования.
func sortByPriority(vehicles []entity.VehicleType) []entity.VehicleType {
	ordered := make([]entity.VehicleType, len(vehicles))
	copy(ordered, vehicles)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})
	return ordered
}

// resolveRoundabout делит участников на "уже внутри" и "въезжающих".
// Внутренние всегда идут раньше въезжающих; внутри каждой группы —
// обычная сортировка по приоритету.
func resolveRoundabout(vehicles []entity.VehicleType, rng *rand.Rand) []entity.VehicleType {
	var inside, entering []entity.VehicleType
	for _, v := range vehicles {
		if rng.Intn(2) == 0 {
			inside = append(inside, v)
		} else {
			entering = append(entering, v)
		}
	}
	return append(sortByPriority(inside), sortByPriority(entering)...)
}

// resolveEmergencyFirst ставит машины экстренных служб первыми в порядке
// появления во входе; остальные следуют за ними, тоже в порядке появления.
func resolveEmergencyFirst(vehicles []entity.VehicleType) []entity.VehicleType {
	ordered := make([]entity.VehicleType, 0, len(vehicles))
	for _, v := range vehicles {
		if v.IsEmergency() {
			ordered = append(ordered, v)
		}
	}
	for _, v := range vehicles {
		if !v.IsEmergency() {
			ordered = append(ordered, v)
		}
	}
	return ordered
}

// justificationFor подбирает обоснование по полосе приоритета участника
func justificationFor(v entity.VehicleType) string {
	switch {
	case v.Priority >= entity.EmergencyPriority:
		return "Utrykningskjøretøy med blålys har alltid forkjørsrett"
	case v.Priority >= 4:
		return "Sårbare trafikanter har høyeste prioritet og skal alltid slippes frem"
	case v.Priority >= 3:
		return "Myke trafikanter skal slippes frem før kjøretøy"
	case v.Priority >= 2:
		return "Kollektivtransport har prioritet foran personbiler"
	default:
		return "Vanlige vikepliktsregler gjelder"
	}
}
