package gamesession

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
)

// ActionResult — структурированный ответ на действие игрока.
// Набор заполненных полей зависит от типа действия.
type ActionResult struct {
	Action     string `json:"action"`
	MovesCount int    `json:"moves_count"`
	HintsUsed  int    `json:"hints_used"`

	// move_vehicle
	Correct  *bool  `json:"correct,omitempty"`
	Feedback string `json:"feedback,omitempty"`

	// request_hint
	Hint        string `json:"hint,omitempty"`
	HintPenalty int    `json:"hint_penalty,omitempty"`

	// submit_solution
	Breakdown *SubmissionBreakdown `json:"breakdown,omitempty"`
	Complete  *bool                `json:"complete,omitempty"`
}

// Пулы подсказок по типам сценариев. Для неизвестного типа — общий пул.
// Тексты игровые, на норвежском (язык интерфейса игрока).
var hintPools = map[string][]string{
	entity.ScenarioIntersection: {
		"Husk høyreregelen: den som kommer fra høyre har forkjørsrett.",
		"Se etter vikepliktskilt før du bestemmer rekkefølgen.",
		"Utrykningskjøretøy med blålys går alltid først.",
	},
	entity.ScenarioRoundabout: {
		"Kjøretøy som allerede er i rundkjøringen har forkjørsrett.",
		"Du har vikeplikt for trafikk fra venstre når du kjører inn i rundkjøringen.",
		"Bruk blinklys når du forlater rundkjøringen.",
	},
	entity.ScenarioPedestrian: {
		"Fotgjengere i gangfeltet har alltid forkjørsrett.",
		"Senk farten når du nærmer deg et gangfelt.",
		"Se etter fotgjengere som venter ved kanten av gangfeltet.",
	},
	entity.ScenarioEmergency: {
		"Utrykningskjøretøy med blålys og sirene skal alltid slippes frem.",
		"Trekk til siden og stans om nødvendig for utrykningskjøretøy.",
	},
	entity.ScenarioMerge: {
		"Bruk fletteregelen: annenhver bil fra hvert felt.",
		"Tilpass farten til trafikken på motorveien før du fletter inn.",
	},
	entity.ScenarioSchoolZone: {
		"Vær ekstra oppmerksom på barn nær skoler.",
		"Fartsgrensen i skolesoner er lavere, følg skiltingen.",
		"Skolebarn og rullestolbrukere skal alltid prioriteres.",
	},
}

var genericHints = []string{
	"Tenk på hvem som har forkjørsrett etter trafikkreglene.",
	"Sårbare trafikanter skal som regel prioriteres.",
	"Start med kjøretøyet som har høyest prioritet.",
}

// ActionProcessor валидирует и применяет действия игрока к состоянию сессии.
// Каждое действие обрабатывается синхронно и атомарно под мьютексом сессии.
type ActionProcessor struct {
	config *Config
	scorer *Scorer

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewActionProcessor создает обработчик действий
func NewActionProcessor(config *Config, scorer *Scorer) *ActionProcessor {
	return &ActionProcessor{
		config: config,
		scorer: scorer,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Process применяет одно действие к сессии. Неизвестный тип действия —
// ErrUnknownAction, состояние сессии при этом не меняется.
func (p *ActionProcessor) Process(state *SessionState, actionType string, payload map[string]interface{}) (*ActionResult, error) {
	state.Mu.Lock()
	defer state.Mu.Unlock()

	if len(state.Solution) == 0 {
		// Активная сессия без эталонного решения — нарушение инварианта,
		// дальше обрабатывать нечего
		return nil, fmt.Errorf("session %s has no solution map, cannot process actions", state.ID)
	}

	switch actionType {
	case ActionMoveVehicle:
		return p.processMove(state, payload)
	case ActionRequestHint:
		return p.processHint(state)
	case ActionSubmitSolution:
		return p.processSubmit(state, payload)
	case ActionResetScenario:
		return p.processReset(state)
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAction, actionType)
	}
}

func (p *ActionProcessor) processMove(state *SessionState, payload map[string]interface{}) (*ActionResult, error) {
	vehicleID, err := stringField(payload, "vehicle_id")
	if err != nil {
		return nil, err
	}
	position, err := stringField(payload, "position")
	if err != nil {
		return nil, err
	}

	target, ok := state.Solution[vehicleID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown vehicle_id '%s'", apperrors.ErrValidation, vehicleID)
	}

	state.Positions[vehicleID] = position
	state.MovesCount++

	correct := position == target.Position
	if !correct {
		state.PerfectSoFar = false
	}

	name := vehicleID
	for _, v := range state.Scenario.Vehicles {
		if v.ID == vehicleID {
			name = v.Name
			break
		}
	}

	var feedback string
	if correct {
		feedback = fmt.Sprintf("Riktig! %s er plassert riktig.", name)
	} else {
		feedback = fmt.Sprintf("Feil plassering for %s. Prøv igjen!", name)
	}

	return &ActionResult{
		Action:     ActionMoveVehicle,
		MovesCount: state.MovesCount,
		HintsUsed:  state.HintsUsed,
		Correct:    &correct,
		Feedback:   feedback,
	}, nil
}

func (p *ActionProcessor) processHint(state *SessionState) (*ActionResult, error) {
	state.HintsUsed++

	pool, ok := hintPools[state.Scenario.ScenarioType]
	if !ok || len(pool) == 0 {
		pool = genericHints
	}

	p.rngMu.Lock()
	hint := pool[p.rng.Intn(len(pool))]
	p.rngMu.Unlock()

	// Штраф только сообщается: применяется он при финальном подсчете
	return &ActionResult{
		Action:      ActionRequestHint,
		MovesCount:  state.MovesCount,
		HintsUsed:   state.HintsUsed,
		Hint:        hint,
		HintPenalty: p.config.HintPenalty,
	}, nil
}

func (p *ActionProcessor) processSubmit(state *SessionState, payload map[string]interface{}) (*ActionResult, error) {
	raw, ok := payload["positions"]
	if !ok {
		return nil, fmt.Errorf("%w: missing field 'positions'", apperrors.ErrValidation)
	}
	submitted, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: field 'positions' must be an object", apperrors.ErrValidation)
	}

	correct, wrong := 0, 0
	complete := true
	for vehicleID, entry := range state.Solution {
		pos, ok := submitted[vehicleID].(string)
		if ok {
			// Сданная расстановка фиксируется в состоянии сессии:
			// финальный подсчет видит ее так же, как одиночные ходы
			state.Positions[vehicleID] = pos
		}
		if !ok || pos != entry.Position {
			complete = false
			if ok {
				wrong++
			}
			continue
		}
		correct++
	}
	if wrong > 0 {
		state.PerfectSoFar = false
	}

	breakdown := p.scorer.SubmissionScore(correct, wrong, state.ElapsedSec(), state.PerfectSoFar)
	state.SessionData["last_submission"] = breakdown
	state.SessionData["last_submission_complete"] = complete

	return &ActionResult{
		Action:     ActionSubmitSolution,
		MovesCount: state.MovesCount,
		HintsUsed:  state.HintsUsed,
		Breakdown:  &breakdown,
		Complete:   &complete,
	}, nil
}

func (p *ActionProcessor) processReset(state *SessionState) (*ActionResult, error) {
	// Подсказки не возвращаются: потраченное остается потраченным
	state.Positions = make(map[string]string, len(state.Solution))
	state.MovesCount = 0
	state.PerfectSoFar = true

	return &ActionResult{
		Action:     ActionResetScenario,
		MovesCount: state.MovesCount,
		HintsUsed:  state.HintsUsed,
	}, nil
}

// stringField достает обязательное непустое строковое поле из payload
func stringField(payload map[string]interface{}, field string) (string, error) {
	raw, ok := payload[field]
	if !ok {
		return "", fmt.Errorf("%w: missing field '%s'", apperrors.ErrValidation, field)
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: field '%s' must be a non-empty string", apperrors.ErrValidation, field)
	}
	return value, nil
}
