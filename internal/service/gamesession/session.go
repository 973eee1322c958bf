package gamesession

import (
	"sync"
	"time"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
)

// SolutionEntry описывает целевое место одного участника движения
// и человекочитаемое обоснование.
type SolutionEntry struct {
	VehicleID     string `json:"vehicle_id"`
	Position      string `json:"position"` // Идентификатор целевой зоны (plass_N)
	Order         int    `json:"order"`    // Порядок проезда, непрерывно с 1
	Justification string `json:"justification"`
}

// SolutionMap — эталонное решение сценария: vehicle_id -> целевое место.
// Вычисляется ровно один раз при создании сессии и далее не меняется.
type SolutionMap map[string]SolutionEntry

// StartPosition задает случайную стартовую позицию участника на поле
type StartPosition struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation int     `json:"rotation"`
	Zone     string  `json:"zone"` // start_N, всегда отличается от целевых зон
}

// Типизированные раскладки поля по типам сценариев (см. redesign-заметку:
// вместо нетипизированных map-блобов — явные структуры).

type IntersectionLayout struct {
	ApproachRoads int      `json:"approach_roads"`
	Signs         []string `json:"signs"`
}

type RoundaboutLayout struct {
	Entrances int `json:"entrances"`
	Exits     int `json:"exits"`
}

type PedestrianLayout struct {
	CrossingPoint string `json:"crossing_point"`
	TrafficLight  bool   `json:"traffic_light"`
}

type HighwayLayout struct {
	Lanes       int  `json:"lanes"`
	HasShoulder bool `json:"has_shoulder"`
}

type MergeLayout struct {
	MainLanes int    `json:"main_lanes"`
	MergeLane bool   `json:"merge_lane"`
	MergeSide string `json:"merge_side"` // left или right
}

type SchoolZoneLayout struct {
	SpeedLimit    int  `json:"speed_limit"`
	CrossingGuard bool `json:"crossing_guard"`
}

type StreetLayout struct {
	Lanes int `json:"lanes"`
}

// BoardLayout описывает раскладку игрового поля. Заполнена ровно одна
// из секций в зависимости от Kind; Street — обобщенный fallback.
type BoardLayout struct {
	Kind   string  `json:"kind"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Intersection *IntersectionLayout `json:"intersection,omitempty"`
	Roundabout   *RoundaboutLayout   `json:"roundabout,omitempty"`
	Pedestrian   *PedestrianLayout   `json:"pedestrian,omitempty"`
	Highway      *HighwayLayout      `json:"highway,omitempty"`
	Merge        *MergeLayout        `json:"merge,omitempty"`
	SchoolZone   *SchoolZoneLayout   `json:"school_zone,omitempty"`
	Street       *StreetLayout       `json:"street,omitempty"`
}

// ScenarioInstance — инстанцированная головоломка для одной сессии.
// Эталонное решение хранится отдельно (SolutionMap) и клиенту не отдается.
type ScenarioInstance struct {
	TemplateID     uint                     `json:"template_id"`
	ScenarioType   string                   `json:"scenario_type"`
	Title          string                   `json:"title"`
	Description    string                   `json:"description"`
	Layout         BoardLayout              `json:"layout"`
	Vehicles       []entity.VehicleType     `json:"vehicles"`
	StartPositions map[string]StartPosition `json:"start_positions"`
	Rules          []string                 `json:"rules"`
	PointValue     int                      `json:"point_value"`
}

// SessionState хранит изменяемое состояние одной активной игровой сессии.
// Все мутации идут через обработку действий под Mu; read-modify-write
// последовательности на одну сессию сериализуются этим мьютексом.
type SessionState struct {
	ID         string     `json:"session_id"`
	UserID     uint       `json:"user_id"`
	GameID     string     `json:"game_id"`
	Difficulty Difficulty `json:"difficulty"`

	Scenario *ScenarioInstance `json:"scenario"`
	Solution SolutionMap       `json:"-"` // Эталон, никогда не сериализуется клиенту

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	Score        int               `json:"score"`
	Positions    map[string]string `json:"positions"` // vehicle_id -> текущая зона
	HintsUsed    int               `json:"hints_used"`
	MovesCount   int               `json:"moves_count"`
	PerfectSoFar bool              `json:"perfect_so_far"`

	// Произвольные сериализуемые данные сессии (последний submit и т.п.)
	SessionData map[string]interface{} `json:"session_data,omitempty"`

	Mu sync.Mutex `json:"-"`
}

// NewSessionState создает состояние сессии вокруг сгенерированного сценария
func NewSessionState(id string, userID uint, gameID string, difficulty Difficulty, scenario *ScenarioInstance, solution SolutionMap) *SessionState {
	return &SessionState{
		ID:           id,
		UserID:       userID,
		GameID:       gameID,
		Difficulty:   difficulty,
		Scenario:     scenario,
		Solution:     solution,
		StartedAt:    time.Now(),
		Positions:    make(map[string]string, len(solution)),
		PerfectSoFar: true,
		SessionData:  make(map[string]interface{}),
	}
}

// Snapshot возвращает согласованную копию состояния для сериализации.
// Копия снимается под мьютексом сессии и не разделяет мутируемые мапы с
// живым состоянием: отдавать ее клиенту безопасно параллельно с действиями.
// Эталонное решение в копию не входит.
func (s *SessionState) Snapshot() *SessionState {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	positions := make(map[string]string, len(s.Positions))
	for k, v := range s.Positions {
		positions[k] = v
	}
	sessionData := make(map[string]interface{}, len(s.SessionData))
	for k, v := range s.SessionData {
		sessionData[k] = v
	}

	snap := &SessionState{
		ID:           s.ID,
		UserID:       s.UserID,
		GameID:       s.GameID,
		Difficulty:   s.Difficulty,
		Scenario:     s.Scenario,
		StartedAt:    s.StartedAt,
		Score:        s.Score,
		Positions:    positions,
		HintsUsed:    s.HintsUsed,
		MovesCount:   s.MovesCount,
		PerfectSoFar: s.PerfectSoFar,
		SessionData:  sessionData,
	}
	if s.EndedAt != nil {
		ended := *s.EndedAt
		snap.EndedAt = &ended
	}
	return snap
}

// ElapsedSec возвращает длительность сессии в секундах.
// После завершения — фиксированную, до завершения — текущую.
func (s *SessionState) ElapsedSec() float64 {
	if s.EndedAt != nil {
		return s.EndedAt.Sub(s.StartedAt).Seconds()
	}
	return time.Since(s.StartedAt).Seconds()
}
