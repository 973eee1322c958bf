package dto

import (
	"github.com/yourusername/trafikk-api/internal/domain/entity"
	"github.com/yourusername/trafikk-api/internal/service/gamesession"
)

// StartSessionRequest — запрос на старт игровой сессии
type StartSessionRequest struct {
	GameID       string `json:"game_id" binding:"required"`
	ScenarioType string `json:"scenario_type" binding:"omitempty"`
	Difficulty   string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// StartSessionResponse — ответ на старт сессии. Эталонное решение
// в сценарий не входит и клиенту не отдается.
type StartSessionResponse struct {
	SessionID    string                        `json:"session_id"`
	GameID       string                        `json:"game_id"`
	Difficulty   string                        `json:"difficulty"`
	TimeLimitSec int                           `json:"time_limit_sec"`
	Scenario     *gamesession.ScenarioInstance `json:"scenario"`
}

// ActionRequest — действие игрока в рамках сессии
type ActionRequest struct {
	Action  string                 `json:"action" binding:"required"`
	Payload map[string]interface{} `json:"payload"`
}

// GameInfoResponse — описание доступной игры
type GameInfoResponse struct {
	ID           string   `json:"id"`
	Difficulties []string `json:"difficulties"`
	MaxScore     int      `json:"max_score_hard"`
}

// GameResultResponse — итоговый результат завершенной сессии
type GameResultResponse struct {
	SessionID         string                 `json:"session_id"`
	GameID            string                 `json:"game_id"`
	Score             int                    `json:"score"`
	MaxScore          int                    `json:"max_score"`
	Accuracy          float64                `json:"accuracy"`
	CompletionTimeSec float64                `json:"completion_time_sec"`
	XPEarned          int                    `json:"xp_earned"`
	Achievements      []string               `json:"achievements"`
	PerformanceData   map[string]interface{} `json:"performance_data,omitempty"`
}

// NewGameResultResponse собирает DTO результата из сущности
func NewGameResultResponse(result *entity.GameResult) *GameResultResponse {
	return &GameResultResponse{
		SessionID:         result.SessionID,
		GameID:            result.GameID,
		Score:             result.Score,
		MaxScore:          result.MaxScore,
		Accuracy:          result.Accuracy(),
		CompletionTimeSec: result.CompletionTimeSec,
		XPEarned:          result.XPEarned,
		Achievements:      []string(result.Achievements),
		PerformanceData:   map[string]interface{}(result.PerformanceData),
	}
}

// PaginatedResultsResponse — пагинированная история результатов
type PaginatedResultsResponse struct {
	Results  []*GameResultResponse `json:"results"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// ScenarioTemplateRequest — создание/обновление шаблона сценария (админ)
type ScenarioTemplateRequest struct {
	GameID       string   `json:"game_id" binding:"required"`
	ScenarioType string   `json:"scenario_type" binding:"required"`
	Title        string   `json:"title" binding:"required,max=200"`
	Description  string   `json:"description" binding:"omitempty,max=1000"`
	LayoutType   string   `json:"layout_type" binding:"omitempty,max=50"`
	VehicleIDs   []string `json:"vehicle_ids" binding:"required,min=1"`
	Rules        []string `json:"rules"`
	PointValue   int      `json:"point_value" binding:"omitempty,min=0"`
}

// SetScenarioActiveRequest — включение/выключение шаблона (админ)
type SetScenarioActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
