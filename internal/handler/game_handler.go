package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	"github.com/yourusername/trafikk-api/internal/handler/dto"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
	"github.com/yourusername/trafikk-api/internal/service"
	"github.com/yourusername/trafikk-api/internal/service/gamesession"
)

// GameHandler обрабатывает запросы игровых сессий и результатов
type GameHandler struct {
	gameService *service.GameService
}

// NewGameHandler создает новый обработчик игр
func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// ListGames возвращает доступные игры
// GET /api/games
func (h *GameHandler) ListGames(c *gin.Context) {
	games := h.gameService.ListGames()

	response := make([]*dto.GameInfoResponse, 0, len(games))
	for _, game := range games {
		cfg := game.Config()
		difficulties := make([]string, 0, len(cfg.Multipliers))
		for _, d := range []gamesession.Difficulty{gamesession.DifficultyEasy, gamesession.DifficultyMedium, gamesession.DifficultyHard} {
			if _, ok := cfg.Multipliers[d]; ok {
				difficulties = append(difficulties, string(d))
			}
		}
		response = append(response, &dto.GameInfoResponse{
			ID:           game.ID(),
			Difficulties: difficulties,
			MaxScore:     gamesession.NewScorer(cfg).MaxScore(gamesession.DifficultyHard),
		})
	}
	c.JSON(http.StatusOK, gin.H{"games": response})
}

// StartSession создает новую игровую сессию
// POST /api/games/sessions
func (h *GameHandler) StartSession(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started, err := h.gameService.StartSession(userID, req.GameID, req.ScenarioType, req.Difficulty)
	if err != nil {
		h.handleGameError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.StartSessionResponse{
		SessionID:    started.State.ID,
		GameID:       started.State.GameID,
		Difficulty:   string(started.State.Difficulty),
		TimeLimitSec: started.TimeLimitSec,
		Scenario:     started.State.Scenario,
	})
}

// GetSession возвращает состояние активной сессии владельца
// GET /api/games/sessions/:session_id
func (h *GameHandler) GetSession(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	state, err := h.gameService.GetSession(userID, c.Param("session_id"))
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	// Сериализуем копию под мьютексом сессии: живое состояние может
	// параллельно мутироваться обработкой действий
	c.JSON(http.StatusOK, state.Snapshot())
}

// ProcessAction применяет действие игрока к сессии
// POST /api/games/sessions/:session_id/actions
func (h *GameHandler) ProcessAction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Payload == nil {
		req.Payload = make(map[string]interface{})
	}

	result, err := h.gameService.ProcessAction(userID, c.Param("session_id"), req.Action, req.Payload)
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CompleteSession завершает сессию и возвращает итоговый результат
// POST /api/games/sessions/:session_id/complete
func (h *GameHandler) CompleteSession(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	result, err := h.gameService.CompleteSession(userID, c.Param("session_id"))
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGameResultResponse(result))
}

// GetMyResults возвращает пагинированную историю результатов пользователя
// GET /api/games/results?page=1&page_size=10
func (h *GameHandler) GetMyResults(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	results, total, err := h.gameService.GetUserResults(userID, page, pageSize)
	if err != nil {
		h.handleGameError(c, err)
		return
	}

	resultDTOs := make([]*dto.GameResultResponse, len(results))
	for i := range results {
		resultDTOs[i] = dto.NewGameResultResponse(&results[i])
	}
	c.JSON(http.StatusOK, dto.PaginatedResultsResponse{
		Results:  resultDTOs,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetMyStats возвращает агрегированную статистику пользователя по игре
// GET /api/games/stats?game_id=traffic_rules
func (h *GameHandler) GetMyStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	gameID := c.DefaultQuery("game_id", gamesession.GameIDTrafficRules)

	stats, err := h.gameService.GetUserGameStats(userID, gameID)
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportMyResults экспортирует историю результатов пользователя в CSV или Excel
// GET /api/games/results/export?format=csv|xlsx
func (h *GameHandler) ExportMyResults(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "csv")

	// Для экспорта берем всю историю без пагинации (верхняя граница щедрая)
	results, _, err := h.gameService.GetUserResults(userID, 1, 100)
	if err != nil {
		h.handleGameError(c, err)
		return
	}

	filename := fmt.Sprintf("results_%d_%s", userID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, results, filename)
	default:
		h.exportCSV(c, results, filename)
	}
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *GameHandler) exportCSV(c *gin.Context, results []entity.GameResult, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Дата", "Игра", "Очки", "Максимум", "Точность %", "Время (с)", "XP", "Достижения"})

	for _, r := range results {
		writer.Write([]string{
			r.CompletedAt.Format("2006-01-02 15:04"),
			sanitizeForExcel(r.GameID),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.MaxScore),
			fmt.Sprintf("%.1f", r.Accuracy()),
			fmt.Sprintf("%.1f", r.CompletionTimeSec),
			strconv.Itoa(r.XPEarned),
			sanitizeForExcel(strings.Join(r.Achievements, ", ")),
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *GameHandler) exportXLSX(c *gin.Context, results []entity.GameResult, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[GameHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Дата", "Игра", "Очки", "Максимум", "Точность %", "Время (с)", "XP", "Достижения"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[GameHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range results {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			r.CompletedAt.Format("2006-01-02 15:04"),
			sanitizeForExcel(r.GameID),
			r.Score,
			r.MaxScore,
			r.Accuracy(),
			r.CompletionTimeSec,
			r.XPEarned,
			sanitizeForExcel(strings.Join(r.Achievements, ", ")),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[GameHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[GameHandler] Ошибка при Flush: %v", err)
	}
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[GameHandler] Ошибка записи Excel в response: %v", err)
	}
}

// handleGameError обрабатывает ошибки игровых сервисов и отправляет соответствующий HTTP ответ
func (h *GameHandler) handleGameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound), errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnknownAction), errors.Is(err, apperrors.ErrUnknownGame):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNoScenariosAvailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in GameHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// getUserID достает идентификатор пользователя, установленный auth middleware
func getUserID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	userID, ok := raw.(uint)
	if !ok {
		log.Printf("ERROR: invalid user ID type in context: %T", raw)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return 0, false
	}
	return userID, true
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
