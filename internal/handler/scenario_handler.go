package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	"github.com/yourusername/trafikk-api/internal/handler/dto"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
	"github.com/yourusername/trafikk-api/internal/service"
)

// ScenarioHandler обрабатывает админ-операции над шаблонами сценариев
type ScenarioHandler struct {
	scenarioService *service.ScenarioService
}

// NewScenarioHandler создает новый обработчик шаблонов
func NewScenarioHandler(scenarioService *service.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{scenarioService: scenarioService}
}

// ListScenarios возвращает активные шаблоны игры
// GET /api/admin/scenarios?game_id=traffic_rules
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	gameID := c.DefaultQuery("game_id", "traffic_rules")

	templates, err := h.scenarioService.ListActive(gameID)
	if err != nil {
		h.handleScenarioError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": templates})
}

// GetScenario возвращает шаблон по ID
// GET /api/admin/scenarios/:id
func (h *ScenarioHandler) GetScenario(c *gin.Context) {
	id := c.MustGet("scenarioID").(uint)

	template, err := h.scenarioService.GetByID(id)
	if err != nil {
		h.handleScenarioError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// CreateScenario создает новый шаблон сценария
// POST /api/admin/scenarios
func (h *ScenarioHandler) CreateScenario(c *gin.Context) {
	var req dto.ScenarioTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template := &entity.ScenarioTemplate{
		GameID:       req.GameID,
		ScenarioType: req.ScenarioType,
		Title:        req.Title,
		Description:  req.Description,
		LayoutType:   req.LayoutType,
		VehicleIDs:   entity.StringArray(req.VehicleIDs),
		Rules:        entity.StringArray(req.Rules),
		PointValue:   req.PointValue,
		IsActive:     true,
	}
	if err := h.scenarioService.Create(template); err != nil {
		h.handleScenarioError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// UpdateScenario обновляет существующий шаблон
// PUT /api/admin/scenarios/:id
func (h *ScenarioHandler) UpdateScenario(c *gin.Context) {
	id := c.MustGet("scenarioID").(uint)

	var req dto.ScenarioTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template, err := h.scenarioService.GetByID(id)
	if err != nil {
		h.handleScenarioError(c, err)
		return
	}

	template.GameID = req.GameID
	template.ScenarioType = req.ScenarioType
	template.Title = req.Title
	template.Description = req.Description
	template.LayoutType = req.LayoutType
	template.VehicleIDs = entity.StringArray(req.VehicleIDs)
	template.Rules = entity.StringArray(req.Rules)
	template.PointValue = req.PointValue

	if err := h.scenarioService.Update(template); err != nil {
		h.handleScenarioError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// SetScenarioActive включает или выключает шаблон
// PATCH /api/admin/scenarios/:id/active
func (h *ScenarioHandler) SetScenarioActive(c *gin.Context) {
	id := c.MustGet("scenarioID").(uint)

	var req dto.SetScenarioActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.scenarioService.SetActive(id, *req.IsActive); err != nil {
		h.handleScenarioError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scenario updated successfully"})
}

// handleScenarioError обрабатывает ошибки сервиса шаблонов
func (h *ScenarioHandler) handleScenarioError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in ScenarioHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
