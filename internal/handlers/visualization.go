package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vizlab/dataviz-api/internal/cache"
	"github.com/vizlab/dataviz-api/internal/dto"
	apierrors "github.com/vizlab/dataviz-api/internal/errors"
	"github.com/vizlab/dataviz-api/internal/models"
	"github.com/vizlab/dataviz-api/internal/services"
)

type VisualizationHandler struct {
	vizService *services.VisualizationService
	cache      *cache.Coordinator
}

func NewVisualizationHandler(vizService *services.VisualizationService, coordinator *cache.Coordinator) *VisualizationHandler {
	return &VisualizationHandler{
		vizService: vizService,
		cache:      coordinator,
	}
}

// List returns all visualizations owned by the current user
func (h *VisualizationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	key := cache.ListKey(cache.EntityVisualizations, userID)
	var cached []dto.VisualizationDTO
	if h.cache.GetJSON(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	vizs, err := h.vizService.List(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	dtos := dto.ToVisualizationDTOs(vizs)
	h.cache.SetJSON(c.Request.Context(), key, dtos, cache.ListTTL)
	c.JSON(http.StatusOK, dtos)
}

// Get returns a single visualization owned by the current user
func (h *VisualizationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	key := cache.DetailKey(cache.EntityVisualizations, id, userID)
	var cached dto.VisualizationDTO
	if h.cache.GetJSON(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	viz, err := h.vizService.Get(id, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	d := dto.ToVisualizationDTO(*viz)
	h.cache.SetJSON(c.Request.Context(), key, d, cache.DetailTTL)
	c.JSON(http.StatusOK, d)
}

type createVisualizationRequest struct {
	Name         string         `json:"name" binding:"required"`
	Description  string         `json:"description"`
	ChartType    string         `json:"chart_type"`
	QueryConfig  models.JSONMap `json:"query_config"`
	ChartConfig  models.JSONMap `json:"chart_config"`
	DataSourceID uint64         `json:"data_source_id" binding:"required"`
}

// Create registers a new visualization
func (h *VisualizationHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createVisualizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	viz, err := h.vizService.Create(services.CreateVisualizationInput{
		OwnerID:      userID,
		Name:         req.Name,
		Description:  req.Description,
		ChartType:    req.ChartType,
		QueryConfig:  req.QueryConfig,
		ChartConfig:  req.ChartConfig,
		DataSourceID: req.DataSourceID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(), cache.ListKey(cache.EntityVisualizations, userID))
	c.JSON(http.StatusCreated, dto.ToVisualizationDTO(*viz))
}

type updateVisualizationRequest struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	ChartType    *string         `json:"chart_type"`
	QueryConfig  *models.JSONMap `json:"query_config"`
	ChartConfig  *models.JSONMap `json:"chart_config"`
	DataSourceID *uint64         `json:"data_source_id"`
}

// Update applies a partial update to a visualization
func (h *VisualizationHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateVisualizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	viz, err := h.vizService.Update(id, userID, services.UpdateVisualizationInput{
		Name:         req.Name,
		Description:  req.Description,
		ChartType:    req.ChartType,
		QueryConfig:  req.QueryConfig,
		ChartConfig:  req.ChartConfig,
		DataSourceID: req.DataSourceID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(),
		cache.ListKey(cache.EntityVisualizations, userID),
		cache.DetailKey(cache.EntityVisualizations, id, userID),
		cache.VizDataKey(id, userID),
	)
	c.JSON(http.StatusOK, dto.ToVisualizationDTO(*viz))
}

// Delete removes a visualization
func (h *VisualizationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.vizService.Delete(id, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(),
		cache.ListKey(cache.EntityVisualizations, userID),
		cache.DetailKey(cache.EntityVisualizations, id, userID),
		cache.VizDataKey(id, userID),
	)
	c.JSON(http.StatusOK, gin.H{"message": "Visualization deleted successfully"})
}

// GetData executes the visualization's stored query and returns the rows
func (h *VisualizationHandler) GetData(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	key := cache.VizDataKey(id, userID)
	var cached []map[string]any
	if h.cache.GetJSON(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, gin.H{"data": cached})
		return
	}

	records, err := h.vizService.GetData(c.Request.Context(), id, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.cache.SetJSON(c.Request.Context(), key, records, cache.VizDataTTL)
	c.JSON(http.StatusOK, gin.H{"data": records})
}
