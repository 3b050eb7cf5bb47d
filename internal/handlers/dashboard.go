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

type DashboardHandler struct {
	dashService *services.DashboardService
	cache       *cache.Coordinator
}

func NewDashboardHandler(dashService *services.DashboardService, coordinator *cache.Coordinator) *DashboardHandler {
	return &DashboardHandler{
		dashService: dashService,
		cache:       coordinator,
	}
}

// List returns all dashboards owned by the current user
func (h *DashboardHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	key := cache.ListKey(cache.EntityDashboards, userID)
	var cached []dto.DashboardDTO
	if h.cache.GetJSON(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	dashboards, err := h.dashService.List(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	dtos := dto.ToDashboardDTOs(dashboards)
	h.cache.SetJSON(c.Request.Context(), key, dtos, cache.ListTTL)
	c.JSON(http.StatusOK, dtos)
}

// Get returns a single dashboard owned by the current user, visualizations
// included
func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	key := cache.DetailKey(cache.EntityDashboards, id, userID)
	var cached dto.DashboardDTO
	if h.cache.GetJSON(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	dash, err := h.dashService.Get(id, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	d := dto.ToDashboardDTO(*dash)
	h.cache.SetJSON(c.Request.Context(), key, d, cache.DetailTTL)
	c.JSON(http.StatusOK, d)
}

// GetPublic returns a public dashboard without authentication. Private and
// absent dashboards produce the same 404.
func (h *DashboardHandler) GetPublic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	key := cache.PublicKey(cache.EntityDashboards, id)
	var cached dto.DashboardDTO
	if h.cache.GetJSON(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	dash, err := h.dashService.GetPublic(id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	d := dto.ToDashboardDTO(*dash)
	h.cache.SetJSON(c.Request.Context(), key, d, cache.PublicTTL)
	c.JSON(http.StatusOK, d)
}

type createDashboardRequest struct {
	Name             string         `json:"name" binding:"required"`
	Description      string         `json:"description"`
	Layout           models.JSONMap `json:"layout"`
	VisualizationIDs []uint64       `json:"visualization_ids"`
	IsPublic         bool           `json:"is_public"`
}

// Create registers a new dashboard
func (h *DashboardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	dash, err := h.dashService.Create(services.CreateDashboardInput{
		OwnerID:          userID,
		Name:             req.Name,
		Description:      req.Description,
		Layout:           req.Layout,
		VisualizationIDs: req.VisualizationIDs,
		IsPublic:         req.IsPublic,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(), cache.ListKey(cache.EntityDashboards, userID))
	c.JSON(http.StatusCreated, dto.ToDashboardDTO(*dash))
}

type updateDashboardRequest struct {
	Name             *string         `json:"name"`
	Description      *string         `json:"description"`
	Layout           *models.JSONMap `json:"layout"`
	IsPublic         *bool           `json:"is_public"`
	VisualizationIDs *[]uint64       `json:"visualization_ids"`
}

// Update applies a partial update to a dashboard
func (h *DashboardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	dash, err := h.dashService.Update(id, userID, services.UpdateDashboardInput{
		Name:             req.Name,
		Description:      req.Description,
		Layout:           req.Layout,
		IsPublic:         req.IsPublic,
		VisualizationIDs: req.VisualizationIDs,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	keys := []string{
		cache.ListKey(cache.EntityDashboards, userID),
		cache.DetailKey(cache.EntityDashboards, id, userID),
	}
	// The public entry only exists while the dashboard is public; dropping it
	// when the dashboard just went private keeps the old snapshot from being
	// served for the rest of its TTL.
	if dash.IsPublic || (req.IsPublic != nil && !*req.IsPublic) {
		keys = append(keys, cache.PublicKey(cache.EntityDashboards, id))
	}
	h.cache.Invalidate(c.Request.Context(), keys...)
	c.JSON(http.StatusOK, dto.ToDashboardDTO(*dash))
}

// Delete removes a dashboard
func (h *DashboardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.dashService.Delete(id, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(),
		cache.ListKey(cache.EntityDashboards, userID),
		cache.DetailKey(cache.EntityDashboards, id, userID),
		cache.PublicKey(cache.EntityDashboards, id),
	)
	c.JSON(http.StatusOK, gin.H{"message": "Dashboard deleted successfully"})
}
