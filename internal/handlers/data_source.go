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

type DataSourceHandler struct {
	dsService    *services.DataSourceService
	queryService *services.QueryService
	cache        *cache.Coordinator
}

func NewDataSourceHandler(dsService *services.DataSourceService, queryService *services.QueryService, coordinator *cache.Coordinator) *DataSourceHandler {
	return &DataSourceHandler{
		dsService:    dsService,
		queryService: queryService,
		cache:        coordinator,
	}
}

// List returns all data sources owned by the current user
func (h *DataSourceHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	key := cache.ListKey(cache.EntityDataSources, userID)
	var cached []dto.DataSourceDTO
	if h.cache.GetJSON(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	sources, err := h.dsService.List(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	dtos := dto.ToDataSourceDTOs(sources)
	h.cache.SetJSON(c.Request.Context(), key, dtos, cache.ListTTL)
	c.JSON(http.StatusOK, dtos)
}

// Get returns a single data source owned by the current user
func (h *DataSourceHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	key := cache.DetailKey(cache.EntityDataSources, id, userID)
	var cached dto.DataSourceDTO
	if h.cache.GetJSON(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	ds, err := h.dsService.Get(id, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	d := dto.ToDataSourceDTO(*ds)
	h.cache.SetJSON(c.Request.Context(), key, d, cache.DetailTTL)
	c.JSON(http.StatusOK, d)
}

type createDataSourceRequest struct {
	Name             string `json:"name" binding:"required"`
	Type             string `json:"type" binding:"required"`
	ConnectionString string `json:"connection_string" binding:"required"`
}

// Create registers a new data source
func (h *DataSourceHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createDataSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ds, err := h.dsService.Create(services.CreateDataSourceInput{
		OwnerID:          userID,
		Name:             req.Name,
		Type:             models.DataSourceType(req.Type),
		ConnectionString: req.ConnectionString,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(), cache.ListKey(cache.EntityDataSources, userID))
	c.JSON(http.StatusCreated, dto.ToDataSourceDTO(*ds))
}

type updateDataSourceRequest struct {
	Name             *string `json:"name"`
	Type             *string `json:"type"`
	ConnectionString *string `json:"connection_string"`
}

// Update applies a partial update to a data source
func (h *DataSourceHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateDataSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := services.UpdateDataSourceInput{
		Name:             req.Name,
		ConnectionString: req.ConnectionString,
	}
	if req.Type != nil {
		dsType := models.DataSourceType(*req.Type)
		input.Type = &dsType
	}

	ds, err := h.dsService.Update(id, userID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(),
		cache.ListKey(cache.EntityDataSources, userID),
		cache.DetailKey(cache.EntityDataSources, id, userID),
	)
	c.JSON(http.StatusOK, dto.ToDataSourceDTO(*ds))
}

// Delete removes a data source
func (h *DataSourceHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.dsService.Delete(id, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(),
		cache.ListKey(cache.EntityDataSources, userID),
		cache.DetailKey(cache.EntityDataSources, id, userID),
	)
	c.JSON(http.StatusOK, gin.H{"message": "Data source deleted successfully"})
}

type executeQueryRequest struct {
	Query string `json:"query"`
}

// Query executes a query against the data source and returns row records
func (h *DataSourceHandler) Query(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req executeQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	records, err := h.queryService.ExecuteQuery(c.Request.Context(), id, userID, req.Query)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

// Tables returns the tables the data source exposes
func (h *DataSourceHandler) Tables(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tables, err := h.queryService.ListTables(c.Request.Context(), id, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

// Columns returns the column name/type pairs of one table
func (h *DataSourceHandler) Columns(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	table := c.Param("table")

	columns, err := h.queryService.ListColumns(c.Request.Context(), id, userID, table)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"columns": columns})
}
