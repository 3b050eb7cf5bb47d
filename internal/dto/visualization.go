package dto

import (
	"time"

	"github.com/vizlab/dataviz-api/internal/models"
)

// VisualizationDTO represents a visualization in API responses
type VisualizationDTO struct {
	ID           uint64         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	ChartType    string         `json:"chart_type"`
	QueryConfig  models.JSONMap `json:"query_config"`
	ChartConfig  models.JSONMap `json:"chart_config"`
	DataSourceID uint64         `json:"data_source_id"`
	UserID       uint64         `json:"user_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ToVisualizationDTO converts a Visualization model to VisualizationDTO
func ToVisualizationDTO(viz models.Visualization) VisualizationDTO {
	return VisualizationDTO{
		ID:           viz.ID,
		Name:         viz.Name,
		Description:  viz.Description,
		ChartType:    viz.ChartType,
		QueryConfig:  viz.QueryConfig,
		ChartConfig:  viz.ChartConfig,
		DataSourceID: viz.DataSourceID,
		UserID:       viz.UserID,
		CreatedAt:    viz.CreatedAt,
		UpdatedAt:    viz.UpdatedAt,
	}
}

// ToVisualizationDTOs converts a slice of Visualization models
func ToVisualizationDTOs(vizs []models.Visualization) []VisualizationDTO {
	dtos := make([]VisualizationDTO, 0, len(vizs))
	for _, viz := range vizs {
		dtos = append(dtos, ToVisualizationDTO(viz))
	}
	return dtos
}
