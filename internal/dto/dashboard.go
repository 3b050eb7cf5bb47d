package dto

import (
	"time"

	"github.com/vizlab/dataviz-api/internal/models"
)

// DashboardDTO represents a dashboard in API responses, with its attached
// visualizations embedded.
type DashboardDTO struct {
	ID             uint64             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Layout         models.JSONMap     `json:"layout"`
	IsPublic       bool               `json:"is_public"`
	UserID         uint64             `json:"user_id"`
	Visualizations []VisualizationDTO `json:"visualizations"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ToDashboardDTO converts a Dashboard model to DashboardDTO
func ToDashboardDTO(dash models.Dashboard) DashboardDTO {
	return DashboardDTO{
		ID:             dash.ID,
		Name:           dash.Name,
		Description:    dash.Description,
		Layout:         dash.Layout,
		IsPublic:       dash.IsPublic,
		UserID:         dash.UserID,
		Visualizations: ToVisualizationDTOs(dash.Visualizations),
		CreatedAt:      dash.CreatedAt,
		UpdatedAt:      dash.UpdatedAt,
	}
}

// ToDashboardDTOs converts a slice of Dashboard models
func ToDashboardDTOs(dashboards []models.Dashboard) []DashboardDTO {
	dtos := make([]DashboardDTO, 0, len(dashboards))
	for _, dash := range dashboards {
		dtos = append(dtos, ToDashboardDTO(dash))
	}
	return dtos
}
