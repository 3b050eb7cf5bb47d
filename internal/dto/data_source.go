package dto

import (
	"time"

	"github.com/vizlab/dataviz-api/internal/models"
)

// DataSourceDTO represents a data source in API responses. The connection
// string is write-only and never echoed back.
type DataSourceDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	UserID    uint64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDataSourceDTO converts a DataSource model to DataSourceDTO
func ToDataSourceDTO(ds models.DataSource) DataSourceDTO {
	return DataSourceDTO{
		ID:        ds.ID,
		Name:      ds.Name,
		Type:      string(ds.Type),
		UserID:    ds.UserID,
		CreatedAt: ds.CreatedAt,
		UpdatedAt: ds.UpdatedAt,
	}
}

// ToDataSourceDTOs converts a slice of DataSource models
func ToDataSourceDTOs(sources []models.DataSource) []DataSourceDTO {
	dtos := make([]DataSourceDTO, 0, len(sources))
	for _, ds := range sources {
		dtos = append(dtos, ToDataSourceDTO(ds))
	}
	return dtos
}
