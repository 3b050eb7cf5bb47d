package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apierrors "github.com/vizlab/dataviz-api/internal/errors"
	"github.com/vizlab/dataviz-api/internal/models"
	"github.com/vizlab/dataviz-api/internal/repository"
)

// VisualizationService handles visualization registry business logic.
type VisualizationService struct {
	vizRepo      repository.VisualizationRepository
	queryService *QueryService
}

// NewVisualizationService creates a new VisualizationService.
func NewVisualizationService(vizRepo repository.VisualizationRepository, queryService *QueryService) *VisualizationService {
	return &VisualizationService{
		vizRepo:      vizRepo,
		queryService: queryService,
	}
}

// CreateVisualizationInput represents input for creating a visualization.
type CreateVisualizationInput struct {
	OwnerID      uint64
	Name         string
	Description  string
	ChartType    string
	QueryConfig  models.JSONMap
	ChartConfig  models.JSONMap
	DataSourceID uint64
}

// Create registers a new visualization.
func (s *VisualizationService) Create(input CreateVisualizationInput) (*models.Visualization, error) {
	if input.Name == "" {
		return nil, &apierrors.ValidationError{Message: "Name is required."}
	}
	if input.ChartType == "" || input.QueryConfig == nil || input.ChartConfig == nil {
		return nil, &apierrors.ValidationError{Message: "Chart type, query config, and chart config are required."}
	}

	taken, err := s.vizRepo.NameTakenByOwner(input.OwnerID, input.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check visualization name: %w", err)
	}
	if taken {
		return nil, apierrors.Conflictf("A visualization with the name '%s' already exists for this user.", input.Name)
	}

	viz := &models.Visualization{
		Name:         input.Name,
		Description:  input.Description,
		ChartType:    input.ChartType,
		QueryConfig:  input.QueryConfig,
		ChartConfig:  input.ChartConfig,
		DataSourceID: input.DataSourceID,
		UserID:       input.OwnerID,
	}

	if err := s.vizRepo.Create(viz); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.Conflictf("A visualization with the name '%s' already exists for this user.", input.Name)
		}
		return nil, fmt.Errorf("failed to create visualization: %w", err)
	}

	return viz, nil
}

// Get returns a visualization owned by ownerID.
func (s *VisualizationService) Get(id, ownerID uint64) (*models.Visualization, error) {
	viz, err := s.vizRepo.FindByIDAndOwner(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierrors.NotFoundError{Message: "Visualization not found or you do not have permission."}
		}
		return nil, fmt.Errorf("failed to find visualization: %w", err)
	}
	return viz, nil
}

// List returns all visualizations owned by ownerID.
func (s *VisualizationService) List(ownerID uint64) ([]models.Visualization, error) {
	vizs, err := s.vizRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visualizations: %w", err)
	}
	return vizs, nil
}

// UpdateVisualizationInput is a patch: nil fields are left untouched.
type UpdateVisualizationInput struct {
	Name         *string
	Description  *string
	ChartType    *string
	QueryConfig  *models.JSONMap
	ChartConfig  *models.JSONMap
	DataSourceID *uint64
}

// Update applies a partial update, re-checking name uniqueness minus self.
func (s *VisualizationService) Update(id, ownerID uint64, input UpdateVisualizationInput) (*models.Visualization, error) {
	viz, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, &apierrors.ValidationError{Message: "Name cannot be empty."}
		}
		taken, err := s.vizRepo.NameTakenByOwner(ownerID, *input.Name, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check visualization name: %w", err)
		}
		if taken {
			return nil, apierrors.Conflictf("A visualization with the name '%s' already exists for this user.", *input.Name)
		}
		viz.Name = *input.Name
	}
	if input.Description != nil {
		viz.Description = *input.Description
	}
	if input.ChartType != nil {
		if *input.ChartType == "" {
			return nil, &apierrors.ValidationError{Message: "Chart type cannot be empty."}
		}
		viz.ChartType = *input.ChartType
	}
	if input.QueryConfig != nil {
		if *input.QueryConfig == nil {
			return nil, &apierrors.ValidationError{Message: "Query config must be a JSON object."}
		}
		viz.QueryConfig = *input.QueryConfig
	}
	if input.ChartConfig != nil {
		if *input.ChartConfig == nil {
			return nil, &apierrors.ValidationError{Message: "Chart config must be a JSON object."}
		}
		viz.ChartConfig = *input.ChartConfig
	}
	if input.DataSourceID != nil {
		viz.DataSourceID = *input.DataSourceID
	}

	if err := s.vizRepo.Update(viz); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.Conflictf("A visualization with the name '%s' already exists for this user.", viz.Name)
		}
		return nil, fmt.Errorf("failed to update visualization: %w", err)
	}

	return viz, nil
}

// Delete removes a visualization and its dashboard membership rows.
func (s *VisualizationService) Delete(id, ownerID uint64) error {
	if err := s.vizRepo.Delete(id, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apierrors.NotFoundError{Message: "Visualization not found or you do not have permission."}
		}
		return fmt.Errorf("failed to delete visualization: %w", err)
	}
	return nil
}

// GetData looks up the visualization and executes its stored query through
// the gateway. The query string comes from query_config.query_string and may
// be empty; for csv sources the gateway returns all rows either way.
func (s *VisualizationService) GetData(ctx context.Context, id, ownerID uint64) ([]map[string]any, error) {
	viz, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}

	return s.queryService.ExecuteQuery(ctx, viz.DataSourceID, ownerID, viz.QueryConfig.String("query_string"))
}
