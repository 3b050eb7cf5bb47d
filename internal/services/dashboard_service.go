package services

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	apierrors "github.com/vizlab/dataviz-api/internal/errors"
	"github.com/vizlab/dataviz-api/internal/models"
	"github.com/vizlab/dataviz-api/internal/repository"
)

// DashboardService handles dashboard registry business logic.
type DashboardService struct {
	dashRepo repository.DashboardRepository
	vizRepo  repository.VisualizationRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashRepo repository.DashboardRepository, vizRepo repository.VisualizationRepository) *DashboardService {
	return &DashboardService{
		dashRepo: dashRepo,
		vizRepo:  vizRepo,
	}
}

// CreateDashboardInput represents input for creating a dashboard.
type CreateDashboardInput struct {
	OwnerID          uint64
	Name             string
	Description      string
	Layout           models.JSONMap
	VisualizationIDs []uint64
	IsPublic         bool
}

// Create registers a new dashboard. Every referenced visualization must exist
// and be owned by the caller; otherwise nothing is persisted and the missing
// ids are reported.
func (s *DashboardService) Create(input CreateDashboardInput) (*models.Dashboard, error) {
	if input.Name == "" {
		return nil, &apierrors.ValidationError{Message: "Name is required."}
	}
	if input.Layout == nil {
		return nil, &apierrors.ValidationError{Message: "Layout must be a JSON object."}
	}

	taken, err := s.dashRepo.NameTakenByOwner(input.OwnerID, input.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check dashboard name: %w", err)
	}
	if taken {
		return nil, apierrors.Conflictf("A dashboard with the name '%s' already exists for this user.", input.Name)
	}

	visualizations, err := s.resolveVisualizations(input.VisualizationIDs, input.OwnerID)
	if err != nil {
		return nil, err
	}

	dash := &models.Dashboard{
		Name:           input.Name,
		Description:    input.Description,
		Layout:         input.Layout,
		IsPublic:       input.IsPublic,
		UserID:         input.OwnerID,
		Visualizations: visualizations,
	}

	if err := s.dashRepo.Create(dash); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.Conflictf("A dashboard with the name '%s' already exists for this user.", input.Name)
		}
		return nil, fmt.Errorf("failed to create dashboard: %w", err)
	}

	return dash, nil
}

// Get returns a dashboard owned by ownerID with its visualizations.
func (s *DashboardService) Get(id, ownerID uint64) (*models.Dashboard, error) {
	dash, err := s.dashRepo.FindByIDAndOwner(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierrors.NotFoundError{Message: "Dashboard not found or you do not have permission."}
		}
		return nil, fmt.Errorf("failed to find dashboard: %w", err)
	}
	return dash, nil
}

// GetPublic returns a public dashboard by id. Private dashboards are
// indistinguishable from absent ones.
func (s *DashboardService) GetPublic(id uint64) (*models.Dashboard, error) {
	dash, err := s.dashRepo.FindPublicByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierrors.NotFoundError{Message: "Public dashboard not found."}
		}
		return nil, fmt.Errorf("failed to find dashboard: %w", err)
	}
	return dash, nil
}

// List returns all dashboards owned by ownerID.
func (s *DashboardService) List(ownerID uint64) ([]models.Dashboard, error) {
	dashboards, err := s.dashRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards: %w", err)
	}
	return dashboards, nil
}

// UpdateDashboardInput is a patch: nil fields are left untouched. A non-nil
// VisualizationIDs replaces the membership set wholesale.
type UpdateDashboardInput struct {
	Name             *string
	Description      *string
	Layout           *models.JSONMap
	IsPublic         *bool
	VisualizationIDs *[]uint64
}

// Update applies a partial update, re-validating name uniqueness and
// visualization ownership the same way Create does.
func (s *DashboardService) Update(id, ownerID uint64, input UpdateDashboardInput) (*models.Dashboard, error) {
	dash, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, &apierrors.ValidationError{Message: "Name cannot be empty."}
		}
		taken, err := s.dashRepo.NameTakenByOwner(ownerID, *input.Name, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check dashboard name: %w", err)
		}
		if taken {
			return nil, apierrors.Conflictf("A dashboard with the name '%s' already exists for this user.", *input.Name)
		}
		dash.Name = *input.Name
	}
	if input.Description != nil {
		dash.Description = *input.Description
	}
	if input.Layout != nil {
		if *input.Layout == nil {
			return nil, &apierrors.ValidationError{Message: "Layout must be a JSON object."}
		}
		dash.Layout = *input.Layout
	}
	if input.IsPublic != nil {
		dash.IsPublic = *input.IsPublic
	}

	var (
		visualizations []models.Visualization
		replace        bool
	)
	if input.VisualizationIDs != nil {
		visualizations, err = s.resolveVisualizations(*input.VisualizationIDs, ownerID)
		if err != nil {
			return nil, err
		}
		replace = true
	}

	if err := s.dashRepo.Update(dash, visualizations, replace); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.Conflictf("A dashboard with the name '%s' already exists for this user.", dash.Name)
		}
		return nil, fmt.Errorf("failed to update dashboard: %w", err)
	}
	if replace {
		dash.Visualizations = visualizations
	}

	return dash, nil
}

// Delete removes the dashboard and its membership rows.
func (s *DashboardService) Delete(id, ownerID uint64) error {
	if err := s.dashRepo.Delete(id, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apierrors.NotFoundError{Message: "Dashboard not found or you do not have permission."}
		}
		return fmt.Errorf("failed to delete dashboard: %w", err)
	}
	return nil
}

// resolveVisualizations maps ids to visualizations owned by ownerID, failing
// with the list of ids that did not resolve.
func (s *DashboardService) resolveVisualizations(ids []uint64, ownerID uint64) ([]models.Visualization, error) {
	unique := uniqueIDs(ids)

	visualizations, err := s.vizRepo.FindByIDsAndOwner(unique, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve visualizations: %w", err)
	}

	if len(visualizations) != len(unique) {
		found := make(map[uint64]bool, len(visualizations))
		for _, viz := range visualizations {
			found[viz.ID] = true
		}
		var missing []uint64
		for _, id := range unique {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, &apierrors.ValidationError{
			Message: fmt.Sprintf("One or more visualizations not found or not owned by user: %v", missing),
			Details: map[string]any{"missing_ids": missing},
		}
	}

	return visualizations, nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	unique := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return unique
}
