package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apierrors "github.com/vizlab/dataviz-api/internal/errors"
	"github.com/vizlab/dataviz-api/internal/models"
	"github.com/vizlab/dataviz-api/internal/repository"
)

// DataSourceService handles data source registry business logic.
type DataSourceService struct {
	dsRepo repository.DataSourceRepository
}

// NewDataSourceService creates a new DataSourceService.
func NewDataSourceService(dsRepo repository.DataSourceRepository) *DataSourceService {
	return &DataSourceService{dsRepo: dsRepo}
}

// CreateDataSourceInput represents input for creating a data source.
type CreateDataSourceInput struct {
	OwnerID          uint64
	Name             string
	Type             models.DataSourceType
	ConnectionString string
}

// Create registers a new data source. Name uniqueness is scoped to the owner.
func (s *DataSourceService) Create(input CreateDataSourceInput) (*models.DataSource, error) {
	if input.Name == "" {
		return nil, &apierrors.ValidationError{Message: "Name is required."}
	}
	if !input.Type.Valid() {
		return nil, apierrors.Validationf("Unsupported data source type: %s", input.Type)
	}
	if input.ConnectionString == "" {
		return nil, &apierrors.ValidationError{Message: "Connection string is required."}
	}

	taken, err := s.dsRepo.NameTakenByOwner(input.OwnerID, input.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check data source name: %w", err)
	}
	if taken {
		return nil, apierrors.Conflictf("A data source with the name '%s' already exists for this user.", input.Name)
	}

	ds := &models.DataSource{
		Name:             input.Name,
		Type:             input.Type,
		ConnectionString: input.ConnectionString,
		UserID:           input.OwnerID,
	}

	if err := s.dsRepo.Create(ds); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.Conflictf("A data source with the name '%s' already exists for this user.", input.Name)
		}
		return nil, fmt.Errorf("failed to create data source: %w", err)
	}

	return ds, nil
}

// Get returns a data source owned by ownerID. Absent and not-owned are
// indistinguishable.
func (s *DataSourceService) Get(id, ownerID uint64) (*models.DataSource, error) {
	ds, err := s.dsRepo.FindByIDAndOwner(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierrors.NotFoundError{Message: "Data source not found or you do not have permission."}
		}
		return nil, fmt.Errorf("failed to find data source: %w", err)
	}
	return ds, nil
}

// List returns all data sources owned by ownerID.
func (s *DataSourceService) List(ownerID uint64) ([]models.DataSource, error) {
	sources, err := s.dsRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}
	return sources, nil
}

// UpdateDataSourceInput is a patch: nil fields are left untouched. Owner and
// id reassignment are not expressible here.
type UpdateDataSourceInput struct {
	Name             *string
	Type             *models.DataSourceType
	ConnectionString *string
}

// Update applies a partial update, re-checking name uniqueness minus self.
func (s *DataSourceService) Update(id, ownerID uint64, input UpdateDataSourceInput) (*models.DataSource, error) {
	ds, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, &apierrors.ValidationError{Message: "Name cannot be empty."}
		}
		taken, err := s.dsRepo.NameTakenByOwner(ownerID, *input.Name, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check data source name: %w", err)
		}
		if taken {
			return nil, apierrors.Conflictf("A data source with the name '%s' already exists for this user.", *input.Name)
		}
		ds.Name = *input.Name
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, apierrors.Validationf("Unsupported data source type: %s", *input.Type)
		}
		ds.Type = *input.Type
	}
	if input.ConnectionString != nil {
		if *input.ConnectionString == "" {
			return nil, &apierrors.ValidationError{Message: "Connection string cannot be empty."}
		}
		ds.ConnectionString = *input.ConnectionString
	}

	if err := s.dsRepo.Update(ds); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.Conflictf("A data source with the name '%s' already exists for this user.", ds.Name)
		}
		return nil, fmt.Errorf("failed to update data source: %w", err)
	}

	return ds, nil
}

// Delete removes a data source owned by ownerID.
func (s *DataSourceService) Delete(id, ownerID uint64) error {
	if err := s.dsRepo.Delete(id, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apierrors.NotFoundError{Message: "Data source not found or you do not have permission."}
		}
		return fmt.Errorf("failed to delete data source: %w", err)
	}
	return nil
}
