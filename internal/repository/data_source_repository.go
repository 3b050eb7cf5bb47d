package repository

import (
	"gorm.io/gorm"

	"github.com/vizlab/dataviz-api/internal/models"
)

// GormDataSourceRepository is a GORM implementation of DataSourceRepository
type GormDataSourceRepository struct {
	db *gorm.DB
}

// NewDataSourceRepository creates a new DataSourceRepository
func NewDataSourceRepository(db *gorm.DB) DataSourceRepository {
	return &GormDataSourceRepository{db: db}
}

// Create creates a new data source
func (r *GormDataSourceRepository) Create(ds *models.DataSource) error {
	return r.db.Create(ds).Error
}

// FindByIDAndOwner finds a data source owned by ownerID
func (r *GormDataSourceRepository) FindByIDAndOwner(id, ownerID uint64) (*models.DataSource, error) {
	var ds models.DataSource
	if err := r.db.Where("id = ? AND user_id = ?", id, ownerID).First(&ds).Error; err != nil {
		return nil, err
	}
	return &ds, nil
}

// ListByOwner lists all data sources owned by ownerID
func (r *GormDataSourceRepository) ListByOwner(ownerID uint64) ([]models.DataSource, error) {
	var sources []models.DataSource
	if err := r.db.Where("user_id = ?", ownerID).Order("id").Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

// NameTakenByOwner reports whether another data source of the owner uses name
func (r *GormDataSourceRepository) NameTakenByOwner(ownerID uint64, name string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.Model(&models.DataSource{}).Where("user_id = ? AND name = ?", ownerID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists changes to an existing data source
func (r *GormDataSourceRepository) Update(ds *models.DataSource) error {
	return r.db.Save(ds).Error
}

// Delete removes a data source owned by ownerID
func (r *GormDataSourceRepository) Delete(id, ownerID uint64) error {
	result := r.db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.DataSource{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
