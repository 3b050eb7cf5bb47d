package repository

import (
	"gorm.io/gorm"

	"github.com/vizlab/dataviz-api/internal/models"
)

// GormVisualizationRepository is a GORM implementation of VisualizationRepository
type GormVisualizationRepository struct {
	db *gorm.DB
}

// NewVisualizationRepository creates a new VisualizationRepository
func NewVisualizationRepository(db *gorm.DB) VisualizationRepository {
	return &GormVisualizationRepository{db: db}
}

// Create creates a new visualization
func (r *GormVisualizationRepository) Create(viz *models.Visualization) error {
	return r.db.Create(viz).Error
}

// FindByIDAndOwner finds a visualization owned by ownerID
func (r *GormVisualizationRepository) FindByIDAndOwner(id, ownerID uint64) (*models.Visualization, error) {
	var viz models.Visualization
	if err := r.db.Where("id = ? AND user_id = ?", id, ownerID).First(&viz).Error; err != nil {
		return nil, err
	}
	return &viz, nil
}

// FindByIDsAndOwner returns the subset of ids owned by ownerID
func (r *GormVisualizationRepository) FindByIDsAndOwner(ids []uint64, ownerID uint64) ([]models.Visualization, error) {
	if len(ids) == 0 {
		return []models.Visualization{}, nil
	}
	var vizs []models.Visualization
	if err := r.db.Where("id IN ? AND user_id = ?", ids, ownerID).Find(&vizs).Error; err != nil {
		return nil, err
	}
	return vizs, nil
}

// ListByOwner lists all visualizations owned by ownerID
func (r *GormVisualizationRepository) ListByOwner(ownerID uint64) ([]models.Visualization, error) {
	var vizs []models.Visualization
	if err := r.db.Where("user_id = ?", ownerID).Order("id").Find(&vizs).Error; err != nil {
		return nil, err
	}
	return vizs, nil
}

// NameTakenByOwner reports whether another visualization of the owner uses name
func (r *GormVisualizationRepository) NameTakenByOwner(ownerID uint64, name string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.Model(&models.Visualization{}).Where("user_id = ? AND name = ?", ownerID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists changes to an existing visualization
func (r *GormVisualizationRepository) Update(viz *models.Visualization) error {
	return r.db.Save(viz).Error
}

// Delete removes the visualization and its dashboard membership rows
// atomically. Dashboards that referenced it keep existing.
func (r *GormVisualizationRepository) Delete(id, ownerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var viz models.Visualization
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&viz).Error; err != nil {
			return err
		}

		if err := tx.Model(&viz).Association("Dashboards").Clear(); err != nil {
			return err
		}

		return tx.Delete(&viz).Error
	})
}
