package repository

import (
	"gorm.io/gorm"

	"github.com/vizlab/dataviz-api/internal/models"
)

// GormDashboardRepository is a GORM implementation of DashboardRepository
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &GormDashboardRepository{db: db}
}

// Create creates the dashboard row and its membership rows atomically, so a
// failed insert leaves nothing behind.
func (r *GormDashboardRepository) Create(dash *models.Dashboard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(dash).Error
	})
}

// FindByIDAndOwner finds a dashboard owned by ownerID
func (r *GormDashboardRepository) FindByIDAndOwner(id, ownerID uint64) (*models.Dashboard, error) {
	var dash models.Dashboard
	err := r.db.Preload("Visualizations").
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&dash).Error
	if err != nil {
		return nil, err
	}
	return &dash, nil
}

// FindPublicByID finds a public dashboard by ID
func (r *GormDashboardRepository) FindPublicByID(id uint64) (*models.Dashboard, error) {
	var dash models.Dashboard
	err := r.db.Preload("Visualizations").
		Where("id = ? AND is_public = ?", id, true).
		First(&dash).Error
	if err != nil {
		return nil, err
	}
	return &dash, nil
}

// ListByOwner lists all dashboards owned by ownerID
func (r *GormDashboardRepository) ListByOwner(ownerID uint64) ([]models.Dashboard, error) {
	var dashboards []models.Dashboard
	if err := r.db.Where("user_id = ?", ownerID).Order("id").Find(&dashboards).Error; err != nil {
		return nil, err
	}
	return dashboards, nil
}

// NameTakenByOwner reports whether another dashboard of the owner uses name
func (r *GormDashboardRepository) NameTakenByOwner(ownerID uint64, name string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.Model(&models.Dashboard{}).Where("user_id = ? AND name = ?", ownerID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update saves field changes and optionally replaces the visualization set.
// The new set fully replaces the old one; there is no partial add/remove.
func (r *GormDashboardRepository) Update(dash *models.Dashboard, visualizations []models.Visualization, replaceVisualizations bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Visualizations").Save(dash).Error; err != nil {
			return err
		}

		if replaceVisualizations {
			if err := tx.Model(dash).Association("Visualizations").Replace(visualizations); err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes membership rows and the dashboard row atomically
func (r *GormDashboardRepository) Delete(id, ownerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var dash models.Dashboard
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&dash).Error; err != nil {
			return err
		}

		if err := tx.Model(&dash).Association("Visualizations").Clear(); err != nil {
			return err
		}

		return tx.Delete(&dash).Error
	})
}
