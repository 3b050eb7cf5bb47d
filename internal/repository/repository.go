package repository

import (
	"github.com/vizlab/dataviz-api/internal/models"
)

// UserRepository defines the interface for user and role data access
type UserRepository interface {
	// CreateWithRoles creates a user and attaches the named roles inside a
	// single transaction, creating any missing role rows.
	CreateWithRoles(user *models.User, roleNames []string) error

	// FindByID finds a user by ID with roles preloaded
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username with roles preloaded
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// DataSourceRepository defines the interface for data source access
type DataSourceRepository interface {
	// Create creates a new data source
	Create(ds *models.DataSource) error

	// FindByIDAndOwner finds a data source owned by ownerID
	FindByIDAndOwner(id, ownerID uint64) (*models.DataSource, error)

	// ListByOwner lists all data sources owned by ownerID
	ListByOwner(ownerID uint64) ([]models.DataSource, error)

	// NameTakenByOwner reports whether another data source of the owner
	// already uses name. excludeID is skipped (0 to check all).
	NameTakenByOwner(ownerID uint64, name string, excludeID uint64) (bool, error)

	// Update persists changes to an existing data source
	Update(ds *models.DataSource) error

	// Delete removes a data source owned by ownerID
	Delete(id, ownerID uint64) error
}

// VisualizationRepository defines the interface for visualization access
type VisualizationRepository interface {
	// Create creates a new visualization
	Create(viz *models.Visualization) error

	// FindByIDAndOwner finds a visualization owned by ownerID
	FindByIDAndOwner(id, ownerID uint64) (*models.Visualization, error)

	// FindByIDsAndOwner returns the subset of ids that resolve to
	// visualizations owned by ownerID
	FindByIDsAndOwner(ids []uint64, ownerID uint64) ([]models.Visualization, error)

	// ListByOwner lists all visualizations owned by ownerID
	ListByOwner(ownerID uint64) ([]models.Visualization, error)

	// NameTakenByOwner reports whether another visualization of the owner
	// already uses name
	NameTakenByOwner(ownerID uint64, name string, excludeID uint64) (bool, error)

	// Update persists changes to an existing visualization
	Update(viz *models.Visualization) error

	// Delete removes a visualization and its dashboard membership rows in a
	// single transaction. The dashboards themselves are untouched.
	Delete(id, ownerID uint64) error
}

// DashboardRepository defines the interface for dashboard access
type DashboardRepository interface {
	// Create creates a dashboard together with its visualization membership
	// rows in a single transaction.
	Create(dash *models.Dashboard) error

	// FindByIDAndOwner finds a dashboard owned by ownerID with
	// visualizations preloaded
	FindByIDAndOwner(id, ownerID uint64) (*models.Dashboard, error)

	// FindPublicByID finds a dashboard whose is_public flag is set.
	// Private dashboards behave exactly like absent ones.
	FindPublicByID(id uint64) (*models.Dashboard, error)

	// ListByOwner lists all dashboards owned by ownerID
	ListByOwner(ownerID uint64) ([]models.Dashboard, error)

	// NameTakenByOwner reports whether another dashboard of the owner
	// already uses name
	NameTakenByOwner(ownerID uint64, name string, excludeID uint64) (bool, error)

	// Update persists field changes and, when replaceVisualizations is true,
	// replaces the membership set wholesale, all in one transaction.
	Update(dash *models.Dashboard, visualizations []models.Visualization, replaceVisualizations bool) error

	// Delete removes the membership rows and the dashboard row in a single
	// transaction.
	Delete(id, ownerID uint64) error
}
