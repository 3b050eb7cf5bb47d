package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/vizlab/dataviz-api/internal/models"
)

// Migrate runs schema migrations and seeds the predefined roles.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.DataSource{},
		&models.Visualization{},
		&models.Dashboard{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seedRoles(db); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	return nil
}

func seedRoles(db *gorm.DB) error {
	roles := []models.Role{
		{Name: models.RoleAdmin, Description: "Administrator with full access"},
		{Name: models.RoleEditor, Description: "Can create and modify resources"},
		{Name: models.RoleUser, Description: "Standard user role"},
	}

	for _, role := range roles {
		if err := db.Where(models.Role{Name: role.Name}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}

	return nil
}
