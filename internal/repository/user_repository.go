package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/vizlab/dataviz-api/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateWithRoles creates the user and attaches roles atomically. The unique
// constraints on username and email hold inside the same transaction, so a
// concurrent duplicate insert fails here rather than racing a prior check.
func (r *GormUserRepository) CreateWithRoles(user *models.User, roleNames []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		roles := make([]models.Role, 0, len(roleNames))
		for _, name := range roleNames {
			role := models.Role{Name: name}
			if err := tx.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("failed to resolve role %q: %w", name, err)
			}
			roles = append(roles, role)
		}

		user.Roles = roles
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Roles").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Roles").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
