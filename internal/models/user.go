package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(80);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Roles          []Role          `gorm:"many2many:user_roles" json:"roles,omitempty"`
	DataSources    []DataSource    `gorm:"foreignKey:UserID" json:"-"`
	Visualizations []Visualization `gorm:"foreignKey:UserID" json:"-"`
	Dashboards     []Dashboard     `gorm:"foreignKey:UserID" json:"-"`
}

// RoleNames returns the names of the attached roles. It is deliberately a
// separate accessor from the Roles relationship so the raw association stays
// addressable.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}
