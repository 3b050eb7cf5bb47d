package models

import "time"

type Dashboard struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex:idx_dashboards_owner_name" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// Layout describes tile positions and sizes per visualization.
	Layout    JSONMap   `gorm:"type:json;not null" json:"layout"`
	IsPublic  bool      `gorm:"not null;default:false" json:"is_public"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_dashboards_owner_name" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner          User            `gorm:"foreignKey:UserID" json:"-"`
	Visualizations []Visualization `gorm:"many2many:dashboard_visualizations" json:"visualizations,omitempty"`
}
