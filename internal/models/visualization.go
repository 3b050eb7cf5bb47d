package models

import "time"

type Visualization struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex:idx_visualizations_owner_name" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ChartType   string `gorm:"type:varchar(50);not null" json:"chart_type"`
	// QueryConfig describes how to fetch the data (query_string and friends).
	QueryConfig JSONMap `gorm:"type:json;not null" json:"query_config"`
	// ChartConfig describes how to render it.
	ChartConfig  JSONMap   `gorm:"type:json;not null" json:"chart_config"`
	DataSourceID uint64    `gorm:"not null" json:"data_source_id"`
	UserID       uint64    `gorm:"not null;uniqueIndex:idx_visualizations_owner_name" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	DataSource DataSource  `gorm:"foreignKey:DataSourceID" json:"-"`
	Owner      User        `gorm:"foreignKey:UserID" json:"-"`
	Dashboards []Dashboard `gorm:"many2many:dashboard_visualizations" json:"-"`
}
