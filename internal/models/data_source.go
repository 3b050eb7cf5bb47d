package models

import "time"

type DataSourceType string

const (
	DataSourceTypePostgres DataSourceType = "postgresql"
	DataSourceTypeMySQL    DataSourceType = "mysql"
	DataSourceTypeCSV      DataSourceType = "csv"
)

// Valid reports whether the type is one of the supported source types.
func (t DataSourceType) Valid() bool {
	switch t {
	case DataSourceTypePostgres, DataSourceTypeMySQL, DataSourceTypeCSV:
		return true
	}
	return false
}

// Relational reports whether queries are passed through to a SQL engine.
func (t DataSourceType) Relational() bool {
	return t == DataSourceTypePostgres || t == DataSourceTypeMySQL
}

type DataSource struct {
	ID   uint64         `gorm:"primarykey" json:"id"`
	Name string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_data_sources_owner_name" json:"name"`
	Type DataSourceType `gorm:"type:varchar(50);not null" json:"type"`
	// ConnectionString is an opaque descriptor. For csv sources it holds the
	// literal file content.
	ConnectionString string    `gorm:"type:text;not null" json:"-"`
	UserID           uint64    `gorm:"not null;uniqueIndex:idx_data_sources_owner_name" json:"user_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relations
	Owner          User            `gorm:"foreignKey:UserID" json:"-"`
	Visualizations []Visualization `gorm:"foreignKey:DataSourceID" json:"-"`
}
