package domain

import "time"

// PauseCause is the fixed vocabulary of selectable pause reasons. It is
// reference data owned outside the lifecycle core and seeded from the catalog.
type PauseCause struct {
	Code      string    `gorm:"column:code;primaryKey" json:"code"`
	Label     string    `gorm:"column:label;not null" json:"label"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
}

func (PauseCause) TableName() string { return "pause_cause" }
