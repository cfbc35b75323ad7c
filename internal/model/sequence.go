package model

import "time"

// SequenceCounter holds the last value handed out for one numbering series
type SequenceCounter struct {
	Name      string `gorm:"type:varchar(50);primaryKey"`
	Value     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
