package models

import (
	"time"

	"gorm.io/datatypes"
)

// CollectionRecord holds one whole collection as a JSON array.
type CollectionRecord struct {
	Key       string         `gorm:"primary_key;size:64"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (CollectionRecord) TableName() string {
	return "collections"
}
