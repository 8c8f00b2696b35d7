// internal/storage/models/base.go
package models

import "time"

// BaseModel replaces gorm.Model. Archived rows are append-only, so there is
// no soft delete.
type BaseModel struct {
	ID        uint      `gorm:"primarykey"`
	EventID   string    `gorm:"uniqueIndex;not null;type:varchar(36)"`
	EventTime time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}
