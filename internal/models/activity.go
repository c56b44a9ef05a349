package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is one append-only audit entry. Rejected and deleted projects
// stay traceable through the entries written against their id.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey"`
	ActorID    uint              `gorm:"not null;index"`
	ActorRole  string            `gorm:"size:32;not null"`
	Action     string            `gorm:"size:64;not null;index"`
	EntityType string            `gorm:"size:32;not null;index:idx_activity_entity,priority:1"`
	EntityID   *uint             `gorm:"index:idx_activity_entity,priority:2"`
	Metadata   datatypes.JSONMap `gorm:"type:json"`

	// CorrelationID ties the entry to the request that caused it.
	CorrelationID string    `gorm:"size:128;index"`
	CreatedAt     time.Time `gorm:"index"`
}
