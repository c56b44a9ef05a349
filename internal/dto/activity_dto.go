package dto

import (
	"time"

	"github.com/noah-isme/projecthub-api/internal/models"
)

// ActivityListRequest filters the audit trail.
type ActivityListRequest struct {
	Page       int
	PageSize   int
	ActorID    uint
	EntityID   uint
	Action     string
	EntityType string
	Since      *time.Time
	Until      *time.Time
}

// ActivityLogResponse is a single audit entry.
type ActivityLogResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actorId"`
	ActorRole  string                 `json:"actorRole"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entityType"`
	EntityID   *uint                  `json:"entityId,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`

	// CorrelationID matches the X-Correlation-ID of the originating request.
	CorrelationID string    `json:"correlationId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ActivityListResponse wraps a paginated audit listing.
type ActivityListResponse struct {
	Items      []ActivityLogResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// NewActivityLogResponse converts an audit row into a DTO.
func NewActivityLogResponse(entry models.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   map[string]interface{}(entry.Metadata),

		CorrelationID: entry.CorrelationID,
		CreatedAt:     entry.CreatedAt,
	}
}
