package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Lifecycle event types published on the projects subject.
const (
	EventProjectCreated  = "project.created"
	EventProjectAccepted = "project.accepted"
	EventProjectRejected = "project.rejected"
)

// ProjectEvent is the payload broadcast after a lifecycle transition commits.
type ProjectEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	ProjectID    uint      `json:"project_id"`
	StudentID    uint      `json:"student_id"`
	SupervisorID uint      `json:"supervisor_id"`
	ActorID      uint      `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`

	// CorrelationID is empty for transitions not triggered by a request.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ProjectEventPublisher broadcasts lifecycle events to other services.
type ProjectEventPublisher interface {
	Publish(ctx context.Context, event ProjectEvent) error
}

type natsProjectPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewProjectEventPublisher publishes on "<channelBase>.projects". A nil
// connection yields a publisher that drops events.
func NewProjectEventPublisher(conn *nats.Conn, channelBase string, logger zerolog.Logger) ProjectEventPublisher {
	return &natsProjectPublisher{
		conn:    conn,
		subject: ProjectSubject(channelBase),
		logger:  logger.With().Str("component", "project_events").Logger(),
	}
}

// ProjectSubject returns the subject lifecycle events are published on.
func ProjectSubject(channelBase string) string {
	base := strings.TrimSpace(channelBase)
	if base == "" {
		return ""
	}
	return strings.ReplaceAll(base, ":", ".") + ".projects"
}

func (p *natsProjectPublisher) Publish(ctx context.Context, event ProjectEvent) error {
	if p.conn == nil || p.subject == "" {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Str("type", event.Type).Msg("failed to publish project event")
		return err
	}

	return nil
}
