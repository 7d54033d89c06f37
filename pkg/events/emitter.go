// Package events handles event emission for match lifecycle changes.
package events

import (
	"context"
	"encoding/json"

	"github.com/CoreyPud/solarlink/pkg/kafka"
	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/models"
	"github.com/CoreyPud/solarlink/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Event type constants
const (
	EventTypeMatchCreated  = "match.created"
	EventTypeMatchApproved = "match.approved"
	EventTypeMatchRejected = "match.rejected"
	EventTypeRunCompleted  = "reconciliation.completed"
)

// Emitter publishes match lifecycle events. A nil Emitter is valid and
// drops everything, so callers do not branch on whether Kafka is enabled.
type Emitter struct {
	producer *kafka.Producer
	logger   logging.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger logging.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitMatchCreated emits an event for a newly persisted match result
func (e *Emitter) EmitMatchCreated(ctx context.Context, m *models.MatchResult) error {
	if e == nil || e.producer == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMatchCreated")
	defer span.End()

	event := &kafka.MatchEvent{
		EventType:         EventTypeMatchCreated,
		MatchID:           m.ID,
		InstallationID:    m.InstallationID,
		InterconnectionID: m.InterconnectionID,
		Confidence:        m.Confidence,
		Method:            string(m.Method),
		Status:            m.Status,
	}

	if err := e.producer.PublishMatchEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit match.created event")
		return err
	}

	return nil
}

// EmitMatchResolved emits an approval or rejection event
func (e *Emitter) EmitMatchResolved(ctx context.Context, m *models.MatchResult, approved bool) error {
	if e == nil || e.producer == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMatchResolved")
	defer span.End()

	eventType := EventTypeMatchRejected
	if approved {
		eventType = EventTypeMatchApproved
	}

	event := &kafka.MatchEvent{
		EventType:         eventType,
		MatchID:           m.ID,
		InstallationID:    m.InstallationID,
		InterconnectionID: m.InterconnectionID,
		Confidence:        m.Confidence,
		Method:            string(m.Method),
		Status:            m.Status,
	}

	if err := e.producer.PublishMatchEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit match resolution event")
		return err
	}

	return nil
}

// EmitRunCompleted emits the summary of a finished reconciliation run
func (e *Emitter) EmitRunCompleted(ctx context.Context, summary *models.RunSummary) error {
	if e == nil || e.producer == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunCompleted")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"schema_version":    SchemaVersion,
		"processed":         summary.Processed,
		"skipped":           summary.Skipped,
		"matched":           summary.Matched,
		"confirmed":         summary.Confirmed,
		"pending_review":    summary.PendingReview,
		"matches_by_method": summary.MatchesByMethod.Data,
	})

	event := &kafka.MatchEvent{
		EventType: EventTypeRunCompleted,
		MatchID:   summary.ID,
		Data:      data,
	}

	if err := e.producer.PublishMatchEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit reconciliation.completed event")
		return err
	}

	return nil
}
