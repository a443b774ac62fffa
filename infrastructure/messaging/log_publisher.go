// Package messaging holds event publishers that do not leave the process.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/domain/events"
)

// LogPublisher writes events to the log instead of a bus
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a new LogPublisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event
func (p *LogPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.logger.Info("Domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Int("version", event.GetVersion()),
		zap.Time("timestamp", event.GetTimestamp()))
	return nil
}
