package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/commands"
	"github.com/ShabiDHM/advocatus-sub001/application/commands/bus"
	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/events"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
	"github.com/ShabiDHM/advocatus-sub001/pkg/observability"
)

// SaveEvidenceMapHandler handles SaveEvidenceMapCommand
type SaveEvidenceMapHandler struct {
	repo      ports.EvidenceMapRepository
	cache     ports.Cache
	publisher ports.EventPublisher
	metrics   *observability.Collector
	logger    *zap.Logger
	now       func() time.Time
}

// NewSaveEvidenceMapHandler creates a new save handler. cache, publisher and
// metrics may be nil.
func NewSaveEvidenceMapHandler(
	repo ports.EvidenceMapRepository,
	cache ports.Cache,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	logger *zap.Logger,
) *SaveEvidenceMapHandler {
	return &SaveEvidenceMapHandler{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle executes the save command
func (h *SaveEvidenceMapHandler) Handle(ctx context.Context, cmd commands.SaveEvidenceMapCommand) error {
	caseID, err := valueobjects.ParseCaseID(cmd.CaseID)
	if err != nil {
		return err
	}

	m, err := aggregates.FromDocument(caseID, cmd.Document)
	if err != nil {
		return err
	}

	// Dangling edges are stored as sent
	dangling := len(m.DanglingEdges())
	if dangling > 0 {
		h.logger.Warn("Saving evidence map with dangling edges",
			zap.String("caseID", caseID.String()),
			zap.Int("dangling", dangling))
	}

	// Versions keep counting across wholesale replacements
	if prev, err := h.repo.Load(ctx, caseID); err == nil {
		m, err = aggregates.ReconstructEvidenceMap(caseID, m.Nodes(), m.Edges(), m.Viewport(), prev.UpdatedAt(), prev.Version())
		if err != nil {
			return err
		}
	} else if !pkgerrors.IsNotFound(err) {
		h.logger.Warn("Failed to read previous evidence map version",
			zap.String("caseID", caseID.String()),
			zap.Error(err))
	}

	m.MarkSaved(h.now())
	if err := h.repo.Save(ctx, m); err != nil {
		h.logger.Error("Failed to save evidence map",
			zap.String("caseID", caseID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to save evidence map: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.Delete(ctx, ports.EvidenceMapCacheKey(caseID)); err != nil {
			h.logger.Warn("Failed to invalidate cache", zap.String("caseID", caseID.String()), zap.Error(err))
		}
	}

	if h.metrics != nil {
		h.metrics.MapsSaved.Inc()
		h.metrics.DanglingEdges.Add(float64(dangling))
	}

	if h.publisher != nil {
		event := events.NewEvidenceMapSaved(caseID, m.NodeCount(), m.EdgeCount(), dangling, m.Version(), m.UpdatedAt())
		if err := h.publisher.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish event",
				zap.String("event", event.GetEventType()),
				zap.Error(err))
		}
	}

	h.logger.Info("Evidence map saved",
		zap.String("caseID", caseID.String()),
		zap.Int("nodes", m.NodeCount()),
		zap.Int("edges", m.EdgeCount()))
	return nil
}

// RegisterHandlers wires the command handlers into the bus
func RegisterHandlers(b *bus.CommandBus, save *SaveEvidenceMapHandler) error {
	return b.Register(commands.SaveEvidenceMapCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.SaveEvidenceMapCommand)
			if !ok {
				return fmt.Errorf("unexpected command type %T", cmd)
			}
			return save.Handle(ctx, c)
		}))
}
