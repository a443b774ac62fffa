package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/events"
	domainsvc "github.com/ShabiDHM/advocatus-sub001/domain/services"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
	"github.com/ShabiDHM/advocatus-sub001/pkg/observability"
	"github.com/ShabiDHM/advocatus-sub001/pkg/utils"
)

// ImportRequest is the extraction output to fold into a case's map
type ImportRequest struct {
	Nodes []domainsvc.ImportedNode `json:"nodes" validate:"max=5000,dive"`
	Edges []domainsvc.ImportedEdge `json:"edges" validate:"max=20000,dive"`

	// Dangling overrides the service's dangling edge policy when set
	Dangling string `json:"dangling,omitempty" validate:"omitempty,oneof=keep drop redirect"`
}

// EvidenceMapService runs the evidence map operations that need a
// load-modify-save cycle. It is called directly rather than through the
// command bus because callers need the typed result.
type EvidenceMapService struct {
	repo      ports.EvidenceMapRepository
	cache     ports.Cache
	publisher ports.EventPublisher
	metrics   *observability.Collector
	options   domainsvc.ImportOptions
	logger    *zap.Logger
	now       func() time.Time
}

// NewEvidenceMapService creates a new service. cache, publisher and metrics
// may be nil.
func NewEvidenceMapService(
	repo ports.EvidenceMapRepository,
	cache ports.Cache,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	options domainsvc.ImportOptions,
	logger *zap.Logger,
) *EvidenceMapService {
	return &EvidenceMapService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		options:   options,
		logger:    logger,
		now:       time.Now,
	}
}

// Import merges extracted nodes and edges into the stored map of a case and
// saves the result. Existing nodes and edges are never changed.
func (s *EvidenceMapService) Import(ctx context.Context, rawCaseID string, req ImportRequest) (domainsvc.ImportResult, error) {
	caseID, err := valueobjects.ParseCaseID(rawCaseID)
	if err != nil {
		return domainsvc.ImportResult{}, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return domainsvc.ImportResult{}, err
	}

	opts := s.options
	if req.Dangling != "" {
		policy, err := domainsvc.ParseDanglingPolicy(req.Dangling)
		if err != nil {
			return domainsvc.ImportResult{}, pkgerrors.NewValidationError(err.Error())
		}
		opts.Dangling = policy
	}

	m, err := s.repo.Load(ctx, caseID)
	if pkgerrors.IsNotFound(err) {
		m, err = aggregates.NewEvidenceMap(caseID), nil
	}
	if err != nil {
		return domainsvc.ImportResult{}, fmt.Errorf("failed to load evidence map: %w", err)
	}

	result, err := domainsvc.NewImporter(opts).Merge(m, req.Nodes, req.Edges)
	if err != nil {
		return domainsvc.ImportResult{}, err
	}

	s.logger.Info("Import merged",
		zap.String("caseID", caseID.String()),
		zap.Int("added", len(result.AddedNodes)),
		zap.Int("edges", len(result.AddedEdges)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("dangling", len(result.Dangling)),
		zap.Int("redirected", result.Redirected))

	if s.metrics != nil {
		s.metrics.NodesImported.Add(float64(len(result.AddedNodes)))
		s.metrics.NodesSkipped.Add(float64(len(result.Skipped)))
		s.metrics.DanglingEdges.Add(float64(len(result.Dangling)))
	}

	if len(result.AddedNodes) == 0 && len(result.AddedEdges) == 0 {
		return result, nil
	}

	m.MarkSaved(s.now())
	if err := s.repo.Save(ctx, m); err != nil {
		return domainsvc.ImportResult{}, fmt.Errorf("failed to save evidence map: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, ports.EvidenceMapCacheKey(caseID)); err != nil {
			s.logger.Warn("Failed to invalidate cache", zap.String("caseID", caseID.String()), zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.MapsSaved.Inc()
	}

	if s.publisher != nil {
		event := events.NewEvidenceMapImported(caseID, len(result.AddedNodes), len(result.AddedEdges), len(result.Skipped), m.Version(), m.UpdatedAt())
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish event",
				zap.String("event", event.GetEventType()),
				zap.Error(err))
		}
	}

	return result, nil
}
