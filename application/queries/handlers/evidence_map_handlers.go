package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/application/queries"
	"github.com/ShabiDHM/advocatus-sub001/application/queries/bus"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/services"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
	"github.com/ShabiDHM/advocatus-sub001/pkg/observability"
)

// loadOrEmpty returns the stored map of a case, or an empty map when the case
// has never been saved
func loadOrEmpty(ctx context.Context, repo ports.EvidenceMapRepository, logger *zap.Logger, caseID valueobjects.CaseID) (*aggregates.EvidenceMap, error) {
	m, err := repo.Load(ctx, caseID)
	if err == nil {
		return m, nil
	}
	if pkgerrors.IsNotFound(err) {
		logger.Debug("No evidence map stored, returning empty map",
			zap.String("caseID", caseID.String()))
		return aggregates.NewEvidenceMap(caseID), nil
	}
	return nil, fmt.Errorf("failed to load evidence map: %w", err)
}

// GetEvidenceMapHandler handles GetEvidenceMapQuery
type GetEvidenceMapHandler struct {
	repo   ports.EvidenceMapRepository
	logger *zap.Logger
}

// NewGetEvidenceMapHandler creates a new handler
func NewGetEvidenceMapHandler(repo ports.EvidenceMapRepository, logger *zap.Logger) *GetEvidenceMapHandler {
	return &GetEvidenceMapHandler{repo: repo, logger: logger}
}

// Handle executes the query. The result is a value so it can be cached.
func (h *GetEvidenceMapHandler) Handle(ctx context.Context, q queries.GetEvidenceMapQuery) (aggregates.Document, error) {
	caseID, err := valueobjects.ParseCaseID(q.CaseID)
	if err != nil {
		return aggregates.Document{}, err
	}
	m, err := loadOrEmpty(ctx, h.repo, h.logger, caseID)
	if err != nil {
		return aggregates.Document{}, err
	}
	return m.ToDocument(), nil
}

// GetDisplayedViewHandler handles GetDisplayedViewQuery
type GetDisplayedViewHandler struct {
	repo   ports.EvidenceMapRepository
	logger *zap.Logger
}

// NewGetDisplayedViewHandler creates a new handler
func NewGetDisplayedViewHandler(repo ports.EvidenceMapRepository, logger *zap.Logger) *GetDisplayedViewHandler {
	return &GetDisplayedViewHandler{repo: repo, logger: logger}
}

// Handle executes the query
func (h *GetDisplayedViewHandler) Handle(ctx context.Context, q queries.GetDisplayedViewQuery) (services.DisplayedView, error) {
	caseID, err := valueobjects.ParseCaseID(q.CaseID)
	if err != nil {
		return services.DisplayedView{}, err
	}
	m, err := loadOrEmpty(ctx, h.repo, h.logger, caseID)
	if err != nil {
		return services.DisplayedView{}, err
	}
	return services.Derive(m.Nodes(), m.Edges(), q.Options()), nil
}

// GenerateReportHandler handles GenerateReportQuery
type GenerateReportHandler struct {
	repo     ports.EvidenceMapRepository
	renderer ports.ReportRenderer
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewGenerateReportHandler creates a new handler. metrics may be nil.
func NewGenerateReportHandler(
	repo ports.EvidenceMapRepository,
	renderer ports.ReportRenderer,
	metrics *observability.Collector,
	logger *zap.Logger,
) *GenerateReportHandler {
	return &GenerateReportHandler{
		repo:     repo,
		renderer: renderer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handle executes the query
func (h *GenerateReportHandler) Handle(ctx context.Context, q queries.GenerateReportQuery) (*queries.ReportResult, error) {
	caseID, err := valueobjects.ParseCaseID(q.CaseID)
	if err != nil {
		return nil, err
	}

	var m *aggregates.EvidenceMap
	if q.Graph != nil {
		m, err = aggregates.FromDocument(caseID, *q.Graph)
	} else {
		m, err = loadOrEmpty(ctx, h.repo, h.logger, caseID)
	}
	if err != nil {
		return nil, err
	}

	content, err := h.renderer.Render(ctx, caseID, m.Nodes(), m.Edges())
	if err != nil {
		h.logger.Error("Failed to render report",
			zap.String("caseID", caseID.String()),
			zap.Error(err))
		return nil, pkgerrors.Wrap(err, "failed to render report")
	}

	if h.metrics != nil {
		h.metrics.ReportsRendered.Inc()
	}

	return &queries.ReportResult{
		FileName:    services.ReportFileName(caseID),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

// RegisterHandlers wires the query handlers into the bus
func RegisterHandlers(
	b *bus.QueryBus,
	getMap *GetEvidenceMapHandler,
	getView *GetDisplayedViewHandler,
	report *GenerateReportHandler,
) error {
	if err := b.Register(queries.GetEvidenceMapQuery{}, bus.QueryHandlerFunc(
		func(ctx context.Context, q bus.Query) (interface{}, error) {
			return getMap.Handle(ctx, q.(queries.GetEvidenceMapQuery))
		})); err != nil {
		return err
	}

	if err := b.Register(queries.GetDisplayedViewQuery{}, bus.QueryHandlerFunc(
		func(ctx context.Context, q bus.Query) (interface{}, error) {
			return getView.Handle(ctx, q.(queries.GetDisplayedViewQuery))
		})); err != nil {
		return err
	}

	return b.Register(queries.GenerateReportQuery{}, bus.QueryHandlerFunc(
		func(ctx context.Context, q bus.Query) (interface{}, error) {
			return report.Handle(ctx, q.(queries.GenerateReportQuery))
		}))
}
