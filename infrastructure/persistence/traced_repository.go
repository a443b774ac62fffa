package persistence

import (
	"context"

	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/pkg/observability"
)

// TracedRepository wraps a repository with one span per call
type TracedRepository struct {
	next   ports.EvidenceMapRepository
	tracer *observability.Tracer
	system string
}

// NewTracedRepository decorates next. system names the storage backend in
// span attributes.
func NewTracedRepository(next ports.EvidenceMapRepository, tracer *observability.Tracer, system string) *TracedRepository {
	return &TracedRepository{next: next, tracer: tracer, system: system}
}

func (r *TracedRepository) Load(ctx context.Context, caseID valueobjects.CaseID) (*aggregates.EvidenceMap, error) {
	var m *aggregates.EvidenceMap
	err := r.tracer.TraceFunction(ctx, "repository.Load", func(ctx context.Context) error {
		var err error
		m, err = r.next.Load(ctx, caseID)
		return err
	}, "db.system", r.system, "case.id", caseID.String())
	return m, err
}

func (r *TracedRepository) Save(ctx context.Context, m *aggregates.EvidenceMap) error {
	return r.tracer.TraceFunction(ctx, "repository.Save", func(ctx context.Context) error {
		return r.next.Save(ctx, m)
	}, "db.system", r.system, "case.id", m.CaseID().String())
}

// Ping forwards to the wrapped repository when it supports health checks
func (r *TracedRepository) Ping(ctx context.Context) error {
	if hc, ok := r.next.(ports.HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}
