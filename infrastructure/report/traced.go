package report

import (
	"context"

	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/pkg/observability"
)

// TracedRenderer wraps a renderer in a span per call
type TracedRenderer struct {
	next   ports.ReportRenderer
	tracer *observability.Tracer
}

// NewTracedRenderer creates a new TracedRenderer
func NewTracedRenderer(next ports.ReportRenderer, tracer *observability.Tracer) *TracedRenderer {
	return &TracedRenderer{next: next, tracer: tracer}
}

func (r *TracedRenderer) Render(ctx context.Context, caseID valueobjects.CaseID, nodes []entities.Node, edges []entities.Edge) ([]byte, error) {
	var out []byte
	err := r.tracer.TraceFunction(ctx, "report.Render", func(ctx context.Context) error {
		var err error
		out, err = r.next.Render(ctx, caseID, nodes, edges)
		return err
	}, "case.id", caseID.String())
	return out, err
}
