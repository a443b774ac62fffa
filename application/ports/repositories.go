package ports

import (
	"context"
	"time"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/events"
	"github.com/ShabiDHM/advocatus-sub001/domain/services"
)

// EvidenceMapRepository stores whole evidence maps. Save replaces whatever
// was stored for the case; the last writer wins.
type EvidenceMapRepository interface {
	// Load returns pkgerrors.ErrEvidenceMapNotFound for a case that was never saved
	Load(ctx context.Context, caseID valueobjects.CaseID) (*aggregates.EvidenceMap, error)

	Save(ctx context.Context, m *aggregates.EvidenceMap) error
}

// HealthChecker is implemented by repositories that can report readiness
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ReportRenderer turns a graph snapshot into a document
type ReportRenderer interface {
	Render(ctx context.Context, caseID valueobjects.CaseID, nodes []entities.Node, edges []entities.Edge) ([]byte, error)
}

// Rasterizer draws exactly rect of a displayed view into an image
type Rasterizer interface {
	Rasterize(ctx context.Context, view services.DisplayedView, rect services.Rect) ([]byte, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// Cache is the read-through cache used by the query side
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EvidenceMapCacheKey is the cache key of a case's stored map
func EvidenceMapCacheKey(caseID valueobjects.CaseID) string {
	return "evidence_map:" + caseID.String()
}
