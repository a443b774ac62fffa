// Package memory is an in-process evidence map repository for tests and
// local development.
package memory

import (
	"context"
	"sync"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/persistence"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// Repository keeps one record per case. Maps are converted on the way in and
// out, so callers never share state with the store.
type Repository struct {
	mu      sync.RWMutex
	records map[valueobjects.CaseID]persistence.MapRecord
}

func NewRepository() *Repository {
	return &Repository{records: make(map[valueobjects.CaseID]persistence.MapRecord)}
}

func (r *Repository) Load(ctx context.Context, caseID valueobjects.CaseID) (*aggregates.EvidenceMap, error) {
	r.mu.RLock()
	rec, ok := r.records[caseID]
	r.mu.RUnlock()

	if !ok {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrEvidenceMapNotFound, "case %s", caseID)
	}
	return rec.ToAggregate()
}

func (r *Repository) Save(ctx context.Context, m *aggregates.EvidenceMap) error {
	rec := persistence.ToRecord(m)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[m.CaseID()] = rec
	return nil
}

func (r *Repository) Ping(ctx context.Context) error { return nil }

// Len returns the number of stored maps
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
