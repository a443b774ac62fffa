package queries

import (
	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/pkg/utils"
)

// GetEvidenceMapQuery returns the stored map of a case, or an empty one
type GetEvidenceMapQuery struct {
	CaseID string `json:"case_id" validate:"required,max=200"`
}

// Validate validates the query
func (q GetEvidenceMapQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	_, err := valueobjects.ParseCaseID(q.CaseID)
	return err
}

// CacheKey implements bus.Cacheable
func (q GetEvidenceMapQuery) CacheKey() string {
	caseID, _ := valueobjects.ParseCaseID(q.CaseID)
	return ports.EvidenceMapCacheKey(caseID)
}
