package queries

import (
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/services"
	"github.com/ShabiDHM/advocatus-sub001/pkg/utils"
)

// GetDisplayedViewQuery derives the filtered and annotated view of a case's map
type GetDisplayedViewQuery struct {
	CaseID                  string `json:"case_id" validate:"required,max=200"`
	HideUnconnected         bool   `json:"hide_unconnected"`
	HighlightContradictions bool   `json:"highlight_contradictions"`
	SearchTerm              string `json:"search_term" validate:"max=200"`
}

// Validate validates the query
func (q GetDisplayedViewQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	_, err := valueobjects.ParseCaseID(q.CaseID)
	return err
}

// Options converts the query into derivation options
func (q GetDisplayedViewQuery) Options() services.ViewOptions {
	return services.ViewOptions{
		Filters: services.Filters{
			HideUnconnected:         q.HideUnconnected,
			HighlightContradictions: q.HighlightContradictions,
		},
		SearchTerm: q.SearchTerm,
	}
}
