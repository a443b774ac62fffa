package queries

import (
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/pkg/utils"
)

// GenerateReportQuery renders a report of a graph snapshot. A nil Graph
// renders the stored map instead.
type GenerateReportQuery struct {
	CaseID string               `json:"case_id" validate:"required,max=200"`
	Graph  *aggregates.Document `json:"graph,omitempty"`
}

// Validate validates the query
func (q GenerateReportQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	_, err := valueobjects.ParseCaseID(q.CaseID)
	return err
}

// ReportResult is a rendered report ready to download
type ReportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}
