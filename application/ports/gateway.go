package ports

import (
	"context"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
)

// PersistenceGateway is the client's view of the evidence map endpoints
type PersistenceGateway interface {
	LoadGraph(ctx context.Context, caseID valueobjects.CaseID) (aggregates.Document, error)
	SaveGraph(ctx context.Context, caseID valueobjects.CaseID, doc aggregates.Document) error
	ExportReport(ctx context.Context, caseID valueobjects.CaseID, nodes []entities.Node, edges []entities.Edge) ([]byte, error)
}

// JobStatus is the wire status of a drafting job
type JobStatus struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// JobStatusFetcher asks for the status of a drafting job
type JobStatusFetcher interface {
	FetchJobStatus(ctx context.Context, jobID string) (JobStatus, error)
}
