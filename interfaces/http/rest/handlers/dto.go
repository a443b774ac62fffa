package handlers

import (
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	domainsvc "github.com/ShabiDHM/advocatus-sub001/domain/services"
)

// ReportRequest is the graph snapshot a report is rendered from
type ReportRequest struct {
	Nodes []entities.Node `json:"nodes"`
	Edges []entities.Edge `json:"edges"`
}

// SkippedNodeResponse describes one imported node that was left out
type SkippedNodeResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Reason     string `json:"reason"`
	ExistingID string `json:"existingId,omitempty"`
}

// ImportResponse is the outcome of an import merge
type ImportResponse struct {
	AddedNodes []entities.Node       `json:"addedNodes"`
	AddedEdges []entities.Edge       `json:"addedEdges"`
	Skipped    []SkippedNodeResponse `json:"skipped"`
	Dangling   []string              `json:"dangling"`
	Redirected int                   `json:"redirected"`
}

// NewImportResponse converts a merge result
func NewImportResponse(r domainsvc.ImportResult) ImportResponse {
	resp := ImportResponse{
		AddedNodes: r.AddedNodes,
		AddedEdges: r.AddedEdges,
		Skipped:    make([]SkippedNodeResponse, 0, len(r.Skipped)),
		Dangling:   make([]string, 0, len(r.Dangling)),
		Redirected: r.Redirected,
	}
	if resp.AddedNodes == nil {
		resp.AddedNodes = []entities.Node{}
	}
	if resp.AddedEdges == nil {
		resp.AddedEdges = []entities.Edge{}
	}
	for _, s := range r.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedNodeResponse{
			ID:         s.Node.ID,
			Name:       s.Node.Name,
			Reason:     string(s.Reason),
			ExistingID: s.ExistingID.String(),
		})
	}
	for _, e := range r.Dangling {
		resp.Dangling = append(resp.Dangling, e.ID().String())
	}
	return resp
}
