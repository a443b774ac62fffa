// Package persistence holds what the evidence map repositories share: the
// stored record shape and a tracing decorator.
package persistence

import (
	"fmt"
	"time"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
)

// MapRecord is the stored shape of an evidence map
type MapRecord struct {
	CaseID    string                `json:"caseId" dynamodbav:"CaseID"`
	Nodes     []entities.NodeRecord `json:"nodes" dynamodbav:"Nodes"`
	Edges     []entities.EdgeRecord `json:"edges" dynamodbav:"Edges"`
	Viewport  valueobjects.Viewport `json:"viewport" dynamodbav:"Viewport"`
	UpdatedAt time.Time             `json:"updatedAt" dynamodbav:"UpdatedAt"`
	Version   int                   `json:"version" dynamodbav:"Version"`
}

// ToRecord converts a map to its stored shape
func ToRecord(m *aggregates.EvidenceMap) MapRecord {
	nodes := m.Nodes()
	edges := m.Edges()
	r := MapRecord{
		CaseID:    m.CaseID().String(),
		Nodes:     make([]entities.NodeRecord, 0, len(nodes)),
		Edges:     make([]entities.EdgeRecord, 0, len(edges)),
		Viewport:  m.Viewport(),
		UpdatedAt: m.UpdatedAt(),
		Version:   m.Version(),
	}
	for _, n := range nodes {
		r.Nodes = append(r.Nodes, n.ToRecord())
	}
	for _, e := range edges {
		r.Edges = append(r.Edges, e.ToRecord())
	}
	return r
}

// ToAggregate rebuilds the map from its stored shape
func (r MapRecord) ToAggregate() (*aggregates.EvidenceMap, error) {
	caseID, err := valueobjects.ParseCaseID(r.CaseID)
	if err != nil {
		return nil, err
	}

	nodes := make([]entities.Node, 0, len(r.Nodes))
	for _, nr := range r.Nodes {
		n, err := entities.NodeFromRecord(nr)
		if err != nil {
			return nil, fmt.Errorf("stored node %s: %w", nr.ID, err)
		}
		nodes = append(nodes, n)
	}

	edges := make([]entities.Edge, 0, len(r.Edges))
	for _, er := range r.Edges {
		e, err := entities.EdgeFromRecord(er)
		if err != nil {
			return nil, fmt.Errorf("stored edge %s: %w", er.ID, err)
		}
		edges = append(edges, e)
	}

	return aggregates.ReconstructEvidenceMap(caseID, nodes, edges, r.Viewport, r.UpdatedAt, r.Version)
}
