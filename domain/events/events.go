package events

import (
	"time"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypeEvidenceMapSaved    = "evidence_map.saved"
	TypeEvidenceMapImported = "evidence_map.imported"
)

// EvidenceMapSaved is raised after a wholesale save
type EvidenceMapSaved struct {
	BaseEvent
	CaseID        valueobjects.CaseID `json:"case_id"`
	NodeCount     int                 `json:"node_count"`
	EdgeCount     int                 `json:"edge_count"`
	DanglingEdges int                 `json:"dangling_edges"`
}

// NewEvidenceMapSaved creates an EvidenceMapSaved event
func NewEvidenceMapSaved(caseID valueobjects.CaseID, nodes, edges, dangling, version int, at time.Time) EvidenceMapSaved {
	return EvidenceMapSaved{
		BaseEvent: BaseEvent{
			AggregateID: caseID.String(),
			EventType:   TypeEvidenceMapSaved,
			Timestamp:   at,
			Version:     version,
		},
		CaseID:        caseID,
		NodeCount:     nodes,
		EdgeCount:     edges,
		DanglingEdges: dangling,
	}
}

// EvidenceMapImported is raised after an import merge added to a map
type EvidenceMapImported struct {
	BaseEvent
	CaseID       valueobjects.CaseID `json:"case_id"`
	AddedNodes   int                 `json:"added_nodes"`
	AddedEdges   int                 `json:"added_edges"`
	SkippedNodes int                 `json:"skipped_nodes"`
}

// NewEvidenceMapImported creates an EvidenceMapImported event
func NewEvidenceMapImported(caseID valueobjects.CaseID, added, edges, skipped, version int, at time.Time) EvidenceMapImported {
	return EvidenceMapImported{
		BaseEvent: BaseEvent{
			AggregateID: caseID.String(),
			EventType:   TypeEvidenceMapImported,
			Timestamp:   at,
			Version:     version,
		},
		CaseID:       caseID,
		AddedNodes:   added,
		AddedEdges:   edges,
		SkippedNodes: skipped,
	}
}
