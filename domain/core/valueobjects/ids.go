package valueobjects

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// NodeID identifies a node within one evidence map. Ids are opaque: imported
// nodes keep whatever id the extraction produced.
type NodeID string

// NewNodeID creates a random NodeID for manually placed nodes
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// ParseNodeID validates an existing id
func ParseNodeID(s string) (NodeID, error) {
	if strings.TrimSpace(s) == "" {
		return "", pkgerrors.NewValidationError("node ID cannot be empty")
	}
	return NodeID(s), nil
}

func (id NodeID) String() string { return string(id) }

// IsZero reports whether the id is unset
func (id NodeID) IsZero() bool { return id == "" }

// EdgeID identifies an edge within one evidence map
type EdgeID string

// ParseEdgeID validates an existing id
func ParseEdgeID(s string) (EdgeID, error) {
	if strings.TrimSpace(s) == "" {
		return "", pkgerrors.NewValidationError("edge ID cannot be empty")
	}
	return EdgeID(s), nil
}

// DerivedEdgeID is the id an imported relationship gets: "e" followed by the
// source and target ids separated by a dash.
func DerivedEdgeID(source, target NodeID) EdgeID {
	return EdgeID("e" + string(source) + "-" + string(target))
}

func (id EdgeID) String() string { return string(id) }

// CaseID identifies the legal case that owns an evidence map
type CaseID string

// ParseCaseID validates a case id taken from a URL or command line
func ParseCaseID(s string) (CaseID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", pkgerrors.NewValidationError("case ID cannot be empty")
	}
	if strings.ContainsAny(s, "/#") {
		return "", pkgerrors.NewValidationError("case ID contains reserved characters")
	}
	return CaseID(s), nil
}

func (id CaseID) String() string { return string(id) }
