package valueobjects

import (
	"fmt"

	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// NodeKind is the closed set of node variants. The string values are the
// renderer type names used on the wire.
type NodeKind string

const (
	KindClaim    NodeKind = "claimNode"
	KindFact     NodeKind = "factNode"
	KindEvidence NodeKind = "evidenceNode"
	KindLaw      NodeKind = "lawNode"
)

// AllNodeKinds lists the kinds in display order
var AllNodeKinds = []NodeKind{KindClaim, KindFact, KindEvidence, KindLaw}

// ParseNodeKind rejects anything outside the four known kinds
func ParseNodeKind(s string) (NodeKind, error) {
	switch k := NodeKind(s); k {
	case KindClaim, KindFact, KindEvidence, KindLaw:
		return k, nil
	default:
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown node kind %q", s))
	}
}

// DisplayName is the human label of the kind
func (k NodeKind) DisplayName() string {
	switch k {
	case KindClaim:
		return "Claim"
	case KindFact:
		return "Fact"
	case KindEvidence:
		return "Evidence"
	case KindLaw:
		return "Law"
	default:
		return string(k)
	}
}

func (k NodeKind) String() string { return string(k) }

// EdgeType is the semantic relationship between two nodes
type EdgeType string

const (
	EdgeSupports    EdgeType = "supports"
	EdgeContradicts EdgeType = "contradicts"
	EdgeRelated     EdgeType = "related"
	EdgeDefault     EdgeType = "default"
)

// ParseEdgeType never fails: anything unrecognised renders as a default edge
func ParseEdgeType(s string) EdgeType {
	switch t := EdgeType(s); t {
	case EdgeSupports, EdgeContradicts, EdgeRelated:
		return t
	default:
		return EdgeDefault
	}
}

func (t EdgeType) String() string { return string(t) }

// AdmissionStatus tracks whether the court admitted a piece of evidence
type AdmissionStatus string

const (
	AdmissionPending  AdmissionStatus = "pending"
	AdmissionAdmitted AdmissionStatus = "admitted"
	AdmissionStricken AdmissionStatus = "stricken"
)

// ParseAdmissionStatus validates an admission status
func ParseAdmissionStatus(s string) (AdmissionStatus, error) {
	switch a := AdmissionStatus(s); a {
	case AdmissionPending, AdmissionAdmitted, AdmissionStricken:
		return a, nil
	default:
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown admission status %q", s))
	}
}

func (a AdmissionStatus) String() string { return string(a) }
