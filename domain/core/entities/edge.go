package entities

import (
	"encoding/json"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// EdgeStyle is the visual descriptor of an edge
type EdgeStyle struct {
	Stroke          string `json:"stroke" dynamodbav:"stroke"`
	StrokeDasharray string `json:"strokeDasharray,omitempty" dynamodbav:"strokeDasharray,omitempty"`
	Animated        bool   `json:"-" dynamodbav:"-"`
}

// Edge is a directed relationship between two nodes. Source and target are
// not checked against the owning map here; see EvidenceMap.DanglingEdges.
type Edge struct {
	id       valueobjects.EdgeID
	source   valueobjects.NodeID
	target   valueobjects.NodeID
	edgeType valueobjects.EdgeType
	label    string
	style    *EdgeStyle
}

// NewEdge creates an edge
func NewEdge(id valueobjects.EdgeID, source, target valueobjects.NodeID, edgeType valueobjects.EdgeType, label string) (Edge, error) {
	if id == "" {
		return Edge{}, pkgerrors.NewValidationError("edge ID cannot be empty")
	}
	if source.IsZero() || target.IsZero() {
		return Edge{}, pkgerrors.NewValidationError("edge source and target are required")
	}
	return Edge{
		id:       id,
		source:   source,
		target:   target,
		edgeType: valueobjects.ParseEdgeType(string(edgeType)),
		label:    label,
	}, nil
}

func (e Edge) ID() valueobjects.EdgeID     { return e.id }
func (e Edge) Source() valueobjects.NodeID { return e.source }
func (e Edge) Target() valueobjects.NodeID { return e.target }
func (e Edge) Type() valueobjects.EdgeType { return e.edgeType }
func (e Edge) Label() string               { return e.label }

// Style returns the explicit style set when the edge was imported
func (e Edge) Style() (EdgeStyle, bool) {
	if e.style == nil {
		return EdgeStyle{}, false
	}
	return *e.style, true
}

// WithStyle returns a copy of the edge carrying an explicit style
func (e Edge) WithStyle(s EdgeStyle) Edge {
	e.style = &s
	return e
}

// WithEndpoints returns a copy of the edge pointing at new endpoints. The id
// is kept.
func (e Edge) WithEndpoints(source, target valueobjects.NodeID) Edge {
	e.source = source
	e.target = target
	return e
}

// Touches reports whether id is the source or target of the edge
func (e Edge) Touches(id valueobjects.NodeID) bool {
	return e.source == id || e.target == id
}

// EdgeData is the attribute bag of the wire format
type EdgeData struct {
	Label string `json:"label,omitempty" dynamodbav:"label,omitempty"`
}

// EdgeRecord is the persisted and transmitted shape of an edge
type EdgeRecord struct {
	ID       string     `json:"id" dynamodbav:"id"`
	Source   string     `json:"source" dynamodbav:"source"`
	Target   string     `json:"target" dynamodbav:"target"`
	Type     string     `json:"type,omitempty" dynamodbav:"type,omitempty"`
	Label    string     `json:"label,omitempty" dynamodbav:"label,omitempty"`
	Data     EdgeData   `json:"data" dynamodbav:"data"`
	Style    *EdgeStyle `json:"style,omitempty" dynamodbav:"style,omitempty"`
	Animated bool       `json:"animated,omitempty" dynamodbav:"animated,omitempty"`
}

// ToRecord converts the edge to its wire shape. The label is written both at
// the top level and inside the data bag.
func (e Edge) ToRecord() EdgeRecord {
	r := EdgeRecord{
		ID:     string(e.id),
		Source: string(e.source),
		Target: string(e.target),
		Type:   string(e.edgeType),
		Label:  e.label,
		Data:   EdgeData{Label: e.label},
	}
	if e.style != nil {
		s := *e.style
		r.Style = &s
		r.Animated = s.Animated
	}
	return r
}

// EdgeFromRecord rebuilds an edge. The top-level label wins over the one in
// the data bag.
func EdgeFromRecord(r EdgeRecord) (Edge, error) {
	id, err := valueobjects.ParseEdgeID(r.ID)
	if err != nil {
		return Edge{}, err
	}
	label := r.Label
	if label == "" {
		label = r.Data.Label
	}
	e, err := NewEdge(id, valueobjects.NodeID(r.Source), valueobjects.NodeID(r.Target), valueobjects.ParseEdgeType(r.Type), label)
	if err != nil {
		return Edge{}, err
	}
	if r.Style != nil {
		s := *r.Style
		s.Animated = r.Animated
		e = e.WithStyle(s)
	}
	return e, nil
}

// MarshalJSON implements json.Marshaler
func (e Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToRecord())
}

// UnmarshalJSON implements json.Unmarshaler
func (e *Edge) UnmarshalJSON(data []byte) error {
	var r EdgeRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	edge, err := EdgeFromRecord(r)
	if err != nil {
		return err
	}
	*e = edge
	return nil
}
