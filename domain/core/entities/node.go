package entities

import (
	"encoding/json"
	"fmt"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// ClaimAttributes are only meaningful on claim nodes
type ClaimAttributes struct {
	IsProven bool
}

// EvidenceAttributes are only meaningful on evidence nodes
type EvidenceAttributes struct {
	ExhibitNumber   string
	IsAuthenticated bool
	Admission       valueobjects.AdmissionStatus
}

// NodeAttributes carries the kind-specific attributes handed to NewNode. At
// most the set matching the node kind may be present.
type NodeAttributes struct {
	Claim    *ClaimAttributes
	Evidence *EvidenceAttributes
}

// Node is one point of the evidence map. It is a tagged variant over the four
// kinds; the attribute set of another kind can never be attached to it. Node
// is a value: mutators return modified copies.
type Node struct {
	id       valueobjects.NodeID
	kind     valueobjects.NodeKind
	position valueobjects.Position
	label    string
	content  string
	claim    ClaimAttributes
	evidence EvidenceAttributes
}

// NewNode is the generic smart constructor
func NewNode(
	id valueobjects.NodeID,
	kind valueobjects.NodeKind,
	position valueobjects.Position,
	label, content string,
	attrs NodeAttributes,
) (Node, error) {
	if id.IsZero() {
		return Node{}, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if _, err := valueobjects.ParseNodeKind(string(kind)); err != nil {
		return Node{}, err
	}
	if _, err := valueobjects.NewPosition(position.X, position.Y); err != nil {
		return Node{}, err
	}

	n := Node{id: id, kind: kind, position: position, label: label, content: content}
	if err := n.applyAttributes(attrs); err != nil {
		return Node{}, err
	}
	if n.kind == valueobjects.KindEvidence && n.evidence.Admission == "" {
		n.evidence.Admission = valueobjects.AdmissionPending
	}
	return n, nil
}

// NewClaimNode creates a claim
func NewClaimNode(id valueobjects.NodeID, position valueobjects.Position, label, content string, attrs ClaimAttributes) (Node, error) {
	return NewNode(id, valueobjects.KindClaim, position, label, content, NodeAttributes{Claim: &attrs})
}

// NewFactNode creates a fact
func NewFactNode(id valueobjects.NodeID, position valueobjects.Position, label, content string) (Node, error) {
	return NewNode(id, valueobjects.KindFact, position, label, content, NodeAttributes{})
}

// NewEvidenceNode creates a piece of evidence
func NewEvidenceNode(id valueobjects.NodeID, position valueobjects.Position, label, content string, attrs EvidenceAttributes) (Node, error) {
	return NewNode(id, valueobjects.KindEvidence, position, label, content, NodeAttributes{Evidence: &attrs})
}

// NewLawNode creates a legal basis citation
func NewLawNode(id valueobjects.NodeID, position valueobjects.Position, label, content string) (Node, error) {
	return NewNode(id, valueobjects.KindLaw, position, label, content, NodeAttributes{})
}

func (n *Node) applyAttributes(attrs NodeAttributes) error {
	if attrs.Claim != nil {
		if n.kind != valueobjects.KindClaim {
			return pkgerrors.NewValidationError(fmt.Sprintf("claim attributes are not allowed on %s nodes", n.kind.DisplayName()))
		}
		n.claim = *attrs.Claim
	}
	if attrs.Evidence != nil {
		if n.kind != valueobjects.KindEvidence {
			return pkgerrors.NewValidationError(fmt.Sprintf("evidence attributes are not allowed on %s nodes", n.kind.DisplayName()))
		}
		ev := *attrs.Evidence
		if ev.Admission == "" {
			ev.Admission = valueobjects.AdmissionPending
		}
		if _, err := valueobjects.ParseAdmissionStatus(string(ev.Admission)); err != nil {
			return err
		}
		n.evidence = ev
	}
	return nil
}

func (n Node) ID() valueobjects.NodeID         { return n.id }
func (n Node) Kind() valueobjects.NodeKind     { return n.kind }
func (n Node) Position() valueobjects.Position { return n.position }
func (n Node) Label() string                   { return n.label }
func (n Node) Content() string                 { return n.content }

// Claim returns the claim attributes; ok is false for other kinds
func (n Node) Claim() (ClaimAttributes, bool) {
	return n.claim, n.kind == valueobjects.KindClaim
}

// Evidence returns the evidence attributes; ok is false for other kinds
func (n Node) Evidence() (EvidenceAttributes, bool) {
	return n.evidence, n.kind == valueobjects.KindEvidence
}

// IsKind reports whether the node is of kind k
func (n Node) IsKind(k valueobjects.NodeKind) bool {
	return n.kind == k
}

// WithPosition returns a copy of the node moved to p
func (n Node) WithPosition(p valueobjects.Position) (Node, error) {
	if _, err := valueobjects.NewPosition(p.X, p.Y); err != nil {
		return Node{}, err
	}
	n.position = p
	return n, nil
}

// NodeFields is the editable projection of a node: everything a user can
// change in place. Position and kind are not part of it.
type NodeFields struct {
	Label    string
	Content  string
	Claim    *ClaimAttributes
	Evidence *EvidenceAttributes
}

// Fields returns an independent copy of the node's editable fields
func (n Node) Fields() NodeFields {
	f := NodeFields{Label: n.label, Content: n.content}
	switch n.kind {
	case valueobjects.KindClaim:
		c := n.claim
		f.Claim = &c
	case valueobjects.KindEvidence:
		e := n.evidence
		f.Evidence = &e
	}
	return f
}

// WithFields returns a copy of the node with f merged over it. Attribute sets
// left nil in f keep their current values.
func (n Node) WithFields(f NodeFields) (Node, error) {
	out := n
	out.label = f.Label
	out.content = f.Content
	if err := out.applyAttributes(NodeAttributes{Claim: f.Claim, Evidence: f.Evidence}); err != nil {
		return Node{}, err
	}
	return out, nil
}

// NodeData is the attribute bag of the wire format
type NodeData struct {
	Label           string  `json:"label" dynamodbav:"label"`
	Content         string  `json:"content" dynamodbav:"content"`
	IsProven        *bool   `json:"isProven,omitempty" dynamodbav:"isProven,omitempty"`
	ExhibitNumber   *string `json:"exhibitNumber,omitempty" dynamodbav:"exhibitNumber,omitempty"`
	IsAuthenticated *bool   `json:"isAuthenticated,omitempty" dynamodbav:"isAuthenticated,omitempty"`
	IsAdmitted      *string `json:"isAdmitted,omitempty" dynamodbav:"isAdmitted,omitempty"`
}

// NodeRecord is the persisted and transmitted shape of a node. It has no room
// for render-time fields such as stats or highlighting.
type NodeRecord struct {
	ID       string                `json:"id" dynamodbav:"id"`
	Type     string                `json:"type" dynamodbav:"type"`
	Position valueobjects.Position `json:"position" dynamodbav:"position"`
	Data     NodeData              `json:"data" dynamodbav:"data"`
}

// ToRecord converts the node to its wire shape
func (n Node) ToRecord() NodeRecord {
	r := NodeRecord{
		ID:       string(n.id),
		Type:     string(n.kind),
		Position: n.position,
		Data:     NodeData{Label: n.label, Content: n.content},
	}
	switch n.kind {
	case valueobjects.KindClaim:
		proven := n.claim.IsProven
		r.Data.IsProven = &proven
	case valueobjects.KindEvidence:
		exhibit := n.evidence.ExhibitNumber
		auth := n.evidence.IsAuthenticated
		admitted := string(n.evidence.Admission)
		r.Data.ExhibitNumber = &exhibit
		r.Data.IsAuthenticated = &auth
		r.Data.IsAdmitted = &admitted
	}
	return r
}

// NodeFromRecord rebuilds a node. Attributes that do not belong to the
// record's kind are dropped; an unknown kind is rejected.
func NodeFromRecord(r NodeRecord) (Node, error) {
	id, err := valueobjects.ParseNodeID(r.ID)
	if err != nil {
		return Node{}, err
	}
	kind, err := valueobjects.ParseNodeKind(r.Type)
	if err != nil {
		return Node{}, err
	}

	var attrs NodeAttributes
	switch kind {
	case valueobjects.KindClaim:
		c := ClaimAttributes{}
		if r.Data.IsProven != nil {
			c.IsProven = *r.Data.IsProven
		}
		attrs.Claim = &c
	case valueobjects.KindEvidence:
		e := EvidenceAttributes{Admission: valueobjects.AdmissionPending}
		if r.Data.ExhibitNumber != nil {
			e.ExhibitNumber = *r.Data.ExhibitNumber
		}
		if r.Data.IsAuthenticated != nil {
			e.IsAuthenticated = *r.Data.IsAuthenticated
		}
		if r.Data.IsAdmitted != nil && *r.Data.IsAdmitted != "" {
			status, err := valueobjects.ParseAdmissionStatus(*r.Data.IsAdmitted)
			if err != nil {
				return Node{}, err
			}
			e.Admission = status
		}
		attrs.Evidence = &e
	}

	return NewNode(id, kind, r.Position, r.Data.Label, r.Data.Content, attrs)
}

// MarshalJSON implements json.Marshaler
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToRecord())
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Node) UnmarshalJSON(data []byte) error {
	var r NodeRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	node, err := NodeFromRecord(r)
	if err != nil {
		return err
	}
	*n = node
	return nil
}
