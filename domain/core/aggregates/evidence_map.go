package aggregates

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// EvidenceMap is the whole graph of one case. It is loaded and saved
// wholesale; there is no partial persistence.
type EvidenceMap struct {
	caseID    valueobjects.CaseID
	nodes     []entities.Node
	edges     []entities.Edge
	viewport  valueobjects.Viewport
	updatedAt time.Time
	version   int
}

// NewEvidenceMap creates an empty map for a case
func NewEvidenceMap(caseID valueobjects.CaseID) *EvidenceMap {
	return &EvidenceMap{
		caseID:   caseID,
		nodes:    []entities.Node{},
		edges:    []entities.Edge{},
		viewport: valueobjects.DefaultViewport(),
	}
}

// ReconstructEvidenceMap rebuilds a map from stored or submitted data. Node and
// edge ids must be unique; dangling edges are accepted.
func ReconstructEvidenceMap(
	caseID valueobjects.CaseID,
	nodes []entities.Node,
	edges []entities.Edge,
	viewport valueobjects.Viewport,
	updatedAt time.Time,
	version int,
) (*EvidenceMap, error) {
	m := &EvidenceMap{
		caseID:    caseID,
		nodes:     append([]entities.Node{}, nodes...),
		edges:     append([]entities.Edge{}, edges...),
		viewport:  viewport.Normalize(),
		updatedAt: updatedAt,
		version:   version,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *EvidenceMap) CaseID() valueobjects.CaseID     { return m.caseID }
func (m *EvidenceMap) Viewport() valueobjects.Viewport { return m.viewport }
func (m *EvidenceMap) UpdatedAt() time.Time            { return m.updatedAt }
func (m *EvidenceMap) Version() int                    { return m.version }

// Nodes returns a copy of the nodes in insertion order
func (m *EvidenceMap) Nodes() []entities.Node {
	return append([]entities.Node{}, m.nodes...)
}

// Edges returns a copy of the edges in insertion order
func (m *EvidenceMap) Edges() []entities.Edge {
	return append([]entities.Edge{}, m.edges...)
}

// NodeCount returns the number of nodes
func (m *EvidenceMap) NodeCount() int { return len(m.nodes) }

// EdgeCount returns the number of edges
func (m *EvidenceMap) EdgeCount() int { return len(m.edges) }

// IsEmpty reports whether the map has neither nodes nor edges
func (m *EvidenceMap) IsEmpty() bool {
	return len(m.nodes) == 0 && len(m.edges) == 0
}

// Node looks up a node by id
func (m *EvidenceMap) Node(id valueobjects.NodeID) (entities.Node, error) {
	i := m.indexOfNode(id)
	if i < 0 {
		return entities.Node{}, pkgerrors.Wrapf(pkgerrors.ErrNodeNotFound, "node %s", id)
	}
	return m.nodes[i], nil
}

// HasNode reports whether a node with id exists
func (m *EvidenceMap) HasNode(id valueobjects.NodeID) bool {
	return m.indexOfNode(id) >= 0
}

// HasEdge reports whether an edge with id exists
func (m *EvidenceMap) HasEdge(id valueobjects.EdgeID) bool {
	return m.indexOfEdge(id) >= 0
}

// HasLabel reports whether any node carries exactly this label
func (m *EvidenceMap) HasLabel(label string) bool {
	for _, n := range m.nodes {
		if n.Label() == label {
			return true
		}
	}
	return false
}

// AddNode appends a node
func (m *EvidenceMap) AddNode(n entities.Node) error {
	if m.HasNode(n.ID()) {
		return pkgerrors.Wrapf(pkgerrors.ErrDuplicateNode, "node %s", n.ID())
	}
	m.nodes = append(m.nodes, n)
	m.touch()
	return nil
}

// ReplaceNode swaps in a new version of an existing node, keeping its slot
func (m *EvidenceMap) ReplaceNode(n entities.Node) error {
	i := m.indexOfNode(n.ID())
	if i < 0 {
		return pkgerrors.Wrapf(pkgerrors.ErrNodeNotFound, "node %s", n.ID())
	}
	m.nodes[i] = n
	m.touch()
	return nil
}

// MoveNode sets a node's position
func (m *EvidenceMap) MoveNode(id valueobjects.NodeID, pos valueobjects.Position) error {
	n, err := m.Node(id)
	if err != nil {
		return err
	}
	moved, err := n.WithPosition(pos)
	if err != nil {
		return err
	}
	return m.ReplaceNode(moved)
}

// RemoveNode deletes a node together with every edge touching it
func (m *EvidenceMap) RemoveNode(id valueobjects.NodeID) error {
	i := m.indexOfNode(id)
	if i < 0 {
		return pkgerrors.Wrapf(pkgerrors.ErrNodeNotFound, "node %s", id)
	}
	m.nodes = append(m.nodes[:i:i], m.nodes[i+1:]...)

	kept := make([]entities.Edge, 0, len(m.edges))
	for _, e := range m.edges {
		if !e.Touches(id) {
			kept = append(kept, e)
		}
	}
	m.edges = kept
	m.touch()
	return nil
}

// AddEdge appends an edge. Endpoints are not required to exist.
func (m *EvidenceMap) AddEdge(e entities.Edge) error {
	if m.HasEdge(e.ID()) {
		return pkgerrors.Wrapf(pkgerrors.ErrDuplicateEdge, "edge %s", e.ID())
	}
	m.edges = append(m.edges, e)
	m.touch()
	return nil
}

// RemoveEdge deletes an edge
func (m *EvidenceMap) RemoveEdge(id valueobjects.EdgeID) error {
	i := m.indexOfEdge(id)
	if i < 0 {
		return pkgerrors.Wrapf(pkgerrors.ErrEdgeNotFound, "edge %s", id)
	}
	m.edges = append(m.edges[:i:i], m.edges[i+1:]...)
	m.touch()
	return nil
}

// AppendBatch adds nodes and edges in one step. Either the whole batch lands
// or, on a duplicate id, nothing does. Existing elements are never touched.
func (m *EvidenceMap) AppendBatch(nodes []entities.Node, edges []entities.Edge) error {
	next := m.Clone()
	next.nodes = append(next.nodes, nodes...)
	next.edges = append(next.edges, edges...)
	if err := next.Validate(); err != nil {
		return err
	}
	m.nodes = next.nodes
	m.edges = next.edges
	if len(nodes) > 0 || len(edges) > 0 {
		m.touch()
	}
	return nil
}

// SetViewport records the canvas pan and zoom
func (m *EvidenceMap) SetViewport(v valueobjects.Viewport) {
	m.viewport = v.Normalize()
}

// MarkSaved records a successful save
func (m *EvidenceMap) MarkSaved(at time.Time) {
	m.updatedAt = at
	m.version++
}

// Validate checks id uniqueness
func (m *EvidenceMap) Validate() error {
	if m.caseID == "" {
		return pkgerrors.NewValidationError("case ID cannot be empty")
	}
	seenNodes := make(map[valueobjects.NodeID]struct{}, len(m.nodes))
	for _, n := range m.nodes {
		if _, dup := seenNodes[n.ID()]; dup {
			return pkgerrors.NewValidationError(fmt.Sprintf("duplicate node id %q", n.ID())).WithCode("DUPLICATE_NODE")
		}
		seenNodes[n.ID()] = struct{}{}
	}
	seenEdges := make(map[valueobjects.EdgeID]struct{}, len(m.edges))
	for _, e := range m.edges {
		if _, dup := seenEdges[e.ID()]; dup {
			return pkgerrors.NewValidationError(fmt.Sprintf("duplicate edge id %q", e.ID())).WithCode("DUPLICATE_EDGE")
		}
		seenEdges[e.ID()] = struct{}{}
	}
	return nil
}

// DanglingEdges lists edges whose source or target is not a node of the map.
// Such edges are kept and simply fail to render a connection.
func (m *EvidenceMap) DanglingEdges() []entities.Edge {
	ids := make(map[valueobjects.NodeID]struct{}, len(m.nodes))
	for _, n := range m.nodes {
		ids[n.ID()] = struct{}{}
	}
	var dangling []entities.Edge
	for _, e := range m.edges {
		_, okSource := ids[e.Source()]
		_, okTarget := ids[e.Target()]
		if !okSource || !okTarget {
			dangling = append(dangling, e)
		}
	}
	return dangling
}

// Clone returns an independent copy
func (m *EvidenceMap) Clone() *EvidenceMap {
	c := *m
	c.nodes = append([]entities.Node{}, m.nodes...)
	c.edges = append([]entities.Edge{}, m.edges...)
	return &c
}

func (m *EvidenceMap) touch() {
	m.updatedAt = time.Now().UTC()
}

func (m *EvidenceMap) indexOfNode(id valueobjects.NodeID) int {
	for i, n := range m.nodes {
		if n.ID() == id {
			return i
		}
	}
	return -1
}

func (m *EvidenceMap) indexOfEdge(id valueobjects.EdgeID) int {
	for i, e := range m.edges {
		if e.ID() == id {
			return i
		}
	}
	return -1
}

// Document is the wire shape of a whole map
type Document struct {
	Nodes    []entities.Node       `json:"nodes"`
	Edges    []entities.Edge       `json:"edges"`
	Viewport valueobjects.Viewport `json:"viewport"`
}

// ToDocument returns the wire shape of the map
func (m *EvidenceMap) ToDocument() Document {
	return Document{Nodes: m.Nodes(), Edges: m.Edges(), Viewport: m.viewport}
}

// FromDocument builds a map for caseID from a decoded document. Missing
// arrays become empty ones.
func FromDocument(caseID valueobjects.CaseID, doc Document) (*EvidenceMap, error) {
	vp := doc.Viewport
	if vp == (valueobjects.Viewport{}) {
		vp = valueobjects.DefaultViewport()
	}
	return ReconstructEvidenceMap(caseID, doc.Nodes, doc.Edges, vp, time.Time{}, 0)
}

// MarshalJSON implements json.Marshaler
func (m *EvidenceMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToDocument())
}
