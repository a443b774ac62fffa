package aggregates

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

func fact(t *testing.T, id, label string) entities.Node {
	t.Helper()
	n, err := entities.NewFactNode(valueobjects.NodeID(id), valueobjects.Position{}, label, "")
	require.NoError(t, err)
	return n
}

func edge(t *testing.T, id, src, tgt string, typ valueobjects.EdgeType) entities.Edge {
	t.Helper()
	e, err := entities.NewEdge(valueobjects.EdgeID(id), valueobjects.NodeID(src), valueobjects.NodeID(tgt), typ, "")
	require.NoError(t, err)
	return e
}

func TestReconstructEvidenceMap_RejectsDuplicateIDs(t *testing.T) {
	_, err := ReconstructEvidenceMap("case-1",
		[]entities.Node{fact(t, "A", "a"), fact(t, "A", "b")}, nil,
		valueobjects.DefaultViewport(), time.Time{}, 0)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = ReconstructEvidenceMap("case-1",
		[]entities.Node{fact(t, "A", "a"), fact(t, "B", "b")},
		[]entities.Edge{edge(t, "e1", "A", "B", valueobjects.EdgeSupports), edge(t, "e1", "B", "A", valueobjects.EdgeSupports)},
		valueobjects.DefaultViewport(), time.Time{}, 0)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestEvidenceMap_DanglingEdgesAreReportedNotRejected(t *testing.T) {
	m, err := ReconstructEvidenceMap("case-1",
		[]entities.Node{fact(t, "A", "a")},
		[]entities.Edge{edge(t, "e1", "A", "ghost", valueobjects.EdgeSupports)},
		valueobjects.DefaultViewport(), time.Time{}, 0)
	require.NoError(t, err)

	dangling := m.DanglingEdges()
	require.Len(t, dangling, 1)
	assert.Equal(t, valueobjects.EdgeID("e1"), dangling[0].ID())
}

func TestEvidenceMap_RemoveNodeDropsIncidentEdges(t *testing.T) {
	m := NewEvidenceMap("case-1")
	require.NoError(t, m.AddNode(fact(t, "A", "a")))
	require.NoError(t, m.AddNode(fact(t, "B", "b")))
	require.NoError(t, m.AddNode(fact(t, "C", "c")))
	require.NoError(t, m.AddEdge(edge(t, "e1", "A", "B", valueobjects.EdgeSupports)))
	require.NoError(t, m.AddEdge(edge(t, "e2", "B", "C", valueobjects.EdgeSupports)))
	require.NoError(t, m.AddEdge(edge(t, "e3", "A", "C", valueobjects.EdgeSupports)))

	require.NoError(t, m.RemoveNode("B"))

	assert.Equal(t, 2, m.NodeCount())
	require.Len(t, m.Edges(), 1)
	assert.Equal(t, valueobjects.EdgeID("e3"), m.Edges()[0].ID())

	err := m.RemoveNode("B")
	assert.True(t, errors.Is(err, pkgerrors.ErrNodeNotFound))
}

func TestEvidenceMap_AppendBatchIsAllOrNothing(t *testing.T) {
	m := NewEvidenceMap("case-1")
	require.NoError(t, m.AddNode(fact(t, "A", "a")))

	err := m.AppendBatch([]entities.Node{fact(t, "B", "b"), fact(t, "A", "dup")}, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, m.NodeCount())

	require.NoError(t, m.AppendBatch([]entities.Node{fact(t, "B", "b")}, []entities.Edge{edge(t, "eA-B", "A", "B", valueobjects.EdgeDefault)}))
	assert.Equal(t, 2, m.NodeCount())
	assert.Equal(t, 1, m.EdgeCount())
}

func TestEvidenceMap_MoveNodeAndClone(t *testing.T) {
	m := NewEvidenceMap("case-1")
	require.NoError(t, m.AddNode(fact(t, "A", "a")))

	c := m.Clone()
	require.NoError(t, m.MoveNode("A", valueobjects.Position{X: 50, Y: 60}))

	moved, err := m.Node("A")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.Position{X: 50, Y: 60}, moved.Position())

	orig, err := c.Node("A")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.Position{}, orig.Position())
}

func TestEvidenceMap_DocumentRoundTrip(t *testing.T) {
	payload := `{
		"nodes": [
			{"id":"c1","type":"claimNode","position":{"x":0,"y":0},"data":{"label":"Breach","content":"","isProven":false}},
			{"id":"e1","type":"evidenceNode","position":{"x":300,"y":0},"data":{"label":"Invoice","content":"","exhibitNumber":"A-1","isAuthenticated":true,"isAdmitted":"admitted"}}
		],
		"edges": [
			{"id":"e1-c1","source":"e1","target":"c1","type":"supports","label":"proves","data":{"label":"proves"}}
		],
		"viewport": {"x": 10, "y": 20, "zoom": 1.5}
	}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))

	m, err := FromDocument("case-1", doc)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NodeCount())
	assert.Equal(t, valueobjects.Viewport{X: 10, Y: 20, Zoom: 1.5}, m.Viewport())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(out))
}

func TestFromDocument_EmptyUsesDefaultViewport(t *testing.T) {
	m, err := FromDocument("case-1", Document{})
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
	assert.Equal(t, valueobjects.DefaultViewport(), m.Viewport())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[],"viewport":{"x":0,"y":0,"zoom":1}}`, string(out))
}
