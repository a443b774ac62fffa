package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
)

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

func newImporter(policy DanglingPolicy) *Importer {
	return NewImporter(ImportOptions{Random: fixedRandom(0), Dangling: policy})
}

func TestImport_SkipsLabelDuplicate(t *testing.T) {
	existing := claim(t, "C1", "Breach of contract")
	m := newMap(t, existing)

	res, err := newImporter(DanglingKeep).Merge(m,
		[]ImportedNode{{ID: "x9", Name: "Breach of contract", Group: "CLAIM", Description: "dup"}}, nil)
	require.NoError(t, err)

	assert.Empty(t, res.AddedNodes)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipSameLabel, res.Skipped[0].Reason)
	assert.Equal(t, valueobjects.NodeID("C1"), res.Skipped[0].ExistingID)

	assert.Equal(t, 1, m.NodeCount())
	after, _ := m.Node("C1")
	assert.Equal(t, existing, after)
}

func TestImport_SkipsSameIDAndBatchDuplicates(t *testing.T) {
	m := newMap(t, claim(t, "C1", "Breach"))

	res, err := newImporter(DanglingKeep).Merge(m, []ImportedNode{
		{ID: "C1", Name: "Something else", Group: "CLAIM"},
		{ID: "N1", Name: "Invoice", Group: "EVIDENCE"},
		{ID: "N1", Name: "Invoice copy", Group: "EVIDENCE"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, res.AddedNodes, 1)
	assert.Equal(t, valueobjects.NodeID("N1"), res.AddedNodes[0].ID())
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, SkipSameID, res.Skipped[0].Reason)
	assert.Equal(t, SkipDuplicateInBatch, res.Skipped[1].Reason)
	assert.Equal(t, 2, m.NodeCount())
}

func TestImport_SameNameWithinBatchIsKept(t *testing.T) {
	m := newMap(t, claim(t, "C1", "Breach"))

	res, err := newImporter(DanglingKeep).Merge(m, []ImportedNode{
		{ID: "b", Name: "Dup", Group: "EVIDENCE"},
		{ID: "c", Name: "Dup", Group: "EVIDENCE"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, res.AddedNodes, 2)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 3, m.NodeCount())
}

func TestImport_LabelMatchIsCaseSensitive(t *testing.T) {
	m := newMap(t, claim(t, "C1", "Breach"))

	res, err := newImporter(DanglingKeep).Merge(m, []ImportedNode{{ID: "c2", Name: "breach", Group: "CLAIM"}}, nil)
	require.NoError(t, err)
	assert.Len(t, res.AddedNodes, 1)
}

func TestImport_LayoutCyclesColumnsAndRows(t *testing.T) {
	m := newMap(t)
	var in []ImportedNode
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		in = append(in, ImportedNode{ID: id, Name: "node " + id, Group: "EVIDENCE"})
	}

	res, err := newImporter(DanglingKeep).Merge(m, in, nil)
	require.NoError(t, err)
	require.Len(t, res.AddedNodes, 6)

	wantCols := []int{0, 1, 2, 0, 1, 2}
	wantRows := []int{0, 0, 0, 1, 1, 1}
	for i, n := range res.AddedNodes {
		p := n.Position()
		assert.Equal(t, wantCols[i], int((p.X-importOriginX)/ImportColumnPitch), "column of %d", i)
		assert.Equal(t, wantRows[i], int((p.Y-importOriginY)/ImportRowPitch), "row of %d", i)
	}
}

func TestImport_LayoutCountsAcceptedNodesOnly(t *testing.T) {
	m := newMap(t, claim(t, "C1", "Breach"))

	res, err := newImporter(DanglingKeep).Merge(m, []ImportedNode{
		{ID: "C1", Name: "skip me", Group: "CLAIM"},
		{ID: "a", Name: "first", Group: "EVIDENCE"},
	}, nil)
	require.NoError(t, err)
	require.Len(t, res.AddedNodes, 1)
	assert.Equal(t, LayoutPosition(0, importOriginX, importOriginY), res.AddedNodes[0].Position())
}

func TestImport_RandomBaseOffset(t *testing.T) {
	m := newMap(t)
	imp := NewImporter(ImportOptions{Random: fixedRandom(0.5)})

	res, err := imp.Merge(m, []ImportedNode{{ID: "a", Name: "a"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.Position{X: 200, Y: 200}, res.AddedNodes[0].Position())
}

func TestImport_KindMappingAndSeeding(t *testing.T) {
	m := newMap(t)

	res, err := newImporter(DanglingKeep).Merge(m, []ImportedNode{
		{ID: "c", Name: "Claim", Group: "CLAIM", Description: "d1"},
		{ID: "e", Name: "Doc", Group: "EVIDENCE", Description: "d2"},
		{ID: "p", Name: "Jane Doe", Group: "PERSON", Description: "witness"},
		{ID: "q", Name: "Acme", Group: "ORGANIZATION"},
		{ID: "r", Name: "Bare", Group: "EVIDENCE"},
	}, nil)
	require.NoError(t, err)
	require.Len(t, res.AddedNodes, 5)

	c := res.AddedNodes[0]
	assert.Equal(t, valueobjects.KindClaim, c.Kind())
	attrs, ok := c.Claim()
	require.True(t, ok)
	assert.False(t, attrs.IsProven)
	assert.Equal(t, "d1", c.Content())

	e := res.AddedNodes[1]
	assert.Equal(t, valueobjects.KindEvidence, e.Kind())
	ev, ok := e.Evidence()
	require.True(t, ok)
	assert.Equal(t, AutoImportExhibitNumber, ev.ExhibitNumber)
	assert.False(t, ev.IsAuthenticated)
	assert.Equal(t, valueobjects.AdmissionPending, ev.Admission)

	assert.Equal(t, valueobjects.KindEvidence, res.AddedNodes[2].Kind())
	assert.Equal(t, "[PERSON] witness", res.AddedNodes[2].Content())
	assert.Equal(t, "[ORGANIZATION] "+DefaultImportPlaceholder, res.AddedNodes[3].Content())
	assert.Equal(t, DefaultImportPlaceholder, res.AddedNodes[4].Content())
}

func TestImport_GroupMatchIsExact(t *testing.T) {
	m := newMap(t)

	res, err := newImporter(DanglingKeep).Merge(m, []ImportedNode{
		{ID: "a", Name: "lower", Group: "claim", Description: "x"},
		{ID: "b", Name: "mixed", Group: "Evidence", Description: "y"},
		{ID: "c", Name: "blank", Group: "EVIDENCE", Description: "  "},
	}, nil)
	require.NoError(t, err)
	require.Len(t, res.AddedNodes, 3)

	assert.Equal(t, valueobjects.KindEvidence, res.AddedNodes[0].Kind())
	assert.Equal(t, "[claim] x", res.AddedNodes[0].Content())
	assert.Equal(t, valueobjects.KindEvidence, res.AddedNodes[1].Kind())
	assert.Equal(t, "[Evidence] y", res.AddedNodes[1].Content())
	assert.Equal(t, "  ", res.AddedNodes[2].Content())
}

func TestImport_EdgesIDsAndStyles(t *testing.T) {
	m := newMap(t)

	res, err := newImporter(DanglingKeep).Merge(m,
		[]ImportedNode{{ID: "A", Name: "a"}, {ID: "B", Name: "b"}},
		[]ImportedEdge{
			{Source: "A", Target: "B", Label: "CONTRADICTS"},
			{Source: "B", Target: "A", Label: "supports"},
			{Source: "A", Target: "B", Label: "again"},
		})
	require.NoError(t, err)
	require.Len(t, res.AddedEdges, 2)

	first := res.AddedEdges[0]
	assert.Equal(t, valueobjects.EdgeID("eA-B"), first.ID())
	assert.Equal(t, valueobjects.EdgeDefault, first.Type())
	style, ok := first.Style()
	require.True(t, ok)
	assert.Equal(t, entities.EdgeStyle{Stroke: ColorContradicts, StrokeDasharray: DashContradicts}, style)

	style, _ = res.AddedEdges[1].Style()
	assert.Equal(t, entities.EdgeStyle{Stroke: ColorSupports, Animated: true}, style)

	assert.Equal(t, style, StyleFor(res.AddedEdges[1], true))
	assert.Empty(t, res.Dangling)
}

func TestImport_CustomContradictionKeyword(t *testing.T) {
	m := newMap(t)
	imp := NewImporter(ImportOptions{Random: fixedRandom(0), ContradictionKeyword: "KUNDËRSHTON"})

	res, err := imp.Merge(m, []ImportedNode{{ID: "A", Name: "a"}, {ID: "B", Name: "b"}},
		[]ImportedEdge{{Source: "A", Target: "B", Label: "KUNDËRSHTON"}, {Source: "B", Target: "A", Label: "CONTRADICTS"}})
	require.NoError(t, err)

	s0, _ := res.AddedEdges[0].Style()
	s1, _ := res.AddedEdges[1].Style()
	assert.Equal(t, ColorContradicts, s0.Stroke)
	assert.Equal(t, ColorSupports, s1.Stroke)
}

func TestImport_DanglingPolicies(t *testing.T) {
	nodes := []ImportedNode{
		{ID: "dup", Name: "Breach", Group: "CLAIM"},
		{ID: "E1", Name: "Invoice", Group: "EVIDENCE"},
	}
	edges := []ImportedEdge{
		{Source: "E1", Target: "dup", Label: "proves"},
		{Source: "E1", Target: "nowhere", Label: "mentions"},
	}

	t.Run("keep", func(t *testing.T) {
		m := newMap(t, claim(t, "C1", "Breach"))
		res, err := newImporter(DanglingKeep).Merge(m, nodes, edges)
		require.NoError(t, err)
		assert.Len(t, res.AddedEdges, 2)
		assert.Len(t, res.Dangling, 2)
		assert.Len(t, m.DanglingEdges(), 2)
	})

	t.Run("drop", func(t *testing.T) {
		m := newMap(t, claim(t, "C1", "Breach"))
		res, err := newImporter(DanglingDrop).Merge(m, nodes, edges)
		require.NoError(t, err)
		assert.Empty(t, res.AddedEdges)
		assert.Len(t, res.Dangling, 2)
		assert.Empty(t, m.DanglingEdges())
	})

	t.Run("redirect", func(t *testing.T) {
		m := newMap(t, claim(t, "C1", "Breach"))
		res, err := newImporter(DanglingRedirect).Merge(m, nodes, edges)
		require.NoError(t, err)
		require.Len(t, res.AddedEdges, 2)
		assert.Equal(t, 1, res.Redirected)

		redirected := res.AddedEdges[0]
		assert.Equal(t, valueobjects.NodeID("C1"), redirected.Target())
		assert.Equal(t, valueobjects.EdgeID("eE1-C1"), redirected.ID())

		require.Len(t, res.Dangling, 1)
		assert.Equal(t, valueobjects.NodeID("nowhere"), res.Dangling[0].Target())
	})
}

func TestImport_IsAdditive(t *testing.T) {
	m := newMap(t, claim(t, "C1", "Breach"), evidence(t, "E0", "Old"))
	require.NoError(t, m.AddEdge(link(t, "E0", "C1", valueobjects.EdgeSupports)))
	before := m.Clone()

	_, err := newImporter(DanglingKeep).Merge(m,
		[]ImportedNode{{ID: "E2", Name: "New", Group: "EVIDENCE"}},
		[]ImportedEdge{{Source: "E2", Target: "C1", Label: "supports"}})
	require.NoError(t, err)

	assert.Equal(t, before.Nodes(), m.Nodes()[:2])
	assert.Equal(t, before.Edges(), m.Edges()[:1])
	assert.Equal(t, 3, m.NodeCount())
	assert.Equal(t, 2, m.EdgeCount())
}

func TestParseDanglingPolicy(t *testing.T) {
	p, err := ParseDanglingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DanglingKeep, p)

	p, err = ParseDanglingPolicy(" Redirect ")
	require.NoError(t, err)
	assert.Equal(t, DanglingRedirect, p)

	_, err = ParseDanglingPolicy("reject")
	assert.True(t, err != nil && strings.Contains(err.Error(), "reject"))
}
