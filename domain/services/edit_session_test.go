package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

func newMap(t *testing.T, nodes ...entities.Node) *aggregates.EvidenceMap {
	t.Helper()
	m := aggregates.NewEvidenceMap("case-1")
	for _, n := range nodes {
		require.NoError(t, m.AddNode(n))
	}
	return m
}

func TestEditSession_CommitUpdatesAllFieldsTogether(t *testing.T) {
	m := newMap(t, claim(t, "N", "Old label"))
	s := NewEditSession()

	require.NoError(t, s.Open(m, "N"))
	assert.Equal(t, valueobjects.NodeID("N"), s.EditingNodeID())
	assert.True(t, Derive(m.Nodes(), nil, ViewOptions{EditingNodeID: s.EditingNodeID()}).Nodes[0].UI.Editing)

	require.NoError(t, s.SetLabel("New label"))
	require.NoError(t, s.SetContent("New content"))
	require.NoError(t, s.SetProven(true))

	before, _ := m.Node("N")
	assert.Equal(t, "Old label", before.Label(), "canonical state untouched while editing")

	updated, err := s.Commit(m)
	require.NoError(t, err)
	assert.Equal(t, "New label", updated.Label())

	after, err := m.Node("N")
	require.NoError(t, err)
	assert.Equal(t, "New label", after.Label())
	assert.Equal(t, "New content", after.Content())
	c, _ := after.Claim()
	assert.True(t, c.IsProven)

	assert.Equal(t, EditIdle, s.State())
	assert.False(t, Derive(m.Nodes(), nil, ViewOptions{EditingNodeID: s.EditingNodeID()}).Nodes[0].UI.Editing)
}

func TestEditSession_CancelLeavesNodeUnchanged(t *testing.T) {
	orig := evidence(t, "N", "Invoice")
	m := newMap(t, orig)
	s := NewEditSession()

	require.NoError(t, s.Open(m, "N"))
	require.NoError(t, s.SetLabel("Changed"))
	require.NoError(t, s.SetContent("Changed"))
	require.NoError(t, s.SetAdmission(valueobjects.AdmissionStricken))
	s.Cancel()

	after, err := m.Node("N")
	require.NoError(t, err)
	assert.Equal(t, orig, after)
	assert.Equal(t, EditIdle, s.State())
	assert.True(t, s.EditingNodeID().IsZero())
}

func TestEditSession_SingleEditor(t *testing.T) {
	m := newMap(t, claim(t, "A", "a"), claim(t, "B", "b"))
	s := NewEditSession()

	require.NoError(t, s.Open(m, "A"))
	err := s.Open(m, "B")
	assert.True(t, errors.Is(err, pkgerrors.ErrEditInProgress))
	assert.True(t, IsEditConflict(err))
	assert.Equal(t, valueobjects.NodeID("A"), s.EditingNodeID())
}

func TestEditSession_Errors(t *testing.T) {
	m := newMap(t, claim(t, "C", "claim"), evidence(t, "E", "evidence"))
	s := NewEditSession()

	assert.True(t, errors.Is(s.Open(m, "missing"), pkgerrors.ErrNodeNotFound))
	assert.True(t, errors.Is(s.SetLabel("x"), pkgerrors.ErrNoEditSession))
	_, err := s.Commit(m)
	assert.True(t, errors.Is(err, pkgerrors.ErrNoEditSession))

	require.NoError(t, s.Open(m, "C"))
	assert.True(t, pkgerrors.IsValidation(s.SetExhibitNumber("A-1")))
	assert.True(t, pkgerrors.IsValidation(s.SetAuthenticated(true)))
	assert.True(t, pkgerrors.IsValidation(s.Update(entities.NodeFields{Label: "x", Evidence: &entities.EvidenceAttributes{}})))
	s.Cancel()

	require.NoError(t, s.Open(m, "E"))
	assert.True(t, pkgerrors.IsValidation(s.SetProven(true)))
	assert.Error(t, s.SetAdmission("appealed"))
}

func TestEditSession_DraftIsACopy(t *testing.T) {
	m := newMap(t, evidence(t, "E", "Invoice"))
	s := NewEditSession()
	require.NoError(t, s.Open(m, "E"))

	d, err := s.Draft()
	require.NoError(t, err)
	d.Evidence.ExhibitNumber = "tampered"

	d2, err := s.Draft()
	require.NoError(t, err)
	assert.Equal(t, "", d2.Evidence.ExhibitNumber)
}

func TestEditSession_CommitAfterNodeRemoved(t *testing.T) {
	m := newMap(t, claim(t, "C", "claim"))
	s := NewEditSession()
	require.NoError(t, s.Open(m, "C"))
	require.NoError(t, m.RemoveNode("C"))

	_, err := s.Commit(m)
	assert.True(t, errors.Is(err, pkgerrors.ErrNodeNotFound))
	assert.Equal(t, EditIdle, s.State())
}
