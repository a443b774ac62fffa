package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, err := repo.Load(ctx, "case-1")
	assert.True(t, errors.Is(err, pkgerrors.ErrEvidenceMapNotFound))

	ev, err := entities.NewEvidenceNode("E1", valueobjects.Position{X: 1, Y: 2}, "Invoice", "body",
		entities.EvidenceAttributes{ExhibitNumber: "A-1", IsAuthenticated: true, Admission: valueobjects.AdmissionAdmitted})
	require.NoError(t, err)
	edge, err := entities.NewEdge("eE1-C9", "E1", "C9", valueobjects.EdgeSupports, "proves")
	require.NoError(t, err)

	m, err := aggregates.ReconstructEvidenceMap("case-1", []entities.Node{ev}, []entities.Edge{edge},
		valueobjects.Viewport{X: 3, Y: 4, Zoom: 1.25}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 7)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, m))

	// Mutating the saved aggregate must not leak into the store
	require.NoError(t, m.RemoveNode("E1"))

	got, err := repo.Load(ctx, "case-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.NodeCount())
	assert.Equal(t, 1, got.EdgeCount(), "dangling edges are stored as-is")
	assert.Equal(t, 7, got.Version())
	assert.Equal(t, valueobjects.Viewport{X: 3, Y: 4, Zoom: 1.25}, got.Viewport())

	n, err := got.Node("E1")
	require.NoError(t, err)
	attrs, ok := n.Evidence()
	require.True(t, ok)
	assert.Equal(t, "A-1", attrs.ExhibitNumber)
	assert.Equal(t, valueobjects.AdmissionAdmitted, attrs.Admission)
	assert.Equal(t, 1, repo.Len())
}

func TestRepository_SaveReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	first := aggregates.NewEvidenceMap("case-1")
	c, err := entities.NewClaimNode("C1", valueobjects.Position{}, "a", "", entities.ClaimAttributes{})
	require.NoError(t, err)
	require.NoError(t, first.AddNode(c))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, repo.Save(ctx, aggregates.NewEvidenceMap("case-1")))

	got, err := repo.Load(ctx, "case-1")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}
