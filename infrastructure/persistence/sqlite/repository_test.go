package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

func openTemp(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "maps.db")
	repo, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func sampleMap(t *testing.T) *aggregates.EvidenceMap {
	t.Helper()
	c, err := entities.NewClaimNode("C1", valueobjects.Position{X: 10, Y: 20}, "Breach", "Clause 4", entities.ClaimAttributes{IsProven: true})
	require.NoError(t, err)
	l, err := entities.NewLawNode("L1", valueobjects.Position{X: 400, Y: 20}, "Art. 12", "")
	require.NoError(t, err)
	e, err := entities.NewEdge("eL1-C1", "L1", "C1", valueobjects.EdgeDefault, "CONTRADICTS")
	require.NoError(t, err)
	e = e.WithStyle(entities.EdgeStyle{Stroke: "#ef4444", StrokeDasharray: "5,5"})

	m, err := aggregates.ReconstructEvidenceMap("case-7", []entities.Node{c, l}, []entities.Edge{e},
		valueobjects.Viewport{X: -5, Y: 2, Zoom: 0.75}, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), 2)
	require.NoError(t, err)
	return m
}

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := openTemp(t)

	_, err := repo.Load(ctx, "case-7")
	assert.True(t, errors.Is(err, pkgerrors.ErrEvidenceMapNotFound))

	m := sampleMap(t)
	require.NoError(t, repo.Save(ctx, m))

	got, err := repo.Load(ctx, "case-7")
	require.NoError(t, err)
	assert.Equal(t, m.Nodes(), got.Nodes())
	assert.Equal(t, m.Edges(), got.Edges())
	assert.Equal(t, m.Viewport(), got.Viewport())
	assert.Equal(t, 2, got.Version())
	assert.True(t, m.UpdatedAt().Equal(got.UpdatedAt()))
	assert.NoError(t, repo.Ping(ctx))
}

func TestRepository_UpsertAndReopen(t *testing.T) {
	ctx := context.Background()
	repo, path := openTemp(t)

	require.NoError(t, repo.Save(ctx, sampleMap(t)))
	require.NoError(t, repo.Save(ctx, aggregates.NewEvidenceMap("case-7")))
	require.NoError(t, repo.Close())

	reopened, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "case-7")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}
