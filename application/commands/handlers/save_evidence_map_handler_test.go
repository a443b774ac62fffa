package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/commands"
	"github.com/ShabiDHM/advocatus-sub001/application/commands/bus"
	"github.com/ShabiDHM/advocatus-sub001/application/ports/mocks"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/events"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
	"github.com/ShabiDHM/advocatus-sub001/pkg/observability"
)

func testDocument(t *testing.T) aggregates.Document {
	t.Helper()
	c, err := entities.NewClaimNode("C1", valueobjects.Position{X: 10, Y: 10}, "Breach", "", entities.ClaimAttributes{})
	require.NoError(t, err)
	e, err := entities.NewEvidenceNode("E1", valueobjects.Position{X: 300, Y: 10}, "Invoice", "", entities.EvidenceAttributes{})
	require.NoError(t, err)
	linked, err := entities.NewEdge("eE1-C1", "E1", "C1", valueobjects.EdgeSupports, "")
	require.NoError(t, err)
	dangling, err := entities.NewEdge("eE1-gone", "E1", "gone", valueobjects.EdgeRelated, "")
	require.NoError(t, err)

	return aggregates.Document{
		Nodes:    []entities.Node{c, e},
		Edges:    []entities.Edge{linked, dangling},
		Viewport: valueobjects.Viewport{X: 5, Y: 6, Zoom: 1.5},
	}
}

func TestSaveEvidenceMapHandler_SavesNewCase(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockEvidenceMapRepository)
	cache := new(mocks.MockCache)
	publisher := new(mocks.MockEventPublisher)
	metrics := observability.NewCollector("test")

	repo.On("Load", ctx, valueobjects.CaseID("case-1")).Return(nil, pkgerrors.Wrapf(pkgerrors.ErrEvidenceMapNotFound, "case %s", "case-1"))
	repo.On("Save", ctx, mock.MatchedBy(func(m *aggregates.EvidenceMap) bool {
		return m.CaseID() == "case-1" && m.NodeCount() == 2 && m.EdgeCount() == 2 &&
			m.Version() == 1 && m.Viewport().Zoom == 1.5
	})).Return(nil)
	cache.On("Delete", ctx, "evidence_map:case-1").Return(nil)
	publisher.On("Publish", ctx, mock.MatchedBy(func(e events.DomainEvent) bool {
		saved, ok := e.(events.EvidenceMapSaved)
		return ok && saved.DanglingEdges == 1 && saved.Version == 1
	})).Return(nil)

	h := NewSaveEvidenceMapHandler(repo, cache, publisher, metrics, zap.NewNop())
	h.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	err := h.Handle(ctx, commands.SaveEvidenceMapCommand{CaseID: "case-1", Document: testDocument(t)})
	require.NoError(t, err)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MapsSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DanglingEdges))
}

func TestSaveEvidenceMapHandler_VersionContinues(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockEvidenceMapRepository)

	prev, err := aggregates.ReconstructEvidenceMap("case-1", nil, nil, valueobjects.DefaultViewport(), time.Now(), 3)
	require.NoError(t, err)
	repo.On("Load", ctx, valueobjects.CaseID("case-1")).Return(prev, nil)
	repo.On("Save", ctx, mock.MatchedBy(func(m *aggregates.EvidenceMap) bool {
		return m.Version() == 4 && m.NodeCount() == 2
	})).Return(nil)

	h := NewSaveEvidenceMapHandler(repo, nil, nil, nil, zap.NewNop())
	require.NoError(t, h.Handle(ctx, commands.SaveEvidenceMapCommand{CaseID: "case-1", Document: testDocument(t)}))
	repo.AssertExpectations(t)
}

func TestSaveEvidenceMapHandler_SaveFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockEvidenceMapRepository)
	cache := new(mocks.MockCache)
	boom := errors.New("boom")

	repo.On("Load", ctx, mock.Anything).Return(nil, pkgerrors.ErrEvidenceMapNotFound)
	repo.On("Save", ctx, mock.Anything).Return(boom)

	h := NewSaveEvidenceMapHandler(repo, cache, nil, nil, zap.NewNop())
	err := h.Handle(ctx, commands.SaveEvidenceMapCommand{CaseID: "case-1"})
	assert.True(t, errors.Is(err, boom))
	cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSaveEvidenceMapHandler_RejectsDuplicateNodeIDs(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockEvidenceMapRepository)
	doc := testDocument(t)
	doc.Nodes = append(doc.Nodes, doc.Nodes[0])

	h := NewSaveEvidenceMapHandler(repo, nil, nil, nil, zap.NewNop())
	err := h.Handle(ctx, commands.SaveEvidenceMapCommand{CaseID: "case-1", Document: doc})
	assert.True(t, pkgerrors.IsValidation(err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegisterHandlers_ValidatesThroughBus(t *testing.T) {
	repo := new(mocks.MockEvidenceMapRepository)
	b := bus.NewCommandBus()
	require.NoError(t, RegisterHandlers(b, NewSaveEvidenceMapHandler(repo, nil, nil, nil, zap.NewNop())))

	err := b.Send(context.Background(), commands.SaveEvidenceMapCommand{CaseID: "a/b"})
	assert.True(t, pkgerrors.IsValidation(err))

	err = b.Send(context.Background(), commands.SaveEvidenceMapCommand{})
	assert.True(t, pkgerrors.IsValidation(err))
}
