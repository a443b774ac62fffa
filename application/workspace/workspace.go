// Package workspace holds the client-side state of one open evidence map.
package workspace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/services"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// Export is a generated file ready to be written
type Export struct {
	FileName string
	Data     []byte
}

// Workspace owns the canonical graph of the open case. Every operation takes
// the lock, so concurrent callers see the last completed write.
type Workspace struct {
	gateway  ports.PersistenceGateway
	importer *services.Importer
	sizer    services.NodeSizer
	logger   *zap.Logger

	mu      sync.Mutex
	caseID  valueobjects.CaseID
	graph   *aggregates.EvidenceMap
	session *services.EditSession

	saving atomic.Bool
}

// New creates a workspace with no case open
func New(gateway ports.PersistenceGateway, importOptions services.ImportOptions, logger *zap.Logger) *Workspace {
	return &Workspace{
		gateway:  gateway,
		importer: services.NewImporter(importOptions),
		sizer:    services.DefaultNodeSizes,
		logger:   logger,
		graph:    aggregates.NewEvidenceMap(""),
		session:  services.NewEditSession(),
	}
}

// Load opens caseID. When the graph cannot be fetched the workspace falls back
// to an empty graph and the error is returned for reporting only.
func (w *Workspace) Load(ctx context.Context, caseID valueobjects.CaseID) error {
	doc, err := w.gateway.LoadGraph(ctx, caseID)

	var graph *aggregates.EvidenceMap
	if err == nil {
		graph, err = aggregates.FromDocument(caseID, doc)
	}
	if err != nil {
		w.logger.Error("Failed to load evidence map, starting empty",
			zap.String("caseID", caseID.String()),
			zap.Error(err))
		graph = aggregates.NewEvidenceMap(caseID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.caseID = caseID
	w.graph = graph
	w.session.Cancel()
	return err
}

// Save replaces the remote graph with the current one. A Save issued while
// another is in flight fails with ErrSaveInProgress.
func (w *Workspace) Save(ctx context.Context) error {
	if !w.saving.CompareAndSwap(false, true) {
		return pkgerrors.ErrSaveInProgress
	}
	defer w.saving.Store(false)

	w.mu.Lock()
	caseID := w.caseID
	doc := w.graph.ToDocument()
	w.mu.Unlock()

	if err := w.gateway.SaveGraph(ctx, caseID, doc); err != nil {
		w.logger.Error("Failed to save evidence map",
			zap.String("caseID", caseID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// Saving reports whether a Save is in flight
func (w *Workspace) Saving() bool {
	return w.saving.Load()
}

// CaseID returns the open case
func (w *Workspace) CaseID() valueobjects.CaseID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.caseID
}

// Snapshot returns the current graph in wire form
func (w *Workspace) Snapshot() aggregates.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.graph.ToDocument()
}

// Import merges extracted entities into the graph
func (w *Workspace) Import(nodes []services.ImportedNode, edges []services.ImportedEdge) (services.ImportResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	result, err := w.importer.Merge(w.graph, nodes, edges)
	if err != nil {
		return services.ImportResult{}, err
	}
	if len(result.Dangling) > 0 {
		w.logger.Warn("Import produced dangling edges",
			zap.String("caseID", w.caseID.String()),
			zap.Int("dangling", len(result.Dangling)))
	}
	return result, nil
}

// OpenEdit starts editing a node
func (w *Workspace) OpenEdit(id valueobjects.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Open(w.graph, id)
}

// Draft returns the staged fields of the node being edited
func (w *Workspace) Draft() (entities.NodeFields, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Draft()
}

// UpdateDraft replaces the staged fields
func (w *Workspace) UpdateDraft(f entities.NodeFields) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Update(f)
}

// CommitEdit writes the draft into the graph
func (w *Workspace) CommitEdit() (entities.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Commit(w.graph)
}

// CancelEdit discards the draft
func (w *Workspace) CancelEdit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.Cancel()
}

// EditingNodeID returns the node being edited, or the zero id
func (w *Workspace) EditingNodeID() valueobjects.NodeID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.EditingNodeID()
}

// AddNode creates a node with a fresh id
func (w *Workspace) AddNode(kind valueobjects.NodeKind, pos valueobjects.Position, label, content string) (entities.Node, error) {
	n, err := entities.NewNode(valueobjects.NewNodeID(), kind, pos, label, content, entities.NodeAttributes{})
	if err != nil {
		return entities.Node{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.graph.AddNode(n); err != nil {
		return entities.Node{}, err
	}
	return n, nil
}

// MoveNode changes a node's position
func (w *Workspace) MoveNode(id valueobjects.NodeID, pos valueobjects.Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.graph.MoveNode(id, pos)
}

// RemoveNode deletes a node and its edges. An edit open on it is discarded.
func (w *Workspace) RemoveNode(id valueobjects.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.graph.RemoveNode(id); err != nil {
		return err
	}
	if w.session.EditingNodeID() == id {
		w.session.Cancel()
	}
	return nil
}

// Connect adds an edge between two nodes
func (w *Workspace) Connect(source, target valueobjects.NodeID, edgeType valueobjects.EdgeType, label string) (entities.Edge, error) {
	e, err := entities.NewEdge(valueobjects.DerivedEdgeID(source, target), source, target, edgeType, label)
	if err != nil {
		return entities.Edge{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.graph.AddEdge(e); err != nil {
		return entities.Edge{}, err
	}
	return e, nil
}

// SetViewport records the canvas pan and zoom
func (w *Workspace) SetViewport(v valueobjects.Viewport) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.graph.SetViewport(v)
}

// Displayed derives the view of the current graph. The editing flag always
// follows the edit session.
func (w *Workspace) Displayed(opts services.ViewOptions) services.DisplayedView {
	w.mu.Lock()
	defer w.mu.Unlock()
	opts.EditingNodeID = w.session.EditingNodeID()
	return services.Derive(w.graph.Nodes(), w.graph.Edges(), opts)
}

// ExportImage rasterizes the whole graph. An empty graph fails with
// ErrNothingToExport before the rasterizer is touched.
func (w *Workspace) ExportImage(ctx context.Context, rasterizer ports.Rasterizer, now time.Time) (Export, error) {
	w.mu.Lock()
	nodes, edges := w.graph.Nodes(), w.graph.Edges()
	editing := w.session.EditingNodeID()
	w.mu.Unlock()

	rect, err := services.ComputeBounds(nodes, w.sizer, services.DefaultExportPadding)
	if err != nil {
		return Export{}, err
	}
	if rasterizer == nil {
		return Export{}, pkgerrors.ErrRenderSurfaceUnavailable
	}

	view := services.Derive(nodes, edges, services.ViewOptions{EditingNodeID: editing})
	data, err := rasterizer.Rasterize(ctx, view, rect)
	if err != nil {
		w.logger.Error("Failed to export image", zap.Error(err))
		return Export{}, err
	}
	return Export{FileName: services.ImageFileName(now), Data: data}, nil
}

// ExportReport asks the server to render the current graph as a report
func (w *Workspace) ExportReport(ctx context.Context) (Export, error) {
	w.mu.Lock()
	caseID := w.caseID
	nodes, edges := w.graph.Nodes(), w.graph.Edges()
	w.mu.Unlock()

	data, err := w.gateway.ExportReport(ctx, caseID, nodes, edges)
	if err != nil {
		w.logger.Error("Failed to generate report",
			zap.String("caseID", caseID.String()),
			zap.Error(err))
		return Export{}, err
	}
	return Export{FileName: services.ReportFileName(caseID), Data: data}, nil
}
