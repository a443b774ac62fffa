package services

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
)

// Import defaults
const (
	DefaultContradictionKeyword = "CONTRADICTS"
	DefaultImportPlaceholder    = "No description was extracted. Please fill in the details."
	AutoImportExhibitNumber     = "Auto-Import"

	ImportColumns      = 3
	ImportColumnPitch  = 300.0
	ImportRowPitch     = 200.0
	importOriginX      = 100.0
	importOriginY      = 100.0
	importOriginJitter = 200.0

	groupClaim    = "CLAIM"
	groupEvidence = "EVIDENCE"
)

// ImportedNode is one entity produced by document extraction
type ImportedNode struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Group       string `json:"group"`
	Description string `json:"description,omitempty"`
}

// ImportedEdge is one relationship produced by document extraction
type ImportedEdge struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Label  string `json:"label"`
}

// DanglingPolicy decides what happens to an imported edge whose endpoint is
// not a node of the merged map
type DanglingPolicy string

const (
	// DanglingKeep adds the edge anyway
	DanglingKeep DanglingPolicy = "keep"
	// DanglingDrop leaves the edge out
	DanglingDrop DanglingPolicy = "drop"
	// DanglingRedirect points endpoints of label-matched skipped nodes at the
	// node that caused the skip, then keeps whatever still dangles
	DanglingRedirect DanglingPolicy = "redirect"
)

// ParseDanglingPolicy accepts keep, drop or redirect; empty means keep
func ParseDanglingPolicy(s string) (DanglingPolicy, error) {
	switch p := DanglingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DanglingKeep, nil
	case DanglingKeep, DanglingDrop, DanglingRedirect:
		return p, nil
	default:
		return "", fmt.Errorf("unknown dangling edge policy %q", s)
	}
}

// RandomSource supplies the layout jitter. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type randFunc func() float64

func (f randFunc) Float64() float64 { return f() }

// ImportOptions configures an Importer
type ImportOptions struct {
	ContradictionKeyword string
	Placeholder          string
	Dangling             DanglingPolicy
	Random               RandomSource
}

// SkipReason says why an imported node was not added
type SkipReason string

const (
	SkipSameID           SkipReason = "same_id"
	SkipSameLabel        SkipReason = "same_label"
	SkipDuplicateInBatch SkipReason = "duplicate_in_batch"
)

// SkippedNode records an imported node that was left out
type SkippedNode struct {
	Node       ImportedNode
	Reason     SkipReason
	ExistingID valueobjects.NodeID
}

// ImportResult describes what a merge added
type ImportResult struct {
	AddedNodes []entities.Node
	AddedEdges []entities.Edge
	Skipped    []SkippedNode
	// Dangling lists edges with an endpoint outside the merged map, whether
	// they were added or dropped
	Dangling   []entities.Edge
	Redirected int
}

// Importer folds extracted entities into an evidence map
type Importer struct {
	opts ImportOptions
}

// NewImporter fills unset options with defaults
func NewImporter(opts ImportOptions) *Importer {
	if opts.ContradictionKeyword == "" {
		opts.ContradictionKeyword = DefaultContradictionKeyword
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultImportPlaceholder
	}
	if opts.Dangling == "" {
		opts.Dangling = DanglingKeep
	}
	if opts.Random == nil {
		opts.Random = randFunc(rand.Float64)
	}
	return &Importer{opts: opts}
}

// Merge appends the accepted nodes and edges to m in one batch. Existing
// nodes and edges are never modified or removed.
func (imp *Importer) Merge(m *aggregates.EvidenceMap, nodes []ImportedNode, edges []ImportedEdge) (ImportResult, error) {
	var result ImportResult

	ids := make(map[valueobjects.NodeID]struct{}, m.NodeCount()+len(nodes))
	labels := make(map[string]valueobjects.NodeID, m.NodeCount())
	for _, n := range m.Nodes() {
		ids[n.ID()] = struct{}{}
		if _, seen := labels[n.Label()]; !seen {
			labels[n.Label()] = n.ID()
		}
	}
	redirects := make(map[valueobjects.NodeID]valueobjects.NodeID)

	baseX := importOriginX + imp.opts.Random.Float64()*importOriginJitter
	baseY := importOriginY + imp.opts.Random.Float64()*importOriginJitter

	for _, in := range nodes {
		id := valueobjects.NodeID(in.ID)
		if _, dup := ids[id]; dup {
			reason := SkipSameID
			if !m.HasNode(id) {
				reason = SkipDuplicateInBatch
			}
			result.Skipped = append(result.Skipped, SkippedNode{Node: in, Reason: reason, ExistingID: id})
			continue
		}
		// Only labels already on the map count. Two imported nodes may share a name.
		if owner, dup := labels[in.Name]; dup {
			result.Skipped = append(result.Skipped, SkippedNode{Node: in, Reason: SkipSameLabel, ExistingID: owner})
			redirects[id] = owner
			continue
		}

		node, err := imp.buildNode(in, LayoutPosition(len(result.AddedNodes), baseX, baseY))
		if err != nil {
			return ImportResult{}, err
		}
		result.AddedNodes = append(result.AddedNodes, node)
		ids[id] = struct{}{}
	}

	edgeIDs := make(map[valueobjects.EdgeID]struct{}, m.EdgeCount()+len(edges))
	for _, e := range m.Edges() {
		edgeIDs[e.ID()] = struct{}{}
	}

	for _, in := range edges {
		source := valueobjects.NodeID(in.Source)
		target := valueobjects.NodeID(in.Target)

		if imp.opts.Dangling == DanglingRedirect {
			redirected := false
			if to, ok := redirects[source]; ok {
				source, redirected = to, true
			}
			if to, ok := redirects[target]; ok {
				target, redirected = to, true
			}
			if redirected {
				result.Redirected++
			}
		}

		id := valueobjects.DerivedEdgeID(source, target)
		if _, dup := edgeIDs[id]; dup {
			continue
		}

		edge, err := entities.NewEdge(id, source, target, valueobjects.EdgeDefault, in.Label)
		if err != nil {
			return ImportResult{}, err
		}
		edge = edge.WithStyle(imp.styleFor(in.Label))

		_, okSource := ids[source]
		_, okTarget := ids[target]
		if !okSource || !okTarget {
			result.Dangling = append(result.Dangling, edge)
			if imp.opts.Dangling == DanglingDrop {
				continue
			}
		}

		result.AddedEdges = append(result.AddedEdges, edge)
		edgeIDs[id] = struct{}{}
	}

	if err := m.AppendBatch(result.AddedNodes, result.AddedEdges); err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

func (imp *Importer) buildNode(in ImportedNode, pos valueobjects.Position) (entities.Node, error) {
	id := valueobjects.NodeID(in.ID)
	content := imp.synthesizeContent(in)
	if in.Group == groupClaim {
		return entities.NewClaimNode(id, pos, in.Name, content, entities.ClaimAttributes{IsProven: false})
	}
	return entities.NewEvidenceNode(id, pos, in.Name, content, entities.EvidenceAttributes{
		ExhibitNumber:   AutoImportExhibitNumber,
		IsAuthenticated: false,
		Admission:       valueobjects.AdmissionPending,
	})
}

func (imp *Importer) synthesizeContent(in ImportedNode) string {
	content := in.Description
	if content == "" {
		content = imp.opts.Placeholder
	}
	if in.Group != "" && in.Group != groupClaim && in.Group != groupEvidence {
		content = "[" + in.Group + "] " + content
	}
	return content
}

func (imp *Importer) styleFor(label string) entities.EdgeStyle {
	if label == imp.opts.ContradictionKeyword {
		return entities.EdgeStyle{Stroke: ColorContradicts, StrokeDasharray: DashContradicts}
	}
	return entities.EdgeStyle{Stroke: ColorSupports, Animated: true}
}

// LayoutPosition places the index-th accepted node on a three column grid
// anchored at (baseX, baseY)
func LayoutPosition(index int, baseX, baseY float64) valueobjects.Position {
	col := index % ImportColumns
	row := index / ImportColumns
	return valueobjects.Position{
		X: baseX + float64(col)*ImportColumnPitch,
		Y: baseY + float64(row)*ImportRowPitch,
	}
}
