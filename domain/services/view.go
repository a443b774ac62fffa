// Package services holds the pure evidence-map logic: the derived view handed
// to renderers, the single-node edit session, import merging and export
// geometry. Nothing here performs I/O.
package services

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
)

// Edge palette
const (
	ColorContradicts = "#ef4444"
	ColorSupports    = "#22c55e"
	ColorRelated     = "#94a3b8"
	ColorDefault     = "#64748b"

	DashContradicts = "5,5"
	DashRelated     = "2,6"
)

// Filters are the sidebar toggles
type Filters struct {
	HideUnconnected         bool `json:"hideUnconnected"`
	HighlightContradictions bool `json:"highlightContradictions"`
}

// ViewOptions is everything besides the graph that shapes the displayed view
type ViewOptions struct {
	Filters       Filters
	SearchTerm    string
	EditingNodeID valueobjects.NodeID
}

// NodeStats tallies the supporting and contradicting edges pointing at a node
type NodeStats struct {
	Supports    int `json:"supports"`
	Contradicts int `json:"contradicts"`
}

// UIState holds the render-time fields of a node. It never reaches storage.
type UIState struct {
	Stats         *NodeStats
	IsHighlighted bool
	Editing       bool
}

// DisplayNode pairs a domain node with its render-time state
type DisplayNode struct {
	Node entities.Node
	UI   UIState
}

// DisplayEdge pairs a domain edge with its computed style
type DisplayEdge struct {
	Edge  entities.Edge
	Style entities.EdgeStyle
}

// DisplayedView is the projection handed to a renderer
type DisplayedView struct {
	Nodes []DisplayNode `json:"nodes"`
	Edges []DisplayEdge `json:"edges"`
}

// Derive computes the displayed view. It never mutates its inputs and
// returns fresh slices on every call.
func Derive(nodes []entities.Node, edges []entities.Edge, opts ViewOptions) DisplayedView {
	stats := ComputeStats(edges)
	connected := connectedNodes(edges)
	highlightSearch := utf8.RuneCountInString(opts.SearchTerm) > 1
	term := strings.ToLower(opts.SearchTerm)

	view := DisplayedView{
		Nodes: make([]DisplayNode, 0, len(nodes)),
		Edges: make([]DisplayEdge, 0, len(edges)),
	}

	for _, n := range nodes {
		if opts.Filters.HideUnconnected && n.IsKind(valueobjects.KindEvidence) {
			if _, ok := connected[n.ID()]; !ok {
				continue
			}
		}

		ui := UIState{
			IsHighlighted: highlightSearch && strings.Contains(strings.ToLower(n.Label()), term),
			Editing:       !opts.EditingNodeID.IsZero() && n.ID() == opts.EditingNodeID,
		}
		if n.IsKind(valueobjects.KindClaim) {
			s := stats[n.ID()]
			ui.Stats = &s
		}
		view.Nodes = append(view.Nodes, DisplayNode{Node: n, UI: ui})
	}

	for _, e := range edges {
		view.Edges = append(view.Edges, DisplayEdge{
			Edge:  e,
			Style: StyleFor(e, opts.Filters.HighlightContradictions),
		})
	}

	return view
}

// ComputeStats counts, per target node, the supporting and contradicting
// edges. Targets that are not nodes of the graph still get an entry.
func ComputeStats(edges []entities.Edge) map[valueobjects.NodeID]NodeStats {
	stats := make(map[valueobjects.NodeID]NodeStats)
	for _, e := range edges {
		s := stats[e.Target()]
		switch e.Type() {
		case valueobjects.EdgeSupports:
			s.Supports++
		case valueobjects.EdgeContradicts:
			s.Contradicts++
		default:
			continue
		}
		stats[e.Target()] = s
	}
	return stats
}

// StyleFor maps an edge to its visual style
func StyleFor(e entities.Edge, highlightContradictions bool) entities.EdgeStyle {
	switch e.Type() {
	case valueobjects.EdgeContradicts:
		return entities.EdgeStyle{Stroke: ColorContradicts, StrokeDasharray: DashContradicts, Animated: highlightContradictions}
	case valueobjects.EdgeSupports:
		return entities.EdgeStyle{Stroke: ColorSupports}
	case valueobjects.EdgeRelated:
		return entities.EdgeStyle{Stroke: ColorRelated, StrokeDasharray: DashRelated}
	default:
		if s, ok := e.Style(); ok {
			return s
		}
		return entities.EdgeStyle{Stroke: ColorDefault}
	}
}

// ClaimSummary is the support tally of one claim
type ClaimSummary struct {
	Claim entities.Node
	Stats NodeStats
}

// SummarizeClaims returns every claim with its tally, in node order
func SummarizeClaims(nodes []entities.Node, edges []entities.Edge) []ClaimSummary {
	stats := ComputeStats(edges)
	var out []ClaimSummary
	for _, n := range nodes {
		if n.IsKind(valueobjects.KindClaim) {
			out = append(out, ClaimSummary{Claim: n, Stats: stats[n.ID()]})
		}
	}
	return out
}

func connectedNodes(edges []entities.Edge) map[valueobjects.NodeID]struct{} {
	ids := make(map[valueobjects.NodeID]struct{}, len(edges)*2)
	for _, e := range edges {
		ids[e.Source()] = struct{}{}
		ids[e.Target()] = struct{}{}
	}
	return ids
}

type displayNodeData struct {
	entities.NodeData
	Stats         *NodeStats `json:"stats,omitempty"`
	IsHighlighted bool       `json:"isHighlighted"`
	Editing       bool       `json:"editing"`
}

type displayNodeJSON struct {
	ID       string                `json:"id"`
	Type     string                `json:"type"`
	Position valueobjects.Position `json:"position"`
	Data     displayNodeData       `json:"data"`
}

// MarshalJSON renders the node in the renderer's shape with the UI fields
// folded into its data bag
func (d DisplayNode) MarshalJSON() ([]byte, error) {
	r := d.Node.ToRecord()
	return json.Marshal(displayNodeJSON{
		ID:       r.ID,
		Type:     r.Type,
		Position: r.Position,
		Data: displayNodeData{
			NodeData:      r.Data,
			Stats:         d.UI.Stats,
			IsHighlighted: d.UI.IsHighlighted,
			Editing:       d.UI.Editing,
		},
	})
}

// MarshalJSON renders the edge with its computed style
func (d DisplayEdge) MarshalJSON() ([]byte, error) {
	r := d.Edge.ToRecord()
	style := d.Style
	r.Style = &style
	r.Animated = d.Style.Animated
	return json.Marshal(r)
}
