package services

import (
	"fmt"
	"math"
	"time"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
	"github.com/ShabiDHM/advocatus-sub001/pkg/utils"
)

// DefaultExportPadding is added on every side of the node bounds
const DefaultExportPadding = 50.0

// Size is the rendered width and height of a node
type Size struct {
	Width  float64
	Height float64
}

// NodeSizer reports the rendered size of a node
type NodeSizer interface {
	SizeOf(n entities.Node) Size
}

// KindSizer sizes nodes by kind
type KindSizer map[valueobjects.NodeKind]Size

// DefaultNodeSizes approximates the rendered card of each kind
var DefaultNodeSizes = KindSizer{
	valueobjects.KindClaim:    {Width: 250, Height: 120},
	valueobjects.KindFact:     {Width: 220, Height: 90},
	valueobjects.KindEvidence: {Width: 240, Height: 130},
	valueobjects.KindLaw:      {Width: 220, Height: 90},
}

// SizeOf implements NodeSizer. Unknown kinds fall back to the fact size.
func (k KindSizer) SizeOf(n entities.Node) Size {
	if s, ok := k[n.Kind()]; ok {
		return s
	}
	return DefaultNodeSizes[valueobjects.KindFact]
}

// Rect is an axis-aligned rectangle in canvas space
type Rect struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// ComputeBounds returns the box around every node grown by padding on each
// side. With no nodes it fails with ErrNothingToExport.
func ComputeBounds(nodes []entities.Node, sizer NodeSizer, padding float64) (Rect, error) {
	if len(nodes) == 0 {
		return Rect{}, pkgerrors.ErrNothingToExport
	}
	if sizer == nil {
		sizer = DefaultNodeSizes
	}

	r := Rect{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
	for _, n := range nodes {
		p := n.Position()
		s := sizer.SizeOf(n)
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X+s.Width)
		r.MaxY = math.Max(r.MaxY, p.Y+s.Height)
	}

	r.MinX -= padding
	r.MinY -= padding
	r.MaxX += padding
	r.MaxY += padding
	return r, nil
}

// ImageFileName is the name of a PNG export taken at t
func ImageFileName(t time.Time) string {
	return fmt.Sprintf("EvidenceMap_%s.png", utils.DateStamp(t))
}

// ReportFileName is the name of the PDF report of a case
func ReportFileName(caseID valueobjects.CaseID) string {
	return fmt.Sprintf("EvidenceMap_Report_%s.pdf", caseID)
}
