// Package raster draws a displayed evidence map into a PNG image.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/services"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// MaxDimension bounds the width and height of a rendered image in pixels
const MaxDimension = 8192

var (
	background     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	highlightColor = color.RGBA{R: 0xfa, G: 0xcc, B: 0x15, A: 0xff}
	editingColor   = color.RGBA{R: 0x0e, G: 0xa5, B: 0xe9, A: 0xff}

	kindColors = map[valueobjects.NodeKind]color.RGBA{
		valueobjects.KindClaim:    {R: 0x25, G: 0x63, B: 0xeb, A: 0xff},
		valueobjects.KindFact:     {R: 0xf5, G: 0x9e, B: 0x0b, A: 0xff},
		valueobjects.KindEvidence: {R: 0x10, G: 0xb9, B: 0x81, A: 0xff},
		valueobjects.KindLaw:      {R: 0x8b, G: 0x5c, B: 0xf6, A: 0xff},
	}
)

// PNGRasterizer implements ports.Rasterizer. Nodes are drawn as boxes tinted
// by kind and edges as straight lines between box centres.
type PNGRasterizer struct {
	sizer  services.NodeSizer
	scale  float64
	logger *zap.Logger
}

// NewPNGRasterizer creates a rasterizer drawing scale pixels per canvas unit
func NewPNGRasterizer(sizer services.NodeSizer, scale float64, logger *zap.Logger) *PNGRasterizer {
	if sizer == nil {
		sizer = services.DefaultNodeSizes
	}
	if scale <= 0 {
		scale = 1
	}
	return &PNGRasterizer{sizer: sizer, scale: scale, logger: logger}
}

// Rasterize draws exactly rect of view
func (r *PNGRasterizer) Rasterize(ctx context.Context, view services.DisplayedView, rect services.Rect) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	width := int(math.Ceil(rect.Width() * r.scale))
	height := int(math.Ceil(rect.Height() * r.scale))
	if width <= 0 || height <= 0 {
		return nil, pkgerrors.NewValidationError("export area is empty")
	}
	if width > MaxDimension || height > MaxDimension {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("export area %dx%d exceeds %d pixels", width, height, MaxDimension))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	boxes := make(map[valueobjects.NodeID]image.Rectangle, len(view.Nodes))
	for _, dn := range view.Nodes {
		p := dn.Node.Position()
		s := r.sizer.SizeOf(dn.Node)
		boxes[dn.Node.ID()] = image.Rect(
			r.toPixel(p.X-rect.MinX), r.toPixel(p.Y-rect.MinY),
			r.toPixel(p.X+s.Width-rect.MinX), r.toPixel(p.Y+s.Height-rect.MinY),
		)
	}

	for _, de := range view.Edges {
		from, okFrom := boxes[de.Edge.Source()]
		to, okTo := boxes[de.Edge.Target()]
		if !okFrom || !okTo {
			continue
		}
		drawLine(img, center(from), center(to), parseHex(de.Style.Stroke), parseDash(de.Style.StrokeDasharray, r.scale))
	}

	for _, dn := range view.Nodes {
		box := boxes[dn.Node.ID()]
		base, ok := kindColors[dn.Node.Kind()]
		if !ok {
			base = kindColors[valueobjects.KindFact]
		}
		draw.Draw(img, box, &image.Uniform{C: tint(base)}, image.Point{}, draw.Src)

		border, thickness := base, 2
		switch {
		case dn.UI.Editing:
			border, thickness = editingColor, 4
		case dn.UI.IsHighlighted:
			border, thickness = highlightColor, 4
		}
		strokeRect(img, box, border, thickness)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode image").WithCause(err)
	}

	r.logger.Debug("Rasterized evidence map",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("nodes", len(view.Nodes)))
	return buf.Bytes(), nil
}

func (r *PNGRasterizer) toPixel(v float64) int {
	return int(math.Round(v * r.scale))
}

func center(b image.Rectangle) image.Point {
	return image.Pt((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2)
}

// tint mixes c with 80% white
func tint(c color.RGBA) color.RGBA {
	mix := func(v uint8) uint8 { return v + uint8(float64(0xff-v)*0.8) }
	return color.RGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: 0xff}
}

func strokeRect(img *image.RGBA, box image.Rectangle, c color.RGBA, thickness int) {
	u := &image.Uniform{C: c}
	for i := 0; i < thickness; i++ {
		draw.Draw(img, image.Rect(box.Min.X, box.Min.Y+i, box.Max.X, box.Min.Y+i+1), u, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(box.Min.X, box.Max.Y-i-1, box.Max.X, box.Max.Y-i), u, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(box.Min.X+i, box.Min.Y, box.Min.X+i+1, box.Max.Y), u, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(box.Max.X-i-1, box.Min.Y, box.Max.X-i, box.Max.Y), u, image.Point{}, draw.Src)
	}
}

// drawLine is Bresenham with a two pixel pen. dash alternates on and off run
// lengths in pixels; an empty dash draws a solid line.
func drawLine(img *image.RGBA, a, b image.Point, c color.RGBA, dash []int) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	e := dx + dy
	x, y := a.X, a.Y
	for step := 0; ; step++ {
		if on(dash, step) {
			img.SetRGBA(x, y, c)
			img.SetRGBA(x+1, y, c)
			img.SetRGBA(x, y+1, c)
		}
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func on(dash []int, step int) bool {
	if len(dash) == 0 {
		return true
	}
	period := 0
	for _, d := range dash {
		period += d
	}
	pos := step % period
	for i, d := range dash {
		if pos < d {
			return i%2 == 0
		}
		pos -= d
	}
	return true
}

func parseDash(s string, scale float64) []int {
	if s == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v <= 0 {
			return nil
		}
		out = append(out, int(math.Max(1, math.Round(v*scale))))
	}
	if len(out)%2 == 1 {
		out = append(out, out...)
	}
	return out
}

func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.RGBA{R: 0x64, G: 0x74, B: 0x8b, A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
