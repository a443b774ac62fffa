package valueobjects

import (
	"math"

	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// Position is a point in canvas space
type Position struct {
	X float64 `json:"x" dynamodbav:"x"`
	Y float64 `json:"y" dynamodbav:"y"`
}

// NewPosition rejects NaN and infinite coordinates
func NewPosition(x, y float64) (Position, error) {
	if !finite(x) || !finite(y) {
		return Position{}, pkgerrors.NewValidationError("position coordinates must be finite")
	}
	return Position{X: x, Y: y}, nil
}

// Translate returns the position moved by dx, dy
func (p Position) Translate(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Viewport is the canvas pan and zoom saved alongside the graph
type Viewport struct {
	X    float64 `json:"x" dynamodbav:"x"`
	Y    float64 `json:"y" dynamodbav:"y"`
	Zoom float64 `json:"zoom" dynamodbav:"zoom"`
}

// DefaultViewport is the viewport of a case that was never saved
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Zoom: 1}
}

// NewViewport validates pan and zoom
func NewViewport(x, y, zoom float64) (Viewport, error) {
	if !finite(x) || !finite(y) || !finite(zoom) {
		return Viewport{}, pkgerrors.NewValidationError("viewport values must be finite")
	}
	if zoom <= 0 {
		return Viewport{}, pkgerrors.NewValidationError("viewport zoom must be positive")
	}
	return Viewport{X: x, Y: y, Zoom: zoom}, nil
}

// Normalize replaces an unusable zoom with 1
func (v Viewport) Normalize() Viewport {
	if !finite(v.Zoom) || v.Zoom <= 0 {
		v.Zoom = 1
	}
	if !finite(v.X) {
		v.X = 0
	}
	if !finite(v.Y) {
		v.Y = 0
	}
	return v
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
