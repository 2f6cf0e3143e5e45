package geospatial

import (
	"fmt"
	"math"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// DefaultMarginRatio is the share of the target size added around it when
// framing.
const DefaultMarginRatio = 0.15

// Reframe centers current on target and, if current is larger than target
// plus margin in both dimensions, shrinks it isotropically to fit. A viewport
// is never enlarged. An empty target leaves current unchanged, and a target
// with no area only moves the center.
func Reframe(current domain.Viewport, target domain.Envelope, marginRatio float64) (domain.Viewport, error) {
	if err := checkViewport(current); err != nil {
		return current, err
	}
	if !finite(marginRatio) || marginRatio < 0 {
		return current, fmt.Errorf("margin ratio %v must be non-negative", marginRatio)
	}
	if target.IsEmpty() {
		return current, nil
	}
	if !finite(target.MinX) || !finite(target.MinY) || !finite(target.MaxX) || !finite(target.MaxY) {
		return current, fmt.Errorf("%w: envelope %+v", ErrInvalidCoordinate, target)
	}

	next := current
	next.CenterX, next.CenterY = target.Centroid()

	w, h := target.Width(), target.Height()
	if w == 0 && h == 0 {
		return next, nil
	}
	mw, mh := w*marginRatio, h*marginRatio

	if current.Width > w+mw && current.Height > h+mh {
		ratio := math.Max((w+mw)/(2*current.Width), (h+mh)/current.Height)
		next.Width = current.Width * ratio
		next.Height = current.Height * ratio
	}
	return next, nil
}

// FrameRadius centers current on (x, y) and scales it so a circle of the
// given radius fits the shorter side.
func FrameRadius(current domain.Viewport, x, y, radius float64) (domain.Viewport, error) {
	if err := checkViewport(current); err != nil {
		return current, err
	}
	if !finite(x) || !finite(y) {
		return current, fmt.Errorf("%w: center (%v, %v)", ErrInvalidCoordinate, x, y)
	}
	if !finite(radius) || radius <= 0 {
		return current, fmt.Errorf("radius %v must be positive", radius)
	}
	if current.Width <= 0 || current.Height <= 0 {
		return current, fmt.Errorf("viewport %vx%v has no area", current.Width, current.Height)
	}
	scale := math.Max(2*radius/current.Width, 2*radius/current.Height)
	return domain.Viewport{
		CenterX: x,
		CenterY: y,
		Width:   current.Width * scale,
		Height:  current.Height * scale,
	}, nil
}

func checkViewport(v domain.Viewport) error {
	if !finite(v.CenterX) || !finite(v.CenterY) || !finite(v.Width) || !finite(v.Height) ||
		v.Width < 0 || v.Height < 0 {
		return fmt.Errorf("%w: viewport %+v", ErrInvalidCoordinate, v)
	}
	return nil
}
