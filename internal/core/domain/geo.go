package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84).
// Lon is not range-restricted: rectified track coordinates may lie outside
// [-180, 180].
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Segment is a directed pair of points drawn as one polyline part.
type Segment struct {
	From GeoPoint `json:"from"`
	To   GeoPoint `json:"to"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Envelope is an axis-aligned box in map units. An envelope whose minimum
// exceeds its maximum is empty.
type Envelope struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// EmptyEnvelope returns an envelope that contains nothing and acts as the
// identity for Union.
func EmptyEnvelope() Envelope {
	return Envelope{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// EnvelopeOf returns the smallest envelope containing every point, using
// Lon as x and Lat as y.
func EnvelopeOf(points ...GeoPoint) Envelope {
	e := EmptyEnvelope()
	for _, p := range points {
		e = e.ExpandTo(p.Lon, p.Lat)
	}
	return e
}

func (e Envelope) IsEmpty() bool {
	return e.MinX > e.MaxX || e.MinY > e.MaxY
}

func (e Envelope) Width() float64 {
	if e.IsEmpty() {
		return 0
	}
	return e.MaxX - e.MinX
}

func (e Envelope) Height() float64 {
	if e.IsEmpty() {
		return 0
	}
	return e.MaxY - e.MinY
}

// Centroid returns the center of the envelope.
func (e Envelope) Centroid() (x, y float64) {
	return (e.MinX + e.MaxX) / 2, (e.MinY + e.MaxY) / 2
}

// ExpandTo grows the envelope to include (x, y).
func (e Envelope) ExpandTo(x, y float64) Envelope {
	e.MinX = math.Min(e.MinX, x)
	e.MinY = math.Min(e.MinY, y)
	e.MaxX = math.Max(e.MaxX, x)
	e.MaxY = math.Max(e.MaxY, y)
	return e
}

// Union returns the smallest envelope containing both e and o.
func (e Envelope) Union(o Envelope) Envelope {
	switch {
	case o.IsEmpty():
		return e
	case e.IsEmpty():
		return o
	}
	return Envelope{
		MinX: math.Min(e.MinX, o.MinX),
		MinY: math.Min(e.MinY, o.MinY),
		MaxX: math.Max(e.MaxX, o.MaxX),
		MaxY: math.Max(e.MaxY, o.MaxY),
	}
}

// Viewport is the visible extent of a map: a center and dimensions in the
// map units of the active projection.
type Viewport struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Envelope returns the rectangle covered by the viewport.
func (v Viewport) Envelope() Envelope {
	return Envelope{
		MinX: v.CenterX - v.Width/2,
		MinY: v.CenterY - v.Height/2,
		MaxX: v.CenterX + v.Width/2,
		MaxY: v.CenterY + v.Height/2,
	}
}

// ViewportOf returns the viewport covering an envelope exactly.
func ViewportOf(e Envelope) Viewport {
	x, y := e.Centroid()
	return Viewport{CenterX: x, CenterY: y, Width: e.Width(), Height: e.Height()}
}
