package domain

import (
	"fmt"
	"strings"
	"time"
)

// PositionType tags a voyage detail with what kind of fix it is.
type PositionType string

const (
	PositionETD    PositionType = "ETD" // estimated time of departure
	PositionATD    PositionType = "ATD" // actual time of departure
	PositionETA    PositionType = "ETA" // estimated time of arrival
	PositionATA    PositionType = "ATA" // actual time of arrival
	PositionCP     PositionType = "CP"  // current position
	PositionActual PositionType = "A"   // actual noon report
)

// Is reports whether p equals o, ignoring case.
func (p PositionType) Is(o PositionType) bool {
	return strings.EqualFold(string(p), string(o))
}

// IsDeparture reports whether p is ETD or ATD.
func (p PositionType) IsDeparture() bool {
	return p.Is(PositionETD) || p.Is(PositionATD)
}

// IsArrival reports whether p is ETA or ATA.
func (p PositionType) IsArrival() bool {
	return p.Is(PositionETA) || p.Is(PositionATA)
}

// VoyageDetail is a single position report along a voyage. IDs are 1-based
// and give the order of the report within the voyage.
type VoyageDetail struct {
	ID   int          `json:"id"`
	Type PositionType `json:"type"`
	Name string       `json:"name,omitempty"`
	Date *time.Time   `json:"date,omitempty"`
	Lat  float64      `json:"lat"`
	Lon  float64      `json:"lon"`
}

// Point returns the detail's coordinate.
func (d VoyageDetail) Point() GeoPoint {
	return GeoPoint{Lat: d.Lat, Lon: d.Lon}
}

// ImageType is an output format of a rendered map.
type ImageType string

const (
	ImageAI   ImageType = "AI"
	ImageBMP  ImageType = "BMP"
	ImageEMF  ImageType = "EMF"
	ImageGIF  ImageType = "GIF"
	ImageJPEG ImageType = "JPEG"
	ImagePNG  ImageType = "PNG"
	ImagePS   ImageType = "PS"
	ImageSVG  ImageType = "SVG"
	ImageTIFF ImageType = "TIFF"
	ImagePDF  ImageType = "PDF"
)

// ParseImageType returns the image type named by s. An empty string selects PDF.
func ParseImageType(s string) (ImageType, error) {
	if s == "" {
		return ImagePDF, nil
	}
	t := ImageType(strings.ToUpper(s))
	switch t {
	case ImageAI, ImageBMP, ImageEMF, ImageGIF, ImageJPEG, ImagePNG, ImagePS, ImageSVG, ImageTIFF, ImagePDF:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown image type %q", ErrInvalidRequest, s)
}

// MapSize selects the resolution and decorations of an exported map.
type MapSize string

const (
	MapSizeLarge MapSize = "LARGE"
	MapSizeSmall MapSize = "SMALL"
)

// VoyageMapRequest asks for a map of one voyage's track.
type VoyageMapRequest struct {
	VoyageID   string         `json:"voyage_id"`
	VesselName string         `json:"vessel_name"`
	Title      string         `json:"title,omitempty"`
	ImageType  string         `json:"image_type,omitempty"`
	MapSize    MapSize        `json:"map_size,omitempty"`
	Projected  bool           `json:"projected"`
	Details    []VoyageDetail `json:"details"`
}

// MapKind distinguishes voyage maps from forensic station maps.
type MapKind string

const (
	MapKindVoyage   MapKind = "voyage"
	MapKindForensic MapKind = "forensic"
)

// MapDocument is the persisted state of one rendered map.
type MapDocument struct {
	ID              string            `json:"id"`
	Kind            MapKind           `json:"kind"`
	Title           string            `json:"title,omitempty"`
	ImageType       ImageType         `json:"image_type"`
	DPI             int               `json:"dpi"`
	Projected       bool              `json:"projected"`
	CentralMeridian float64           `json:"central_meridian"`
	Viewport        Viewport          `json:"viewport"`
	HiddenLayers    []Layer           `json:"hidden_layers,omitempty"`
	PointOfInterest *GeoPoint         `json:"point_of_interest,omitempty"`
	RadiusMiles     float64           `json:"radius_miles,omitempty"`
	FilterDate      int64             `json:"filter_date,omitempty"`
	ExcludedIDs     map[Layer][]int64 `json:"excluded_ids,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// LayerVisible reports whether l is shown on the map.
func (m *MapDocument) LayerVisible(l Layer) bool {
	for _, h := range m.HiddenLayers {
		if strings.EqualFold(string(h), string(l)) {
			return false
		}
	}
	return true
}

// Layer names a feature layer of a map.
type Layer string

const (
	LayerPorts     Layer = "ports"
	LayerProgress  Layer = "progress"
	LayerProjected Layer = "projected"
	LayerWaypoints Layer = "waypoints"
	LayerPOI       Layer = "POI"
)

// Feature is a point (one coordinate) or polyline (two or more) on a layer.
type Feature struct {
	ID         int64          `json:"id,omitempty"`
	Layer      Layer          `json:"layer"`
	Points     []GeoPoint     `json:"points"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// PointFeature builds a point feature.
func PointFeature(layer Layer, p GeoPoint, attrs map[string]any) Feature {
	return Feature{Layer: layer, Points: []GeoPoint{p}, Attributes: attrs}
}

// SegmentFeature builds a two-vertex polyline feature.
func SegmentFeature(layer Layer, s Segment) Feature {
	return Feature{Layer: layer, Points: []GeoPoint{s.From, s.To}}
}

// IsLine reports whether f is a polyline.
func (f Feature) IsLine() bool {
	return len(f.Points) > 1
}

// Segments returns the consecutive vertex pairs of a polyline.
func (f Feature) Segments() []Segment {
	if len(f.Points) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(f.Points)-1)
	for i := 1; i < len(f.Points); i++ {
		out = append(out, Segment{From: f.Points[i-1], To: f.Points[i]})
	}
	return out
}

// Track is the output of importing a voyage: one feature list per layer.
type Track struct {
	Ports     []Feature `json:"ports"`
	Progress  []Feature `json:"progress"`
	Projected []Feature `json:"projected"`
	Waypoints []Feature `json:"waypoints"`
}

// Layers returns the track's features keyed by layer, in drawing order.
func (t Track) Layers() []LayerFeatures {
	return []LayerFeatures{
		{Layer: LayerPorts, Features: t.Ports},
		{Layer: LayerProgress, Features: t.Progress},
		{Layer: LayerProjected, Features: t.Projected},
		{Layer: LayerWaypoints, Features: t.Waypoints},
	}
}

// LayerFeatures pairs a layer with its features.
type LayerFeatures struct {
	Layer    Layer     `json:"layer"`
	Features []Feature `json:"features"`
}
