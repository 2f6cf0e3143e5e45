// Package geojson converts map features to and from GeoJSON.
package geojson

import (
	"encoding/json"
	"fmt"

	gj "github.com/paulmach/go.geojson"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// Geometry returns the GeoJSON geometry of a feature's points: a Point for
// one vertex, otherwise a LineString.
func Geometry(points []domain.GeoPoint) (*gj.Geometry, error) {
	switch len(points) {
	case 0:
		return nil, fmt.Errorf("%w: feature without coordinates", domain.ErrInvalidRequest)
	case 1:
		return gj.NewPointGeometry(position(points[0])), nil
	}
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = position(p)
	}
	return gj.NewLineStringGeometry(coords), nil
}

// MarshalGeometry encodes a feature's points for ST_GeomFromGeoJSON.
func MarshalGeometry(points []domain.GeoPoint) ([]byte, error) {
	g, err := Geometry(points)
	if err != nil {
		return nil, err
	}
	return g.MarshalJSON()
}

// Points flattens a Point, MultiPoint or LineString geometry into its
// vertices.
func Points(g *gj.Geometry) ([]domain.GeoPoint, error) {
	if g == nil {
		return nil, nil
	}
	var coords [][]float64
	switch {
	case g.IsPoint():
		coords = [][]float64{g.Point}
	case g.IsMultiPoint():
		coords = g.MultiPoint
	case g.IsLineString():
		coords = g.LineString
	default:
		return nil, fmt.Errorf("unsupported geometry type %s", g.Type)
	}
	out := make([]domain.GeoPoint, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			return nil, fmt.Errorf("position %v has fewer than two ordinates", c)
		}
		out = append(out, domain.GeoPoint{Lon: c[0], Lat: c[1]})
	}
	return out, nil
}

// FeatureCollection renders an exported map as one collection. Each feature
// carries its layer name and attributes as properties.
func FeatureCollection(export *domain.MapExport) (*gj.FeatureCollection, error) {
	fc := gj.NewFeatureCollection()
	env := domain.EmptyEnvelope()
	for _, lf := range export.Layers {
		for _, f := range lf.Features {
			g, err := Geometry(f.Points)
			if err != nil {
				return nil, fmt.Errorf("%s feature %d: %w", lf.Layer, f.ID, err)
			}
			feature := gj.NewFeature(g)
			if f.ID != 0 {
				feature.ID = f.ID
			}
			for k, v := range f.Attributes {
				feature.SetProperty(k, v)
			}
			feature.SetProperty("layer", string(lf.Layer))
			fc.AddFeature(feature)
			env = env.Union(domain.EnvelopeOf(f.Points...))
		}
	}
	if !env.IsEmpty() {
		fc.BoundingBox = []float64{env.MinX, env.MinY, env.MaxX, env.MaxY}
	}
	return fc, nil
}

// Metadata describes the map a collection was exported from. It is written
// as the "map" member of the collection.
type Metadata struct {
	ID              string           `json:"id"`
	Kind            domain.MapKind   `json:"kind"`
	Title           string           `json:"title,omitempty"`
	DPI             int              `json:"dpi"`
	ImageType       domain.ImageType `json:"image_type"`
	Projected       bool             `json:"projected"`
	CentralMeridian float64          `json:"central_meridian"`
	Viewport        []float64        `json:"viewport"`
}

type collection struct {
	Type        string        `json:"type"`
	BoundingBox []float64     `json:"bbox,omitempty"`
	Features    []*gj.Feature `json:"features"`
	Map         *Metadata     `json:"map,omitempty"`
}

// MetadataOf returns the export metadata of doc. The viewport is given as
// [minX, minY, maxX, maxY] in map units.
func MetadataOf(doc *domain.MapDocument) *Metadata {
	if doc == nil {
		return nil
	}
	env := doc.Viewport.Envelope()
	return &Metadata{
		ID:              doc.ID,
		Kind:            doc.Kind,
		Title:           doc.Title,
		DPI:             doc.DPI,
		ImageType:       doc.ImageType,
		Projected:       doc.Projected,
		CentralMeridian: doc.CentralMeridian,
		Viewport:        []float64{env.MinX, env.MinY, env.MaxX, env.MaxY},
	}
}

// Marshal encodes an exported map as a GeoJSON FeatureCollection carrying
// the map's metadata.
func Marshal(export *domain.MapExport) ([]byte, error) {
	fc, err := FeatureCollection(export)
	if err != nil {
		return nil, err
	}
	out := collection{
		Type:        "FeatureCollection",
		BoundingBox: fc.BoundingBox,
		Features:    fc.Features,
		Map:         MetadataOf(export.Map),
	}
	if out.Features == nil {
		out.Features = []*gj.Feature{}
	}
	return json.Marshal(out)
}

func position(p domain.GeoPoint) []float64 {
	return []float64{p.Lon, p.Lat}
}
