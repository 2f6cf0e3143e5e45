package geospatial

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// pointEpsilon gives point entries a non-zero extent; R-tree rectangles need
// positive side lengths.
const pointEpsilon = 1e-7

// StationIndex answers "which stations lie inside this box" with an R-tree.
type StationIndex struct {
	rtree *rtreego.Rtree
	size  int
}

type indexedStation struct {
	station domain.Station
	order   int
}

// Bounds implements rtreego.Spatial.
func (s *indexedStation) Bounds() rtreego.Rect {
	return rtreego.Point{s.station.Location.Lon, s.station.Location.Lat}.ToRect(pointEpsilon)
}

// NewStationIndex bulk-loads stations. Query results keep the input order.
func NewStationIndex(stations []domain.Station) *StationIndex {
	objs := make([]rtreego.Spatial, 0, len(stations))
	for i, s := range stations {
		objs = append(objs, &indexedStation{station: s, order: i})
	}
	return &StationIndex{rtree: rtreego.NewTree(2, 25, 50, objs...), size: len(stations)}
}

// Len returns the number of indexed stations.
func (x *StationIndex) Len() int {
	return x.size
}

// Within returns the stations whose location lies inside b, edges included.
func (x *StationIndex) Within(b domain.Bounds) []domain.Station {
	if x.size == 0 || b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return nil
	}
	query, err := rtreego.NewRectFromPoints(
		rtreego.Point{b.MinLon - pointEpsilon, b.MinLat - pointEpsilon},
		rtreego.Point{b.MaxLon + pointEpsilon, b.MaxLat + pointEpsilon},
	)
	if err != nil {
		return nil
	}

	hits := x.rtree.SearchIntersect(query)
	found := make([]*indexedStation, 0, len(hits))
	for _, h := range hits {
		s := h.(*indexedStation)
		p := s.station.Location
		if p.Lon < b.MinLon || p.Lon > b.MaxLon || p.Lat < b.MinLat || p.Lat > b.MaxLat {
			continue
		}
		found = append(found, s)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].order < found[j].order })

	out := make([]domain.Station, len(found))
	for i, s := range found {
		out[i] = s.station
	}
	return out
}
