package geospatial

import "github.com/accuritas/voyagemap/internal/core/domain"

// SelectMeridian picks the central meridian that keeps a route from tearing
// across the edge of the map. With no ports it returns 0; with one port it
// returns that port's longitude; otherwise it averages the first and last
// ports and turns the result half a revolution if any track segment crosses
// the antimeridian.
func SelectMeridian(ports []domain.GeoPoint, tracks [][]domain.Segment) (float64, error) {
	for _, p := range ports {
		if err := CheckPoint(p); err != nil {
			return 0, err
		}
	}
	switch len(ports) {
	case 0:
		return 0, nil
	case 1:
		return ports[0].Lon, nil
	}

	avg := (ports[0].Lon + ports[len(ports)-1].Lon) / 2
	for _, track := range tracks {
		for _, s := range track {
			if CrossesAntimeridian(s) {
				return avg - 180, nil
			}
		}
	}
	return avg, nil
}

// CrossesAntimeridian reports whether s straddles x = 180 as stored, or is a
// raw signed-longitude segment that jumps across it.
func CrossesAntimeridian(s domain.Segment) bool {
	from, to := s.From.Lon, s.To.Lon
	if (from <= 180 && to >= 180) || (to <= 180 && from >= 180) {
		return true
	}
	return Classify(from, to).IsAntimeridian()
}
