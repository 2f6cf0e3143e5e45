package usecases

import (
	"fmt"
	"strings"
	"time"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

const (
	portDateLayout   = "02 Jan 1504"
	actualDateLayout = "02/1504"
)

// trackState is the accumulator threaded through BuildTrack.
type trackState struct {
	last      domain.GeoPoint
	lastType  domain.PositionType
	estimated bool
}

// BuildTrack folds a voyage's position reports into map layers:
//   - ports: departure, arrival and actual-fix labels;
//   - progress: segments sailed so far;
//   - projected: segments from the first estimated position onward;
//   - waypoints: one marker per report.
//
// No segment joins an arrival to the following departure. Longitudes are
// rectified against the crossing summary of the whole route.
func BuildTrack(vesselName string, details []domain.VoyageDetail) (domain.Track, error) {
	points := make([]domain.GeoPoint, len(details))
	for i, d := range details {
		if err := geospatial.CheckPoint(d.Point()); err != nil {
			return domain.Track{}, fmt.Errorf("voyage detail %d: %w", d.ID, err)
		}
		points[i] = d.Point()
	}
	crossing := geospatial.ScanCrossings(points)

	var (
		track domain.Track
		state trackState
	)
	for _, d := range details {
		next, err := state.step(&track, d, vesselName, crossing)
		if err != nil {
			return domain.Track{}, fmt.Errorf("voyage detail %d: %w", d.ID, err)
		}
		state = next
	}
	return track, nil
}

func (s trackState) step(t *domain.Track, d domain.VoyageDetail, vesselName string, g geospatial.GlobalCrossing) (trackState, error) {
	p := d.Point()
	date := formatDate(d.Date, portDateLayout)

	if d.Type.IsDeparture() {
		t.Ports = append(t.Ports, portFeature(p, portLabel(d, date)))
	}
	if d.Type.Is(domain.PositionActual) {
		t.Ports = append(t.Ports, portFeature(p, formatDate(d.Date, actualDateLayout)))
	}

	if d.ID == 1 && d.Type.Is(domain.PositionETD) {
		s.estimated = true
	}

	if d.ID > 1 && s.lastType != "" && !inPortGap(s.lastType, d.Type) {
		if d.Type.Is(domain.PositionETD) || d.Type.Is(domain.PositionCP) || d.Type.Is(domain.PositionETA) {
			s.estimated = true
		}
		seg, err := geospatial.Rectify(s.last, p, g)
		if err != nil {
			return s, err
		}
		if s.estimated {
			t.Projected = append(t.Projected, domain.SegmentFeature(domain.LayerProjected, seg))
		} else {
			t.Progress = append(t.Progress, domain.SegmentFeature(domain.LayerProgress, seg))
		}
	}

	s.last = p
	s.lastType = d.Type

	if d.Type.IsArrival() {
		t.Ports = append(t.Ports, portFeature(p, portLabel(d, date)))
	}

	name := date
	if vesselName != "" {
		name = vesselName + "\n" + date
	}
	t.Waypoints = append(t.Waypoints, domain.PointFeature(domain.LayerWaypoints, p, map[string]any{
		"name":         name,
		"vesselName":   vesselName,
		"positionType": string(d.Type),
		"positionDate": date,
	}))
	return s, nil
}

// inPortGap reports whether prev→curr spans a port call (an arrival followed
// by a departure), which is not sailed and so not drawn.
func inPortGap(prev, curr domain.PositionType) bool {
	return strings.Contains(strings.ToUpper(string(prev)), "TA") &&
		strings.Contains(strings.ToUpper(string(curr)), "TD")
}

func portFeature(p domain.GeoPoint, label string) domain.Feature {
	return domain.PointFeature(domain.LayerPorts, p, map[string]any{"label": label})
}

func portLabel(d domain.VoyageDetail, date string) string {
	label := string(d.Type) + ": " + date
	if d.Name != "" {
		label = d.Name + "\n" + label
	}
	return label
}

func formatDate(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(layout) + "Z"
}
