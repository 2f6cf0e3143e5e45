package domain

import (
	"fmt"
	"strings"
)

// StationKind is a meteorological station network. Each kind is stored as
// its own map layer, named after the kind.
type StationKind string

const (
	StationNOS      StationKind = "NOS"
	StationCOOP     StationKind = "COOP"
	StationASOS     StationKind = "ASOS"
	StationAWOS     StationKind = "AWOS"
	StationCRN      StationKind = "CRN"
	StationNWS      StationKind = "NWS"
	StationSpotters StationKind = "Spotters"
)

// StationKinds lists every kind in caption order.
var StationKinds = []StationKind{
	StationNOS, StationCOOP, StationASOS, StationAWOS, StationCRN, StationNWS, StationSpotters,
}

// ParseStationKind matches s case-insensitively against the known kinds.
func ParseStationKind(s string) (StationKind, error) {
	for _, k := range StationKinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLayer, s)
}

// Layer returns the map layer holding stations of kind k.
func (k StationKind) Layer() Layer {
	return Layer(k)
}

// ElevationUnknown is the sentinel COOP uses for stations without a surveyed
// elevation.
const ElevationUnknown = 9999

// Station is one row of a station catalogue layer. ID is the catalogue's
// object id and is dense within a kind. Begins and Ends bound the dates
// (yyyymmdd) the station was in service, where the catalogue records them.
type Station struct {
	ID            int64             `json:"id"`
	Kind          StationKind       `json:"kind"`
	Name          string            `json:"name"`
	Location      GeoPoint          `json:"location"`
	ElevationFeet *float64          `json:"elevation_ft,omitempty"`
	Begins        *int64            `json:"begins,omitempty"`
	Ends          *int64            `json:"ends,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// Spotter is a user-supplied observer location placed on a forensic map.
type Spotter struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
}

// ForensicMapRequest asks for a station context map around a point of
// interest. Date is yyyymmdd and selects the stations active on that day.
type ForensicMapRequest struct {
	Title       string    `json:"title,omitempty"`
	Location    GeoPoint  `json:"location"`
	RadiusMiles float64   `json:"radius_miles"`
	Date        int64     `json:"date"`
	NOS         bool      `json:"nos"`
	COOP        bool      `json:"coop"`
	ASOS        bool      `json:"asos"`
	NWS         bool      `json:"nws"`
	Spotters    []Spotter `json:"spotters,omitempty"`
}

// HiddenLayers returns the station layers the request leaves switched off.
// AWOS and CRN follow the ASOS flag.
func (r ForensicMapRequest) HiddenLayers() []Layer {
	var hidden []Layer
	flags := []struct {
		on    bool
		kinds []StationKind
	}{
		{r.NOS, []StationKind{StationNOS}},
		{r.COOP, []StationKind{StationCOOP}},
		{r.ASOS, []StationKind{StationASOS, StationAWOS, StationCRN}},
		{r.NWS, []StationKind{StationNWS}},
	}
	for _, f := range flags {
		if f.on {
			continue
		}
		for _, k := range f.kinds {
			hidden = append(hidden, k.Layer())
		}
	}
	return hidden
}

// StationRef identifies one station on one layer.
type StationRef struct {
	Kind StationKind `json:"kind"`
	ID   int64       `json:"id"`
}

// CaptionRow is one line of a forensic map caption.
type CaptionRow struct {
	Name          string  `json:"name"`
	Elevation     string  `json:"elevation"`
	DistanceMiles float64 `json:"distance_mi"`
	Layer         string  `json:"layer,omitempty"`
	StationID     string  `json:"station_id,omitempty"`
}

// Caption lists the point of interest and every visible station in frame.
type Caption struct {
	MapID string       `json:"map_id"`
	Rows  []CaptionRow `json:"rows"`
}

// String renders the caption as tab-separated text with a header line.
func (c Caption) String() string {
	var sb strings.Builder
	sb.WriteString("Name\tElevation\tDistance\n")
	for _, r := range c.Rows {
		sb.WriteString(r.Name)
		sb.WriteByte('\t')
		sb.WriteString(r.Elevation)
		sb.WriteByte('\t')
		fmt.Fprintf(&sb, "%.2fmi", r.DistanceMiles)
		sb.WriteByte('\t')
		sb.WriteString(r.Layer)
		sb.WriteByte('\t')
		sb.WriteString(r.StationID)
		sb.WriteByte('\n')
	}
	return sb.String()
}
