// Package stationcsv reads station catalogue exports. Each catalogue is a CSV
// file with a header line; the column layout differs per network.
package stationcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// ErrBadRow marks a record that cannot be turned into a station. The caller
// may skip it and keep reading.
var ErrBadRow = errors.New("bad catalogue row")

// Columns names the header columns that carry a station's core values.
// Empty names are absent from that catalogue.
type Columns struct {
	ID        string
	Name      string
	Lat       string
	Lon       string
	Elevation string
	Begins    string
	Ends      string
}

var columnsByKind = map[domain.StationKind]Columns{
	domain.StationNOS:  {ID: "OBJECTID", Name: "NAME", Lat: "LAT_DEC", Lon: "LON_DEC", Begins: "Install_Date", Ends: "Removal_Date"},
	domain.StationCOOP: {ID: "OBJECTID", Name: "NAME", Lat: "LAT_DEC", Lon: "LON_DEC", Elevation: "ELEV", Begins: "BEGINS", Ends: "ENDS"},
	domain.StationASOS: {ID: "OBJECTID", Name: "NAME", Lat: "LAT_DEC", Lon: "LON_DEC", Elevation: "ELEV", Begins: "COMMISH_DATE"},
	domain.StationAWOS: {ID: "OBJECTID", Name: "NAME", Lat: "LAT_DEC", Lon: "LON_DEC", Elevation: "ELEV"},
	domain.StationCRN:  {ID: "OBJECTID", Name: "NAME", Lat: "LAT_DEC", Lon: "LON_DEC", Elevation: "ELEV", Begins: "StartDate"},
	domain.StationNWS:  {ID: "OBJECTID", Name: "NAME", Lat: "LAT_DEC", Lon: "LON_DEC"},
}

// ColumnsFor returns the column layout of kind's catalogue.
func ColumnsFor(kind domain.StationKind) (Columns, error) {
	c, ok := columnsByKind[kind]
	if !ok {
		return Columns{}, fmt.Errorf("%w: no catalogue for %s", domain.ErrUnknownLayer, kind)
	}
	return c, nil
}

// Reader decodes one catalogue into stations.
type Reader struct {
	kind   domain.StationKind
	cols   Columns
	csv    *csv.Reader
	header []string
	index  map[string]int
	line   int
}

// NewReader reads the header of r and checks it carries the id and
// coordinate columns of kind.
func NewReader(kind domain.StationKind, r io.Reader) (*Reader, error) {
	cols, err := ColumnsFor(kind)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	index := indexColumns(header)
	for _, name := range []string{cols.ID, cols.Lat, cols.Lon} {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%s catalogue: missing column %q", kind, name)
		}
	}

	return &Reader{kind: kind, cols: cols, csv: cr, header: header, index: index, line: 1}, nil
}

// Fields returns the catalogue's column names in file order.
func (r *Reader) Fields() []string {
	out := make([]string, len(r.header))
	copy(out, r.header)
	return out
}

// Next returns the next station. It returns io.EOF after the last record
// and an error wrapping ErrBadRow for a record that cannot be decoded.
func (r *Reader) Next() (domain.Station, error) {
	record, err := r.csv.Read()
	r.line++
	if err == io.EOF {
		return domain.Station{}, io.EOF
	}
	if err != nil {
		return domain.Station{}, fmt.Errorf("%w: line %d: %v", ErrBadRow, r.line, err)
	}

	s, err := r.decode(record)
	if err != nil {
		return domain.Station{}, fmt.Errorf("%w: line %d: %v", ErrBadRow, r.line, err)
	}
	return s, nil
}

func (r *Reader) decode(record []string) (domain.Station, error) {
	id, err := strconv.ParseInt(getField(record, r.index, r.cols.ID), 10, 64)
	if err != nil {
		return domain.Station{}, fmt.Errorf("%s: %w", r.cols.ID, err)
	}
	lat, err := strconv.ParseFloat(getField(record, r.index, r.cols.Lat), 64)
	if err != nil || lat < -90 || lat > 90 {
		return domain.Station{}, fmt.Errorf("%s: bad latitude %q", r.cols.Lat, getField(record, r.index, r.cols.Lat))
	}
	lon, err := strconv.ParseFloat(getField(record, r.index, r.cols.Lon), 64)
	if err != nil || lon < -180 || lon > 180 {
		return domain.Station{}, fmt.Errorf("%s: bad longitude %q", r.cols.Lon, getField(record, r.index, r.cols.Lon))
	}

	s := domain.Station{
		ID:         id,
		Kind:       r.kind,
		Name:       getField(record, r.index, r.cols.Name),
		Location:   domain.GeoPoint{Lat: lat, Lon: lon},
		Attributes: make(map[string]string, len(r.header)),
	}
	if v := getField(record, r.index, r.cols.Elevation); v != "" {
		if ft, err := strconv.ParseFloat(v, 64); err == nil {
			s.ElevationFeet = &ft
		}
	}
	if s.Begins, err = parseDate(getField(record, r.index, r.cols.Begins)); err != nil {
		return domain.Station{}, fmt.Errorf("%s: %w", r.cols.Begins, err)
	}
	if s.Ends, err = parseDate(getField(record, r.index, r.cols.Ends)); err != nil {
		return domain.Station{}, fmt.Errorf("%s: %w", r.cols.Ends, err)
	}
	for i, name := range r.header {
		if i < len(record) {
			s.Attributes[name] = strings.TrimSpace(record[i])
		}
	}
	return s, nil
}

// parseDate accepts yyyymmdd integers, which may be negative in COOP's end
// column, and ISO dates with an optional time part.
func parseDate(v string) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return &n, nil
	}
	if len(v) > 10 {
		v = v[:10]
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("bad date %q", v)
	}
	n := int64(t.Year()*10000 + int(t.Month())*100 + t.Day())
	return &n, nil
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		m[h] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	if name == "" {
		return ""
	}
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
