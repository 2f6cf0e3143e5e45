package stationcsv_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/accuritas/voyagemap/internal/adapters/stationcsv"
	"github.com/accuritas/voyagemap/internal/core/domain"
)

func readAll(t *testing.T, r *stationcsv.Reader) ([]domain.Station, int) {
	t.Helper()
	var (
		out     []domain.Station
		skipped int
	)
	for {
		s, err := r.Next()
		if err == io.EOF {
			return out, skipped
		}
		if errors.Is(err, stationcsv.ErrBadRow) {
			skipped++
			continue
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, s)
	}
}

func TestReader_COOP(t *testing.T) {
	data := "OBJECTID,NAME,LAT_DEC,LON_DEC,ELEV,BEGINS,ENDS\n" +
		"7,Sterling,38.98,-77.47,290,19480101,-99991231\n" +
		"8,Ashburn,39.04,-77.49,,19600101,\n"

	r, err := stationcsv.NewReader(domain.StationCOOP, strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, skipped := readAll(t, r)
	if skipped != 0 || len(got) != 2 {
		t.Fatalf("got %d stations, %d skipped", len(got), skipped)
	}

	s := got[0]
	if s.ID != 7 || s.Kind != domain.StationCOOP || s.Name != "Sterling" {
		t.Errorf("station = %+v", s)
	}
	if s.Location.Lat != 38.98 || s.Location.Lon != -77.47 {
		t.Errorf("location = %+v", s.Location)
	}
	if s.ElevationFeet == nil || *s.ElevationFeet != 290 {
		t.Errorf("elevation = %v", s.ElevationFeet)
	}
	if s.Begins == nil || *s.Begins != 19480101 {
		t.Errorf("begins = %v", s.Begins)
	}
	if s.Ends == nil || *s.Ends != -99991231 {
		t.Errorf("ends = %v", s.Ends)
	}
	if s.Attributes["NAME"] != "Sterling" || len(s.Attributes) != 7 {
		t.Errorf("attributes = %v", s.Attributes)
	}

	if got[1].ElevationFeet != nil || got[1].Ends != nil {
		t.Errorf("blank columns should be nil: %+v", got[1])
	}
}

func TestReader_NOSISODates(t *testing.T) {
	data := "OBJECTID,NAME,LAT_DEC,LON_DEC,Install_Date,Removal_Date\n" +
		"1,Lewisetta,37.99,-76.46,1974-06-01 00:00:00,2001-12-31\n"

	r, err := stationcsv.NewReader(domain.StationNOS, strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	s, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if s.Begins == nil || *s.Begins != 19740601 {
		t.Errorf("begins = %v", s.Begins)
	}
	if s.Ends == nil || *s.Ends != 20011231 {
		t.Errorf("ends = %v", s.Ends)
	}
	if s.ElevationFeet != nil {
		t.Errorf("NOS has no elevation column, got %v", *s.ElevationFeet)
	}
}

func TestReader_SkipsBadRows(t *testing.T) {
	data := "\ufeffOBJECTID,NAME,LAT_DEC,LON_DEC\n" +
		"x,Bad id,10,10\n" +
		"2,Bad lat,95,10\n" +
		"3,Good,10,10\n"

	r, err := stationcsv.NewReader(domain.StationNWS, strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if f := r.Fields(); len(f) != 4 || f[0] != "OBJECTID" {
		t.Errorf("fields = %v", f)
	}
	got, skipped := readAll(t, r)
	if skipped != 2 || len(got) != 1 || got[0].ID != 3 {
		t.Errorf("got %+v, %d skipped", got, skipped)
	}
}

func TestNewReader_MissingColumn(t *testing.T) {
	_, err := stationcsv.NewReader(domain.StationASOS, strings.NewReader("OBJECTID,NAME,LAT_DEC\n"))
	if err == nil || !strings.Contains(err.Error(), "LON_DEC") {
		t.Errorf("expected missing LON_DEC error, got %v", err)
	}
}

func TestColumnsFor_Spotters(t *testing.T) {
	if _, err := stationcsv.ColumnsFor(domain.StationSpotters); !errors.Is(err, domain.ErrUnknownLayer) {
		t.Errorf("expected ErrUnknownLayer, got %v", err)
	}
}
