package brands

import (
	_ "embed"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

//go:embed stations.csv
var stationsCSV string

// MockStation is one row of the synthetic dataset used when no upstream API
// key is configured. Offsets are in degrees relative to the query point.
type MockStation struct {
	Brand       string
	Street      string
	HouseNumber string
	E5          float64
	E10         float64
	Diesel      float64
	LatOffset   float64
	LngOffset   float64
}

func GetMockStations() ([]MockStation, error) {
	reader := csv.NewReader(strings.NewReader(stationsCSV))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read mock stations")
	}
	if len(records) == 0 {
		return nil, errors.New("mock stations table is empty")
	}

	arr := make([]MockStation, 0, len(records)-1)
	seen := make(map[string]struct{}, len(records))
	for _, record := range records[1:] {
		station, err := fromCSV(record)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load mock station %q", record[0])
		}
		if _, ok := seen[station.Brand]; ok {
			return nil, errors.Newf("duplicate brand detected: %s", station.Brand)
		}
		seen[station.Brand] = struct{}{}
		arr = append(arr, station)
	}

	return arr, nil
}

func fromCSV(record []string) (MockStation, error) {
	if len(record) != 8 {
		return MockStation{}, errors.Newf("expected 8 columns, got %d", len(record))
	}

	floats := make([]float64, 5)
	for i, raw := range record[3:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return MockStation{}, errors.Wrapf(err, "column %d", i+3)
		}
		floats[i] = v
	}

	return MockStation{
		Brand:       record[0],
		Street:      record[1],
		HouseNumber: record[2],
		E5:          floats[0],
		E10:         floats[1],
		Diesel:      floats[2],
		LatOffset:   floats[3],
		LngOffset:   floats[4],
	}, nil
}
