// Command genmock converts a CSV of fire weather observations into the JSON
// fixtures used by the test suites. It runs the real domain package so the
// prediction fixture matches pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/observations.csv \
//	  -raw-out data/mock/observations.json \
//	  -predictions-out data/mock/predictions.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/vesta-spread-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// rawObservation is the source topic message shape.
type rawObservation struct {
	Station       string   `json:"station"`
	Time          string   `json:"time"`
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	WindSpeed     float64  `json:"wind_speed"`
	FuelMoisture  float64  `json:"fuel_moisture"`
	DroughtFactor float64  `json:"drought_factor"`
	DroughtIndex  *float64 `json:"drought_index,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "CSV of station observations")
	rawOut := flag.String("raw-out", "", "output path for raw observation JSON fixture")
	predOut := flag.String("predictions-out", "", "output path for prediction JSON fixture")
	flag.Parse()

	if *csvPath == "" || *rawOut == "" || *predOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -raw-out, -predictions-out")
	}

	// Fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.January, 14, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	records, err := readCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("read %d observations", len(records))

	observations := make([]domain.WeatherObservation, len(records))
	for i, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		observations[i], err = domain.ParseRawEvent(domain.RawEvent{Value: payload})
		if err != nil {
			return fmt.Errorf("record %d (%s): %w", i, rec.Station, err)
		}
	}

	predictions, err := domain.PredictSeries(observations, domain.DefaultScenario())
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}

	if err := writeJSON(*rawOut, records); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*predOut, predictions); err != nil {
		return fmt.Errorf("writing prediction fixture: %w", err)
	}
	log.Printf("wrote prediction fixture: %s", *predOut)

	printStats(predictions)
	return nil
}

func readCSV(path string) ([]rawObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[h] = i
	}

	records := make([]rawObservation, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec := rawObservation{
			Station: get(row, colIdx, "station"),
			Time:    get(row, colIdx, "time"),
		}
		fields := []struct {
			col string
			dst *float64
		}{
			{"lat", &rec.Lat},
			{"lon", &rec.Lon},
			{"wind_speed", &rec.WindSpeed},
			{"fuel_moisture", &rec.FuelMoisture},
			{"drought_factor", &rec.DroughtFactor},
		}
		for _, fld := range fields {
			v, err := strconv.ParseFloat(get(row, colIdx, fld.col), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", n+2, fld.col, err)
			}
			*fld.dst = v
		}
		if s := get(row, colIdx, "drought_index"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: drought_index: %w", n+2, err)
			}
			rec.DroughtIndex = &v
		}
		records = append(records, rec)
	}
	return records, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(predictions []domain.SpreadPrediction) {
	regimes := map[string]int{}
	for _, p := range predictions {
		regimes[string(p.Spread.Regime)]++
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(predictions))
	fmt.Printf("By regime: phase1=%d, phase2=%d, phase3=%d\n",
		regimes["phase1"], regimes["phase2"], regimes["phase3"])

	sorted := append([]domain.SpreadPrediction(nil), predictions...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Spread.RateOfSpread > sorted[j].Spread.RateOfSpread
	})
	fmt.Println("Rate of spread, fastest first:")
	for _, p := range sorted {
		fmt.Printf("  %-16s %-7s %10.3f m/h\n", p.Observation.Station, p.Spread.Regime, p.Spread.RateOfSpread)
	}
}
