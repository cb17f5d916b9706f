package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/vesta-spread-service/internal/vesta"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
}

// IsZero reports whether no coordinates were supplied.
func (g Geo) IsZero() bool {
	return g.Lat == 0 && g.Lon == 0
}

// WeatherObservation is one parsed fire weather record.
type WeatherObservation struct {
	Station       string    `json:"station,omitempty"`
	ObservedAt    time.Time `json:"observed_at"`
	Geo           Geo       `json:"geo"`
	WindSpeed     float64   `json:"wind_speed"`
	FuelMoisture  float64   `json:"fuel_moisture"`
	DroughtFactor float64   `json:"drought_factor"`
	DroughtIndex  *float64  `json:"drought_index,omitempty"` // nil uses the scenario default
}

// SpreadPrediction is a weather observation evaluated against a scenario.
type SpreadPrediction struct {
	ID          string             `json:"id"`
	Observation WeatherObservation `json:"observation"`
	Inputs      vesta.Point        `json:"inputs"`
	Spread      vesta.Result       `json:"spread"`
	TimeBucket  time.Time          `json:"time_bucket"`

	// Reverse geocoding enrichment.
	PlaceName        string `json:"place_name,omitempty"`
	FormattedAddress string `json:"formatted_address,omitempty"`
	PlaceSource      string `json:"place_source,omitempty"` // "reverse", "original", "failed"

	ProcessedAt time.Time `json:"processed_at"`
}
