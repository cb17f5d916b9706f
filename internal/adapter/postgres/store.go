package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/vesta-spread-service/internal/domain"
	"github.com/couchcryptid/vesta-spread-service/internal/vesta"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS spread_predictions (
	id                    TEXT PRIMARY KEY,
	station               TEXT NOT NULL DEFAULT '',
	observed_at           TIMESTAMPTZ,
	time_bucket           TIMESTAMPTZ,
	lat                   DOUBLE PRECISION,
	lon                   DOUBLE PRECISION,
	wind_speed            DOUBLE PRECISION NOT NULL,
	fuel_moisture         DOUBLE PRECISION NOT NULL,
	drought_factor        DOUBLE PRECISION NOT NULL,
	drought_index         DOUBLE PRECISION NOT NULL,
	wind_reduction_factor DOUBLE PRECISION NOT NULL,
	fuel_load_surface     DOUBLE PRECISION NOT NULL,
	slope                 DOUBLE PRECISION NOT NULL,
	fhs_elevated          DOUBLE PRECISION NOT NULL,
	height_elevated       DOUBLE PRECISION NOT NULL,
	height_understorey    DOUBLE PRECISION NOT NULL,
	wet_forest            BOOLEAN NOT NULL,
	fuel_availability     DOUBLE PRECISION NOT NULL,
	moisture_effect       DOUBLE PRECISION NOT NULL,
	combined_moisture     DOUBLE PRECISION NOT NULL,
	ros_phase1            DOUBLE PRECISION NOT NULL,
	ros_phase2            DOUBLE PRECISION NOT NULL,
	ros_phase3            DOUBLE PRECISION NOT NULL,
	probability_phase2    DOUBLE PRECISION NOT NULL,
	probability_phase3    DOUBLE PRECISION NOT NULL,
	ros                   DOUBLE PRECISION NOT NULL,
	regime                TEXT NOT NULL,
	place_name            TEXT NOT NULL DEFAULT '',
	formatted_address     TEXT NOT NULL DEFAULT '',
	place_source          TEXT NOT NULL DEFAULT '',
	processed_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS spread_predictions_station_observed_idx
	ON spread_predictions (station, observed_at DESC);
`

const insertPrediction = `
INSERT INTO spread_predictions (
	id, station, observed_at, time_bucket, lat, lon,
	wind_speed, fuel_moisture, drought_factor, drought_index,
	wind_reduction_factor, fuel_load_surface, slope, fhs_elevated, height_elevated,
	height_understorey, wet_forest, fuel_availability, moisture_effect, combined_moisture,
	ros_phase1, ros_phase2, ros_phase3, probability_phase2, probability_phase3,
	ros, regime, place_name, formatted_address, place_source, processed_at
) VALUES (
	:id, :station, :observed_at, :time_bucket, :lat, :lon,
	:wind_speed, :fuel_moisture, :drought_factor, :drought_index,
	:wind_reduction_factor, :fuel_load_surface, :slope, :fhs_elevated, :height_elevated,
	:height_understorey, :wet_forest, :fuel_availability, :moisture_effect, :combined_moisture,
	:ros_phase1, :ros_phase2, :ros_phase3, :probability_phase2, :probability_phase3,
	:ros, :regime, :place_name, :formatted_address, :place_source, :processed_at
)
ON CONFLICT (id) DO NOTHING`

// Store persists spread predictions to Postgres.
// It implements pipeline.BatchLoader.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return NewStore(db, logger), nil
}

// NewStore wraps an existing connection pool.
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// EnsureSchema creates the predictions table and index if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// LoadBatch inserts predictions in one transaction. Predictions already
// stored under the same ID are left untouched, so redelivered batches are safe.
func (s *Store) LoadBatch(ctx context.Context, predictions []domain.SpreadPrediction) error {
	if len(predictions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, insertPrediction)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range predictions {
		res, err := stmt.ExecContext(ctx, toRow(predictions[i]))
		if err != nil {
			return fmt.Errorf("insert prediction %s: %w", predictions[i].ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.logger.Debug("predictions stored", "count", len(predictions), "inserted", inserted)
	return nil
}

// RecentByStation returns the latest stored predictions for a station, newest first.
func (s *Store) RecentByStation(ctx context.Context, station string, limit int) ([]domain.SpreadPrediction, error) {
	const query = `
		SELECT * FROM spread_predictions
		WHERE station = $1
		ORDER BY observed_at DESC NULLS LAST, id
		LIMIT $2`

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, station, limit); err != nil {
		return nil, fmt.Errorf("query predictions for %s: %w", station, err)
	}

	predictions := make([]domain.SpreadPrediction, len(rows))
	for i := range rows {
		predictions[i] = rows[i].toPrediction()
	}
	return predictions, nil
}

// CheckReadiness reports whether the database is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// row is the flattened table form of a prediction.
type row struct {
	ID                  string          `db:"id"`
	Station             string          `db:"station"`
	ObservedAt          sql.NullTime    `db:"observed_at"`
	TimeBucket          sql.NullTime    `db:"time_bucket"`
	Lat                 sql.NullFloat64 `db:"lat"`
	Lon                 sql.NullFloat64 `db:"lon"`
	WindSpeed           float64         `db:"wind_speed"`
	FuelMoisture        float64         `db:"fuel_moisture"`
	DroughtFactor       float64         `db:"drought_factor"`
	DroughtIndex        float64         `db:"drought_index"`
	WindReductionFactor float64         `db:"wind_reduction_factor"`
	FuelLoadSurface     float64         `db:"fuel_load_surface"`
	Slope               float64         `db:"slope"`
	FHSElevated         float64         `db:"fhs_elevated"`
	HeightElevated      float64         `db:"height_elevated"`
	HeightUnderstorey   float64         `db:"height_understorey"`
	WetForest           bool            `db:"wet_forest"`
	FuelAvailability    float64         `db:"fuel_availability"`
	MoistureEffect      float64         `db:"moisture_effect"`
	CombinedMoisture    float64         `db:"combined_moisture"`
	RatePhase1          float64         `db:"ros_phase1"`
	RatePhase2          float64         `db:"ros_phase2"`
	RatePhase3          float64         `db:"ros_phase3"`
	ProbabilityPhase2   float64         `db:"probability_phase2"`
	ProbabilityPhase3   float64         `db:"probability_phase3"`
	RateOfSpread        float64         `db:"ros"`
	Regime              string          `db:"regime"`
	PlaceName           string          `db:"place_name"`
	FormattedAddress    string          `db:"formatted_address"`
	PlaceSource         string          `db:"place_source"`
	ProcessedAt         time.Time       `db:"processed_at"`
}

func toRow(pred domain.SpreadPrediction) row {
	obs := pred.Observation
	r := row{
		ID:                  pred.ID,
		Station:             obs.Station,
		ObservedAt:          nullTime(obs.ObservedAt),
		TimeBucket:          nullTime(pred.TimeBucket),
		WindSpeed:           pred.Inputs.WindSpeed,
		FuelMoisture:        pred.Inputs.FuelMoisture,
		DroughtFactor:       pred.Inputs.DroughtFactor,
		DroughtIndex:        pred.Inputs.DroughtIndex,
		WindReductionFactor: pred.Inputs.WindReductionFactor,
		FuelLoadSurface:     pred.Inputs.FuelLoadSurface,
		Slope:               pred.Inputs.Slope,
		FHSElevated:         pred.Inputs.FHSElevated,
		HeightElevated:      pred.Inputs.HeightElevated,
		HeightUnderstorey:   pred.Spread.HeightUnderstorey,
		WetForest:           pred.Inputs.WetForest,
		FuelAvailability:    pred.Spread.FuelAvailability,
		MoistureEffect:      pred.Spread.MoistureEffect,
		CombinedMoisture:    pred.Spread.CombinedMoisture,
		RatePhase1:          pred.Spread.RatePhase1,
		RatePhase2:          pred.Spread.RatePhase2,
		RatePhase3:          pred.Spread.RatePhase3,
		ProbabilityPhase2:   pred.Spread.ProbabilityPhase2,
		ProbabilityPhase3:   pred.Spread.ProbabilityPhase3,
		RateOfSpread:        pred.Spread.RateOfSpread,
		Regime:              string(pred.Spread.Regime),
		PlaceName:           pred.PlaceName,
		FormattedAddress:    pred.FormattedAddress,
		PlaceSource:         pred.PlaceSource,
		ProcessedAt:         pred.ProcessedAt.UTC(),
	}
	if !obs.Geo.IsZero() {
		r.Lat = sql.NullFloat64{Float64: obs.Geo.Lat, Valid: true}
		r.Lon = sql.NullFloat64{Float64: obs.Geo.Lon, Valid: true}
	}
	return r
}

func (r row) toPrediction() domain.SpreadPrediction {
	di := r.DroughtIndex
	inputs := vesta.Point{
		WindSpeed:           r.WindSpeed,
		FuelMoisture:        r.FuelMoisture,
		DroughtFactor:       r.DroughtFactor,
		DroughtIndex:        r.DroughtIndex,
		WindReductionFactor: r.WindReductionFactor,
		FuelLoadSurface:     r.FuelLoadSurface,
		Slope:               r.Slope,
		FHSElevated:         r.FHSElevated,
		HeightElevated:      r.HeightElevated,
		WetForest:           r.WetForest,
	}
	return domain.SpreadPrediction{
		ID: r.ID,
		Observation: domain.WeatherObservation{
			Station:       r.Station,
			ObservedAt:    r.ObservedAt.Time,
			Geo:           domain.Geo{Lat: r.Lat.Float64, Lon: r.Lon.Float64},
			WindSpeed:     r.WindSpeed,
			FuelMoisture:  r.FuelMoisture,
			DroughtFactor: r.DroughtFactor,
			DroughtIndex:  &di,
		},
		Inputs: inputs,
		Spread: vesta.Result{
			HeightUnderstorey: r.HeightUnderstorey,
			MoistureEffect:    r.MoistureEffect,
			FuelAvailability:  r.FuelAvailability,
			CombinedMoisture:  r.CombinedMoisture,
			RatePhase1:        r.RatePhase1,
			RatePhase2:        r.RatePhase2,
			RatePhase3:        r.RatePhase3,
			ProbabilityPhase2: r.ProbabilityPhase2,
			ProbabilityPhase3: r.ProbabilityPhase3,
			RateOfSpread:      r.RateOfSpread,
			Regime:            vesta.Regime(r.Regime),
		},
		TimeBucket:       r.TimeBucket.Time,
		PlaceName:        r.PlaceName,
		FormattedAddress: r.FormattedAddress,
		PlaceSource:      r.PlaceSource,
		ProcessedAt:      r.ProcessedAt,
	}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
