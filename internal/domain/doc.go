// Package domain models fire weather observations and the spread predictions
// derived from them.
//
// # Observations
//
// Each source message carries one already-parsed fire weather record, usually
// one hour of a point forecast. Field conventions:
//
//	station          forecast point or AWS identifier, e.g. "AWS-094029"
//	time             RFC 3339 with offset; falls back to the message timestamp
//	wind_speed       10 m open wind speed, km/h
//	fuel_moisture    fine dead fuel moisture content, %
//	drought_factor   Drought Factor, 0-10
//	drought_index    KBDI (SDI in Tasmania); optional, only used for wet forest
//	lat, lon         WGS-84 coordinates; optional
//
// Fuel moisture is produced upstream by the dry or wet forest fuel moisture
// model; this service does not derive it from temperature and humidity.
//
// # Validation
//
// The spread model evaluates whatever it is given. Physical plausibility is
// checked here instead: wind speed and fuel moisture must be non-negative and
// the drought factor must lie in [0, 10]. Records that fail are rejected with
// [ErrInvalidObservation] and skipped by the pipeline.
//
// # Scenario
//
// Fuel and terrain constants (wind reduction factor, surface fuel load, slope,
// elevated fuel hazard) come from the [Scenario] configured for the service and
// are applied to every observation.
//
// # ID Generation
//
// Prediction IDs are truncated SHA-256 hashes of station, observation time and
// the model inputs, so replaying a message yields the same ID and sinks can
// upsert idempotently. See [generateID].
package domain
