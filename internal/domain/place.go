package domain

import (
	"context"
	"log/slog"
)

// Place is a reverse geocoding result for a station's coordinates.
type Place struct {
	Name             string
	FormattedAddress string
	Confidence       float64 // 0.0-1.0 provider relevance
}

// PlaceResolver looks up the place nearest to a coordinate pair.
type PlaceResolver interface {
	ResolvePlace(ctx context.Context, lat, lon float64) (Place, error)
}

// EnrichWithPlace attaches the place name for the observation's coordinates.
// A nil resolver leaves the prediction untouched; lookup failures are logged
// and recorded in PlaceSource rather than failing the prediction.
func EnrichWithPlace(ctx context.Context, pred SpreadPrediction, resolver PlaceResolver, logger *slog.Logger) SpreadPrediction {
	if resolver == nil {
		return pred
	}

	geo := pred.Observation.Geo
	if geo.IsZero() {
		pred.PlaceSource = "original"
		return pred
	}

	place, err := resolver.ResolvePlace(ctx, geo.Lat, geo.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"prediction_id", pred.ID,
			"station", pred.Observation.Station,
			"lat", geo.Lat,
			"lon", geo.Lon,
			"error", err,
		)
		pred.PlaceSource = "failed"
		return pred
	}
	if place.FormattedAddress == "" {
		pred.PlaceSource = "original"
		return pred
	}

	pred.PlaceName = place.Name
	pred.FormattedAddress = place.FormattedAddress
	pred.PlaceSource = "reverse"
	return pred
}
