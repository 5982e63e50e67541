package weather

import (
	"context"
)

// Resolver geocodes a city within a country.
// Implementations return ErrLocationNotFound when nothing matches and a
// *TransportError when the remote call fails.
type Resolver interface {
	Resolve(ctx context.Context, city, countryCode string) (Coordinates, error)
}

// Fetcher retrieves the current weather at a position as an undecoded body.
// It does no shape checking; see ValidateWeather.
type Fetcher interface {
	Fetch(ctx context.Context, coords Coordinates) (RawWeatherResponse, error)
}
