package providers

import (
	"context"
	"errors"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// geocodeFunc matches geocoder.Geocoding.
type geocodeFunc func(address geocoder.Address) (geocoder.Location, error)

// keyMu guards geocoder.ApiKey, which the library reads from a package variable.
var keyMu sync.Mutex

// GoogleResolver implements weather.Resolver with the Google Geocoding API.
type GoogleResolver struct {
	apiKey  string
	geocode geocodeFunc
	circuit *gobreaker.CircuitBreaker
}

func NewGoogleResolver(apiKey string) *GoogleResolver {
	return &GoogleResolver{
		apiKey:  apiKey,
		geocode: geocoder.Geocoding,
		circuit: newBreaker("google-geocoding"),
	}
}

type geocodeResult struct {
	loc geocoder.Location
	err error
}

// Resolve geocodes city within countryCode. The library call cannot be cancelled,
// so ctx only bounds how long Resolve waits for it.
func (r *GoogleResolver) Resolve(ctx context.Context, city, countryCode string) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, &weather.TransportError{Op: "geocode", Err: err}
	}

	address := geocoder.Address{City: city, Country: countryCode}

	done := make(chan geocodeResult, 1)
	go func() {
		result, err := r.circuit.Execute(func() (interface{}, error) {
			keyMu.Lock()
			geocoder.ApiKey = r.apiKey
			loc, err := r.geocode(address)
			keyMu.Unlock()
			if err != nil && isZeroResults(err) {
				// An unknown place is an answer, not an upstream failure.
				return geocoder.Location{}, nil
			}
			return loc, err
		})
		if err != nil {
			done <- geocodeResult{err: err}
			return
		}
		loc, _ := result.(geocoder.Location)
		done <- geocodeResult{loc: loc}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, &weather.TransportError{Op: "geocode", Err: ctx.Err()}
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, gobreaker.ErrOpenState) || errors.Is(res.err, gobreaker.ErrTooManyRequests) {
				return weather.Coordinates{}, &weather.TransportError{Op: "geocode", Err: errCircuitOpen}
			}
			return weather.Coordinates{}, &weather.TransportError{Op: "geocode", Err: res.err}
		}
		if res.loc == (geocoder.Location{}) {
			return weather.Coordinates{}, weather.ErrLocationNotFound
		}
		return weather.Coordinates{Latitude: res.loc.Latitude, Longitude: res.loc.Longitude}, nil
	}
}

func isZeroResults(err error) bool {
	return common.HasAnyFold(err.Error(), "zero_results", "no results")
}
