package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/weather"
)

func newGoogleResolver(fn geocodeFunc) *GoogleResolver {
	r := NewGoogleResolver("google-key")
	r.geocode = fn
	return r
}

func TestGoogleResolve(t *testing.T) {
	var got geocoder.Address
	r := newGoogleResolver(func(address geocoder.Address) (geocoder.Location, error) {
		got = address
		assert.Equal(t, "google-key", geocoder.ApiKey)
		return geocoder.Location{Latitude: -12.05, Longitude: -77.04}, nil
	})

	coords, err := r.Resolve(context.Background(), "Lima", "PE")
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates{Latitude: -12.05, Longitude: -77.04}, coords)
	assert.Equal(t, geocoder.Address{City: "Lima", Country: "PE"}, got)
}

func TestGoogleResolveZeroResultsIsNotFound(t *testing.T) {
	r := newGoogleResolver(func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, errors.New("ZERO_RESULTS")
	})

	_, err := r.Resolve(context.Background(), "Xyzzy", "PE")
	require.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestGoogleResolveNoResultsMessageIsNotFound(t *testing.T) {
	r := newGoogleResolver(func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, errors.New("No results found.")
	})

	_, err := r.Resolve(context.Background(), "Xyzzy", "PE")
	require.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestGoogleResolveFailure(t *testing.T) {
	for _, msg := range []string{"REQUEST_DENIED", "geocoding endpoint not found"} {
		r := newGoogleResolver(func(geocoder.Address) (geocoder.Location, error) {
			return geocoder.Location{}, errors.New(msg)
		})

		_, err := r.Resolve(context.Background(), "Lima", "PE")
		assert.False(t, errors.Is(err, weather.ErrLocationNotFound), msg)
		var te *weather.TransportError
		require.True(t, errors.As(err, &te), msg)
		assert.Contains(t, te.Error(), msg)
	}
}

func TestGoogleResolveCancelledContext(t *testing.T) {
	called := false
	r := newGoogleResolver(func(geocoder.Address) (geocoder.Location, error) {
		called = true
		return geocoder.Location{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, "Lima", "PE")
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
