package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	DefaultGeocodingURL = "https://api.openweathermap.org/geo/1.0/direct"
	DefaultWeatherURL   = "https://api.openweathermap.org/data/2.5/weather"
)

var errNoCoordinates = errors.New("geocoding entry has no coordinates")

// OpenWeatherClient talks to OpenWeatherMap. It implements weather.Resolver with
// the direct geocoding API and weather.Fetcher with the current-weather API.
type OpenWeatherClient struct {
	apiKey       string
	geocodingURL string
	weatherURL   string
	client       *http.Client

	geoCircuit     *gobreaker.CircuitBreaker
	weatherCircuit *gobreaker.CircuitBreaker
}

// OpenWeatherOption configures an OpenWeatherClient.
type OpenWeatherOption func(*OpenWeatherClient)

// WithEndpoints overrides the geocoding and weather URLs. Empty values keep the default.
func WithEndpoints(geocodingURL, weatherURL string) OpenWeatherOption {
	return func(c *OpenWeatherClient) {
		if geocodingURL != "" {
			c.geocodingURL = geocodingURL
		}
		if weatherURL != "" {
			c.weatherURL = weatherURL
		}
	}
}

func NewOpenWeatherClient(client *http.Client, apiKey string, opts ...OpenWeatherOption) *OpenWeatherClient {
	c := &OpenWeatherClient{
		apiKey:         apiKey,
		geocodingURL:   DefaultGeocodingURL,
		weatherURL:     DefaultWeatherURL,
		client:         client,
		geoCircuit:     newBreaker("openweather-geocoding"),
		weatherCircuit: newBreaker("openweather-weather"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// geoEntry is one match from the direct geocoding API.
type geoEntry struct {
	Name    string   `json:"name"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// Resolve returns the coordinates of the first geocoding match for "city,countryCode".
func (c *OpenWeatherClient) Resolve(ctx context.Context, city, countryCode string) (weather.Coordinates, error) {
	values := url.Values{}
	values.Set("q", fmt.Sprintf("%s,%s", city, countryCode))
	values.Set("appid", c.apiKey)

	body, err := getBody(ctx, c.client, c.geoCircuit, "geocode", c.geocodingURL+"?"+values.Encode())
	if err != nil {
		return weather.Coordinates{}, err
	}

	var entries []geoEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return weather.Coordinates{}, &weather.TransportError{Op: "geocode", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(entries) == 0 {
		return weather.Coordinates{}, weather.ErrLocationNotFound
	}

	first := entries[0]
	if first.Lat == nil || first.Lon == nil {
		return weather.Coordinates{}, &weather.TransportError{Op: "geocode", Err: errNoCoordinates}
	}
	return weather.Coordinates{Latitude: *first.Lat, Longitude: *first.Lon}, nil
}

// Fetch returns the undecoded current-weather body for coords.
func (c *OpenWeatherClient) Fetch(ctx context.Context, coords weather.Coordinates) (weather.RawWeatherResponse, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("appid", c.apiKey)

	body, err := getBody(ctx, c.client, c.weatherCircuit, "weather", c.weatherURL+"?"+values.Encode())
	if err != nil {
		return nil, err
	}
	return weather.RawWeatherResponse(body), nil
}
