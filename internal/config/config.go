// Package config loads the process-wide settings once at startup. Values come from
// the environment (optionally seeded from a .env file) and are immutable afterwards.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	GeocoderOpenWeather = "openweather"
	GeocoderGoogle      = "google"
)

type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Port        string `envconfig:"PORT" default:"8080" validate:"required,numeric"`

	// OpenWeatherAPIKey is the application credential sent as appid.
	OpenWeatherAPIKey string `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	GeocodingURL      string `envconfig:"OPENWEATHER_GEO_URL" default:"https://api.openweathermap.org/geo/1.0/direct" validate:"required,url"`
	WeatherURL        string `envconfig:"OPENWEATHER_WEATHER_URL" default:"https://api.openweathermap.org/data/2.5/weather" validate:"required,url"`

	// GeocoderProvider picks the Resolver backend.
	GeocoderProvider     string `envconfig:"GEOCODER_PROVIDER" default:"openweather" validate:"oneof=openweather google"`
	GoogleGeocoderAPIKey string `envconfig:"GOOGLE_GEOCODER_API_KEY" validate:"required_if=GeocoderProvider google"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`

	// UI session retention.
	SessionMaxCount      int           `envconfig:"SESSION_MAX_COUNT" default:"1000" validate:"gte=0"`  // 0 = unlimited
	SessionMaxAge        time.Duration `envconfig:"SESSION_MAX_AGE" default:"30m" validate:"gte=0"`     // 0 = unlimited
	SessionSweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"5m" validate:"gt=0"`
}

// Load reads configuration from the environment with sensible defaults.
// The caller is expected to have loaded any .env file beforehand.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
