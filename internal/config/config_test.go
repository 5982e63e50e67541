package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the host environment cannot leak in.
// t.Setenv records the original value for restoration before it is removed.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "PORT",
		"OPENWEATHER_API_KEY", "OPENWEATHER_GEO_URL", "OPENWEATHER_WEATHER_URL",
		"GEOCODER_PROVIDER", "GOOGLE_GEOCODER_API_KEY", "HTTP_TIMEOUT",
		"SESSION_MAX_COUNT", "SESSION_MAX_AGE", "SESSION_SWEEP_INTERVAL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "secret", cfg.OpenWeatherAPIKey)
	assert.Equal(t, "https://api.openweathermap.org/geo/1.0/direct", cfg.GeocodingURL)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5/weather", cfg.WeatherURL)
	assert.Equal(t, GeocoderOpenWeather, cfg.GeocoderProvider)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 1000, cfg.SessionMaxCount)
	assert.Equal(t, 30*time.Minute, cfg.SessionMaxAge)
	assert.Equal(t, 5*time.Minute, cfg.SessionSweepInterval)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("SESSION_MAX_AGE", "0")
	t.Setenv("GEOCODER_PROVIDER", "google")
	t.Setenv("GOOGLE_GEOCODER_API_KEY", "maps-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Zero(t, cfg.SessionMaxAge)
	assert.Equal(t, GeocoderGoogle, cfg.GeocoderProvider)
	assert.Equal(t, "maps-key", cfg.GoogleGeocoderAPIKey)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing api key", env: map[string]string{}},
		{name: "bad duration", env: map[string]string{"OPENWEATHER_API_KEY": "k", "HTTP_TIMEOUT": "soon"}},
		{name: "unknown geocoder", env: map[string]string{"OPENWEATHER_API_KEY": "k", "GEOCODER_PROVIDER": "bing"}},
		{name: "google without key", env: map[string]string{"OPENWEATHER_API_KEY": "k", "GEOCODER_PROVIDER": "google"}},
		{name: "bad url", env: map[string]string{"OPENWEATHER_API_KEY": "k", "OPENWEATHER_WEATHER_URL": "not a url"}},
		{name: "bad log level", env: map[string]string{"OPENWEATHER_API_KEY": "k", "LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
