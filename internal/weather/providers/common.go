package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// maxBodyBytes caps how much of an upstream body is read.
const maxBodyBytes = 1 << 20

var (
	errNoHTTPClient = errors.New("http client not configured")
	errCircuitOpen  = errors.New("circuit breaker open")
	errUnexpected   = errors.New("unexpected status code")
)

// apiError is the error body OpenWeatherMap sends with non-2xx responses.
// cod is a number or a string depending on the endpoint.
type apiError struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

// newBreaker returns the circuit breaker guarding one upstream. It opens after
// five consecutive failures and probes again after the timeout.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// getBody performs a single GET through the circuit breaker and returns the body
// of a 2xx response. Every failure comes back as a *weather.TransportError.
func getBody(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, op, rawURL string) ([]byte, error) {
	if client == nil {
		return nil, &weather.TransportError{Op: op, Err: errNoHTTPClient}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &weather.TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, &weather.TransportError{Op: op, Err: execErr}
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil {
			return nil, &weather.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", readErr)}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &weather.TransportError{Op: op, StatusCode: resp.StatusCode, Err: statusError(body)}
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.TransportError{Op: op, Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, &weather.TransportError{Op: op, Err: fmt.Errorf("unexpected result type from circuit breaker")}
	}
	return body, nil
}

// statusError extracts the API's message from an error body when there is one.
func statusError(body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return errUnexpected
}
