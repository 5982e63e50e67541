package weather

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// SearchInput is what the form submits. City and Country must be provided.
type SearchInput struct {
	City    string `json:"city" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// Normalize trims surrounding whitespace from both fields.
func (in SearchInput) Normalize() SearchInput {
	return SearchInput{
		City:    strings.TrimSpace(in.City),
		Country: strings.TrimSpace(in.Country),
	}
}

// Validate reports an *InputError naming every empty field.
func (in SearchInput) Validate() error {
	err := validate.Struct(in.Normalize())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &InputError{Fields: fields}
}

// Coordinates is a resolved geographic position.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// RawWeatherResponse is the undecoded body returned by the current-weather endpoint.
type RawWeatherResponse []byte

// MainReadings holds the temperature block of a current-weather response.
type MainReadings struct {
	Temp    float64 `json:"temp"`
	TempMax float64 `json:"temp_max"`
	TempMin float64 `json:"temp_min"`
}

// WeatherResult is a current-weather response that passed ValidateWeather.
// Only the validated fields are carried.
type WeatherResult struct {
	Name string       `json:"name"`
	Main MainReadings `json:"main"`
}

// IsEmpty reports whether r is the zero value.
func (r WeatherResult) IsEmpty() bool {
	return r == WeatherResult{}
}

// Status is the derived phase of a QueryState.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusSuccess  Status = "success"
	StatusNotFound Status = "not_found"
	StatusFailed   Status = "failed"
)

// FailureKind classifies why a query ended without a result.
type FailureKind string

const (
	FailureTransport       FailureKind = "transport"
	FailureInvalidResponse FailureKind = "invalid_response"
)

// Failure describes a query that ended in error.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// QueryState is the observable state owned by an Orchestrator.
type QueryState struct {
	Result   WeatherResult `json:"result"`
	Loading  bool          `json:"loading"`
	NotFound bool          `json:"notFound"`
	Failure  *Failure      `json:"failure,omitempty"`
}

// HasData reports whether Result holds something displayable.
func (s QueryState) HasData() bool {
	return s.Result.Name != ""
}

// Status derives the phase from the state fields.
func (s QueryState) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Failure != nil:
		return StatusFailed
	case s.NotFound:
		return StatusNotFound
	case s.HasData():
		return StatusSuccess
	default:
		return StatusIdle
	}
}
