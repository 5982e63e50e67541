package weather

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// weatherSchema is the shape a current-weather body must have. Pointer fields let
// the validator tell an absent (or null) key from a zero value.
type weatherSchema struct {
	Name *string     `json:"name" validate:"required"`
	Main *mainSchema `json:"main" validate:"required"`
}

type mainSchema struct {
	Temp    *float64 `json:"temp" validate:"required"`
	TempMax *float64 `json:"temp_max" validate:"required"`
	TempMin *float64 `json:"temp_min" validate:"required"`
}

const rootPath = "$"

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateWeather checks raw against the current-weather schema. Unknown fields are
// ignored and dropped from the result. Any mismatch is reported as a *ValidationFailure.
func ValidateWeather(raw RawWeatherResponse) (WeatherResult, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return WeatherResult{}, &ValidationFailure{Issues: []FieldIssue{
			{Path: rootPath, Kind: IssueMalformed},
		}}
	}

	obj, isObject := doc.(map[string]any)
	if doc != nil && !isObject {
		return WeatherResult{}, &ValidationFailure{Issues: []FieldIssue{
			{Path: rootPath, Kind: IssueWrongType, Expected: "object"},
		}}
	}

	schema := schemaFromDoc(obj)
	if err := validate.Struct(schema); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return WeatherResult{}, &ValidationFailure{Issues: []FieldIssue{
				{Path: rootPath, Kind: IssueMalformed},
			}}
		}
		return WeatherResult{}, &ValidationFailure{Issues: classify(doc, verrs)}
	}

	return WeatherResult{
		Name: *schema.Name,
		Main: MainReadings{
			Temp:    *schema.Main.Temp,
			TempMax: *schema.Main.TempMax,
			TempMin: *schema.Main.TempMin,
		},
	}, nil
}

// schemaFromDoc fills only the schema fields whose JSON kind matches, so a
// mistyped value stays nil and fails the required check. A mistyped main leaves
// Main nil and its children unchecked.
func schemaFromDoc(obj map[string]any) weatherSchema {
	var s weatherSchema
	if name, ok := obj["name"].(string); ok {
		s.Name = &name
	}
	if main, ok := obj["main"].(map[string]any); ok {
		s.Main = &mainSchema{
			Temp:    number(main["temp"]),
			TempMax: number(main["temp_max"]),
			TempMin: number(main["temp_min"]),
		}
	}
	return s
}

func number(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

// classify turns validator errors into field issues. A required field that is
// present in the document but did not decode had the wrong JSON type.
func classify(doc any, verrs validator.ValidationErrors) []FieldIssue {
	issues := make([]FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}

		issue := FieldIssue{Path: path, Kind: IssueMissing, Expected: jsonKind(fe.Type())}
		if v, ok := lookup(doc, path); ok && v != nil {
			issue.Kind = IssueWrongType
		}
		issues = append(issues, issue)
	}
	return issues
}

func lookup(doc any, path string) (any, bool) {
	cur := doc
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}
