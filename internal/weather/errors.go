package weather

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputIncomplete is wrapped by *InputError when a search field is empty.
	ErrInputIncomplete = errors.New("all fields are required")

	// ErrLocationNotFound is returned by a Resolver when geocoding yields no match.
	// It is a normal outcome, not a fault.
	ErrLocationNotFound = errors.New("location not found")
)

// InputError lists the SearchInput fields that were left empty.
type InputError struct {
	Fields []string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInputIncomplete, strings.Join(e.Fields, ", "))
}

func (e *InputError) Unwrap() error {
	return ErrInputIncomplete
}

// TransportError is a network, DNS or HTTP-level failure talking to a remote API.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IssueKind tells a missing field apart from a mistyped one.
type IssueKind string

const (
	IssueMissing   IssueKind = "missing"
	IssueWrongType IssueKind = "wrong_type"
	IssueMalformed IssueKind = "malformed"
)

// FieldIssue is one schema violation. Path uses JSON dot notation, "$" is the root.
type FieldIssue struct {
	Path     string    `json:"path"`
	Kind     IssueKind `json:"kind"`
	Expected string    `json:"expected,omitempty"`
}

func (i FieldIssue) String() string {
	if i.Expected != "" {
		return fmt.Sprintf("%s: %s (want %s)", i.Path, i.Kind, i.Expected)
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Kind)
}

// ValidationFailure is returned by ValidateWeather when the body does not match the schema.
type ValidationFailure struct {
	Issues []FieldIssue
}

func (e *ValidationFailure) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "malformed weather response: " + strings.Join(parts, "; ")
}

// Has reports whether the failure contains an issue of kind at path.
func (e *ValidationFailure) Has(path string, kind IssueKind) bool {
	for _, issue := range e.Issues {
		if issue.Path == path && issue.Kind == kind {
			return true
		}
	}
	return false
}
