package workflow

import (
	"errors"
	"strconv"
	"strings"

	"waterlog/pkg/waterlog"
)

// ErrSubmitInFlight is returned when a submission is attempted while one is pending
var ErrSubmitInFlight = errors.New("submission already in progress")

// LocalError is a failure detected before any network call
type LocalError struct {
	Msg string
}

func (e *LocalError) Error() string { return e.Msg }

// SubmitError is a failed submission with the line shown to the operator
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }
func (e *SubmitError) Unwrap() error { return e.Err }

type FieldError struct {
	Field string
	Msg   string
}

type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

func (v *ValidationResult) add(field, msg string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Msg: msg})
	v.Valid = false
}

// DescribeError maps any workflow failure to the single line shown to the operator:
// a local message, the server's string detail, the first structured issue as
// "<field>: <msg>", or fallback for anything else.
func DescribeError(err error, fallback string) string {
	var local *LocalError
	if errors.As(err, &local) {
		return local.Msg
	}

	var submit *SubmitError
	if errors.As(err, &submit) {
		return submit.Message
	}

	var apiErr *waterlog.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if len(apiErr.Issues) > 0 {
			return apiErr.Issues[0].Field() + ": " + apiErr.Issues[0].Msg
		}
	}
	return fallback
}

// parseCount reads a form field as an integer; blank and garbage come back as ok=false
func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
