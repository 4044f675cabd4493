package waterlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Issue is one entry of a structured validation detail
type Issue struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type,omitempty"`
}

// Field is the last named location segment ("driver_id" for ["body","driver_id"])
func (i Issue) Field() string {
	if len(i.Loc) < 2 {
		return ""
	}
	return fmt.Sprint(i.Loc[1])
}

// APIError is a non-2xx answer from the server.
// Detail is set when the body carried a string detail, Issues when it carried a list.
type APIError struct {
	StatusCode int
	Detail     string
	Issues     []Issue
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case len(e.Issues) > 0:
		return e.Issues[0].Field() + ": " + e.Issues[0].Msg
	default:
		return fmt.Sprintf("waterlog: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		apiErr.Detail = strings.TrimSpace(detail)
		return apiErr
	}

	var issues []Issue
	if err := json.Unmarshal(envelope.Detail, &issues); err == nil {
		apiErr.Issues = issues
	}
	return apiErr
}
