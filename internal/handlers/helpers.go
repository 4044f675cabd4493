package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"waterlog/internal/models"
	"waterlog/pkg/utils"
)

const (
	msgFieldRequired = "Field required"
	msgInvalidInt    = "Input should be a valid integer"
	msgInvalidDate   = "Input should be a valid date"
)

// now is swapped in tests
var now = time.Now

// decodeBody decodes a JSON body, answering 422 with the offending field when it cannot
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		path := []interface{}{}
		for _, part := range strings.Split(typeErr.Field, ".") {
			path = append(path, part)
		}
		utils.ValidationError(w, utils.BodyIssue("Input has an invalid type, expected "+typeErr.Type.String(), path...))
	case errors.Is(err, io.EOF):
		utils.ValidationError(w, utils.BodyIssue(msgFieldRequired))
	default:
		utils.ValidationError(w, utils.BodyIssue("JSON decode error"))
	}
	return false
}

// pathInt parses the {id} URL parameter; name is the location reported on a 422
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	value, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.ValidationError(w, utils.Issue{Loc: []interface{}{"path", name}, Msg: msgInvalidInt})
		return 0, false
	}
	return value, true
}

// queryDate reads a YYYY-MM-DD query parameter, falling back when absent
func queryDate(w http.ResponseWriter, r *http.Request, name string, fallback time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	day, err := time.ParseInLocation(models.DateFormat, raw, time.Local)
	if err != nil {
		utils.ValidationError(w, utils.QueryIssue(msgInvalidDate, name))
		return time.Time{}, false
	}
	return day, true
}

// queryInt reads an integer query parameter bounded to [min, max]
func queryInt(w http.ResponseWriter, r *http.Request, name string, fallback, min, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		utils.ValidationError(w, utils.QueryIssue(msgInvalidInt, name))
		return 0, false
	}
	if value < min {
		utils.ValidationError(w, utils.QueryIssue("Input should be greater than or equal to "+strconv.Itoa(min), name))
		return 0, false
	}
	if value > max {
		utils.ValidationError(w, utils.QueryIssue("Input should be less than or equal to "+strconv.Itoa(max), name))
		return 0, false
	}
	return value, true
}

func today() time.Time {
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
