package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/example/malkhana/internal/ledgererr"
)

type errorPayload struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Fields  []ledgererr.FieldError `json:"fields,omitempty"`
}

type errorBody struct {
	Error errorPayload `json:"error"`
}

// StatusFor maps a ledger error code to an HTTP status.
func StatusFor(code ledgererr.Code) int {
	switch code {
	case ledgererr.CodeValidation:
		return http.StatusBadRequest
	case ledgererr.CodeNotFound:
		return http.StatusNotFound
	case ledgererr.CodeForbidden:
		return http.StatusForbidden
	case ledgererr.CodeConflict, ledgererr.CodeAlreadyDisposed:
		return http.StatusConflict
	case ledgererr.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err as {"error": {...}}. Errors without a ledger code
// are reported as INTERNAL without leaking their text.
func writeError(w http.ResponseWriter, err error) {
	var le *ledgererr.Error
	if !errors.As(err, &le) {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorPayload{Code: "INTERNAL", Message: "internal error"}})
		return
	}

	msg := le.Message
	if msg == "" {
		msg = le.Error()
	}
	writeJSON(w, StatusFor(le.Code), errorBody{Error: errorPayload{Code: string(le.Code), Message: msg, Fields: le.Fields}})
}

// decode reads a JSON body into v.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return ledgererr.Validation(ledgererr.FieldError{Field: "body", Message: "is required"})
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ledgererr.Validation(ledgererr.FieldError{Field: "body", Message: err.Error()})
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ledgererr.Validation(ledgererr.FieldError{Field: name, Message: fmt.Sprintf("must be a non-negative integer (got %q)", raw)})
	}
	return n, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ledgererr.Validation(ledgererr.FieldError{Field: field, Message: fmt.Sprintf("must be YYYY-MM-DD or RFC 3339 (got %q)", raw)})
}
