package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jghoshh/streakly/backend/apperr"
)

type errorBody struct {
	Detail string `json:"detail"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its status code. Errors outside the apperr taxonomy are logged
// and reported as a bare internal error.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request_failed",
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"err", err.Error(),
		)
	}
	writeJSON(w, status, errorBody{Detail: apperr.Detail(err)})
}

// decodeBody reads a single JSON value from the request body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.InvalidInput("request body is required")
		}
		return apperr.InvalidInput("invalid request body: %v", err)
	}
	return nil
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidInput("path parameter %s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// requireFields fails with the names of the fields that are nil, in the given order.
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.missing {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperr.InvalidInput("missing required field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

type field struct {
	name    string
	missing bool
}

func stringField(name string, v *string) field {
	return field{name: name, missing: v == nil}
}

func boolField(name string, v *bool) field {
	return field{name: name, missing: v == nil}
}
