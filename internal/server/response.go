package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KaramelBytes/echantillon-cli/internal/sampling"
	"github.com/KaramelBytes/echantillon-cli/internal/table"
	"github.com/pterm/pterm"
)

// apiError is the body of every error response.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Min     *int   `json:"min,omitempty"`
	Max     *int   `json:"max,omitempty"`
}

type errorBody struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		pterm.Debug.Printfln("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, e apiError) {
	writeJSON(w, status, errorBody{Error: e})
}

// writeFailure maps a domain error to its HTTP status and error code.
// Unexpected errors are logged with the request id and reported to the
// client without detail.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var pe *sampling.InvalidParameterError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &pe):
		e := apiError{Code: "invalid_parameter", Message: pe.Error(), Field: pe.Field}
		if pe.HasRange {
			lo, hi := pe.Min, pe.Max
			e.Min, e.Max = &lo, &hi
		}
		writeError(w, http.StatusBadRequest, e)
	case errors.Is(err, table.ErrSheetNotFound):
		writeError(w, http.StatusBadRequest, apiError{Code: "invalid_parameter", Message: err.Error(), Field: "sheet"})
	case errors.Is(err, table.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, apiError{Code: "unsupported_file_format", Message: err.Error()})
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, apiError{Code: "upload_too_large", Message: err.Error()})
	case errors.Is(err, table.ErrTooManyRows):
		writeError(w, http.StatusRequestEntityTooLarge, apiError{Code: "too_many_rows", Message: err.Error()})
	default:
		pterm.Error.Printfln("[%s] %s %s: %v", requestID(r.Context()), r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, apiError{Code: "internal_error", Message: "internal server error"})
	}
}
