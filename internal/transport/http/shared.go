package httptransport

import (
	"encoding/json"
	"net/http"

	dErrors "pinksync/pkg/domain-errors"
)

// errorResponse is the JSON error envelope for every endpoint.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func statusForCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates a domain error into the JSON envelope. Unknown
// errors are masked as internal so storage details never leak.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	msg := "internal error"
	if code != dErrors.CodeInternal {
		msg = err.Error()
	}
	writeJSON(w, statusForCode(code), errorResponse{
		Error:   string(code),
		Message: msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decode parses a JSON body, rejecting unknown fields so typos surface as
// 400s instead of silently dropped options.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid request body")
	}
	return nil
}
