// Package security holds the HTTP-edge middleware: correlation ids, the JSON
// error envelope, request validation, body caps and rate limiting.
package security

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error envelope. Error is a stable machine
// code, never prose; clients branch on it and the correlation id ties the
// failure back to the server logs.
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func WriteJSONError(w http.ResponseWriter, r *http.Request, status int, code string) {
	cid := CorrelationIDFromContext(r.Context())
	if cid != "" {
		w.Header().Set(CorrelationIDHeader, cid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:         code,
		CorrelationID: cid,
	})
}
