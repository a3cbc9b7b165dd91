package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/nexbank/internal/security"
)

// writeJSON renders v and echoes the request's correlation id so a client can
// quote it when reporting a problem.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if cid := security.CorrelationIDFromContext(r.Context()); cid != "" {
		w.Header().Set(security.CorrelationIDHeader, cid)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeList renders a collection, normalizing a nil slice to [] so clients
// never see null where an array belongs.
func writeList[E any](w http.ResponseWriter, r *http.Request, status int, items []E) {
	if items == nil {
		items = []E{}
	}
	writeJSON(w, r, status, items)
}
