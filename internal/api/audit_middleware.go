package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/example/nexbank/internal/auth"
	"github.com/example/nexbank/internal/security"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// AuditTrail records every request on the hash chain. The actor is the
// authenticated account when present, otherwise "anonymous"; bodies are never
// recorded.
func AuditTrail(a Auditor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(sw, r)
			dur := time.Since(start)

			actor := "anonymous"
			if id, ok := auth.AccountIDFromContext(r.Context()); ok {
				actor = id
			}
			cid := security.CorrelationIDFromContext(r.Context())
			a.Record(actor, r.Method+" "+r.URL.Path,
				fmt.Sprintf("cid=%s status=%d dur_ms=%d", cid, sw.status, dur.Milliseconds()))
		})
	}
}
