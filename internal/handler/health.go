package handler

import (
	"context"
	"net/http"
	"time"
)

// Check reports the health of one dependency.
type Check = func(ctx context.Context) error

// Health returns a handler that runs every check with a short timeout.
// Any failing check turns the response into a 503.
func Health(version string, checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		body := map[string]interface{}{"status": "ok", "version": version}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(deps) > 0 {
			body["checks"] = deps
		}
		writeJSON(w, status, body)
	}
}
