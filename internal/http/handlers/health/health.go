// Package health serves the liveness probe.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Pinger is the part of storage.Storage the probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check handles GET /healthz: 200 {"status":"ok"} when the store answers a
// ping within two seconds, 503 otherwise.
func Check(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable,
				response.GeneralError(errors.New("storage unavailable")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK())
	}
}
