package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type healthResponse struct {
	Status string            `json:"status"`
	Time   string            `json:"time"`
	Checks map[string]string `json:"checks"`
}

// Health returns a handler for GET /healthz. It pings the database and
// answers 503 when the ping fails; the cause is logged, not returned.
func Health(db *sql.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status: "healthy",
			Time:   time.Now().UTC().Format(time.RFC3339),
			Checks: map[string]string{"database": "ok"},
		}
		status := http.StatusOK

		if err := db.PingContext(ctx); err != nil {
			resp.Status = "unhealthy"
			log.Error("health check: database ping failed", zap.Error(err))
			resp.Checks["database"] = "error"
			status = http.StatusServiceUnavailable
		}

		jsonResponse(w, status, resp)
	}
}
