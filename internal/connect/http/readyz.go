package http

import (
	"net/http"
	"time"

	"github.com/talentwire/pagelink/internal/connect/store"
	"github.com/talentwire/pagelink/pkg/connectsdk"
	"github.com/talentwire/pagelink/pkg/httpx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking critical dependencies (database).
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	connectsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	connectsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &connectsdk.HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, connectsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
