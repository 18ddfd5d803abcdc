package api

import (
	"bytes"
	"net/http"

	"github.com/projecthelena/clockping/internal/clock"
	"github.com/projecthelena/clockping/internal/probe"
	"github.com/projecthelena/clockping/internal/static"
	"github.com/projecthelena/clockping/internal/version"
)

// ReadyResponse is the body of a successful readiness probe.
type ReadyResponse struct {
	Status     string `json:"status"`
	DBEndpoint string `json:"db_endpoint"`
}

// Liveness renders the status page: localized time and the current version.
// @Summary      Status page
// @Tags         health
// @Produce      html
// @Success      200  {string} string "HTML status page"
// @Router       /liveness [get]
func Liveness(clk *clock.Clock, versions *version.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		err := static.RenderStatus(&buf, static.StatusData{
			City:    clk.City(),
			Time:    clk.Format(),
			Version: versions.Read(),
		})
		if err != nil {
			http.Error(w, "failed to render status page", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

// Readiness probes the configured dependency over TCP. The raw endpoint
// string, not the parsed host/port, is echoed back.
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object} ReadyResponse
// @Failure      503  {string} string "DB_ENDPOINT not set"
// @Failure      503  {string} string "DB not reachable: <endpoint>"
// @Failure      429  {object} object{error=string} "rate limit exceeded"
// @Router       /readiness [get]
func Readiness(endpoint string, prober *probe.Prober) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ep, ok := probe.ParseEndpoint(endpoint)
		if !ok {
			writeText(w, http.StatusServiceUnavailable, "DB_ENDPOINT not set")
			return
		}

		if !prober.Check(r.Context(), ep) {
			writeText(w, http.StatusServiceUnavailable, "DB not reachable: "+endpoint)
			return
		}

		writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready", DBEndpoint: endpoint})
	}
}
