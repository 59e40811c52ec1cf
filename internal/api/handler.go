// Package api serves the expert finder over HTTP and MCP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/frank/internal/finder"
	"github.com/kalambet/frank/internal/monitor"
	"github.com/kalambet/frank/internal/roster"
)

const serviceName = "frank"

// StatsSource reports storage monitor statistics for /health.
type StatsSource interface {
	Stats() monitor.Stats
}

// Deps holds the handler's collaborators.
type Deps struct {
	Roster   *roster.Store
	Finder   *finder.Service
	Sessions *finder.Sessions
	Monitor  StatsSource // optional; nil when storage is disabled
	Token    string

	// RateLimit is requests per second allowed on the AI routes; zero
	// disables limiting.
	RateLimit float64
	RateBurst int
}

// NewHandler returns the HTTP API.
func NewHandler(deps Deps) http.Handler {
	if deps.Sessions == nil {
		deps.Sessions = finder.NewSessions()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth(deps))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/experts", handleListExperts(deps))
		r.Get("/experts/{id}", handleGetExpert(deps))
		r.Patch("/experts/{id}", handlePatchExpert(deps))
		r.Post("/experts/{id}/expertise", handleAddExpertise(deps))
		r.Delete("/experts/{id}/expertise/{index}", handleRemoveExpertise(deps))
		r.Post("/experts/{id}/certifications", handleAddCertification(deps))
		r.Delete("/experts/{id}/certifications/{index}", handleRemoveCertification(deps))

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(deps.RateLimit, deps.RateBurst))
			r.Post("/search", handleSearch(deps))
			r.Post("/discover", handleDiscover(deps))
		})

		r.Get("/sessions/{id}", handleGetSession(deps))
		r.Delete("/sessions/{id}", handleDropSession(deps))
	})

	return r
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string         `json:"status"`
	Service   string         `json:"service"`
	Timestamp time.Time      `json:"timestamp"`
	Experts   int            `json:"experts"`
	Storage   *monitor.Stats `json:"storage,omitempty"`
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Service:   serviceName,
			Timestamp: time.Now().UTC(),
			Experts:   deps.Roster.Len(),
		}
		if deps.Monitor != nil {
			stats := deps.Monitor.Stats()
			resp.Storage = &stats
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
