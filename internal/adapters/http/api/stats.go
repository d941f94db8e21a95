package api

import (
	"net/http"
)

// StatsProvider contributes entries to GET /stats.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	providers []StatsProvider
}

// NewStatsHandler creates a new stats handler. Later providers win on key
// collisions.
func NewStatsHandler(providers ...StatsProvider) *StatsHandler {
	return &StatsHandler{providers: providers}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	stats := make(map[string]any)
	for _, p := range h.providers {
		for k, v := range p.GetStats() {
			stats[k] = v
		}
	}
	writeJSON(w, http.StatusOK, stats)
}
