package server

import "openhours/internal/resolver"

// ResolutionRequest selects the instant to resolve. An empty timestamp means
// a random instant from the configured year.
type ResolutionRequest struct {
	Timestamp string `json:"timestamp,omitempty" example:"2026-01-27T09:00:00" doc:"Instant to resolve; omit for a random one"`
}

// ResolutionResponse is one completed resolution.
type ResolutionResponse struct {
	ID string `json:"id" format:"uuid"`
	resolver.Resolution
	NoResult bool `json:"no_result"`
}
