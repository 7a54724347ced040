// Package responses defines the JSON bodies served by the blogbuilder daemon.
package responses

import (
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string     `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
	Version    string     `json:"version,omitempty"`
	Uptime     float64    `json:"uptime"`
	QueueDepth int        `json:"queue_depth"`
	Building   bool       `json:"building"`
	LastBuild  *LastBuild `json:"last_build,omitempty"`
}

// LastBuild summarizes the most recent orchestrator run.
type LastBuild struct {
	BuildID  string `json:"build_id"`
	State    string `json:"state"`
	Ref      string `json:"ref"`
	Skipped  bool   `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// WebhookResponse acknowledges a webhook delivery.
type WebhookResponse struct {
	Status  string `json:"status"`
	Event   string `json:"event,omitempty"`
	Ref     string `json:"ref,omitempty"`
	BuildID string `json:"build_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// BuildListResponse lists recent builds, newest first.
type BuildListResponse struct {
	Builds []eventstore.BuildSummary `json:"builds"`
}
