// Package queue defines message payloads exchanged over the message broker.
package queue

// RefreshCompletedEvent is published after a refresh commits successfully.
// It carries enough information for downstream consumers to log or trigger
// analytics without querying the primary database.  Rendering and
// publishing both happen after the commit, so the event always describes
// durable data.
type RefreshCompletedEvent struct {
	TotalCountries  int    `json:"total_countries"`
	LastRefreshedAt string `json:"last_refreshed_at"`
	TopCountry      string `json:"top_country,omitempty"`
}
