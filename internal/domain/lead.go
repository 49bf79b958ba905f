package domain

import "time"

// Lead is a discovered business website tracked through the pipeline.
// Domain is the canonical dedup key (lowercase host, no www).
type Lead struct {
	ID           int64
	BusinessName string
	URL          string
	Domain       string
	Niche        string
	Location     string

	Score   int
	Summary string // one-sentence pain point from the analyst

	Email       string
	Facebook    string
	LinkedIn    string
	Instagram   string
	Twitter     string
	ContactPage string

	Status        Status
	Source        string // serpapi/import/manual
	DiscoveredAt  time.Time
	SentAt        *time.Time
	LastActionAt  time.Time
	FollowupCount int
}

// Contactable reports whether the sniper has an address to send to.
func (l Lead) Contactable() bool {
	return l.Email != ""
}
