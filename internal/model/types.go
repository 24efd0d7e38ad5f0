package model

import (
	"strings"
	"time"
)

type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
)

type FeedSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Entry struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Link        string    `json:"link,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

type SourceRef struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Section is one facet of a digest record, e.g. the executive summary.
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type DigestRecord struct {
	Sections []Section   `json:"sections"`
	Sources  []SourceRef `json:"sources"`
	Err      string      `json:"error,omitempty"`
}

// Text returns the text of the section with the given key, or "" if absent.
func (r DigestRecord) Text(key string) string {
	for _, s := range r.Sections {
		if s.Key == key {
			return s.Text
		}
	}
	return ""
}

// IsEmpty reports whether the record carries no text and no sources.
func (r DigestRecord) IsEmpty() bool {
	if len(r.Sources) > 0 {
		return false
	}
	for _, s := range r.Sections {
		if strings.TrimSpace(s.Text) != "" {
			return false
		}
	}
	return true
}

type FeedDigest struct {
	Source FeedSource   `json:"source"`
	Record DigestRecord `json:"record"`
}

type FeedResult struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attempts    int    `json:"attempts"`
	Fetched     int    `json:"fetched"`
	Promotional int    `json:"promotional"`
	Kept        int    `json:"kept"`
	Error       string `json:"error,omitempty"`
}

// Failed reports whether the feed produced no usable digest.
func (r FeedResult) Failed() bool {
	return r.Error != ""
}

type DeliveryResult struct {
	Channel string `json:"channel"`
	Skipped bool   `json:"skipped,omitempty"`
	Sent    int    `json:"sent"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type RunReport struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	EndedAt    time.Time        `json:"ended_at"`
	Feeds      []FeedResult     `json:"feeds"`
	Digests    []FeedDigest     `json:"digests,omitempty"`
	Deliveries []DeliveryResult `json:"deliveries"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// Succeeded reports whether at least one feed was fetched and digested
// without error.
func (r RunReport) Succeeded() bool {
	for _, f := range r.Feeds {
		if !f.Failed() {
			return true
		}
	}
	return false
}
