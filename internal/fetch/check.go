package fetch

import (
	"context"
	"strings"
)

type CheckResult struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	FeedURL string `json:"feed_url,omitempty"`
	Title   string `json:"title,omitempty"`
	Items   int    `json:"items"`
	Recent  int    `json:"recent"`
	Error   string `json:"error,omitempty"`
}

// Check resolves a configured source to a feed and reports how many items it
// carries and how many fall inside the recency window.
func (r *Reader) Check(ctx context.Context, src FeedSource, windowDays int) CheckResult {
	result := CheckResult{Name: src.Name, URL: src.URL}

	feedURL, err := r.Discover(ctx, src.URL)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.FeedURL = feedURL

	parsed, err := r.fetchFeed(ctx, feedURL)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Title = strings.TrimSpace(parsed.Title)
	result.Items = len(parsed.Items)
	result.Recent = len(r.recentEntries(parsed.Items, r.cutoff(windowDays), 0))
	return result
}
