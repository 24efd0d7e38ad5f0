package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const maxFeedBytes = 16 << 20

// maxClockSkew is how far in the future an item may be dated and still count
// as recent.
const maxClockSkew = 10 * time.Minute

const acceptFeedTypes = "application/xml, application/atom+xml, application/rss+xml, application/feed+json, text/xml, text/html, */*;q=0.8"

// Reader fetches RSS/Atom/JSON feeds and turns recent items into entries.
type Reader struct {
	client    *http.Client
	renderer  *Renderer
	userAgent string
	now       func() time.Time
}

func NewReader(cfg Config) *Reader {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	return &Reader{
		client: &http.Client{
			Timeout:   cfg.HTTPTimeout,
			Transport: transport,
		},
		renderer:  NewRenderer(),
		userAgent: fallback(cfg.UserAgent, "aidigest/0.1"),
		now:       time.Now,
	}
}

func (r *Reader) HTTPClient() *http.Client {
	return r.client
}

// Read returns up to limit entries of the feed at url published within the
// last windowDays days, in feed order. A limit <= 0 means no cap.
func (r *Reader) Read(ctx context.Context, url string, windowDays, limit int) ([]Entry, error) {
	parsed, err := r.fetchFeed(ctx, url)
	if err != nil {
		return nil, err
	}
	return r.recentEntries(parsed.Items, r.cutoff(windowDays), limit), nil
}

func (r *Reader) cutoff(windowDays int) time.Time {
	return r.now().AddDate(0, 0, -windowDays)
}

func (r *Reader) fetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := r.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: http %d", url, resp.StatusCode)
	}

	parsed, err := parseFeedResponse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return parsed, nil
}

func (r *Reader) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", acceptFeedTypes)
	return req, nil
}

func parseFeedResponse(body io.Reader) (*gofeed.Feed, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxFeedBytes))
	if err != nil {
		return nil, err
	}
	return gofeed.NewParser().Parse(bytes.NewReader(data))
}

func (r *Reader) recentEntries(items []*gofeed.Item, cutoff time.Time, limit int) []Entry {
	entries := make([]Entry, 0)
	latest := r.now().Add(maxClockSkew)
	for _, item := range items {
		if item == nil {
			continue
		}
		published := publishedAt(item)
		if published == nil || !published.After(cutoff) || published.After(latest) {
			continue
		}
		entries = append(entries, r.toEntry(item, *published))
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries
}

func (r *Reader) toEntry(item *gofeed.Item, published time.Time) Entry {
	link := strings.TrimSpace(item.Link)
	description := item.Description
	if strings.TrimSpace(description) == "" {
		description = item.Content
	}
	return Entry{
		Title:       fallback(r.renderer.StripTags(item.Title), link),
		Summary:     r.renderer.Summary(description),
		Link:        link,
		PublishedAt: published.UTC(),
	}
}

// publishedAt falls back to the updated date; items carrying neither cannot
// be placed in the recency window.
func publishedAt(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}
