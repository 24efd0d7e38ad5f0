package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestReader_FiltersByWindowAndCapsInFeedOrder(t *testing.T) {
	body := rssFeed(
		rssItem("Scheduled", "https://example.com/future", "Sun, 15 Feb 2026 08:00:00 GMT", "not out yet"),
		rssItem("Fresh one", "https://example.com/1", "Sat, 14 Feb 2026 08:00:00 GMT", "<p>one</p>"),
		rssItem("Too old", "https://example.com/old", "Tue, 10 Feb 2026 08:00:00 GMT", "old"),
		rssItem("Fresh two", "https://example.com/2", "Fri, 13 Feb 2026 20:00:00 GMT", "two"),
		rssItem("No date", "https://example.com/nodate", "", "undated"),
		rssItem("Fresh three", "https://example.com/3", "Sat, 14 Feb 2026 09:00:00 GMT", "three"),
		rssItem("Just now", "https://example.com/now", "Sat, 14 Feb 2026 12:05:00 GMT", "slight clock skew"),
	)
	srv := serveFeed(t, body)
	reader := newTestReader()

	entries, err := reader.Read(context.Background(), srv.URL, 1, 2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected cap of 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "Fresh one" || entries[1].Title != "Fresh two" {
		t.Fatalf("unexpected order/titles: %+v", entries)
	}
	cutoff := testNow.AddDate(0, 0, -1)
	for _, e := range entries {
		if !e.PublishedAt.After(cutoff) {
			t.Fatalf("entry %q outside window: %s", e.Title, e.PublishedAt)
		}
	}

	all, err := reader.Read(context.Background(), srv.URL, 1, 0)
	if err != nil {
		t.Fatalf("read uncapped: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 recent entries, got %d", len(all))
	}
	for _, e := range all {
		if e.Title == "Scheduled" || e.PublishedAt.After(testNow.Add(maxClockSkew)) {
			t.Fatalf("future-dated entry admitted: %q at %s", e.Title, e.PublishedAt)
		}
	}
	if all[3].Title != "Just now" {
		t.Fatalf("expected entry within clock skew to be kept, got %q", all[3].Title)
	}
}

func TestReader_WiderWindowAdmitsOlderEntries(t *testing.T) {
	srv := serveFeed(t, rssFeed(
		rssItem("Recent", "https://example.com/1", "Sat, 14 Feb 2026 08:00:00 GMT", "a"),
		rssItem("Four days", "https://example.com/2", "Tue, 10 Feb 2026 13:00:00 GMT", "b"),
	))
	entries, err := newTestReader().Read(context.Background(), srv.URL, 7, 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both entries in a 7 day window, got %d", len(entries))
	}
}

func TestReader_AtomUpdatedDateFallback(t *testing.T) {
	const atom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Test</title>
  <entry>
    <title>Model &amp; Data</title>
    <link href="https://example.com/atom-1"/>
    <id>urn:1</id>
    <updated>2026-02-14T06:00:00Z</updated>
    <summary>Atom summary</summary>
  </entry>
</feed>`
	srv := serveFeed(t, atom)

	entries, err := newTestReader().Read(context.Background(), srv.URL, 1, 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected updated date to admit the entry, got %d", len(entries))
	}
	if entries[0].Title != "Model & Data" {
		t.Fatalf("expected decoded title, got %q", entries[0].Title)
	}
	if entries[0].Link != "https://example.com/atom-1" {
		t.Fatalf("unexpected link %q", entries[0].Link)
	}
}

func TestReader_SummaryIsPlainPromptText(t *testing.T) {
	desc := `<p>New <b>model</b> released.</p><script>alert(1)</script><img src="https://t.example/pixel.gif"><p>Read <a href="https://example.com/more" onclick="x()">more</a></p>`
	srv := serveFeed(t, rssFeed(rssItem("Launch", "https://example.com/launch", "Sat, 14 Feb 2026 08:00:00 GMT", desc)))

	entries, err := newTestReader().Read(context.Background(), srv.URL, 1, 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	sum := entries[0].Summary
	for _, bad := range []string{"<script", "alert(1)", "pixel.gif", "onclick", "<p>"} {
		if strings.Contains(sum, bad) {
			t.Fatalf("summary still contains %q: %q", bad, sum)
		}
	}
	if !strings.Contains(sum, "model") || !strings.Contains(sum, "https://example.com/more") {
		t.Fatalf("summary lost text or link: %q", sum)
	}
	if strings.Contains(sum, "\n") {
		t.Fatalf("summary should be compacted to one line: %q", sum)
	}
}

func TestReader_PropagatesHTTPAndParseErrors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer failing.Close()

	if _, err := newTestReader().Read(context.Background(), failing.URL, 1, 5); err == nil || !strings.Contains(err.Error(), "http 502") {
		t.Fatalf("expected http 502 error, got %v", err)
	}

	garbage := serveFeed(t, "this is not a feed")
	if _, err := newTestReader().Read(context.Background(), garbage.URL, 1, 5); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestReader_SendsUserAgentAndHonorsContext(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(rssFeed()))
	}))
	defer srv.Close()

	reader := newTestReader()
	if _, err := reader.Read(context.Background(), srv.URL, 1, 5); err != nil {
		t.Fatalf("read: %v", err)
	}
	if gotUA != "aidigest-test/1.0" {
		t.Fatalf("unexpected user agent %q", gotUA)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reader.Read(ctx, srv.URL, 1, 5); err == nil {
		t.Fatalf("expected canceled context error")
	}
}

func TestReader_CheckCountsRecentItems(t *testing.T) {
	const feedXML = `<?xml version="1.0"?><rss version="2.0"><channel><title>Lab</title><link>https://example.com</link>` +
		`<item><title>A</title><link>https://example.com/a</link><pubDate>Sat, 14 Feb 2026 08:00:00 GMT</pubDate></item>` +
		`<item><title>B</title><link>https://example.com/b</link><pubDate>Sun, 01 Feb 2026 08:00:00 GMT</pubDate></item>` +
		`</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte(`<html><head><link rel="alternate" type="application/rss+xml" href="/feed.xml"></head><body></body></html>`))
		case "/feed.xml":
			_, _ = w.Write([]byte(feedXML))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	res := newTestReader().Check(context.Background(), FeedSource{Name: "Lab", URL: srv.URL}, 1)
	if res.Error != "" {
		t.Fatalf("check: %s", res.Error)
	}
	if res.FeedURL != srv.URL+"/feed.xml" || res.Title != "Lab" {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if res.Items != 2 || res.Recent != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
}

func TestPublishedAtFallsBackToUpdated(t *testing.T) {
	pub := testNow.Add(-2 * time.Hour)
	upd := testNow.Add(-time.Hour)

	if got := publishedAt(&gofeed.Item{PublishedParsed: &pub, UpdatedParsed: &upd}); !got.Equal(pub) {
		t.Fatalf("expected published date, got %v", got)
	}
	if got := publishedAt(&gofeed.Item{UpdatedParsed: &upd}); !got.Equal(upd) {
		t.Fatalf("expected updated date, got %v", got)
	}
	if got := publishedAt(&gofeed.Item{}); got != nil {
		t.Fatalf("expected nil for undated item, got %v", got)
	}
}
