package fetch

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var testNow = time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

func newTestReader() *Reader {
	r := NewReader(Config{
		HTTPTimeout: 5 * time.Second,
		UserAgent:   "aidigest-test/1.0",
	})
	r.now = func() time.Time { return testNow }
	return r
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func rssItem(title, link, pubDate, description string) string {
	out := "<item><title>" + title + "</title><link>" + link + "</link>"
	if pubDate != "" {
		out += "<pubDate>" + pubDate + "</pubDate>"
	}
	return out + "<description><![CDATA[" + description + "]]></description></item>"
}

func rssFeed(items ...string) string {
	out := `<?xml version="1.0"?><rss version="2.0"><channel><title>Test Feed</title><link>https://example.com</link>`
	for _, it := range items {
		out += it
	}
	return out + `</channel></rss>`
}
