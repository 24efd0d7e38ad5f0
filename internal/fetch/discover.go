package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
)

func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid url %q", raw)
	}
	return u.String(), nil
}

// Discover returns rawURL (after redirects) if it serves a parseable feed,
// otherwise the first feed advertised by <link rel="alternate"> in the page.
func (r *Reader) Discover(ctx context.Context, rawURL string) (string, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	req, err := r.newRequest(ctx, normalized)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty response body from %s", normalized)
	}

	effectiveURL := normalized
	if resp.Request != nil && resp.Request.URL != nil {
		effectiveURL = resp.Request.URL.String()
	}

	if _, err := gofeed.NewParser().Parse(bytes.NewReader(body)); err == nil {
		return effectiveURL, nil
	}

	base, err := url.Parse(effectiveURL)
	if err != nil {
		return "", err
	}
	if links := feedLinks(body, base); len(links) > 0 {
		return links[0], nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("request failed: %s", resp.Status)
	}
	return "", fmt.Errorf("no feed discovered at %s", effectiveURL)
}

// feedLinks scans the document head for alternate feed links, resolving them
// against <base href> when present. Scanning stops at <body>.
func feedLinks(body []byte, base *url.URL) []string {
	var out []string
	seen := map[string]struct{}{}
	resolveBase := base

	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := strings.ToLower(string(name))
			if tag == "body" {
				return out
			}
			if !hasAttr || (tag != "link" && tag != "base") {
				continue
			}
			attrs := tokenAttrs(z)
			if tag == "base" {
				if href := strings.TrimSpace(attrs["href"]); href != "" {
					if u, err := url.Parse(href); err == nil {
						resolveBase = base.ResolveReference(u)
					}
				}
				continue
			}
			href := strings.TrimSpace(attrs["href"])
			if href == "" || !hasToken(attrs["rel"], "alternate") || !isFeedLink(attrs["type"], href) {
				continue
			}
			u, err := url.Parse(href)
			if err != nil {
				continue
			}
			abs := resolveBase.ResolveReference(u).String()
			if _, dup := seen[abs]; dup {
				continue
			}
			seen[abs] = struct{}{}
			out = append(out, abs)
		}
	}
}

func tokenAttrs(z *html.Tokenizer) map[string]string {
	attrs := map[string]string{}
	for {
		key, val, more := z.TagAttr()
		attrs[strings.ToLower(string(key))] = string(val)
		if !more {
			return attrs
		}
	}
}

func hasToken(list, want string) bool {
	for _, token := range strings.Fields(strings.ToLower(list)) {
		if token == want {
			return true
		}
	}
	return false
}

func isFeedLink(typeAttr, href string) bool {
	typeAttr = strings.ToLower(strings.TrimSpace(typeAttr))
	lowerHref := strings.ToLower(href)
	if strings.Contains(lowerHref, "/wp-json/") {
		return false
	}
	switch typeAttr {
	case "application/rss+xml", "application/atom+xml", "application/feed+json", "application/json", "application/xml", "text/xml":
		return true
	case "":
	default:
		return strings.Contains(typeAttr, "rss") || strings.Contains(typeAttr, "atom")
	}

	checkPath := lowerHref
	if u, err := url.Parse(href); err == nil && u.Path != "" {
		checkPath = strings.ToLower(u.Path)
	}
	switch path.Ext(checkPath) {
	case ".rss", ".atom", ".xml":
		return true
	}
	return strings.Contains(lowerHref, "/feed") || strings.Contains(lowerHref, "rss")
}
