package fetch

import (
	"net/url"
	"strings"
	"testing"
)

func TestCleanHTML_RemovesMediaScriptsAndUnsafeAttrs(t *testing.T) {
	in := `<div onclick="alert(1)"><script>alert(1)</script><a href="javascript:alert(1)" style="color:red">x</a><img src="data:image/png;base64,abcd" onerror="x"><iframe src="https://evil"></iframe><!-- tracking --></div>`
	out := CleanHTML(in)

	for _, bad := range []string{"<script", "onclick=", "onerror=", "style=", "<iframe", "javascript:", "<img", "tracking"} {
		if strings.Contains(strings.ToLower(out), bad) {
			t.Fatalf("expected %q to be removed, got: %s", bad, out)
		}
	}
	if !strings.Contains(out, ">x</a>") {
		t.Fatalf("link text should survive: %s", out)
	}
}

func TestCleanHTML_PreservesTextAndWebLinks(t *testing.T) {
	in := `<p>Hello <a href="https://example.com" target="_blank">world</a></p>`
	out := CleanHTML(in)
	if !strings.Contains(out, `<a href="https://example.com">world</a>`) {
		t.Fatalf("safe link should be preserved, got: %s", out)
	}
	if CleanHTML("   ") != "" {
		t.Fatalf("blank input should stay blank")
	}
}

func TestRenderer_StripTagsDecodesEntities(t *testing.T) {
	r := NewRenderer()
	got := r.StripTags("<b>GPT &amp; friends</b>\n  ship   today")
	if got != "GPT & friends ship today" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestCompactTextTruncatesOnRunes(t *testing.T) {
	in := strings.Repeat("é", 20)
	got := compactText(in, 10)
	if n := len([]rune(got)); n != 12 {
		t.Fatalf("expected 9 runes plus ellipsis, got %d (%q)", n, got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
}

func TestFeedLinks_HonorsBaseAndStopsAtBody(t *testing.T) {
	page := `<html><head>
<base href="https://cdn.example.com/blog/">
<link rel="stylesheet" href="/main.css">
<link rel="alternate" type="application/rss+xml" href="feed.xml">
<link rel="Alternate" type="application/atom+xml" href="feed.xml">
</head><body>
<link rel="alternate" type="application/rss+xml" href="/ignored.xml">
</body></html>`
	base, _ := url.Parse("https://example.com/")
	links := feedLinks([]byte(page), base)
	if len(links) != 1 || links[0] != "https://cdn.example.com/blog/feed.xml" {
		t.Fatalf("unexpected links %v", links)
	}
}

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL(" example.com/feed ")
	if err == nil {
		t.Fatalf("expected error for host-less url, got %q", got)
	}
	got, err = NormalizeURL("https://example.com/feed")
	if err != nil || got != "https://example.com/feed" {
		t.Fatalf("unexpected normalize result %q %v", got, err)
	}
	if _, err := NormalizeURL(""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
