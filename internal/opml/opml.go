package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/odysseus0/aidigest/internal/model"
	"golang.org/x/net/html/charset"
)

type opmlDoc struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr,omitempty"`
	Head    opmlHead `xml:"head"`
	Body    opmlBody `xml:"body"`
}

type opmlHead struct {
	Title string `xml:"title,omitempty"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	Text        string        `xml:"text,attr,omitempty"`
	Title       string        `xml:"title,attr,omitempty"`
	Type        string        `xml:"type,attr,omitempty"`
	XMLURL      string        `xml:"xmlUrl,attr,omitempty"`
	XMLURLLower string        `xml:"xmlurl,attr,omitempty"`
	Outlines    []opmlOutline `xml:"outline,omitempty"`
}

// ReadOPML returns the feed outlines of an OPML document, deduplicated by URL.
// The outline title (or text) becomes the source name.
func ReadOPML(path string) ([]model.FeedSource, error) {
	r, err := openOPML(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var doc opmlDoc
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}

	var sources []model.FeedSource
	var walk func([]opmlOutline)
	walk = func(outlines []opmlOutline) {
		for _, o := range outlines {
			if feedURL := o.FeedURL(); feedURL != "" {
				sources = append(sources, model.FeedSource{Name: o.Name(), URL: feedURL})
			}
			if len(o.Outlines) > 0 {
				walk(o.Outlines)
			}
		}
	}
	walk(doc.Body.Outlines)

	return uniqueSources(sources), nil
}

func openOPML(path string) (io.ReadCloser, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		resp, err := http.Get(path)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: %s", path, resp.Status)
		}
		return resp.Body, nil
	}
	return os.Open(path)
}

func WriteOPML(w io.Writer, sources []model.FeedSource) error {
	outlines := make([]opmlOutline, 0, len(sources))
	for _, src := range sources {
		name := fallback(strings.TrimSpace(src.Name), src.URL)
		outlines = append(outlines, opmlOutline{
			Text:   name,
			Title:  name,
			Type:   "rss",
			XMLURL: src.URL,
		})
	}

	doc := opmlDoc{
		Version: "2.0",
		Head: opmlHead{
			Title: "aidigest sources",
		},
		Body: opmlBody{
			Outlines: []opmlOutline{{
				Text:     "AI News",
				Title:    "AI News",
				Outlines: outlines,
			}},
		},
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Flush()
}

func fallback(v, fb string) string {
	if strings.TrimSpace(v) == "" {
		return fb
	}
	return v
}

func uniqueSources(in []model.FeedSource) []model.FeedSource {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.FeedSource, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v.URL]; ok {
			continue
		}
		seen[v.URL] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (o opmlOutline) FeedURL() string {
	if v := strings.TrimSpace(o.XMLURL); v != "" {
		return v
	}
	if v := strings.TrimSpace(o.XMLURLLower); v != "" {
		return v
	}
	return ""
}

func (o opmlOutline) Name() string {
	if v := strings.TrimSpace(o.Title); v != "" {
		return v
	}
	if v := strings.TrimSpace(o.Text); v != "" {
		return v
	}
	return o.FeedURL()
}
