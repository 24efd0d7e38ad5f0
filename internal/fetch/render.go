package fetch

import (
	"html"
	"strings"

	markdown "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

// maxSummaryChars bounds the per-entry text that ends up in a prompt.
const maxSummaryChars = 1500

type Renderer struct {
	converter *markdown.Converter
	strict    *bluemonday.Policy
}

func NewRenderer() *Renderer {
	return &Renderer{
		converter: markdown.NewConverter("", true, nil),
		strict:    bluemonday.StrictPolicy(),
	}
}

func (r *Renderer) HTMLToMarkdown(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	out, err := r.converter.ConvertString(raw)
	if err != nil {
		return r.StripTags(raw)
	}
	return strings.TrimSpace(out)
}

// StripTags returns the text content of raw with all markup removed and
// entities decoded.
func (r *Renderer) StripTags(raw string) string {
	return oneLine(html.UnescapeString(r.strict.Sanitize(raw)))
}

// Summary turns an item description into compact prompt text.
func (r *Renderer) Summary(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	md := r.HTMLToMarkdown(CleanHTML(description))
	return compactText(md, maxSummaryChars)
}
