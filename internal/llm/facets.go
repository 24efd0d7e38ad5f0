package llm

import (
	"fmt"
	"strings"
	"text/template"
)

// Facet is one summarization angle requested per feed.
type Facet struct {
	Key       string
	Title     string
	System    string
	User      *template.Template
	MaxTokens int
}

func newFacet(key, title, system, user string, maxTokens int) Facet {
	return Facet{
		Key:       key,
		Title:     title,
		System:    system,
		User:      template.Must(template.New(key).Parse(user)),
		MaxTokens: maxTokens,
	}
}

// Catalog lists every built-in facet. The first four make up the default
// digest.
var Catalog = []Facet{
	newFacet("executive_summary", "Executive Summary",
		"You are a senior technology analyst. Create a concise executive summary focusing on key AI developments and their business implications.",
		"Summarize these AI news items for a busy executive:\n\n{{.Content}}",
		500),
	newFacet("key_insights", "Key Insights",
		"You are an AI strategy consultant who extracts the most important takeaways from industry news.",
		"List the key insights from these AI news items as short bullet points:\n\n{{.Content}}",
		500),
	newFacet("product_innovation", "Product Innovation",
		"You are a product strategist who spots opportunities for new AI products and features.",
		"Identify product innovation opportunities suggested by these AI news items:\n\n{{.Content}}",
		500),
	newFacet("key_concepts", "Key Concepts",
		"You are an AI expert explaining complex concepts in simple terms.",
		"Extract and explain key AI concepts and terms from these articles, with practical examples:\n\n{{.Content}}",
		500),
	newFacet("market_trends", "Market Trends",
		"You are a market analyst tracking the AI industry.",
		"Describe the market trends these AI news items point to:\n\n{{.Content}}",
		400),
	newFacet("competitors", "Competitive Landscape",
		"You are a competitive intelligence analyst covering AI companies.",
		"Summarize what these AI news items reveal about competitors and their positioning:\n\n{{.Content}}",
		400),
	newFacet("regulatory", "Regulatory Watch",
		"You are a technology policy analyst.",
		"Point out regulatory, legal or policy implications of these AI news items. Say so briefly if there are none:\n\n{{.Content}}",
		400),
	newFacet("customer_insights", "Customer Insights",
		"You are a customer research lead at an AI company.",
		"Explain what these AI news items suggest about customer needs and adoption:\n\n{{.Content}}",
		400),
}

// FacetsByKey resolves keys against Catalog, keeping the order of keys.
func FacetsByKey(keys []string) ([]Facet, error) {
	byKey := make(map[string]Facet, len(Catalog))
	for _, f := range Catalog {
		byKey[f.Key] = f
	}

	out := make([]Facet, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, raw := range keys {
		key := strings.ToLower(strings.TrimSpace(raw))
		f, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("unknown facet %q (known: %s)", raw, strings.Join(FacetKeys(), ", "))
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one facet is required")
	}
	return out, nil
}

func FacetKeys() []string {
	keys := make([]string, 0, len(Catalog))
	for _, f := range Catalog {
		keys = append(keys, f.Key)
	}
	return keys
}

func (f Facet) prompt(content string) (Prompt, error) {
	var b strings.Builder
	if err := f.User.Execute(&b, struct{ Content string }{content}); err != nil {
		return Prompt{}, fmt.Errorf("facet %s: %w", f.Key, err)
	}
	return Prompt{System: f.System, User: b.String(), MaxTokens: f.MaxTokens}, nil
}
