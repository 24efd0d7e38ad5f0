package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/odysseus0/aidigest/internal/model"
)

type Digester struct {
	completer Completer
	facets    []Facet
	logger    *slog.Logger
}

func NewDigester(completer Completer, facets []Facet, logger *slog.Logger) *Digester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Digester{completer: completer, facets: facets, logger: logger}
}

func (d *Digester) Facets() []Facet {
	return d.facets
}

// Digest requests every facet for entries. The returned record's sources are
// exactly the entries that fed the prompts. If any request fails the record
// carries only the error, in the first section.
func (d *Digester) Digest(ctx context.Context, entries []model.Entry) model.DigestRecord {
	rec := d.emptyRecord()
	if len(entries) == 0 {
		return rec
	}

	content := promptContent(entries)
	for i, f := range d.facets {
		text, err := d.complete(ctx, f, content)
		if err != nil {
			d.logger.Warn("facet generation failed", "facet", f.Key, "error", err)
			return d.failedRecord(err)
		}
		rec.Sections[i].Text = text
	}

	rec.Sources = make([]model.SourceRef, 0, len(entries))
	for _, e := range entries {
		rec.Sources = append(rec.Sources, model.SourceRef{Title: e.Title, Link: e.Link})
	}
	return rec
}

func (d *Digester) complete(ctx context.Context, f Facet, content string) (string, error) {
	p, err := f.prompt(content)
	if err != nil {
		return "", err
	}
	text, err := d.completer.Complete(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.Key, err)
	}
	return strings.TrimSpace(text), nil
}

func (d *Digester) emptyRecord() model.DigestRecord {
	sections := make([]model.Section, 0, len(d.facets))
	for _, f := range d.facets {
		sections = append(sections, model.Section{Key: f.Key, Title: f.Title})
	}
	return model.DigestRecord{Sections: sections}
}

func (d *Digester) failedRecord(err error) model.DigestRecord {
	rec := d.emptyRecord()
	msg := "Error analyzing content: " + err.Error()
	if len(rec.Sections) > 0 {
		rec.Sections[0].Text = msg
	}
	rec.Err = err.Error()
	return rec
}

func promptContent(entries []model.Entry) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nSummary: %s", e.Title, e.Summary))
	}
	return strings.Join(blocks, "\n\n")
}
