package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odysseus0/aidigest/internal/model"
)

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []Prompt
	failOn  string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, p Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if f.failOn != "" && strings.Contains(p.User, f.failOn) {
		return "", f.err
	}
	return "  answer for: " + p.System + "  \n", nil
}

func defaultFacets(t *testing.T) []Facet {
	t.Helper()
	facets, err := FacetsByKey([]string{"executive_summary", "key_insights", "product_innovation", "key_concepts"})
	require.NoError(t, err)
	return facets
}

var sampleEntries = []model.Entry{
	{Title: "Model A released", Summary: "A new open model.", Link: "https://example.com/a"},
	{Title: "Benchmark B", Summary: "Results on B.", Link: "https://example.com/b"},
}

func TestDigestPopulatesEveryFacet(t *testing.T) {
	fc := &fakeCompleter{}
	d := NewDigester(fc, defaultFacets(t), nil)

	rec := d.Digest(context.Background(), sampleEntries)

	require.Empty(t, rec.Err)
	require.Len(t, rec.Sections, 4)
	require.Len(t, fc.prompts, 4)
	for i, s := range rec.Sections {
		assert.Equal(t, "answer for: "+fc.prompts[i].System, s.Text, "section %s is trimmed", s.Key)
		assert.Equal(t, 500, fc.prompts[i].MaxTokens)
		assert.Contains(t, fc.prompts[i].User, "Title: Model A released\nSummary: A new open model.\n\nTitle: Benchmark B\nSummary: Results on B.")
	}
	assert.Equal(t, "executive_summary", rec.Sections[0].Key)
	assert.Equal(t, []model.SourceRef{
		{Title: "Model A released", Link: "https://example.com/a"},
		{Title: "Benchmark B", Link: "https://example.com/b"},
	}, rec.Sources)
}

func TestDigestEmptyInput(t *testing.T) {
	fc := &fakeCompleter{}
	d := NewDigester(fc, defaultFacets(t), nil)

	rec := d.Digest(context.Background(), nil)

	assert.True(t, rec.IsEmpty())
	assert.Empty(t, rec.Sources)
	assert.Empty(t, rec.Err)
	assert.Len(t, rec.Sections, 4)
	assert.Empty(t, fc.prompts, "no requests for empty input")
}

func TestDigestFailureKeepsOnlyError(t *testing.T) {
	fc := &fakeCompleter{failOn: "product innovation", err: errors.New("rate limited")}
	d := NewDigester(fc, defaultFacets(t), nil)

	rec := d.Digest(context.Background(), sampleEntries)

	assert.Equal(t, "product_innovation: rate limited", rec.Err)
	assert.Equal(t, "Error analyzing content: product_innovation: rate limited", rec.Sections[0].Text)
	for _, s := range rec.Sections[1:] {
		assert.Empty(t, s.Text, "section %s", s.Key)
	}
	assert.Empty(t, rec.Sources)
	assert.False(t, rec.IsEmpty())
}

func TestFacetsByKey(t *testing.T) {
	facets, err := FacetsByKey([]string{"Regulatory", "key_concepts", "regulatory"})
	require.NoError(t, err)
	require.Len(t, facets, 2)
	assert.Equal(t, "regulatory", facets[0].Key)
	assert.Equal(t, "key_concepts", facets[1].Key)

	_, err = FacetsByKey([]string{"horoscope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown facet")

	_, err = FacetsByKey(nil)
	require.Error(t, err)
}

func TestCatalogTemplatesRender(t *testing.T) {
	for _, f := range Catalog {
		p, err := f.prompt("CONTENT")
		require.NoError(t, err, f.Key)
		assert.True(t, strings.HasSuffix(p.User, "CONTENT"), f.Key)
		assert.NotEmpty(t, p.System, f.Key)
		assert.Positive(t, p.MaxTokens, f.Key)
	}
}
