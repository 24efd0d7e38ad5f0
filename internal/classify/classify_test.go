package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPromotional(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "neutral research news",
			text: "Researchers describe a new method for training language models with less data. The paper reports results on three benchmarks.",
			want: false,
		},
		{
			name: "marketing phrases",
			text: "Limited time: get a free trial of our platform. Book a demo and use promo code AI24.",
			want: true,
		},
		{
			name: "exactly threshold phrases is not enough",
			text: "Join us at the webinar next week.",
			want: false,
		},
		{
			name: "strong positive sentiment",
			text: "An amazing, incredible and fantastic release with stunning results.",
			want: true,
		},
		{
			name: "negated praise",
			text: "The results were not great and the model is not amazing nor stunning at all.",
			want: false,
		},
		{
			name: "punctuation",
			text: "Is this the future? Can it code? Will it replace us? Find out!",
			want: true,
		},
		{
			name: "shouting",
			text: "THE NEW MODEL IS HERE for everyone",
			want: true,
		},
		{
			name: "hardware launch full of acronyms",
			text: "NVIDIA unveils new GPU for LLM inference\nThe H100 successor targets AI training and cuts API latency for cloud customers.",
			want: false,
		},
		{
			name: "research item full of acronyms",
			text: "MIT researchers train AI to read MRI scans\nThe team at MIT published results in JAMA showing the AI model matched radiologists.",
			want: false,
		},
		{
			name: "platform update full of acronyms",
			text: "OpenAI ships GPT update with faster API\nThe GPT-5 release is available on AWS and GCP through the API.",
			want: false,
		},
		{
			name: "shouting mixed with acronyms",
			text: "HUGE SAVINGS THIS WEEK ONLY on GPU clusters for AI teams",
			want: true,
		},
		{
			name: "acronyms under threshold",
			text: "NASA and MIT publish AI safety results.",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsPromotional(tt.text), "signals: %+v", c.Score(tt.text))
		})
	}
}

func TestIsPromotionalDeterministic(t *testing.T) {
	c := Default()
	text := "Don't miss our exclusive offer! Sign up today!!"
	first := c.IsPromotional(text)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, c.IsPromotional(text))
	}
}

func TestScore(t *testing.T) {
	c := Default()

	s := c.Score("Act now! Act now? GPT-4 and LLaMA OK, the API is FREE")
	assert.Equal(t, 2, s.Phrases)
	assert.Equal(t, 2, s.Punctuation)
	// OK and FREE count; GPT-4 has a digit, API is an acronym, LLaMA is mixed.
	assert.Equal(t, 2, s.CapsWords)
}

func TestAcronymsAreTunable(t *testing.T) {
	c := Default()
	text := "DEEPMIND and OPENAI and ANTHROPIC and MISTRAL"
	require.True(t, c.IsPromotional(text))

	for _, w := range []string{"deepmind", "openai", "anthropic", "mistral"} {
		c.Acronyms[strings.ToUpper(w)] = true
	}
	assert.Equal(t, 0, c.Score(text).CapsWords)
	assert.False(t, c.IsPromotional(text))

	c.Acronyms = nil
	assert.Equal(t, 4, c.Score("AI GPU LLM API").CapsWords)
}

func TestPolarityDamping(t *testing.T) {
	c := Default()

	single := c.polarity("A great result")
	assert.InDelta(t, 0.7/3, single, 1e-9)

	c.MinSentimentWords = 0
	assert.InDelta(t, 0.7, c.polarity("A great result"), 1e-9)
	assert.Zero(t, c.polarity("No sentiment words here"))
}

func TestThresholdsAreTunable(t *testing.T) {
	c := Default()
	text := "Join us for the webinar."
	require.False(t, c.IsPromotional(text))

	c.MarketingPhraseThreshold = 1
	assert.True(t, c.IsPromotional(text))
}
