// Package classify flags feed entries that read like marketing copy rather
// than news, so they can be kept out of a digest.
package classify

import (
	"strings"
	"unicode"
)

const (
	MarketingPhraseThreshold = 2
	PolarityThreshold        = 0.5
	PunctuationThreshold     = 3
	CapsWordThreshold        = 3
	MinSentimentWords        = 3
)

// DefaultMarketingPhrases are matched case-insensitively as substrings.
var DefaultMarketingPhrases = []string{
	"limited time",
	"act now",
	"sign up today",
	"sign up now",
	"register now",
	"buy now",
	"order now",
	"free trial",
	"exclusive offer",
	"special offer",
	"don't miss",
	"do not miss",
	"best-in-class",
	"game-changer",
	"game changer",
	"revolutionary",
	"cutting-edge",
	"world-class",
	"industry-leading",
	"unlock the power",
	"supercharge",
	"book a demo",
	"request a demo",
	"get started today",
	"discount",
	"promo code",
	"webinar",
	"sponsored",
	"join us",
	"learn more",
}

// DefaultAcronyms are all-caps words that are ordinary in AI news and do not
// count as shouting.
var DefaultAcronyms = []string{
	"AI", "AGI", "ML", "LLM", "LLMS", "NLP", "RL", "RAG", "GPT", "GPU", "GPUS",
	"CPU", "TPU", "NPU", "API", "APIS", "SDK", "CLI", "UI", "UX", "OS", "IDE",
	"HTTP", "JSON", "SQL", "AWS", "GCP", "IBM", "AMD", "NVIDIA", "ARM", "TSMC",
	"MIT", "NASA", "NIST", "DARPA", "IEEE", "CERN", "OECD", "UN", "EU", "US",
	"USA", "UK", "FDA", "FTC", "SEC", "DOJ", "CEO", "CTO", "CFO", "PHD", "MRI",
	"CT", "DNA", "RNA", "JAMA", "IPO", "VC", "AR", "VR", "XR", "IOT", "SAAS",
	"OSS", "ICLR", "ICML", "CVPR", "NEURIPS", "ACL", "AAAI", "PDF", "FAQ",
}

// Classifier holds the thresholds of the promotional heuristic. The zero
// value is not useful; start from Default.
type Classifier struct {
	Phrases                  []string
	Acronyms                 map[string]bool
	MarketingPhraseThreshold int
	PolarityThreshold        float64
	PunctuationThreshold     int
	CapsWordThreshold        int
	MinSentimentWords        int
}

func Default() Classifier {
	return Classifier{
		Phrases:                  DefaultMarketingPhrases,
		Acronyms:                 acronymSet(DefaultAcronyms),
		MarketingPhraseThreshold: MarketingPhraseThreshold,
		PolarityThreshold:        PolarityThreshold,
		PunctuationThreshold:     PunctuationThreshold,
		CapsWordThreshold:        CapsWordThreshold,
		MinSentimentWords:        MinSentimentWords,
	}
}

// Signals is the breakdown behind an IsPromotional decision.
type Signals struct {
	Phrases     int
	Polarity    float64
	Punctuation int
	CapsWords   int
}

// IsPromotional reports whether any of the four signals crosses its
// threshold.
func (c Classifier) IsPromotional(text string) bool {
	s := c.Score(text)
	return s.Phrases > c.MarketingPhraseThreshold ||
		s.Polarity > c.PolarityThreshold ||
		s.Punctuation > c.PunctuationThreshold ||
		s.CapsWords > c.CapsWordThreshold
}

func (c Classifier) Score(text string) Signals {
	return Signals{
		Phrases:     c.phraseMatches(text),
		Polarity:    c.polarity(text),
		Punctuation: strings.Count(text, "!") + strings.Count(text, "?"),
		CapsWords:   c.capsWords(text),
	}
}

func (c Classifier) phraseMatches(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, p := range c.Phrases {
		n += strings.Count(lower, strings.ToLower(p))
	}
	return n
}

// capsWords counts words of two or more letters written entirely in upper
// case. Known acronyms and words carrying a digit (GPT-4, H100) are skipped.
func (c Classifier) capsWords(text string) int {
	n := 0
	for _, w := range strings.FieldsFunc(text, isWordSep) {
		letters, upper := 0, 0
		digit := false
		for _, r := range w {
			switch {
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsLetter(r):
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		if digit || letters < 2 || upper != letters {
			continue
		}
		if c.Acronyms[strings.Trim(w, "'-")] {
			continue
		}
		n++
	}
	return n
}

func acronymSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToUpper(w)] = true
	}
	return set
}

func isWordSep(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
}
