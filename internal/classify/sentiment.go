package classify

import (
	"math"
	"strings"
	"unicode"
)

// lexicon weights are in [-1, 1].
var lexicon = map[string]float64{
	"amazing":       0.9,
	"awesome":       0.9,
	"best":          0.8,
	"brilliant":     0.8,
	"excellent":     0.9,
	"exceptional":   0.8,
	"exciting":      0.7,
	"excited":       0.7,
	"extraordinary": 0.8,
	"fantastic":     0.9,
	"great":         0.7,
	"incredible":    0.9,
	"love":          0.8,
	"outstanding":   0.9,
	"perfect":       0.9,
	"powerful":      0.5,
	"remarkable":    0.7,
	"seamless":      0.6,
	"stunning":      0.8,
	"superb":        0.9,
	"thrilled":      0.8,
	"unbelievable":  0.7,
	"unmatched":     0.7,
	"unparalleled":  0.8,
	"wonderful":     0.9,
	"good":          0.5,
	"better":        0.4,
	"easy":          0.4,
	"effortless":    0.6,
	"delighted":     0.8,
	"happy":         0.6,
	"proud":         0.5,
	"bad":           -0.7,
	"broken":        -0.6,
	"concern":       -0.4,
	"concerns":      -0.4,
	"dangerous":     -0.7,
	"fail":          -0.6,
	"failed":        -0.6,
	"failure":       -0.7,
	"flawed":        -0.6,
	"harm":          -0.7,
	"harmful":       -0.7,
	"poor":          -0.6,
	"problem":       -0.4,
	"risk":          -0.4,
	"risks":         -0.4,
	"terrible":      -0.9,
	"worse":         -0.6,
	"worst":         -0.9,
	"wrong":         -0.5,
}

var negators = map[string]struct{}{
	"not":     {},
	"no":      {},
	"never":   {},
	"without": {},
	"hardly":  {},
	"isn't":   {},
	"aren't":  {},
	"wasn't":  {},
	"don't":   {},
	"doesn't": {},
	"didn't":  {},
	"can't":   {},
	"won't":   {},
}

// negationScope is how many following words a negator flips.
const negationScope = 3

// polarity averages the lexicon weights of the sentiment-bearing words in
// text. With fewer than MinSentimentWords hits the mean is scaled down so a
// single "great" in a headline does not read as a sales pitch.
func (c Classifier) polarity(text string) float64 {
	words := tokenize(text)
	var sum float64
	hits := 0
	flip := 0
	for _, w := range words {
		if _, ok := negators[w]; ok {
			flip = negationScope
			continue
		}
		weight, ok := lexicon[w]
		if flip > 0 {
			flip--
			weight = -weight
		}
		if !ok {
			continue
		}
		sum += weight
		hits++
	}
	if hits == 0 {
		return 0
	}
	score := sum / float64(hits)
	if c.MinSentimentWords > 0 && hits < c.MinSentimentWords {
		score *= float64(hits) / float64(c.MinSentimentWords)
	}
	return math.Max(-1, math.Min(1, score))
}

func tokenize(text string) []string {
	text = strings.ReplaceAll(strings.ToLower(text), "’", "'")
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}
