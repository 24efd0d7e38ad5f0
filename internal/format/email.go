// Package format renders digests for the email and chat channels. Both
// renderers are pure: the same digests always produce the same output.
package format

import (
	"strings"
	"time"

	"github.com/odysseus0/aidigest/internal/model"
)

const (
	NoUpdatesText = "There are no recent updates for your AI news digest."
	dateLayout    = "2006-01-02"
)

// AllEmpty reports whether there is nothing worth sending.
func AllEmpty(digests []model.FeedDigest) bool {
	for _, d := range digests {
		if !d.Record.IsEmpty() {
			return false
		}
	}
	return true
}

func EmailSubject(date time.Time, digests []model.FeedDigest) string {
	if AllEmpty(digests) {
		return "AI News Digest - No New Updates - " + date.Format(dateLayout)
	}
	return "AI News Digest - " + date.Format(dateLayout)
}

func EmailBody(digests []model.FeedDigest) string {
	if AllEmpty(digests) {
		return NoUpdatesText
	}

	var b strings.Builder
	b.WriteString("Daily AI News Digest:\n\n")
	for _, d := range digests {
		b.WriteString("\n" + d.Source.Name + ":\n")
		for _, s := range d.Record.Sections {
			b.WriteString(strings.ToUpper(s.Title) + ":\n")
			b.WriteString(s.Text + "\n\n")
		}
		if len(d.Record.Sources) > 0 {
			b.WriteString("Sources:\n")
			for _, src := range d.Record.Sources {
				b.WriteString("- " + src.Title + ": " + src.Link + "\n")
			}
		}
		b.WriteString(strings.Repeat("-", 50) + "\n")
	}
	return b.String()
}
