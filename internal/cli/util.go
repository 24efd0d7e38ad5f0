package cli

import (
	"regexp"
	"strings"
	"time"
)

var wsRegexp = regexp.MustCompile(`\s+`)

func compactText(v string, max int) string {
	v = strings.TrimSpace(wsRegexp.ReplaceAllString(v, " "))
	if max <= 0 || len([]rune(v)) <= max {
		return v
	}
	return string([]rune(v)[:max-1]) + "..."
}

func fallback(v, fb string) string {
	if strings.TrimSpace(v) == "" {
		return fb
	}
	return v
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
