package fetch

import (
	"regexp"
	"strings"
)

var wsRegexp = regexp.MustCompile(`\s+`)

func compactText(v string, max int) string {
	v = strings.TrimSpace(wsRegexp.ReplaceAllString(v, " "))
	if max <= 0 || len([]rune(v)) <= max {
		return v
	}
	return string([]rune(v)[:max-1]) + "..."
}

func oneLine(v string) string {
	return strings.TrimSpace(wsRegexp.ReplaceAllString(v, " "))
}

func fallback(v, fb string) string {
	if strings.TrimSpace(v) == "" {
		return fb
	}
	return v
}
