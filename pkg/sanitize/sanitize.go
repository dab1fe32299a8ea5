package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var newlinePattern = regexp.MustCompile(`[\r\n]`)

func String(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

func LogString(s string) string {
	return newlinePattern.ReplaceAllString(s, " ")
}
