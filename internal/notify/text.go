package notify

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	blankPattern = regexp.MustCompile(`[ \t]*\n[\s]*`)
)

// PlainText reduces an HTML message body to readable text.
func PlainText(body string) string {
	text := tagPattern.ReplaceAllString(body, "")
	text = html.UnescapeString(text)
	text = blankPattern.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
