package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy drops every element and the content of script/style blocks.
	strictPolicy  = bluemonday.StrictPolicy()
	whitespaceRun = regexp.MustCompile(`\s+`)
	percentOctets = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
)

// maxStripPasses bounds nested entity encodings such as &amp;lt;b&amp;gt;.
const maxStripPasses = 8

// stripAndDecode alternates tag stripping and entity decoding until the value
// is stable, so entity-encoded markup never survives as live markup.
func stripAndDecode(s string) string {
	for i := 0; i < maxStripPasses; i++ {
		out := html.UnescapeString(strictPolicy.Sanitize(s))
		if out == s {
			return out
		}
		s = out
	}
	return strictPolicy.Sanitize(s)
}

// StripTags removes all markup from s and decodes HTML entities in what remains.
// The result is trimmed.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(stripAndDecode(s))
}

// TextField cleans a single-line value coming from a user or a file cell.
// Invalid UTF-8 yields an empty string; markup, percent-encoded octets and
// control characters are removed; whitespace runs collapse to one space.
func TextField(s string) string {
	if s == "" || !utf8.ValidString(s) {
		return ""
	}

	if strings.ContainsAny(s, "<>&") {
		s = stripAndDecode(s)
	}

	s = percentOctets.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
