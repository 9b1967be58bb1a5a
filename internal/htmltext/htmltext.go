// Package htmltext derives plain text from article HTML.
package htmltext

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// ExcerptLength is the default excerpt size in runes, ellipsis excluded.
const ExcerptLength = 160

// Text returns the visible text of an HTML fragment with whitespace runs
// collapsed to single spaces.
func Text(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Excerpt returns the first n runes of the fragment's text. A truncated
// excerpt is cut at the last word boundary and ends with "…".
func Excerpt(html string, n int) string {
	text := Text(html)
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	cut := runes[:n]
	if i := lastSpace(cut); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(string(cut), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "…"
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == ' ' {
			return i
		}
	}
	return -1
}

// Slug turns a title into a URL path segment: lowercase letters and digits
// separated by single hyphens. Letters outside ASCII are kept, so Hangul
// titles produce Hangul slugs.
func Slug(title string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}
