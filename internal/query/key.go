package query

import (
	"cmp"
	"strings"
	"time"
)

type keyKind uint8

const (
	kindText keyKind = iota
	kindNumber
)

// Key is a comparable sort key.
type Key struct {
	kind keyKind
	s    string
	n    float64
}

// Text returns a key ordering strings case-insensitively.
func Text(s string) Key {
	return Key{kind: kindText, s: strings.ToLower(s)}
}

// Number returns a numeric key.
func Number[N int | int64 | float64](n N) Key {
	return Key{kind: kindNumber, n: float64(n)}
}

// Time returns a chronological key. The zero time sorts first.
func Time(t time.Time) Key {
	if t.IsZero() {
		return Key{kind: kindNumber}
	}
	return Key{kind: kindNumber, n: float64(t.UnixMilli())}
}

// Date returns a chronological key for an ISO-8601 string. Unparsable values
// sort like the zero time.
func Date(s string) Key {
	t, _ := ParseDate(s)
	return Time(t)
}

// CompareKeys orders two keys. Numbers sort before text.
func CompareKeys(a, b Key) int {
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}
	if a.kind == kindText {
		return strings.Compare(a.s, b.s)
	}
	return cmp.Compare(a.n, b.n)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseDate parses the ISO-8601 shapes found in documents: full timestamps,
// dates, year-month and bare years.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Year returns the four digit year of an ISO-8601 date, or "" when it does
// not parse.
func Year(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return t.Format("2006")
}
