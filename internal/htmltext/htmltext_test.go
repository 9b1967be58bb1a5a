package htmltext

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"tags", "<p>Comeback <b>soon</b>!</p>", "Comeback soon!"},
		{"whitespace", "<p>a\n\n   b</p>\t<p>c</p>", "a b c"},
		{"script", "<p>x</p><script>alert(1)</script>", "x"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		if got := Excerpt("<p>short text</p>", 160); got != "short text" {
			t.Errorf("got %q", got)
		}
	})
	t.Run("truncated at word", func(t *testing.T) {
		got := Excerpt("<p>one two three four</p>", 10)
		if got != "one two…" {
			t.Errorf("got %q, want %q", got, "one two…")
		}
	})
	t.Run("long word", func(t *testing.T) {
		got := Excerpt(strings.Repeat("가", 200), 160)
		if n := utf8.RuneCountInString(got); n != 161 {
			t.Errorf("got %d runes, want 161", n)
		}
		if !strings.HasSuffix(got, "…") {
			t.Errorf("missing ellipsis: %q", got)
		}
	})
	t.Run("disabled", func(t *testing.T) {
		if got := Excerpt("a b c", 0); got != "a b c" {
			t.Errorf("got %q", got)
		}
	})
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello", "hello"},
		{"Hello, World!", "hello-world"},
		{"  Spaced   Out  ", "spaced-out"},
		{"Album #2 (Deluxe)", "album-2-deluxe"},
		{"봄날 Spring", "봄날-spring"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slug(tt.in); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
