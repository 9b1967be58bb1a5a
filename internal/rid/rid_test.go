package rid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := New("post")
		if !strings.HasPrefix(id, "post_") {
			t.Fatalf("New(post) = %q, missing prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestKSID(t *testing.T) {
	var g Generator = KSID{}
	a := g.New("trk")
	b := g.New("trk")
	if a == b {
		t.Errorf("consecutive ids are equal: %q", a)
	}
	if got := Prefix(a); got != "trk" {
		t.Errorf("Prefix(%q) = %q, want trk", a, got)
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"post_abc", "post"},
		{"album_a_b", "album"},
		{"noprefix", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := Prefix(tt.id); got != tt.want {
				t.Errorf("Prefix(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestSequence(t *testing.T) {
	s := &Sequence{}
	want := []string{"post_1", "post_2", "trk_3"}
	got := []string{s.New("post"), s.New("post"), s.New("trk")}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("id %d = %q, want %q", i, got[i], want[i])
		}
	}
}
