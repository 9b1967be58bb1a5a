package entity

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/lumina-fans/idolcms/internal/query"
)

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	got := FormatTime(time.Date(2024, 3, 1, 21, 0, 0, 5e6, loc))
	if got != "2024-03-01T12:00:00.005Z" {
		t.Errorf("FormatTime = %q", got)
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		role, required Role
		want           bool
	}{
		{RoleAdmin, RoleEditor, true},
		{RoleEditor, RoleEditor, true},
		{RoleUser, RoleEditor, false},
		{"", RoleUser, false},
		{"root", RoleUser, false},
	}
	for _, tt := range tests {
		if got := tt.role.AtLeast(tt.required); got != tt.want {
			t.Errorf("%q.AtLeast(%q) = %v, want %v", tt.role, tt.required, got, tt.want)
		}
	}
	if Role("root").Valid() || !RoleEditor.Valid() {
		t.Error("Valid")
	}
}

func TestPost_Year(t *testing.T) {
	p := &Post{Base: Base{CreatedAt: "2023-12-31T23:00:00.000Z"}}
	if v, _ := p.FilterValues("year"); v[0] != "2023" {
		t.Errorf("year from createdAt = %v", v)
	}
	p.PublishedAt = "2024-01-02T00:00:00.000Z"
	if v, _ := p.FilterValues("year"); v[0] != "2024" {
		t.Errorf("year from publishedAt = %v", v)
	}
	if _, ok := p.FilterValues("nope"); ok {
		t.Error("unknown field reported as known")
	}
	if _, ok := p.SortKey("createdAt"); !ok {
		t.Error("createdAt not sortable")
	}
}

func TestPost_Run(t *testing.T) {
	posts := []*Post{
		{Base: Base{ID: "1"}, Article: Article{Title: "Bravo", Status: StatusDraft}},
		{Base: Base{ID: "2"}, Article: Article{Title: "alpha", Status: StatusPublished}},
		{Base: Base{ID: "3"}, Article: Article{Title: "Charlie", Status: StatusPublished}},
	}
	page, err := query.Run(posts, query.Options{Filters: query.Criteria{"status": "PUBLISHED"}, SortBy: "title"})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || page.Items[0].ID != "2" || page.Items[1].ID != "3" {
		t.Errorf("Run = %+v", page)
	}
}

func TestUser_Public(t *testing.T) {
	u := &User{Base: Base{ID: "usr_1"}, Username: "minji", PasswordHash: "secret", Role: RoleUser}
	raw, err := json.Marshal(u.Public())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "secret") || strings.Contains(string(raw), "passwordHash") {
		t.Errorf("credentials leaked: %s", raw)
	}
}

func TestMedia_Kind(t *testing.T) {
	for ct, want := range map[string]string{"image/png": "image", "audio/mpeg": "audio", "": ""} {
		if got := (&Media{ContentType: ct}).Kind(); got != want {
			t.Errorf("Kind(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestTrack_Features(t *testing.T) {
	tr := &Track{Base: Base{ID: "trk_1"}, Mood: []string{"bright"}, BPM: 0, AlbumID: "alb_1"}
	f := tr.Features()
	if f.HasNumber || f.Parent != "alb_1" || f.ID != "trk_1" {
		t.Errorf("Features = %+v", f)
	}
}
