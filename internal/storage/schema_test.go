package storage

import (
	"errors"
	"testing"

	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

func validTrack() *entity.Track {
	return &entity.Track{
		Base:  entity.Base{ID: "trk_1", CreatedAt: "c", UpdatedAt: "u"},
		Title: "Butterfly",
		Slug:  "butterfly",
	}
}

func TestSchema_Validate(t *testing.T) {
	s := NewSchema[*entity.Track]("tracks")
	tests := []struct {
		name   string
		mutate func(*entity.Track)
		field  string
	}{
		{"valid", func(*entity.Track) {}, ""},
		{"missing id", func(tr *entity.Track) { tr.ID = "" }, "id"},
		{"empty title", func(tr *entity.Track) { tr.Title = "" }, "title"},
		{"negative duration", func(tr *entity.Track) { tr.Duration = -1 }, "duration"},
		{"negative bpm", func(tr *entity.Track) { tr.BPM = -5 }, "bpm"},
		{"nil lists", func(tr *entity.Track) { tr.Tags = nil; tr.Mood = nil }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTrack()
			tt.mutate(tr)
			err := s.Validate(tr)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want FieldError", err)
			}
			if fe.Field != tt.field {
				t.Errorf("Field = %q, want %q", fe.Field, tt.field)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Error("FieldError does not match ErrInvalid")
			}
		})
	}
}

func TestSchema_NullTrackIDs(t *testing.T) {
	s := NewSchema[*entity.Album]("albums")
	a := &entity.Album{Base: entity.Base{ID: "alb_1", CreatedAt: "c", UpdatedAt: "u"}, Title: "T", Slug: "t"}
	if err := s.Validate(a); err != nil {
		t.Errorf("null trackIds rejected: %v", err)
	}
}

func TestSchema_Enum(t *testing.T) {
	s := NewSchema[*entity.User]("users")
	u := &entity.User{
		Base:         entity.Base{ID: "usr_1", CreatedAt: "c", UpdatedAt: "u"},
		Username:     "minji",
		PasswordHash: "x",
		Role:         entity.RoleEditor,
	}
	if err := s.Validate(u); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}
	u.Role = "root"
	var fe *FieldError
	if err := s.Validate(u); !errors.As(err, &fe) || fe.Field != "role" {
		t.Errorf("err = %v, want role FieldError", err)
	}
}

func TestSchema_JSON(t *testing.T) {
	js := NewSchema[*entity.Post]("posts").JSON()
	if js.Title != "posts" {
		t.Errorf("Title = %q", js.Title)
	}
	for _, name := range []string{"id", "createdAt", "updatedAt", "title", "slug"} {
		found := false
		for _, r := range js.Required {
			if r == name {
				found = true
			}
		}
		if !found {
			t.Errorf("%q not required: %v", name, js.Required)
		}
	}
	if _, ok := js.Properties.Get("content"); !ok {
		t.Error("content property missing")
	}
}

func TestSchema_Reasons(t *testing.T) {
	s := NewSchema[*entity.Track]("tracks")
	tests := []struct {
		name   string
		mutate func(*entity.Track)
		want   string
	}{
		{"empty title", func(tr *entity.Track) { tr.Title = "" }, "title must not be empty"},
		{"negative duration", func(tr *entity.Track) { tr.Duration = -1 }, "duration must be at least 0"},
		{"first field wins", func(tr *entity.Track) { tr.Title = ""; tr.BPM = -1 }, "bpm must be at least 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTrack()
			tt.mutate(tr)
			err := s.Validate(tr)
			if err == nil || err.Error() != tt.want {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestFieldPath(t *testing.T) {
	tests := []struct {
		loc  []string
		want string
	}{
		{nil, ""},
		{[]string{"title"}, "title"},
		{[]string{"lines", "2", "text"}, "lines[2].text"},
		{[]string{"0"}, "[0]"},
	}
	for _, tt := range tests {
		if got := fieldPath(tt.loc); got != tt.want {
			t.Errorf("fieldPath(%q) = %q, want %q", tt.loc, got, tt.want)
		}
	}
}
