package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
	"golang.org/x/crypto/bcrypt"
)

type announcement struct {
	title, url string
}

type recorder struct {
	got []announcement
}

func (r *recorder) Announce(_ context.Context, title, url string) {
	r.got = append(r.got, announcement{title, url})
}

func TestArticleService_Create(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewArticleService(s.Posts, "/posts/", nil)
	p, err := svc.Create(editor, &entity.Post{Article: entity.Article{
		Title:   "Comeback Showcase!",
		Content: "<p>The group returns with <b>a new album</b>.</p>",
	}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Slug != "comeback-showcase" {
		t.Errorf("Slug = %q", p.Slug)
	}
	if p.Excerpt != "The group returns with a new album." {
		t.Errorf("Excerpt = %q", p.Excerpt)
	}
	if p.Status != entity.StatusDraft {
		t.Errorf("Status = %q", p.Status)
	}
}

func TestArticleService_ReplaceDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewArticleService(s.Posts, "/posts/", nil)
	p, err := svc.Create(editor, &entity.Post{Article: entity.Article{Title: "Teaser", Status: entity.StatusPublished}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Replace(editor, p.ID, &entity.Post{Article: entity.Article{Title: "Teaser Two"}})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got.Status != entity.StatusDraft || got.Slug != "teaser-two" {
		t.Errorf("Replace = status %q slug %q", got.Status, got.Slug)
	}
	stored, err := s.Posts.Get(p.ID)
	if err != nil || stored.Status != entity.StatusDraft {
		t.Errorf("stored status = %v, %v", stored, err)
	}
}

func TestArticleService_Permissions(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewArticleService(s.News, "/news/", nil)
	if _, err := svc.Create(fan, &entity.News{Article: entity.Article{Title: "x"}}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(s.News.Path()); !os.IsNotExist(err) {
		t.Error("denied create wrote the document")
	}
	n, err := svc.Create(editor, &entity.News{Article: entity.Article{Title: "x"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(fan, n.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Delete: %v", err)
	}
	if err := svc.Delete(admin, n.ID); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestArticleService_Publish(t *testing.T) {
	s, _ := newTestStore(t)
	rec := &recorder{}
	svc := NewArticleService(s.Posts, "/posts/", rec)
	p, err := svc.Create(editor, newPost("Hello", "hello"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Publish(t.Context(), fan, p.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Publish by fan: %v", err)
	}
	if len(rec.got) != 0 {
		t.Fatal("denied publish was announced")
	}
	got, err := svc.Publish(t.Context(), editor, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != entity.StatusPublished || got.PublishedAt != "2024-03-01T12:00:00.000Z" {
		t.Errorf("got %q at %q", got.Status, got.PublishedAt)
	}
	want := []announcement{{"Hello", "/posts/hello"}}
	if len(rec.got) != 1 || rec.got[0] != want[0] {
		t.Errorf("announced %v, want %v", rec.got, want)
	}
}

func seedCatalog(t *testing.T, s *Store) (album *entity.Album, tracks []*entity.Track) {
	t.Helper()
	specs := []struct {
		title string
		mood  []string
		bpm   int
	}{
		{"One", []string{"bright"}, 120},
		{"Two", []string{"bright"}, 125},
		{"Three", []string{"dark"}, 80},
	}
	for _, sp := range specs {
		tr, err := s.Tracks.Create(&entity.Track{Title: sp.title, Slug: strings.ToLower(sp.title), Mood: sp.mood, BPM: sp.bpm})
		if err != nil {
			t.Fatal(err)
		}
		tracks = append(tracks, tr)
	}
	album, err := s.Albums.Create(&entity.Album{
		Title:    "Debut",
		Slug:     "debut",
		TrackIDs: []string{tracks[2].ID, "trk_missing", tracks[0].ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	return album, tracks
}

func TestCatalogService_AlbumTracks(t *testing.T) {
	s, _ := newTestStore(t)
	album, tracks := seedCatalog(t, s)
	c := NewCatalogService(s, query.DefaultWeights)
	got, err := c.AlbumTracks(album.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != tracks[2].ID || got[1].ID != tracks[0].ID {
		t.Errorf("AlbumTracks = %v", got)
	}
	if _, err := c.AlbumTracks("alb_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestCatalogService_LyricsAndCredits(t *testing.T) {
	s, _ := newTestStore(t)
	_, tracks := seedCatalog(t, s)
	c := NewCatalogService(s, query.DefaultWeights)
	tr := tracks[0]

	ko, _ := s.Lyrics.Create(&entity.Lyrics{TrackID: tr.ID, Language: "ko", Content: "[00:01.00]안녕"})
	en, _ := s.Lyrics.Create(&entity.Lyrics{TrackID: "elsewhere", Language: "en", Content: "hi"})
	if _, err := s.Tracks.Update(tr.ID, func(track *entity.Track) error {
		track.LyricsIDs = []string{en.ID, "lyr_missing"}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	lyr, err := c.TrackLyrics(tr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lyr) != 2 || lyr[0].ID != en.ID || lyr[1].ID != ko.ID {
		t.Errorf("TrackLyrics = %v", lyr)
	}

	cr, err := c.TrackCredits(tr.ID)
	if err != nil || cr != nil {
		t.Fatalf("TrackCredits = %v, %v; want nil", cr, err)
	}
	made, _ := s.Credits.Create(&entity.Credits{TrackID: tr.ID, Composers: []string{"Kim"}})
	cr, err = c.TrackCredits(tr.ID)
	if err != nil || cr == nil || cr.ID != made.ID {
		t.Errorf("TrackCredits = %v, %v", cr, err)
	}
}

func TestCatalogService_SimilarTracks(t *testing.T) {
	s, _ := newTestStore(t)
	_, tracks := seedCatalog(t, s)
	c := NewCatalogService(s, query.DefaultWeights)
	got, err := c.SimilarTracks(tracks[0].ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	// "Two" shares the mood and is within the tempo tolerance: 3 + 2.
	if len(got) != 1 || got[0].Item.ID != tracks[1].ID || got[0].Score != 5 {
		t.Errorf("SimilarTracks = %+v", got)
	}
	if _, err := c.SimilarTracks("trk_missing", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestPlaylistService(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewPlaylistService(s.Playlists)
	p, err := svc.Create(fan, &entity.Playlist{Name: "Mine"})
	if err != nil {
		t.Fatal(err)
	}
	if p.OwnerID != fan.UserID || p.TrackIDs == nil {
		t.Errorf("Create = %+v", p)
	}
	if _, err := svc.Create(fan, &entity.Playlist{Name: "Theirs", OwnerID: other.UserID}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("create for another user: %v", err)
	}

	before, _ := os.ReadFile(s.Playlists.Path())
	if _, err := svc.Replace(other, p.ID, &entity.Playlist{Name: "Stolen"}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Replace by other: %v", err)
	}
	if err := svc.Delete(other, p.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Delete by other: %v", err)
	}
	after, _ := os.ReadFile(s.Playlists.Path())
	if string(before) != string(after) {
		t.Error("denied mutation changed the document")
	}

	got, err := svc.Replace(fan, p.ID, &entity.Playlist{Name: "Renamed", TrackIDs: []string{"trk_1"}})
	if err != nil {
		t.Fatal(err)
	}
	if got.OwnerID != fan.UserID || got.Name != "Renamed" {
		t.Errorf("Replace = %+v", got)
	}
	if _, err := svc.Replace(fan, p.ID, &entity.Playlist{Name: "Gift", OwnerID: other.UserID}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("owner transfer by non-admin: %v", err)
	}
	if err := svc.Delete(admin, p.ID); err != nil {
		t.Errorf("Delete by admin: %v", err)
	}
}

func TestUserService(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewUserService(s.Users, bcrypt.MinCost)

	first, err := svc.Register(entity.Actor{}, NewUser{Username: "Owner", Password: "password1", Role: entity.RoleAdmin})
	if err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	if first.Role != entity.RoleAdmin || first.PasswordHash == "password1" {
		t.Errorf("first = %+v", first)
	}
	if _, err := svc.Register(entity.Actor{}, NewUser{Username: "owner", Password: "password2"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate username: %v", err)
	}
	if _, err := svc.Register(entity.Actor{}, NewUser{Username: "sneaky", Password: "password3", Role: entity.RoleAdmin}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("self-granted admin: %v", err)
	}
	if _, err := svc.Register(entity.Actor{}, NewUser{Username: "short", Password: "x"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("short password: %v", err)
	}
	u, err := svc.Register(entity.Actor{}, NewUser{Username: "fan", Password: "password4"})
	if err != nil {
		t.Fatal(err)
	}

	if got, err := svc.Authenticate("FAN", "password4"); err != nil || got.ID != u.ID {
		t.Errorf("Authenticate = %v, %v", got, err)
	}
	if _, err := svc.Authenticate("fan", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := svc.Authenticate("ghost", "password4"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: %v", err)
	}

	fanActor := entity.Actor{UserID: u.ID, Role: entity.RoleUser}
	if _, err := svc.SetRole(fanActor, u.ID, entity.RoleAdmin); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("SetRole by user: %v", err)
	}
	adminActor := entity.Actor{UserID: first.ID, Role: entity.RoleAdmin}
	got, err := svc.SetRole(adminActor, u.ID, entity.RoleEditor)
	if err != nil || got.Role != entity.RoleEditor {
		t.Errorf("SetRole = %v, %v", got, err)
	}
	if _, err := svc.SetRole(adminActor, u.ID, "root"); !errors.Is(err, ErrInvalid) {
		t.Errorf("unknown role: %v", err)
	}

	if _, err := svc.List(fanActor, query.Options{}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("List by user: %v", err)
	}
	list, err := svc.List(adminActor, query.Options{})
	if err != nil || list.Total != 2 || len(list.Items) != 2 {
		t.Fatalf("List = %+v, %v", list, err)
	}
	if err := svc.Delete(entity.Actor{UserID: "usr_x", Role: entity.RoleUser}, u.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Delete by stranger: %v", err)
	}
	if err := svc.Delete(fanActor, u.ID); err != nil {
		t.Errorf("Delete self: %v", err)
	}
}

type fixedLocator string

func (f fixedLocator) CountryCode(string) string { return string(f) }

func TestTelemetryService_Record(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewTelemetryService(s.Events, fixedLocator("KR"))
	ev, err := svc.Record(t.Context(), Visit{IP: "1.2.3.4", UserAgent: "test-agent"}, &entity.Event{Type: "page_view", Path: "/"})
	if err != nil {
		t.Fatal(err)
	}
	if ev.Country != "KR" || ev.UserAgent != "test-agent" || ev.ID == "" {
		t.Errorf("Record = %+v", ev)
	}
	if _, err := svc.Record(t.Context(), Visit{}, &entity.Event{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("event without type: %v", err)
	}
}

func TestPushService_Subscribe(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewPushService(s.PushSubscriptions)
	sub := func() *entity.PushSubscription {
		return &entity.PushSubscription{Endpoint: "https://push.example/1", P256dh: "k", Auth: "a"}
	}
	first, err := svc.Subscribe(sub())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Subscribe(sub()); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate endpoint: %v", err)
	}
	if err := svc.Remove(first.ID); err != nil {
		t.Fatal(err)
	}
	subs, _ := svc.List()
	if len(subs) != 0 {
		t.Errorf("len = %d", len(subs))
	}
	if _, err := svc.Subscribe(sub()); err != nil {
		t.Fatal(err)
	}
	if err := svc.Unsubscribe("https://push.example/1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Unsubscribe("https://push.example/1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Unsubscribe: %v", err)
	}
}

func TestMediaService(t *testing.T) {
	s, _ := newTestStore(t)
	dir := filepath.Join(s.Dir(), "media")
	svc := NewMediaService(s.Media, dir, 16)

	if _, err := svc.Save(fan, Upload{Filename: "a.png", Body: strings.NewReader("x")}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("upload by fan: %v", err)
	}
	if _, err := svc.Save(editor, Upload{Filename: "big.png", Body: strings.NewReader(strings.Repeat("x", 17))}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized upload: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("leftover files: %v", entries)
	}

	m, err := svc.Save(editor, Upload{Filename: "../photo.PNG", Body: strings.NewReader("pixels")})
	if err != nil {
		t.Fatal(err)
	}
	if m.Filename != "photo.PNG" || m.Size != 6 || m.ContentType != "image/png" || m.UploaderID != editor.UserID {
		t.Errorf("Save = %+v", m)
	}
	if m.Kind() != "image" {
		t.Errorf("Kind = %q", m.Kind())
	}
	_, f, err := svc.Open(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := svc.Delete(fan, m.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Delete by fan: %v", err)
	}
	if err := svc.Delete(editor, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, m.StoredName)); !os.IsNotExist(err) {
		t.Errorf("file not removed: %v", err)
	}
}

func TestEditorialService(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewEditorialService(s.Members)
	if _, err := svc.Create(fan, &entity.Member{Name: "Kim Yuna", StageName: "Yuna"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("fan create: err = %v", err)
	}
	m, err := svc.Create(editor, &entity.Member{Name: "Kim Yuna", StageName: "Yuna"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Replace(fan, m.ID, &entity.Member{Name: "Kim Yuna", StageName: "Yuna!"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("fan replace: err = %v", err)
	}
	got, err := svc.Replace(admin, m.ID, &entity.Member{Name: "Kim Yuna", StageName: "Yuna!"})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != m.ID || got.StageName != "Yuna!" {
		t.Errorf("Replace = %+v", got)
	}
	if err := svc.Delete(fan, m.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("fan delete: err = %v", err)
	}
	if err := svc.Delete(editor, m.ID); err != nil {
		t.Fatal(err)
	}
	if n, _ := svc.Collection().Count(); n != 0 {
		t.Errorf("Count = %d", n)
	}
}
