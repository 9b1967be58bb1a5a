package entity

import (
	"strconv"

	"github.com/lumina-fans/idolcms/internal/query"
)

// Track is a song.
type Track struct {
	Base
	Title       string   `json:"title" jsonschema:"required,minLength=1"`
	Slug        string   `json:"slug" jsonschema:"required,minLength=1"`
	AlbumID     string   `json:"albumId,omitempty"`
	TrackNumber int      `json:"trackNumber,omitempty" jsonschema:"minimum=0"`
	Duration    int      `json:"duration" jsonschema:"minimum=0"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	BPM         int      `json:"bpm,omitempty" jsonschema:"minimum=0"`
	Mood        []string `json:"mood,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	AudioURL    string   `json:"audioUrl,omitempty"`
	CoverURL    string   `json:"coverUrl,omitempty"`
	LyricsIDs   []string `json:"lyricsIds,omitempty"`
	CreditsID   string   `json:"creditsId,omitempty"`
	Plays       int      `json:"plays,omitempty" jsonschema:"minimum=0"`
}

// GetSlug returns the URL slug.
func (t *Track) GetSlug() string { return t.Slug }

// SearchText implements query.Searchable.
func (t *Track) SearchText() []string {
	return append([]string{t.Title, t.Description}, t.Tags...)
}

// FilterValues implements query.Filterable.
func (t *Track) FilterValues(field string) ([]string, bool) {
	switch field {
	case "album":
		return one(t.AlbumID), true
	case "mood":
		return t.Mood, true
	case "tag":
		return t.Tags, true
	case "slug":
		return one(t.Slug), true
	case "year":
		return one(query.Year(t.ReleaseDate)), true
	}
	return t.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (t *Track) SortKey(field string) (query.Key, bool) {
	switch field {
	case "title":
		return query.Text(t.Title), true
	case "releaseDate":
		return query.Date(t.ReleaseDate), true
	case "duration":
		return query.Number(t.Duration), true
	case "trackNumber":
		return query.Number(t.TrackNumber), true
	case "bpm":
		return query.Number(t.BPM), true
	case "plays":
		return query.Number(t.Plays), true
	}
	return t.Base.sortKey(field)
}

// Features implements query.Comparable: moods weigh more than tags, tempo
// is compared within a tolerance and the album is the parent.
func (t *Track) Features() query.Features {
	return query.Features{
		ID:         t.ID,
		Categories: t.Mood,
		Tags:       t.Tags,
		Number:     float64(t.BPM),
		HasNumber:  t.BPM > 0,
		Parent:     t.AlbumID,
	}
}

// AlbumType classifies a release.
type AlbumType string

// Known release types.
const (
	AlbumTypeFull   AlbumType = "ALBUM"
	AlbumTypeMini   AlbumType = "MINI_ALBUM"
	AlbumTypeSingle AlbumType = "SINGLE"
)

// Album is a release holding an ordered list of tracks.
type Album struct {
	Base
	Title       string    `json:"title" jsonschema:"required,minLength=1"`
	Slug        string    `json:"slug" jsonschema:"required,minLength=1"`
	Type        AlbumType `json:"type,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	Description string    `json:"description,omitempty"`
	TrackIDs    []string  `json:"trackIds"`
	Tags        []string  `json:"tags,omitempty"`
}

// GetSlug returns the URL slug.
func (a *Album) GetSlug() string { return a.Slug }

// SearchText implements query.Searchable.
func (a *Album) SearchText() []string {
	return append([]string{a.Title, a.Description}, a.Tags...)
}

// FilterValues implements query.Filterable.
func (a *Album) FilterValues(field string) ([]string, bool) {
	switch field {
	case "type":
		return one(string(a.Type)), true
	case "tag":
		return a.Tags, true
	case "track":
		return a.TrackIDs, true
	case "slug":
		return one(a.Slug), true
	case "year":
		return one(query.Year(a.ReleaseDate)), true
	}
	return a.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (a *Album) SortKey(field string) (query.Key, bool) {
	switch field {
	case "title":
		return query.Text(a.Title), true
	case "releaseDate":
		return query.Date(a.ReleaseDate), true
	case "trackCount":
		return query.Number(len(a.TrackIDs)), true
	}
	return a.Base.sortKey(field)
}

// Lyrics is one language version of a track's lyrics. Synced lyrics are
// stored as LRC text.
type Lyrics struct {
	Base
	TrackID  string `json:"trackId" jsonschema:"required,minLength=1"`
	Language string `json:"language,omitempty"`
	Content  string `json:"content" jsonschema:"required,minLength=1"`
	Synced   bool   `json:"synced,omitempty"`
}

// SearchText implements query.Searchable.
func (l *Lyrics) SearchText() []string {
	return []string{l.Content}
}

// FilterValues implements query.Filterable.
func (l *Lyrics) FilterValues(field string) ([]string, bool) {
	switch field {
	case "track":
		return one(l.TrackID), true
	case "language":
		return one(l.Language), true
	case "synced":
		return one(strconv.FormatBool(l.Synced)), true
	}
	return l.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (l *Lyrics) SortKey(field string) (query.Key, bool) {
	if field == "language" {
		return query.Text(l.Language), true
	}
	return l.Base.sortKey(field)
}

// Credits lists the people behind a track.
type Credits struct {
	Base
	TrackID   string   `json:"trackId" jsonschema:"required,minLength=1"`
	Composers []string `json:"composers,omitempty"`
	Lyricists []string `json:"lyricists,omitempty"`
	Arrangers []string `json:"arrangers,omitempty"`
	Producers []string `json:"producers,omitempty"`
}

// people returns every credited name.
func (c *Credits) people() []string {
	var out []string
	for _, l := range [][]string{c.Composers, c.Lyricists, c.Arrangers, c.Producers} {
		out = append(out, l...)
	}
	return out
}

// SearchText implements query.Searchable.
func (c *Credits) SearchText() []string {
	return c.people()
}

// FilterValues implements query.Filterable.
func (c *Credits) FilterValues(field string) ([]string, bool) {
	switch field {
	case "track":
		return one(c.TrackID), true
	case "person":
		return c.people(), true
	}
	return c.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (c *Credits) SortKey(field string) (query.Key, bool) {
	return c.Base.sortKey(field)
}

// Playlist is a user's ordered selection of tracks.
type Playlist struct {
	Base
	Name        string   `json:"name" jsonschema:"required,minLength=1"`
	Description string   `json:"description,omitempty"`
	OwnerID     string   `json:"ownerId" jsonschema:"required,minLength=1"`
	TrackIDs    []string `json:"trackIds"`
	Public      bool     `json:"public,omitempty"`
}

// SearchText implements query.Searchable.
func (p *Playlist) SearchText() []string {
	return []string{p.Name, p.Description}
}

// FilterValues implements query.Filterable.
func (p *Playlist) FilterValues(field string) ([]string, bool) {
	switch field {
	case "owner":
		return one(p.OwnerID), true
	case "public":
		return one(strconv.FormatBool(p.Public)), true
	case "track":
		return p.TrackIDs, true
	}
	return p.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (p *Playlist) SortKey(field string) (query.Key, bool) {
	switch field {
	case "name", "title":
		return query.Text(p.Name), true
	case "trackCount":
		return query.Number(len(p.TrackIDs)), true
	}
	return p.Base.sortKey(field)
}
