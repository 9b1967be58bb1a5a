package entity

import (
	"strings"

	"github.com/lumina-fans/idolcms/internal/query"
)

// Member is a group member profile.
type Member struct {
	Base
	Name        string   `json:"name" jsonschema:"required,minLength=1"`
	StageName   string   `json:"stageName,omitempty"`
	Positions   []string `json:"positions,omitempty"`
	Birthday    string   `json:"birthday,omitempty"`
	Nationality string   `json:"nationality,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Order       int      `json:"order,omitempty"`
}

// SearchText implements query.Searchable.
func (m *Member) SearchText() []string {
	return []string{m.Name, m.StageName, m.Bio}
}

// FilterValues implements query.Filterable.
func (m *Member) FilterValues(field string) ([]string, bool) {
	switch field {
	case "position":
		return m.Positions, true
	case "nationality":
		return one(m.Nationality), true
	case "year":
		return one(query.Year(m.Birthday)), true
	}
	return m.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (m *Member) SortKey(field string) (query.Key, bool) {
	switch field {
	case "name", "title":
		return query.Text(m.Name), true
	case "birthday":
		return query.Date(m.Birthday), true
	case "order":
		return query.Number(m.Order), true
	}
	return m.Base.sortKey(field)
}

// Video is a music video or performance clip.
type Video struct {
	Base
	Title       string   `json:"title" jsonschema:"required,minLength=1"`
	Type        string   `json:"type,omitempty"`
	YouTubeID   string   `json:"youtubeId,omitempty"`
	URL         string   `json:"url,omitempty"`
	TrackID     string   `json:"trackId,omitempty"`
	AlbumID     string   `json:"albumId,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	Duration    int      `json:"duration,omitempty" jsonschema:"minimum=0"`
	Views       int64    `json:"views,omitempty" jsonschema:"minimum=0"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// SearchText implements query.Searchable.
func (v *Video) SearchText() []string {
	return append([]string{v.Title, v.Description}, v.Tags...)
}

// FilterValues implements query.Filterable.
func (v *Video) FilterValues(field string) ([]string, bool) {
	switch field {
	case "type":
		return one(v.Type), true
	case "track":
		return one(v.TrackID), true
	case "album":
		return one(v.AlbumID), true
	case "tag":
		return v.Tags, true
	case "year":
		return one(query.Year(v.ReleaseDate)), true
	}
	return v.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (v *Video) SortKey(field string) (query.Key, bool) {
	switch field {
	case "title":
		return query.Text(v.Title), true
	case "releaseDate":
		return query.Date(v.ReleaseDate), true
	case "duration":
		return query.Number(v.Duration), true
	case "views":
		return query.Number(v.Views), true
	}
	return v.Base.sortKey(field)
}

// GalleryImage is a photo in the gallery.
type GalleryImage struct {
	Base
	Title        string   `json:"title,omitempty"`
	URL          string   `json:"url" jsonschema:"required,minLength=1"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	Caption      string   `json:"caption,omitempty"`
	MemberIDs    []string `json:"memberIds,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Era          string   `json:"era,omitempty"`
	TakenAt      string   `json:"takenAt,omitempty"`
}

// SearchText implements query.Searchable.
func (g *GalleryImage) SearchText() []string {
	return append([]string{g.Title, g.Caption}, g.Tags...)
}

// FilterValues implements query.Filterable.
func (g *GalleryImage) FilterValues(field string) ([]string, bool) {
	switch field {
	case "member":
		return g.MemberIDs, true
	case "tag":
		return g.Tags, true
	case "era":
		return one(g.Era), true
	case "year":
		return one(query.Year(g.TakenAt)), true
	}
	return g.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (g *GalleryImage) SortKey(field string) (query.Key, bool) {
	switch field {
	case "title":
		return query.Text(g.Title), true
	case "takenAt":
		return query.Date(g.TakenAt), true
	}
	return g.Base.sortKey(field)
}

// Category groups articles.
type Category struct {
	Base
	Name        string `json:"name" jsonschema:"required,minLength=1"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// SearchText implements query.Searchable.
func (c *Category) SearchText() []string {
	return []string{c.Name, c.Description}
}

// FilterValues implements query.Filterable.
func (c *Category) FilterValues(field string) ([]string, bool) {
	if field == "name" {
		return one(c.Name), true
	}
	return c.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (c *Category) SortKey(field string) (query.Key, bool) {
	if field == "name" || field == "title" {
		return query.Text(c.Name), true
	}
	return c.Base.sortKey(field)
}

// Tag is a free-form label.
type Tag struct {
	Base
	Name string `json:"name" jsonschema:"required,minLength=1"`
}

// SearchText implements query.Searchable.
func (t *Tag) SearchText() []string {
	return []string{t.Name}
}

// FilterValues implements query.Filterable.
func (t *Tag) FilterValues(field string) ([]string, bool) {
	if field == "name" {
		return one(t.Name), true
	}
	return t.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (t *Tag) SortKey(field string) (query.Key, bool) {
	if field == "name" || field == "title" {
		return query.Text(t.Name), true
	}
	return t.Base.sortKey(field)
}

// Media is an uploaded file. The bytes live next to the documents under
// media/StoredName.
type Media struct {
	Base
	Filename    string `json:"filename" jsonschema:"required,minLength=1"`
	StoredName  string `json:"storedName" jsonschema:"required,minLength=1"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size" jsonschema:"minimum=0"`
	Alt         string `json:"alt,omitempty"`
	UploaderID  string `json:"uploaderId,omitempty"`
	UploadedAt  string `json:"uploadedAt" jsonschema:"required,minLength=1"`
}

// Kind is the major MIME type, e.g. "image".
func (m *Media) Kind() string {
	kind, _, _ := strings.Cut(m.ContentType, "/")
	return kind
}

// SearchText implements query.Searchable.
func (m *Media) SearchText() []string {
	return []string{m.Filename, m.Alt}
}

// FilterValues implements query.Filterable.
func (m *Media) FilterValues(field string) ([]string, bool) {
	switch field {
	case "kind":
		return one(m.Kind()), true
	case "contentType":
		return one(m.ContentType), true
	case "uploader":
		return one(m.UploaderID), true
	case "year":
		return one(query.Year(m.UploadedAt)), true
	}
	return m.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (m *Media) SortKey(field string) (query.Key, bool) {
	switch field {
	case "filename", "title":
		return query.Text(m.Filename), true
	case "size":
		return query.Number(m.Size), true
	case "uploadedAt":
		return query.Date(m.UploadedAt), true
	}
	return m.Base.sortKey(field)
}

// Event is a telemetry event sent by the site's pages.
type Event struct {
	Base
	Type       string `json:"type" jsonschema:"required,minLength=1"`
	Path       string `json:"path,omitempty"`
	Target     string `json:"target,omitempty"`
	Referrer   string `json:"referrer,omitempty"`
	SessionID  string `json:"sessionId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
	Country    string `json:"country,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty" jsonschema:"minimum=0"`
}

// SearchText implements query.Searchable.
func (e *Event) SearchText() []string {
	return []string{e.Path, e.Target}
}

// FilterValues implements query.Filterable.
func (e *Event) FilterValues(field string) ([]string, bool) {
	switch field {
	case "type":
		return one(e.Type), true
	case "path":
		return one(e.Path), true
	case "target":
		return one(e.Target), true
	case "country":
		return one(e.Country), true
	case "session":
		return one(e.SessionID), true
	case "user":
		return one(e.UserID), true
	}
	return e.Base.filterValues(field)
}

// SortKey implements query.Sortable.
func (e *Event) SortKey(field string) (query.Key, bool) {
	if field == "durationMs" {
		return query.Number(e.DurationMs), true
	}
	return e.Base.sortKey(field)
}
