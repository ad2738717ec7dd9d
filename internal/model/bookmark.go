package model

import (
	"net/url"
	"slices"
	"strings"
	"time"
)

// Bookmark represents a saved URL with metadata and lifecycle timestamps.
type Bookmark struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Description  string     `json:"description"`
	Favicon      string     `json:"favicon"`
	Thumbnail    string     `json:"thumbnail,omitempty"`
	Duration     string     `json:"duration,omitempty"`
	CollectionID *string    `json:"collectionId"` // nil = uncategorized
	Tags         []string   `json:"tags"`         // tag ids, set semantics
	CreatedAt    time.Time  `json:"createdAt"`
	IsFavorite   bool       `json:"isFavorite"`
	HasDarkIcon  bool       `json:"hasDarkIcon"`
	ArchivedAt   *time.Time `json:"archivedAt"`
	TrashedAt    *time.Time `json:"trashedAt"`
}

// InCollection reports whether the bookmark belongs to collection id.
func (b Bookmark) InCollection(id string) bool {
	return b.CollectionID != nil && *b.CollectionID == id
}

// HasTag reports whether the bookmark carries tag id.
func (b Bookmark) HasTag(id string) bool {
	return slices.Contains(b.Tags, id)
}

// Clone returns a copy that shares no mutable state with b.
func (b Bookmark) Clone() Bookmark {
	c := b
	c.Tags = slices.Clone(b.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.CollectionID = clonePtr(b.CollectionID)
	c.ArchivedAt = clonePtr(b.ArchivedAt)
	c.TrashedAt = clonePtr(b.TrashedAt)
	return c
}

// BookmarkDraft holds the fields a caller supplies when creating a bookmark.
// The id, createdAt and lifecycle timestamps are assigned by the backend.
type BookmarkDraft struct {
	Title        string
	URL          string
	Description  string
	Favicon      string
	Thumbnail    string
	Duration     string
	CollectionID *string
	Tags         []string
	IsFavorite   bool
	HasDarkIcon  bool
}

// Validate checks required fields.
func (d BookmarkDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewValidationError("Title and URL are required")
	}
	if strings.TrimSpace(d.URL) == "" {
		return NewValidationError("Title and URL are required")
	}
	return nil
}

// Normalize trims text fields, dedupes tags and derives a favicon when the
// draft carries neither favicon nor thumbnail.
func (d BookmarkDraft) Normalize() BookmarkDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.URL = strings.TrimSpace(d.URL)
	d.Description = strings.TrimSpace(d.Description)
	d.Tags = NormalizeTags(d.Tags)
	if d.CollectionID != nil && *d.CollectionID == "" {
		d.CollectionID = nil
	}
	if d.Favicon == "" && d.Thumbnail == "" {
		d.Favicon = FaviconFor(d.URL)
	}
	return d
}

// NewBookmark materializes a draft into an Active bookmark with a fresh id.
func NewBookmark(d BookmarkDraft, now time.Time) Bookmark {
	d = d.Normalize()
	return Bookmark{
		ID:           NewID(),
		Title:        d.Title,
		URL:          d.URL,
		Description:  d.Description,
		Favicon:      d.Favicon,
		Thumbnail:    d.Thumbnail,
		Duration:     d.Duration,
		CollectionID: clonePtr(d.CollectionID),
		Tags:         d.Tags,
		CreatedAt:    now.UTC(),
		IsFavorite:   d.IsFavorite,
		HasDarkIcon:  d.HasDarkIcon,
	}
}

const faviconService = "https://www.google.com/s2/favicons"

// FaviconFor derives a favicon URL from the bookmark url's host.
// It returns "" when rawURL has no host.
func FaviconFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	q := url.Values{}
	q.Set("domain", u.Hostname())
	q.Set("sz", "64")
	return faviconService + "?" + q.Encode()
}

// IndexOfBookmark returns the position of id in bs, or -1.
func IndexOfBookmark(bs []Bookmark, id string) int {
	return slices.IndexFunc(bs, func(b Bookmark) bool { return b.ID == id })
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
