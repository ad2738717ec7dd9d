package model

import (
	"slices"
	"strings"
)

// AllCollectionID is the synthetic collection aggregating every active bookmark.
const AllCollectionID = "all"

const (
	DefaultCollectionIcon  = "bookmark"
	DefaultCollectionColor = "neutral"
)

// CollectionIcons is the closed icon vocabulary.
var CollectionIcons = []string{
	"bookmark", "folder", "palette", "code", "wrench", "book-open", "sparkles",
}

// CollectionColors is the closed color vocabulary.
var CollectionColors = []string{
	"neutral", "slate", "violet", "blue", "amber", "emerald", "pink", "cyan", "rose", "indigo",
}

// Collection groups bookmarks. Count is derived from active bookmarks.
type Collection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// IsAll reports whether c is the synthetic "All Bookmarks" entry.
func (c Collection) IsAll() bool { return c.ID == AllCollectionID }

// AllCollection builds the synthetic entry for a given active total.
func AllCollection(total int) Collection {
	return Collection{
		ID:    AllCollectionID,
		Name:  "All Bookmarks",
		Icon:  DefaultCollectionIcon,
		Color: DefaultCollectionColor,
		Count: total,
	}
}

// CollectionList is a gateway listing: persisted collections plus the
// number of active bookmarks the caller owns.
type CollectionList struct {
	Collections []Collection
	ActiveTotal int
}

// CollectionDraft holds the caller-supplied fields of a new collection.
type CollectionDraft struct {
	Name  string
	Icon  string
	Color string
}

// Normalize trims the name and fills default styling.
func (d CollectionDraft) Normalize() CollectionDraft {
	d.Name = strings.TrimSpace(d.Name)
	if d.Icon == "" {
		d.Icon = DefaultCollectionIcon
	}
	if d.Color == "" {
		d.Color = DefaultCollectionColor
	}
	return d
}

func (d CollectionDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return NewValidationError("Name is required")
	}
	return validateStyle(d.Icon, d.Color)
}

// NewCollection materializes a draft with a fresh id and zero count.
func NewCollection(d CollectionDraft) Collection {
	d = d.Normalize()
	return Collection{ID: NewID(), Name: d.Name, Icon: d.Icon, Color: d.Color}
}

func validateStyle(icon, color string) error {
	if icon != "" && !slices.Contains(CollectionIcons, icon) {
		return NewValidationError("Unknown icon: %s", icon)
	}
	if color != "" && !slices.Contains(CollectionColors, color) {
		return NewValidationError("Unknown color: %s", color)
	}
	return nil
}
