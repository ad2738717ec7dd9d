package model

import "strings"

const DefaultTagColor = "gray"

// Tag is a label attachable to many bookmarks. Count is derived from
// active bookmarks referencing it.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// TagDraft holds the caller-supplied fields of a new tag.
type TagDraft struct {
	Name  string
	Color string
}

func (d TagDraft) Normalize() TagDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Color = strings.TrimSpace(d.Color)
	if d.Color == "" {
		d.Color = DefaultTagColor
	}
	return d
}

func (d TagDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return NewValidationError("Name is required")
	}
	return nil
}

// NewTag materializes a draft with a fresh id and zero count.
func NewTag(d TagDraft) Tag {
	d = d.Normalize()
	return Tag{ID: NewID(), Name: d.Name, Color: d.Color}
}

// NormalizeTags trims ids, drops empties and collapses duplicates while
// keeping first-seen order. The result is never nil.
func NormalizeTags(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
