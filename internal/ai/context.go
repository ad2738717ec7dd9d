package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/store"
)

const maxSampleTitles = 3

// BuildContext renders the library compactly for a prompt: each collection
// with a few sample titles, then the existing tag names.
func BuildContext(s store.Snapshot) string {
	var sb strings.Builder

	sb.WriteString("Available collections (with sample bookmarks):\n")
	for _, c := range s.Collections {
		sb.WriteString(c.Name)
		sb.WriteString("\n")

		var titles []string
		for _, b := range s.Bookmarks {
			if len(titles) == maxSampleTitles {
				break
			}
			if b.InCollection(c.ID) {
				titles = append(titles, fmt.Sprintf("%q", b.Title))
			}
		}
		if len(titles) > 0 {
			sb.WriteString("  - ")
			sb.WriteString(strings.Join(titles, ", "))
			sb.WriteString("\n")
		}
	}

	if len(s.Tags) > 0 {
		names := make([]string, len(s.Tags))
		for i, t := range s.Tags {
			names[i] = t.Name
		}
		sb.WriteString("\nExisting tags: ")
		sb.WriteString(strings.Join(names, ", "))
	}

	return sb.String()
}

// Workspace is the part of store.Workspace that Resolve needs.
type Workspace interface {
	EnsureCollection(ctx context.Context, name string) (model.Collection, error)
	EnsureTags(ctx context.Context, names []string) ([]string, error)
}

// Resolve turns suggested names into ids, creating the collection and any
// tags that do not exist yet. An empty collection name resolves to nil.
func Resolve(ctx context.Context, w Workspace, collection string, tags []string) (*string, []string, error) {
	var collectionID *string
	if name := strings.TrimSpace(collection); name != "" {
		c, err := w.EnsureCollection(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve collection %q: %w", name, err)
		}
		collectionID = &c.ID
	}
	tagIDs, err := w.EnsureTags(ctx, tags)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve tags: %w", err)
	}
	return collectionID, tagIDs, nil
}
