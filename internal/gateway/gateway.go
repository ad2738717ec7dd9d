// Package gateway defines the remote resource contract the stores talk to.
// Every call is scoped to the caller carried by the context.
package gateway

import (
	"context"
	"slices"
	"strings"

	"github.com/nikbrunner/marks/internal/model"
)

// BookmarkFilter narrows a bookmark listing. The zero value lists Active
// bookmarks. Trashed takes precedence over Archived.
type BookmarkFilter struct {
	CollectionID string
	Tags         []string // any-of
	Search       string
	Favorites    bool
	Archived     bool
	Trashed      bool
}

// State returns the partition the filter selects.
func (f BookmarkFilter) State() model.State {
	switch {
	case f.Trashed:
		return model.StateTrashed
	case f.Archived:
		return model.StateArchived
	default:
		return model.StateActive
	}
}

// Matches evaluates the filter against a single bookmark. Backends that
// cannot push the filter down use it directly.
func (f BookmarkFilter) Matches(b model.Bookmark) bool {
	if model.StateOf(b) != f.State() {
		return false
	}
	if f.CollectionID != "" && f.CollectionID != model.AllCollectionID && !b.InCollection(f.CollectionID) {
		return false
	}
	if f.Favorites && !b.IsFavorite {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, b.HasTag) {
		return false
	}
	if q := strings.ToLower(f.Search); q != "" {
		if !strings.Contains(strings.ToLower(b.Title), q) &&
			!strings.Contains(strings.ToLower(b.Description), q) &&
			!strings.Contains(strings.ToLower(b.URL), q) {
			return false
		}
	}
	return true
}

// BookmarkGateway lists and mutates bookmarks. Listings are ordered by
// creation time, newest first.
type BookmarkGateway interface {
	List(ctx context.Context, filter BookmarkFilter) ([]model.Bookmark, error)
	Create(ctx context.Context, draft model.BookmarkDraft) (model.Bookmark, error)
	Update(ctx context.Context, id string, patch model.BookmarkPatch) (model.Bookmark, error)
	Delete(ctx context.Context, id string) error
}

// CollectionGateway lists and mutates collections. Listings are in creation order.
type CollectionGateway interface {
	List(ctx context.Context) (model.CollectionList, error)
	Create(ctx context.Context, draft model.CollectionDraft) (model.Collection, error)
	Update(ctx context.Context, id string, patch model.CollectionPatch) (model.Collection, error)
	// Delete removes the collection and detaches its bookmarks.
	Delete(ctx context.Context, id string) error
}

// TagGateway lists and mutates tags. Listings are in creation order.
type TagGateway interface {
	List(ctx context.Context) ([]model.Tag, error)
	Create(ctx context.Context, draft model.TagDraft) (model.Tag, error)
	Update(ctx context.Context, id string, patch model.TagPatch) (model.Tag, error)
	// Delete removes the tag and every association to it.
	Delete(ctx context.Context, id string) error
}

// Gateway bundles the three resource gateways of one backend.
type Gateway struct {
	Bookmarks   BookmarkGateway
	Collections CollectionGateway
	Tags        TagGateway
}
