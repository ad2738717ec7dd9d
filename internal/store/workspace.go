package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
)

// Workspace owns the three stores of one user and performs the effects
// that span them: detaching bookmarks from a deleted collection, stripping
// a deleted tag and refreshing the derived counts.
type Workspace struct {
	Bookmarks   *BookmarkStore
	Collections *CollectionStore
	Tags        *TagStore

	log logger.Logger
}

func NewWorkspace(gw gateway.Gateway, log logger.Logger) *Workspace {
	if log == nil {
		log = logger.Nop()
	}
	return &Workspace{
		Bookmarks:   NewBookmarkStore(gw.Bookmarks, log),
		Collections: NewCollectionStore(gw.Collections, log),
		Tags:        NewTagStore(gw.Tags, log),
		log:         log,
	}
}

// Load fetches Active bookmarks, collections and tags concurrently.
func (w *Workspace) Load(ctx context.Context) error {
	return parallel(ctx,
		w.Bookmarks.Load,
		w.Collections.Load,
		w.Tags.Load,
	)
}

// LoadAll also fetches the Archived and Trashed partitions.
func (w *Workspace) LoadAll(ctx context.Context) error {
	return parallel(ctx,
		w.Bookmarks.Load,
		w.Bookmarks.LoadArchived,
		w.Bookmarks.LoadTrashed,
		w.Collections.Load,
		w.Tags.Load,
	)
}

func parallel(ctx context.Context, fns ...func(context.Context) error) error {
	errs := make([]error, len(fns))
	var wg sync.WaitGroup
	for i, fn := range fns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fn(ctx)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// RefreshCounts reloads collections and tags so their counts match the
// bookmark partitions. Failures are logged and otherwise ignored.
func (w *Workspace) RefreshCounts(ctx context.Context) {
	if err := parallel(ctx, w.Collections.Load, w.Tags.Load); err != nil {
		w.log.Warn("failed to refresh counts", logger.Error(err))
	}
}

// EnsureCollection returns the collection named name, creating it with
// default styling when none matches.
func (w *Workspace) EnsureCollection(ctx context.Context, name string) (model.Collection, error) {
	if c, ok := w.Collections.FindByName(name); ok {
		return c, nil
	}
	return w.Collections.Create(ctx, model.CollectionDraft{Name: name})
}

// EnsureTags maps tag names to ids, creating missing tags.
func (w *Workspace) EnsureTags(ctx context.Context, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if t, ok := w.Tags.FindByName(name); ok {
			ids = append(ids, t.ID)
			continue
		}
		t, err := w.Tags.Create(ctx, model.TagDraft{Name: name})
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return model.NormalizeTags(ids), nil
}

// DeleteCollection deletes the collection and detaches local bookmarks.
func (w *Workspace) DeleteCollection(ctx context.Context, id string) error {
	if err := w.Collections.Delete(ctx, id); err != nil {
		return err
	}
	w.Bookmarks.DetachCollection(id)
	w.RefreshCounts(ctx)
	return nil
}

// DeleteTag deletes the tag and strips it from every local bookmark.
func (w *Workspace) DeleteTag(ctx context.Context, id string) error {
	if err := w.Tags.Delete(ctx, id); err != nil {
		return err
	}
	w.Bookmarks.ForgetTag(id)
	return nil
}

// The bookmark operations below delegate to the BookmarkStore and then
// refresh the counts that depend on the Active partition.

func (w *Workspace) CreateBookmark(ctx context.Context, d model.BookmarkDraft) (model.Bookmark, error) {
	return w.withCounts(ctx)(w.Bookmarks.Create(ctx, d))
}

func (w *Workspace) UpdateBookmark(ctx context.Context, id string, p model.BookmarkPatch) (model.Bookmark, error) {
	return w.withCounts(ctx)(w.Bookmarks.Update(ctx, id, p))
}

func (w *Workspace) Archive(ctx context.Context, id string) (model.Bookmark, error) {
	return w.withCounts(ctx)(w.Bookmarks.Archive(ctx, id))
}

func (w *Workspace) RestoreFromArchive(ctx context.Context, id string) (model.Bookmark, error) {
	return w.withCounts(ctx)(w.Bookmarks.RestoreFromArchive(ctx, id))
}

func (w *Workspace) Trash(ctx context.Context, id string) (model.Bookmark, error) {
	return w.withCounts(ctx)(w.Bookmarks.Trash(ctx, id))
}

func (w *Workspace) RestoreFromTrash(ctx context.Context, id string) (model.Bookmark, error) {
	return w.withCounts(ctx)(w.Bookmarks.RestoreFromTrash(ctx, id))
}

func (w *Workspace) PermanentlyDelete(ctx context.Context, id string) error {
	if err := w.Bookmarks.PermanentlyDelete(ctx, id); err != nil {
		return err
	}
	w.RefreshCounts(ctx)
	return nil
}

func (w *Workspace) withCounts(ctx context.Context) func(model.Bookmark, error) (model.Bookmark, error) {
	return func(b model.Bookmark, err error) (model.Bookmark, error) {
		if err == nil {
			w.RefreshCounts(ctx)
		}
		return b, err
	}
}

// Snapshot is a point-in-time copy of a workspace.
type Snapshot struct {
	Collections []model.Collection // real collections, "all" excluded
	Tags        []model.Tag
	Bookmarks   []model.Bookmark // Active
	Archived    []model.Bookmark
	Trashed     []model.Bookmark
}

func (w *Workspace) Snapshot() Snapshot {
	return Snapshot{
		Collections: w.Collections.Collections(),
		Tags:        w.Tags.List(),
		Bookmarks:   w.Bookmarks.Active(),
		Archived:    w.Bookmarks.Archived(),
		Trashed:     w.Bookmarks.Trashed(),
	}
}

// CollectionName returns the name of collection id, or "" when id is nil
// or unknown.
func (s Snapshot) CollectionName(id *string) string {
	if id == nil {
		return ""
	}
	for _, c := range s.Collections {
		if c.ID == *id {
			return c.Name
		}
	}
	return ""
}

// TagNames maps tag ids to names, skipping unknown ids.
func (s Snapshot) TagNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		for _, t := range s.Tags {
			if t.ID == id {
				names = append(names, t.Name)
				break
			}
		}
	}
	return names
}

// All returns every bookmark across the three partitions.
func (s Snapshot) All() []model.Bookmark {
	out := make([]model.Bookmark, 0, len(s.Bookmarks)+len(s.Archived)+len(s.Trashed))
	out = append(out, s.Bookmarks...)
	out = append(out, s.Archived...)
	return append(out, s.Trashed...)
}
