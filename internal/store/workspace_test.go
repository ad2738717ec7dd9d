package store

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/marks/internal/gateway/gatewaytest"
	"github.com/nikbrunner/marks/internal/model"
)

func TestTagDeletionCascade(t *testing.T) {
	w, _ := newWorkspace(t)

	tag, err := w.Tags.Create(ctx, model.TagDraft{Name: "T"})
	assert.NilError(t, err)
	other, err := w.Tags.Create(ctx, model.TagDraft{Name: "Other"})
	assert.NilError(t, err)

	x, err := w.CreateBookmark(ctx, model.BookmarkDraft{Title: "X", URL: "https://x.example", Tags: []string{tag.ID}})
	assert.NilError(t, err)
	y, err := w.CreateBookmark(ctx, model.BookmarkDraft{Title: "Y", URL: "https://y.example", Tags: []string{tag.ID, other.ID}})
	assert.NilError(t, err)

	w.Bookmarks.ToggleTag(tag.ID)
	assert.NilError(t, w.DeleteTag(ctx, tag.ID))

	gotX, _ := w.Bookmarks.Get(x.ID)
	gotY, _ := w.Bookmarks.Get(y.ID)
	assert.DeepEqual(t, gotX.Tags, []string{})
	assert.DeepEqual(t, gotY.Tags, []string{other.ID})
	assert.DeepEqual(t, w.Bookmarks.View().Tags, []string{})

	_, ok := w.Tags.Get(tag.ID)
	assert.Assert(t, !ok)
}

func TestCreateCollectionThenUseID(t *testing.T) {
	w, _ := newWorkspace(t)

	c, err := w.Collections.Create(ctx, model.CollectionDraft{Name: "Reading"})
	assert.NilError(t, err)
	assert.Equal(t, c.Count, 0)
	assert.Equal(t, c.Icon, model.DefaultCollectionIcon)

	b, err := w.CreateBookmark(ctx, model.BookmarkDraft{Title: "Paper", URL: "https://paper.example", CollectionID: &c.ID})
	assert.NilError(t, err)
	assert.Assert(t, b.InCollection(c.ID))

	got, ok := w.Collections.Get(c.ID)
	assert.Assert(t, ok)
	assert.Equal(t, got.Count, 1)

	all := w.Collections.List()
	assert.Equal(t, all[0].ID, model.AllCollectionID)
	assert.Equal(t, all[0].Count, 1)
	assert.Equal(t, all[1].ID, c.ID)
}

func TestCountsFollowLifecycle(t *testing.T) {
	w, _ := newWorkspace(t)

	c, err := w.EnsureCollection(ctx, "Dev")
	assert.NilError(t, err)
	ids, err := w.EnsureTags(ctx, []string{"go", "Go", " "})
	assert.NilError(t, err)
	assert.Assert(t, is.Len(ids, 1))

	b, err := w.CreateBookmark(ctx, model.BookmarkDraft{Title: "B", URL: "https://b.example", CollectionID: &c.ID, Tags: ids})
	assert.NilError(t, err)

	tag, _ := w.Tags.Get(ids[0])
	assert.Equal(t, tag.Count, 1)

	_, err = w.Archive(ctx, b.ID)
	assert.NilError(t, err)

	got, _ := w.Collections.Get(c.ID)
	assert.Equal(t, got.Count, 0)
	tag, _ = w.Tags.Get(ids[0])
	assert.Equal(t, tag.Count, 0)
	all, _ := w.Collections.Get(model.AllCollectionID)
	assert.Equal(t, all.Count, 0)

	_, err = w.RestoreFromArchive(ctx, b.ID)
	assert.NilError(t, err)
	all, _ = w.Collections.Get(model.AllCollectionID)
	assert.Equal(t, all.Count, 1)
}

func TestEnsureCollectionReusesExisting(t *testing.T) {
	w, mem := newWorkspace(t)

	first, err := w.EnsureCollection(ctx, "Read Later")
	assert.NilError(t, err)
	second, err := w.EnsureCollection(ctx, "read later")
	assert.NilError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, mem.Calls(gatewaytest.CreateCollection), 1)
}

func TestDeleteCollection(t *testing.T) {
	w, mem := newWorkspace(t)

	c, err := w.Collections.Create(ctx, model.CollectionDraft{Name: "Old", Icon: "folder", Color: "amber"})
	assert.NilError(t, err)
	b, err := w.CreateBookmark(ctx, model.BookmarkDraft{Title: "B", URL: "https://b.example", CollectionID: &c.ID})
	assert.NilError(t, err)
	w.Bookmarks.SetSelectedCollection(c.ID)

	err = w.DeleteCollection(ctx, model.AllCollectionID)
	assert.Assert(t, errors.Is(err, model.ErrValidation))
	assert.Equal(t, mem.Calls(gatewaytest.DeleteCollection), 0)

	assert.NilError(t, w.DeleteCollection(ctx, c.ID))

	got, ok := w.Bookmarks.Get(b.ID)
	assert.Assert(t, ok)
	assert.Assert(t, is.Nil(got.CollectionID))
	assert.Equal(t, w.Bookmarks.View().Collection, model.AllCollectionID)
	assert.Assert(t, is.Len(w.Collections.Collections(), 0))

	stored, _ := mem.Bookmark(b.ID)
	assert.Assert(t, is.Nil(stored.CollectionID))

	err = w.DeleteCollection(ctx, c.ID)
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
}

func TestCollectionStoreValidation(t *testing.T) {
	w, mem := newWorkspace(t)

	_, err := w.Collections.Create(ctx, model.CollectionDraft{Name: "  "})
	assert.Assert(t, errors.Is(err, model.ErrValidation))
	_, err = w.Collections.Create(ctx, model.CollectionDraft{Name: "X", Color: "chartreuse"})
	assert.Assert(t, errors.Is(err, model.ErrValidation))
	assert.Equal(t, mem.Calls(gatewaytest.CreateCollection), 0)
	assert.Assert(t, w.Collections.Err() != nil)

	name := "Y"
	_, err = w.Collections.Update(ctx, "missing", model.CollectionPatch{Name: &name})
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
	assert.Equal(t, mem.Calls(gatewaytest.UpdateCollection), 0)

	c, err := w.Collections.Create(ctx, model.CollectionDraft{Name: "X"})
	assert.NilError(t, err)
	assert.NilError(t, w.Collections.Err())

	updated, err := w.Collections.Update(ctx, c.ID, model.CollectionPatch{Name: &name})
	assert.NilError(t, err)
	assert.Equal(t, updated.Name, "Y")
	got, _ := w.Collections.FindByName("y")
	assert.Equal(t, got.ID, c.ID)
}

func TestTagStoreUpdateAndFailure(t *testing.T) {
	w, mem := newWorkspace(t)

	_, err := w.Tags.Create(ctx, model.TagDraft{})
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	tag, err := w.Tags.Create(ctx, model.TagDraft{Name: "go"})
	assert.NilError(t, err)
	assert.Equal(t, tag.Color, model.DefaultTagColor)

	mem.Fail(gatewaytest.UpdateTag, model.NewServerError(errors.New("down")))
	name := "golang"
	_, err = w.Tags.Update(ctx, tag.ID, model.TagPatch{Name: &name})
	assert.Assert(t, errors.Is(err, model.ErrServer))
	got, _ := w.Tags.Get(tag.ID)
	assert.Equal(t, got.Name, "go")

	_, err = w.Tags.Update(ctx, tag.ID, model.TagPatch{Name: &name})
	assert.NilError(t, err)
	assert.DeepEqual(t, w.Tags.Names([]string{tag.ID, "unknown"}), []string{"golang"})
}

func TestLoadReportsEveryFailure(t *testing.T) {
	mem := gatewaytest.New()
	mem.Fail(gatewaytest.ListTags, model.NewAuthError())
	mem.Fail(gatewaytest.ListCollections, model.NewNetworkError(errors.New("offline")))

	w := NewWorkspace(mem.Gateway(), nil)
	err := w.Load(ctx)
	assert.Assert(t, errors.Is(err, model.ErrAuth))
	assert.Assert(t, errors.Is(err, model.ErrNetwork))
	assert.NilError(t, w.Bookmarks.Err())
	assert.Assert(t, errors.Is(w.Tags.Err(), model.ErrAuth))
}

func TestSnapshot(t *testing.T) {
	w, _ := newWorkspace(t)

	c, err := w.EnsureCollection(ctx, "Dev")
	assert.NilError(t, err)
	ids, err := w.EnsureTags(ctx, []string{"go", "docs"})
	assert.NilError(t, err)
	keep, err := w.CreateBookmark(ctx, model.BookmarkDraft{Title: "Go", URL: "https://go.dev", CollectionID: &c.ID, Tags: ids})
	assert.NilError(t, err)
	gone, err := w.CreateBookmark(ctx, model.BookmarkDraft{Title: "Old", URL: "https://old.example"})
	assert.NilError(t, err)
	_, err = w.Trash(ctx, gone.ID)
	assert.NilError(t, err)

	s := w.Snapshot()
	assert.Assert(t, is.Len(s.Collections, 1))
	assert.Assert(t, is.Len(s.Bookmarks, 1))
	assert.Assert(t, is.Len(s.Trashed, 1))
	assert.Assert(t, is.Len(s.All(), 2))
	assert.Equal(t, s.CollectionName(keep.CollectionID), "Dev")
	assert.Equal(t, s.CollectionName(nil), "")
	assert.DeepEqual(t, s.TagNames(keep.Tags), w.Tags.Names(keep.Tags))
}
