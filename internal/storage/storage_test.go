package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nikbrunner/marks/internal/auth"
	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/storage"
)

func openTestDB(t *testing.T) (*storage.DB, gateway.Gateway) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "marks.db")

	db, err := storage.Open(storage.Options{Driver: storage.DriverSQLite, Path: dbPath})
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db, db.Gateway()
}

func userCtx(id string) context.Context {
	return auth.WithUserID(context.Background(), id)
}

func mustCreate(t *testing.T, gw gateway.Gateway, ctx context.Context, d model.BookmarkDraft) model.Bookmark {
	t.Helper()
	b, err := gw.Bookmarks.Create(ctx, d)
	if err != nil {
		t.Fatalf("failed to create bookmark %q: %v", d.Title, err)
	}
	return b
}

func ids(bs []model.Bookmark) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}

func equalIDs(t *testing.T, got []model.Bookmark, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("expected %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, g)
		}
	}
}

func TestBookmarkCreateAndList(t *testing.T) {
	_, gw := openTestDB(t)
	ctx := userCtx("u1")

	tag, err := gw.Tags.Create(ctx, model.TagDraft{Name: "go"})
	if err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}

	first := mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "First", URL: "https://first.dev"})
	second := mustCreate(t, gw, ctx, model.BookmarkDraft{
		Title:       "Second",
		URL:         "https://second.dev/path",
		Description: "about go",
		Tags:        []string{tag.ID},
	})

	if second.Favicon != "https://www.google.com/s2/favicons?domain=second.dev&sz=64" {
		t.Errorf("unexpected favicon %q", second.Favicon)
	}
	if len(second.Tags) != 1 || second.Tags[0] != tag.ID {
		t.Errorf("expected tag %s attached, got %v", tag.ID, second.Tags)
	}
	if !model.IsActive(second) {
		t.Errorf("new bookmark should be active")
	}

	list, err := gw.Bookmarks.List(ctx, gateway.BookmarkFilter{})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	// newest first
	equalIDs(t, list, second.ID, first.ID)
	if !list[0].CreatedAt.Equal(second.CreatedAt) {
		t.Errorf("createdAt not preserved: %v vs %v", list[0].CreatedAt, second.CreatedAt)
	}
}

func TestBookmarkRequiresCaller(t *testing.T) {
	_, gw := openTestDB(t)

	_, err := gw.Bookmarks.List(context.Background(), gateway.BookmarkFilter{})
	if !errors.Is(err, model.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	_, err = gw.Bookmarks.Create(context.Background(), model.BookmarkDraft{Title: "x", URL: "https://x.dev"})
	if !errors.Is(err, model.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestBookmarkCreateValidation(t *testing.T) {
	_, gw := openTestDB(t)

	_, err := gw.Bookmarks.Create(userCtx("u1"), model.BookmarkDraft{URL: "https://x.dev"})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	missing := "nope"
	_, err = gw.Bookmarks.Create(userCtx("u1"), model.BookmarkDraft{Title: "x", URL: "https://x.dev", CollectionID: &missing})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error for unknown collection, got %v", err)
	}
}

func TestBookmarksAreScopedToOwner(t *testing.T) {
	_, gw := openTestDB(t)
	alice, bob := userCtx("alice"), userCtx("bob")

	b := mustCreate(t, gw, alice, model.BookmarkDraft{Title: "Alice", URL: "https://a.dev"})

	list, err := gw.Bookmarks.List(bob, gateway.BookmarkFilter{})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("bob should not see alice's bookmarks, got %v", ids(list))
	}

	title := "stolen"
	if _, err := gw.Bookmarks.Update(bob, b.ID, model.BookmarkPatch{Title: &title}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found for foreign update, got %v", err)
	}
	if err := gw.Bookmarks.Delete(bob, b.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found for foreign delete, got %v", err)
	}

	// bob's tag ids are never attached to alice's bookmark
	bobTag, _ := gw.Tags.Create(bob, model.TagDraft{Name: "bob"})
	updated, err := gw.Bookmarks.Update(alice, b.ID, model.BookmarkPatch{Tags: []string{bobTag.ID}})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if len(updated.Tags) != 0 {
		t.Fatalf("foreign tag attached: %v", updated.Tags)
	}
}

func TestBookmarkFilters(t *testing.T) {
	_, gw := openTestDB(t)
	ctx := userCtx("u1")

	work, _ := gw.Collections.Create(ctx, model.CollectionDraft{Name: "Work"})
	t1, _ := gw.Tags.Create(ctx, model.TagDraft{Name: "t1"})
	t2, _ := gw.Tags.Create(ctx, model.TagDraft{Name: "t2"})

	a := mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "GitHub", URL: "https://github.com", CollectionID: &work.ID, Tags: []string{t1.ID}, IsFavorite: true})
	b := mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "Docs", URL: "https://go.dev", Description: "100% go", Tags: []string{t2.ID}})
	c := mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "Archived git", URL: "https://gitlab.com"})
	d := mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "Trashed", URL: "https://trash.dev"})

	now := time.Now()
	if _, err := gw.Bookmarks.Update(ctx, c.ID, model.ArchivePatch(now)); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := gw.Bookmarks.Update(ctx, d.ID, model.TrashPatch(now)); err != nil {
		t.Fatalf("trash: %v", err)
	}

	tests := []struct {
		name   string
		filter gateway.BookmarkFilter
		want   []string
	}{
		{"default is active", gateway.BookmarkFilter{}, []string{b.ID, a.ID}},
		{"collection", gateway.BookmarkFilter{CollectionID: work.ID}, []string{a.ID}},
		{"all collection", gateway.BookmarkFilter{CollectionID: model.AllCollectionID}, []string{b.ID, a.ID}},
		{"favorites", gateway.BookmarkFilter{Favorites: true}, []string{a.ID}},
		{"tags any-of", gateway.BookmarkFilter{Tags: []string{t1.ID, t2.ID}}, []string{b.ID, a.ID}},
		{"single tag", gateway.BookmarkFilter{Tags: []string{t2.ID}}, []string{b.ID}},
		{"search is case-insensitive", gateway.BookmarkFilter{Search: "GIT"}, []string{a.ID}},
		{"search escapes wildcards", gateway.BookmarkFilter{Search: "100%"}, []string{b.ID}},
		{"archived", gateway.BookmarkFilter{Archived: true}, []string{c.ID}},
		{"archived search", gateway.BookmarkFilter{Archived: true, Search: "git"}, []string{c.ID}},
		{"trashed", gateway.BookmarkFilter{Trashed: true}, []string{d.ID}},
		{"trashed wins over archived", gateway.BookmarkFilter{Trashed: true, Archived: true}, []string{d.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gw.Bookmarks.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			equalIDs(t, got, tt.want...)
		})
	}
}

func TestBookmarkUpdatePartial(t *testing.T) {
	_, gw := openTestDB(t)
	ctx := userCtx("u1")

	coll, _ := gw.Collections.Create(ctx, model.CollectionDraft{Name: "Read"})
	x, _ := gw.Tags.Create(ctx, model.TagDraft{Name: "x"})
	y, _ := gw.Tags.Create(ctx, model.TagDraft{Name: "y"})
	b := mustCreate(t, gw, ctx, model.BookmarkDraft{
		Title: "Old", URL: "https://old.dev", Description: "keep", CollectionID: &coll.ID, Tags: []string{x.ID},
	})

	title := "New"
	got, err := gw.Bookmarks.Update(ctx, b.ID, model.BookmarkPatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "New" || got.Description != "keep" || !got.InCollection(coll.ID) {
		t.Fatalf("partial update changed other fields: %+v", got)
	}
	if !got.CreatedAt.Equal(b.CreatedAt) {
		t.Fatalf("createdAt changed")
	}

	got, err = gw.Bookmarks.Update(ctx, b.ID, model.BookmarkPatch{
		CollectionID: model.Null[string](),
		Tags:         []string{y.ID, x.ID},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.CollectionID != nil {
		t.Fatalf("explicit null should clear collection, got %v", *got.CollectionID)
	}
	if len(got.Tags) != 2 || got.Tags[0] != y.ID || got.Tags[1] != x.ID {
		t.Fatalf("tags not replaced: %v", got.Tags)
	}

	archived, err := gw.Bookmarks.Update(ctx, b.ID, model.ArchivePatch(time.Now()))
	if err != nil || !model.IsArchived(archived) {
		t.Fatalf("archive failed: %v", err)
	}
	restored, err := gw.Bookmarks.Update(ctx, b.ID, model.UnarchivePatch())
	if err != nil || !model.IsActive(restored) {
		t.Fatalf("restore failed: %v", err)
	}

	_, err = gw.Bookmarks.Update(ctx, b.ID, model.BookmarkPatch{
		ArchivedAt: model.Some(time.Now()),
		TrashedAt:  model.Some(time.Now()),
	})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := gw.Bookmarks.Update(ctx, "missing", model.BookmarkPatch{Title: &title}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBookmarkUpdateKeepsStatesExclusive(t *testing.T) {
	_, gw := openTestDB(t)
	ctx := userCtx("u1")

	b := mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "Go", URL: "https://go.dev"})
	archivedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := gw.Bookmarks.Update(ctx, b.ID, model.ArchivePatch(archivedAt)); err != nil {
		t.Fatalf("archive: %v", err)
	}

	trash := model.BookmarkPatch{TrashedAt: model.Some(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))}
	if _, err := gw.Bookmarks.Update(ctx, b.ID, trash); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error trashing an archived bookmark, got %v", err)
	}

	list, err := gw.Bookmarks.List(ctx, gateway.BookmarkFilter{Archived: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	equalIDs(t, list, b.ID)
	if list[0].TrashedAt != nil {
		t.Fatalf("rejected patch was persisted: trashedAt %v", *list[0].TrashedAt)
	}

	// Back in Active, trashing is allowed again.
	if _, err := gw.Bookmarks.Update(ctx, b.ID, model.UnarchivePatch()); err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	trashed, err := gw.Bookmarks.Update(ctx, b.ID, trash)
	if err != nil || !model.IsTrashed(trashed) {
		t.Fatalf("trash after unarchive failed: %v", err)
	}
}

func TestBookmarkUnknownTagsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	db, err := storage.Open(storage.Options{
		Driver: storage.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "marks.db"),
		Logger: logger.FromZap(zap.New(core)),
	})
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	gw := db.Gateway()
	ctx := userCtx("u1")

	known, _ := gw.Tags.Create(ctx, model.TagDraft{Name: "go"})
	foreign, _ := gw.Tags.Create(userCtx("u2"), model.TagDraft{Name: "theirs"})

	b := mustCreate(t, gw, ctx, model.BookmarkDraft{
		Title: "Go", URL: "https://go.dev", Tags: []string{known.ID, "missing", foreign.ID},
	})
	if len(b.Tags) != 1 || b.Tags[0] != known.ID {
		t.Fatalf("expected only the known tag, got %v", b.Tags)
	}

	warns := logs.FilterMessage("skipped unknown tags on new bookmark").All()
	if len(warns) != 1 {
		t.Fatalf("expected one warning, got %d (%v)", len(warns), logs.All())
	}
	fields := warns[0].ContextMap()
	if fields["bookmark"] != b.ID || fields["attached"] != int64(1) {
		t.Fatalf("unexpected warning fields: %v", fields)
	}

	if _, err := gw.Bookmarks.Update(ctx, b.ID, model.BookmarkPatch{Tags: []string{"missing"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if n := logs.FilterMessage("skipped unknown tags on bookmark update").Len(); n != 1 {
		t.Fatalf("expected one update warning, got %d", n)
	}

	// Known tags attach without a warning.
	mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "Clean", URL: "https://clean.dev", Tags: []string{known.ID}})
	if n := logs.FilterMessage("skipped unknown tags on new bookmark").Len(); n != 1 {
		t.Fatalf("unexpected warning for known tags, got %d", n)
	}
}

func TestBookmarkDelete(t *testing.T) {
	_, gw := openTestDB(t)
	ctx := userCtx("u1")

	tag, _ := gw.Tags.Create(ctx, model.TagDraft{Name: "x"})
	b := mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "x", URL: "https://x.dev", Tags: []string{tag.ID}})

	if err := gw.Bookmarks.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := gw.Bookmarks.Delete(ctx, b.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}

	tags, _ := gw.Tags.List(ctx)
	if tags[0].Count != 0 {
		t.Fatalf("association survived delete: count %d", tags[0].Count)
	}
}

func TestCollectionCountsAndDelete(t *testing.T) {
	_, gw := openTestDB(t)
	ctx := userCtx("u1")

	dev, err := gw.Collections.Create(ctx, model.CollectionDraft{Name: "Dev", Icon: "code", Color: "blue"})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	other, _ := gw.Collections.Create(ctx, model.CollectionDraft{Name: "Other"})
	if other.Icon != model.DefaultCollectionIcon || other.Color != model.DefaultCollectionColor {
		t.Errorf("defaults not applied: %+v", other)
	}

	a := mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "a", URL: "https://a.dev", CollectionID: &dev.ID})
	b := mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "b", URL: "https://b.dev", CollectionID: &dev.ID})
	mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "c", URL: "https://c.dev"})
	gw.Bookmarks.Update(ctx, b.ID, model.ArchivePatch(time.Now()))

	list, err := gw.Collections.List(ctx)
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	if len(list.Collections) != 2 || list.Collections[0].ID != dev.ID {
		t.Fatalf("unexpected collections %+v", list.Collections)
	}
	if list.Collections[0].Count != 1 {
		t.Errorf("archived bookmarks must not count, got %d", list.Collections[0].Count)
	}
	if list.ActiveTotal != 2 {
		t.Errorf("expected active total 2, got %d", list.ActiveTotal)
	}

	if err := gw.Collections.Delete(ctx, dev.ID); err != nil {
		t.Fatalf("delete collection: %v", err)
	}
	all, _ := gw.Bookmarks.List(ctx, gateway.BookmarkFilter{})
	for _, bm := range all {
		if bm.ID == a.ID && bm.CollectionID != nil {
			t.Fatalf("bookmark still references deleted collection")
		}
	}
	if err := gw.Collections.Delete(ctx, dev.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCollectionUpdate(t *testing.T) {
	_, gw := openTestDB(t)
	ctx := userCtx("u1")

	c, _ := gw.Collections.Create(ctx, model.CollectionDraft{Name: "Old"})
	name, icon := "New", "sparkles"
	got, err := gw.Collections.Update(ctx, c.ID, model.CollectionPatch{Name: &name, Icon: &icon})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "New" || got.Icon != "sparkles" || got.Color != model.DefaultCollectionColor {
		t.Fatalf("unexpected collection %+v", got)
	}

	bad := "rocket"
	if _, err := gw.Collections.Update(ctx, c.ID, model.CollectionPatch{Icon: &bad}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := gw.Collections.Update(userCtx("u2"), c.ID, model.CollectionPatch{Name: &name}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found for foreign collection, got %v", err)
	}
}

func TestTagDeleteCascades(t *testing.T) {
	_, gw := openTestDB(t)
	ctx := userCtx("u1")

	go1, _ := gw.Tags.Create(ctx, model.TagDraft{Name: "go"})
	rust, _ := gw.Tags.Create(ctx, model.TagDraft{Name: "rust", Color: "rose"})
	if go1.Color != model.DefaultTagColor {
		t.Errorf("expected default color, got %q", go1.Color)
	}

	b := mustCreate(t, gw, ctx, model.BookmarkDraft{Title: "b", URL: "https://b.dev", Tags: []string{go1.ID, rust.ID}})

	tags, _ := gw.Tags.List(ctx)
	if tags[0].Count != 1 || tags[1].Count != 1 {
		t.Fatalf("unexpected counts %+v", tags)
	}

	if err := gw.Tags.Delete(ctx, go1.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}

	list, _ := gw.Bookmarks.List(ctx, gateway.BookmarkFilter{})
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("bookmark should survive tag deletion")
	}
	if len(list[0].Tags) != 1 || list[0].Tags[0] != rust.ID {
		t.Fatalf("deleted tag still referenced: %v", list[0].Tags)
	}

	byTag, _ := gw.Bookmarks.List(ctx, gateway.BookmarkFilter{Tags: []string{go1.ID}})
	if len(byTag) != 0 {
		t.Fatalf("filtering by deleted tag should match nothing")
	}
}

func TestTagUpdate(t *testing.T) {
	_, gw := openTestDB(t)
	ctx := userCtx("u1")

	tag, _ := gw.Tags.Create(ctx, model.TagDraft{Name: "old"})
	name := "new"
	got, err := gw.Tags.Update(ctx, tag.ID, model.TagPatch{Name: &name})
	if err != nil {
		t.Fatalf("update tag: %v", err)
	}
	if got.Name != "new" {
		t.Fatalf("expected renamed tag, got %+v", got)
	}
	if _, err := gw.Tags.Update(ctx, "missing", model.TagPatch{Name: &name}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "marks.db")
	ctx := userCtx("u1")

	db, err := storage.Open(storage.Options{Path: dbPath})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	mustCreate(t, db.Gateway(), ctx, model.BookmarkDraft{Title: "x", URL: "https://x.dev"})
	db.Close()

	db, err = storage.Open(storage.Options{Path: dbPath})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	list, err := db.Gateway().Bookmarks.List(ctx, gateway.BookmarkFilter{})
	if err != nil || len(list) != 1 {
		t.Fatalf("expected persisted bookmark, got %v (%v)", list, err)
	}

	version, dirty, err := storage.SchemaVersion(storage.DriverSQLite, "sqlite://"+dbPath)
	if err != nil || dirty || version != 2 {
		t.Fatalf("unexpected schema version %d dirty=%v err=%v", version, dirty, err)
	}
}
