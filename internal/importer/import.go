package importer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/store"
)

// Library is the part of store.Workspace an import writes through.
type Library interface {
	Snapshot() store.Snapshot
	EnsureCollection(ctx context.Context, name string) (model.Collection, error)
	EnsureTags(ctx context.Context, names []string) ([]string, error)
	CreateBookmark(ctx context.Context, d model.BookmarkDraft) (model.Bookmark, error)
}

// Options tune an import.
type Options struct {
	// Collection receives entries that sit outside any folder. Empty leaves
	// them uncategorized.
	Collection string
	// Flatten puts every entry into Collection regardless of its folder.
	Flatten bool
}

// Report summarizes an import.
type Report struct {
	Imported int
	Skipped  int // URL already in the library or earlier in the file
	Failed   []Failure
}

type Failure struct {
	URL string
	Err error
}

// Import creates a bookmark per entry, oldest first, so that the library's
// newest-first order matches the file's ADD_DATE order. Auth and network
// errors abort the import; other per-entry errors are collected in the
// report.
func Import(ctx context.Context, lib Library, entries []Entry, opts Options) (Report, error) {
	var report Report

	seen := make(map[string]bool)
	for _, b := range lib.Snapshot().All() {
		seen[b.URL] = true
	}

	ordered := slices.Clone(entries)
	slices.SortStableFunc(ordered, func(a, b Entry) int {
		return a.AddedAt.Compare(b.AddedAt)
	})

	for _, e := range ordered {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if seen[e.URL] {
			report.Skipped++
			continue
		}
		seen[e.URL] = true

		draft, err := resolve(ctx, lib, e, opts)
		if err == nil {
			_, err = lib.CreateBookmark(ctx, draft)
		}
		if err != nil {
			if fatal(err) {
				return report, fmt.Errorf("import %s: %w", e.URL, err)
			}
			report.Failed = append(report.Failed, Failure{URL: e.URL, Err: err})
			continue
		}
		report.Imported++
	}
	return report, nil
}

func resolve(ctx context.Context, lib Library, e Entry, opts Options) (model.BookmarkDraft, error) {
	draft := model.BookmarkDraft{
		Title:       e.Title,
		URL:         e.URL,
		Description: e.Description,
	}

	name := e.Collection
	if opts.Flatten || name == "" {
		name = opts.Collection
	}
	if name = strings.TrimSpace(name); name != "" {
		c, err := lib.EnsureCollection(ctx, name)
		if err != nil {
			return draft, err
		}
		draft.CollectionID = &c.ID
	}

	if len(e.Tags) > 0 {
		ids, err := lib.EnsureTags(ctx, e.Tags)
		if err != nil {
			return draft, err
		}
		draft.Tags = ids
	}
	return draft, nil
}

func fatal(err error) bool {
	return errors.Is(err, model.ErrAuth) || errors.Is(err, model.ErrNetwork) || errors.Is(err, context.Canceled)
}
