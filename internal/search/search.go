// Package search ranks bookmarks against a fuzzy query.
package search

import (
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/marks/internal/model"
)

// Field names the bookmark field a result matched on.
type Field int

const (
	FieldTitle Field = iota
	FieldURL
)

// Result represents a fuzzy match. MatchedIndexes index into the matched
// field.
type Result struct {
	Bookmark       model.Bookmark
	Field          Field
	MatchedIndexes []int
	Score          int
}

type titles []model.Bookmark

func (t titles) String(i int) string { return t[i].Title }
func (t titles) Len() int            { return len(t) }

type urls []model.Bookmark

func (u urls) String(i int) string { return u[i].URL }
func (u urls) Len() int            { return len(u) }

// Fuzzy matches query against bookmark titles, then against the URLs of
// bookmarks whose title did not match. Title matches rank first; within
// each group results are sorted by score (best first).
func Fuzzy(bookmarks []model.Bookmark, query string) []Result {
	if query == "" {
		return nil
	}

	matched := make(map[int]bool)
	var results []Result
	for _, m := range fuzzy.FindFrom(query, titles(bookmarks)) {
		matched[m.Index] = true
		results = append(results, Result{
			Bookmark:       bookmarks[m.Index],
			Field:          FieldTitle,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		})
	}

	var byURL []Result
	for _, m := range fuzzy.FindFrom(query, urls(bookmarks)) {
		if matched[m.Index] {
			continue
		}
		byURL = append(byURL, Result{
			Bookmark:       bookmarks[m.Index],
			Field:          FieldURL,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		})
	}
	sort.SliceStable(byURL, func(i, j int) bool { return byURL[i].Score > byURL[j].Score })

	return append(results, byURL...)
}

// Bookmarks returns the matched bookmarks in result order.
func Bookmarks(results []Result) []model.Bookmark {
	out := make([]model.Bookmark, len(results))
	for i, r := range results {
		out[i] = r.Bookmark
	}
	return out
}
