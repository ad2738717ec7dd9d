package store

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nikbrunner/marks/internal/model"
)

// SortOrder orders a bookmark view.
type SortOrder string

const (
	SortDateNewest SortOrder = "date-newest"
	SortDateOldest SortOrder = "date-oldest"
	SortAlphaAZ    SortOrder = "alpha-az"
	SortAlphaZA    SortOrder = "alpha-za"
)

var SortOrders = []SortOrder{SortDateNewest, SortDateOldest, SortAlphaAZ, SortAlphaZA}

// Label is the human-readable name of the order.
func (s SortOrder) Label() string {
	switch s {
	case SortDateOldest:
		return "Oldest first"
	case SortAlphaAZ:
		return "A-Z"
	case SortAlphaZA:
		return "Z-A"
	default:
		return "Newest first"
	}
}

// Next cycles through SortOrders.
func (s SortOrder) Next() SortOrder {
	return next(SortOrders, s)
}

func ParseSortOrder(v string) (SortOrder, error) {
	return parseEnum(SortOrders, v, "sort order")
}

// FilterType narrows the main view by favorites or tag presence.
type FilterType string

const (
	FilterAll         FilterType = "all"
	FilterFavorites   FilterType = "favorites"
	FilterWithTags    FilterType = "with-tags"
	FilterWithoutTags FilterType = "without-tags"
)

var FilterTypes = []FilterType{FilterAll, FilterFavorites, FilterWithTags, FilterWithoutTags}

func (f FilterType) Next() FilterType {
	return next(FilterTypes, f)
}

func ParseFilterType(v string) (FilterType, error) {
	return parseEnum(FilterTypes, v, "filter")
}

// ViewMode is how bookmarks are laid out. It does not affect queries.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

var ViewModes = []ViewMode{ViewGrid, ViewList}

func (v ViewMode) Next() ViewMode {
	return next(ViewModes, v)
}

func ParseViewMode(v string) (ViewMode, error) {
	return parseEnum(ViewModes, v, "view mode")
}

func next[T comparable](all []T, cur T) T {
	i := slices.Index(all, cur)
	return all[(i+1)%len(all)]
}

func parseEnum[T ~string](all []T, v, what string) (T, error) {
	for _, candidate := range all {
		if string(candidate) == v {
			return candidate, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", what, v)
}

// Query is the full set of main-view criteria.
type Query struct {
	Collection string // "all" or "" selects every collection
	Tags       []string
	Search     string
	Filter     FilterType
	Sort       SortOrder
}

// FilterBookmarks applies, in order: collection, tags (any-of), search,
// filter type, then a stable sort. It never mutates bs.
func FilterBookmarks(bs []model.Bookmark, q Query) []model.Bookmark {
	out := make([]model.Bookmark, 0, len(bs))
	for _, b := range bs {
		if q.Collection != "" && q.Collection != model.AllCollectionID && !b.InCollection(q.Collection) {
			continue
		}
		if len(q.Tags) > 0 && !slices.ContainsFunc(q.Tags, b.HasTag) {
			continue
		}
		if !MatchesSearch(b, q.Search) {
			continue
		}
		if !matchesFilter(b, q.Filter) {
			continue
		}
		out = append(out, b)
	}
	sortInPlace(out, q.Sort)
	return out
}

// FavoriteBookmarks is the favorites view: favorites, search, sort.
func FavoriteBookmarks(bs []model.Bookmark, search string, order SortOrder) []model.Bookmark {
	out := make([]model.Bookmark, 0, len(bs))
	for _, b := range bs {
		if b.IsFavorite && MatchesSearch(b, search) {
			out = append(out, b)
		}
	}
	sortInPlace(out, order)
	return out
}

// SearchBookmarks keeps input order and applies only the search.
func SearchBookmarks(bs []model.Bookmark, search string) []model.Bookmark {
	out := make([]model.Bookmark, 0, len(bs))
	for _, b := range bs {
		if MatchesSearch(b, search) {
			out = append(out, b)
		}
	}
	return out
}

// SortBookmarks returns a stably sorted copy of bs.
func SortBookmarks(bs []model.Bookmark, order SortOrder) []model.Bookmark {
	out := slices.Clone(bs)
	sortInPlace(out, order)
	return out
}

// MatchesSearch reports whether q is a case-insensitive substring of the
// title, description or url. An empty query matches everything.
func MatchesSearch(b model.Bookmark, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Description), q) ||
		strings.Contains(strings.ToLower(b.URL), q)
}

func matchesFilter(b model.Bookmark, f FilterType) bool {
	switch f {
	case FilterFavorites:
		return b.IsFavorite
	case FilterWithTags:
		return len(b.Tags) > 0
	case FilterWithoutTags:
		return len(b.Tags) == 0
	default:
		return true
	}
}

func sortInPlace(bs []model.Bookmark, order SortOrder) {
	switch order {
	case SortDateOldest:
		slices.SortStableFunc(bs, func(a, b model.Bookmark) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case SortAlphaAZ, SortAlphaZA:
		// Collators keep internal buffers and are not safe for concurrent use.
		c := collate.New(language.English)
		sign := 1
		if order == SortAlphaZA {
			sign = -1
		}
		slices.SortStableFunc(bs, func(a, b model.Bookmark) int {
			return sign * c.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(bs, func(a, b model.Bookmark) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}
