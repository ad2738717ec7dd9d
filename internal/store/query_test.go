package store

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/marks/internal/model"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func bm(id, title string, opts ...func(*model.Bookmark)) model.Bookmark {
	b := model.Bookmark{
		ID:        id,
		Title:     title,
		URL:       "https://" + id + ".example",
		Tags:      []string{},
		CreatedAt: t0,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func inCollection(id string) func(*model.Bookmark) {
	return func(b *model.Bookmark) { b.CollectionID = &id }
}

func withTags(ids ...string) func(*model.Bookmark) {
	return func(b *model.Bookmark) { b.Tags = ids }
}

func favorite(b *model.Bookmark) { b.IsFavorite = true }

func createdAt(offset time.Duration) func(*model.Bookmark) {
	return func(b *model.Bookmark) { b.CreatedAt = t0.Add(offset) }
}

func titles(bs []model.Bookmark) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Title
	}
	return out
}

func TestFilterComposition(t *testing.T) {
	bs := []model.Bookmark{
		bm("a", "A", withTags("x"), inCollection("c1")),
		bm("b", "B", inCollection("c1"), favorite),
		bm("c", "C", withTags("x"), inCollection("c2"), favorite),
	}

	got := FilterBookmarks(bs, Query{Collection: "c1", Tags: []string{"x"}, Filter: FilterAll})
	assert.DeepEqual(t, titles(got), []string{"A"})
}

func TestFilterSteps(t *testing.T) {
	bs := []model.Bookmark{
		bm("a", "Alpha", withTags("x"), inCollection("c1"), createdAt(1*time.Hour)),
		bm("b", "Beta", withTags("y"), favorite, createdAt(2*time.Hour)),
		bm("c", "Gamma", createdAt(3*time.Hour), func(b *model.Bookmark) { b.Description = "about go" }),
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"all collection keeps everything", Query{Collection: model.AllCollectionID}, []string{"Gamma", "Beta", "Alpha"}},
		{"empty collection means all", Query{}, []string{"Gamma", "Beta", "Alpha"}},
		{"collection", Query{Collection: "c1"}, []string{"Alpha"}},
		{"tags are any-of", Query{Tags: []string{"x", "y"}}, []string{"Beta", "Alpha"}},
		{"search description", Query{Search: "GO"}, []string{"Gamma"}},
		{"favorites", Query{Filter: FilterFavorites}, []string{"Beta"}},
		{"with tags", Query{Filter: FilterWithTags}, []string{"Beta", "Alpha"}},
		{"without tags", Query{Filter: FilterWithoutTags}, []string{"Gamma"}},
		{"oldest first", Query{Sort: SortDateOldest}, []string{"Alpha", "Beta", "Gamma"}},
		{"z to a", Query{Sort: SortAlphaZA}, []string{"Gamma", "Beta", "Alpha"}},
		{"unknown collection", Query{Collection: "nope"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.DeepEqual(t, titles(FilterBookmarks(bs, tt.query)), tt.want)
		})
	}
}

func TestSortExamples(t *testing.T) {
	t.Run("date oldest", func(t *testing.T) {
		bs := []model.Bookmark{
			bm("3", "T3", createdAt(3*time.Minute)),
			bm("1", "T1", createdAt(1*time.Minute)),
			bm("2", "T2", createdAt(2*time.Minute)),
		}
		assert.DeepEqual(t, titles(SortBookmarks(bs, SortDateOldest)), []string{"T1", "T2", "T3"})
	})

	t.Run("alpha is case-insensitive", func(t *testing.T) {
		bs := []model.Bookmark{bm("b", "Banana"), bm("a", "apple")}
		assert.DeepEqual(t, titles(SortBookmarks(bs, SortAlphaAZ)), []string{"apple", "Banana"})
		assert.DeepEqual(t, titles(SortBookmarks(bs, SortAlphaZA)), []string{"Banana", "apple"})
	})

	t.Run("stable on ties", func(t *testing.T) {
		bs := []model.Bookmark{bm("1", "first"), bm("2", "second"), bm("3", "third")}
		got := SortBookmarks(bs, SortDateNewest)
		assert.DeepEqual(t, titles(got), []string{"first", "second", "third"})
	})

	t.Run("input untouched", func(t *testing.T) {
		bs := []model.Bookmark{bm("b", "b"), bm("a", "a")}
		SortBookmarks(bs, SortAlphaAZ)
		assert.DeepEqual(t, titles(bs), []string{"b", "a"})
	})
}

func TestSearchExample(t *testing.T) {
	docs := bm("d", "Docs", func(b *model.Bookmark) { b.URL = "https://github.com" })
	other := bm("o", "Other")

	assert.Assert(t, MatchesSearch(docs, "git"))
	assert.Assert(t, !MatchesSearch(other, "git"))
	assert.Assert(t, MatchesSearch(other, ""))

	got := SearchBookmarks([]model.Bookmark{other, docs}, "git")
	assert.DeepEqual(t, titles(got), []string{"Docs"})
}

func TestFavoriteBookmarks(t *testing.T) {
	bs := []model.Bookmark{
		bm("a", "zeta", favorite),
		bm("b", "Alpha", favorite),
		bm("c", "beta"),
	}
	got := FavoriteBookmarks(bs, "", SortAlphaAZ)
	assert.DeepEqual(t, titles(got), []string{"Alpha", "zeta"})

	got = FavoriteBookmarks(bs, "ZET", SortAlphaAZ)
	assert.DeepEqual(t, titles(got), []string{"zeta"})
}

func TestEnumCycling(t *testing.T) {
	assert.Equal(t, SortDateNewest.Next(), SortDateOldest)
	assert.Equal(t, SortAlphaZA.Next(), SortDateNewest)
	assert.Equal(t, FilterWithoutTags.Next(), FilterAll)
	assert.Equal(t, ViewGrid.Next(), ViewList)

	o, err := ParseSortOrder("alpha-az")
	assert.NilError(t, err)
	assert.Equal(t, o, SortAlphaAZ)

	_, err = ParseFilterType("starred")
	assert.ErrorContains(t, err, "unknown filter")
}
