// Package gatewaytest provides an in-memory gateway with failure injection.
package gatewaytest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/model"
)

// Op names a gateway call for failure injection and call counting.
type Op string

const (
	ListBookmarks    Op = "bookmarks.list"
	CreateBookmark   Op = "bookmarks.create"
	UpdateBookmark   Op = "bookmarks.update"
	DeleteBookmark   Op = "bookmarks.delete"
	ListCollections  Op = "collections.list"
	CreateCollection Op = "collections.create"
	UpdateCollection Op = "collections.update"
	DeleteCollection Op = "collections.delete"
	ListTags         Op = "tags.list"
	CreateTag        Op = "tags.create"
	UpdateTag        Op = "tags.update"
	DeleteTag        Op = "tags.delete"
)

// Memory is a single-user backend held in memory.
type Memory struct {
	mu          sync.Mutex
	bookmarks   []model.Bookmark
	collections []model.Collection
	tags        []model.Tag
	failures    map[Op]error
	calls       map[Op]int
	clock       time.Time
}

// New returns an empty backend whose clock starts at a fixed instant and
// advances one second per created bookmark.
func New() *Memory {
	return &Memory{
		failures: map[Op]error{},
		calls:    map[Op]int{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Gateway exposes m through the gateway contract.
func (m *Memory) Gateway() gateway.Gateway {
	return gateway.Gateway{
		Bookmarks:   bookmarks{m},
		Collections: collections{m},
		Tags:        tags{m},
	}
}

// Fail makes the next call to op return err.
func (m *Memory) Fail(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

// Calls reports how many times op was invoked, failed calls included.
func (m *Memory) Calls(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Seed inserts bookmarks verbatim, keeping their ids and timestamps.
func (m *Memory) Seed(bs ...model.Bookmark) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range bs {
		m.bookmarks = append(m.bookmarks, b.Clone())
	}
}

// SeedCollections inserts collections verbatim.
func (m *Memory) SeedCollections(cs ...model.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = append(m.collections, cs...)
}

// SeedTags inserts tags verbatim.
func (m *Memory) SeedTags(ts ...model.Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags = append(m.tags, ts...)
}

// Bookmark returns the stored copy of id.
func (m *Memory) Bookmark(id string) (model.Bookmark, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := model.IndexOfBookmark(m.bookmarks, id)
	if i < 0 {
		return model.Bookmark{}, false
	}
	return m.bookmarks[i].Clone(), true
}

// begin records the call and returns an injected failure, if any.
// The caller must hold m.mu.
func (m *Memory) begin(op Op) error {
	m.calls[op]++
	if err, ok := m.failures[op]; ok {
		delete(m.failures, op)
		return err
	}
	return nil
}

func (m *Memory) activeCount(match func(model.Bookmark) bool) int {
	n := 0
	for _, b := range m.bookmarks {
		if model.IsActive(b) && match(b) {
			n++
		}
	}
	return n
}

type bookmarks struct{ m *Memory }

func (g bookmarks) List(_ context.Context, f gateway.BookmarkFilter) ([]model.Bookmark, error) {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ListBookmarks); err != nil {
		return nil, err
	}
	out := []model.Bookmark{}
	for _, b := range m.bookmarks {
		if f.Matches(b) {
			out = append(out, b.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b model.Bookmark) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (g bookmarks) Create(_ context.Context, d model.BookmarkDraft) (model.Bookmark, error) {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(CreateBookmark); err != nil {
		return model.Bookmark{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Bookmark{}, err
	}
	m.clock = m.clock.Add(time.Second)
	b := model.NewBookmark(d, m.clock)
	b.Tags = m.ownedTags(b.Tags)
	m.bookmarks = append(m.bookmarks, b)
	return b.Clone(), nil
}

func (g bookmarks) Update(_ context.Context, id string, p model.BookmarkPatch) (model.Bookmark, error) {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(UpdateBookmark); err != nil {
		return model.Bookmark{}, err
	}
	if err := p.Validate(); err != nil {
		return model.Bookmark{}, err
	}
	i := model.IndexOfBookmark(m.bookmarks, id)
	if i < 0 {
		return model.Bookmark{}, model.NewNotFoundError("Bookmark", id)
	}
	if err := p.ValidateFor(m.bookmarks[i]); err != nil {
		return model.Bookmark{}, err
	}
	if p.Tags != nil {
		p.Tags = m.ownedTags(model.NormalizeTags(p.Tags))
	}
	m.bookmarks[i] = p.Apply(m.bookmarks[i])
	return m.bookmarks[i].Clone(), nil
}

func (g bookmarks) Delete(_ context.Context, id string) error {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(DeleteBookmark); err != nil {
		return err
	}
	i := model.IndexOfBookmark(m.bookmarks, id)
	if i < 0 {
		return model.NewNotFoundError("Bookmark", id)
	}
	m.bookmarks = slices.Delete(m.bookmarks, i, i+1)
	return nil
}

// ownedTags keeps only ids of existing tags. The caller must hold m.mu.
func (m *Memory) ownedTags(ids []string) []string {
	out := []string{}
	for _, id := range ids {
		if slices.ContainsFunc(m.tags, func(t model.Tag) bool { return t.ID == id }) {
			out = append(out, id)
		}
	}
	return out
}

type collections struct{ m *Memory }

func (g collections) List(context.Context) (model.CollectionList, error) {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ListCollections); err != nil {
		return model.CollectionList{}, err
	}
	out := make([]model.Collection, len(m.collections))
	for i, c := range m.collections {
		c.Count = m.activeCount(func(b model.Bookmark) bool { return b.InCollection(c.ID) })
		out[i] = c
	}
	total := m.activeCount(func(model.Bookmark) bool { return true })
	return model.CollectionList{Collections: out, ActiveTotal: total}, nil
}

func (g collections) Create(_ context.Context, d model.CollectionDraft) (model.Collection, error) {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(CreateCollection); err != nil {
		return model.Collection{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Collection{}, err
	}
	c := model.NewCollection(d)
	m.collections = append(m.collections, c)
	return c, nil
}

func (g collections) Update(_ context.Context, id string, p model.CollectionPatch) (model.Collection, error) {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(UpdateCollection); err != nil {
		return model.Collection{}, err
	}
	if err := p.Validate(); err != nil {
		return model.Collection{}, err
	}
	i := slices.IndexFunc(m.collections, func(c model.Collection) bool { return c.ID == id })
	if i < 0 {
		return model.Collection{}, model.NewNotFoundError("Collection", id)
	}
	m.collections[i] = p.Apply(m.collections[i])
	return m.collections[i], nil
}

func (g collections) Delete(_ context.Context, id string) error {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(DeleteCollection); err != nil {
		return err
	}
	i := slices.IndexFunc(m.collections, func(c model.Collection) bool { return c.ID == id })
	if i < 0 {
		return model.NewNotFoundError("Collection", id)
	}
	m.collections = slices.Delete(m.collections, i, i+1)
	for j := range m.bookmarks {
		if m.bookmarks[j].InCollection(id) {
			m.bookmarks[j].CollectionID = nil
		}
	}
	return nil
}

type tags struct{ m *Memory }

func (g tags) List(context.Context) ([]model.Tag, error) {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ListTags); err != nil {
		return nil, err
	}
	out := make([]model.Tag, len(m.tags))
	for i, t := range m.tags {
		t.Count = m.activeCount(func(b model.Bookmark) bool { return b.HasTag(t.ID) })
		out[i] = t
	}
	return out, nil
}

func (g tags) Create(_ context.Context, d model.TagDraft) (model.Tag, error) {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(CreateTag); err != nil {
		return model.Tag{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Tag{}, err
	}
	t := model.NewTag(d)
	m.tags = append(m.tags, t)
	return t, nil
}

func (g tags) Update(_ context.Context, id string, p model.TagPatch) (model.Tag, error) {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(UpdateTag); err != nil {
		return model.Tag{}, err
	}
	if err := p.Validate(); err != nil {
		return model.Tag{}, err
	}
	i := slices.IndexFunc(m.tags, func(t model.Tag) bool { return t.ID == id })
	if i < 0 {
		return model.Tag{}, model.NewNotFoundError("Tag", id)
	}
	m.tags[i] = p.Apply(m.tags[i])
	return m.tags[i], nil
}

func (g tags) Delete(_ context.Context, id string) error {
	m := g.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(DeleteTag); err != nil {
		return err
	}
	i := slices.IndexFunc(m.tags, func(t model.Tag) bool { return t.ID == id })
	if i < 0 {
		return model.NewNotFoundError("Tag", id)
	}
	m.tags = slices.Delete(m.tags, i, i+1)
	for j := range m.bookmarks {
		m.bookmarks[j].Tags = slices.DeleteFunc(m.bookmarks[j].Tags, func(t string) bool { return t == id })
	}
	return nil
}
