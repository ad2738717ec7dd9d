// Package store holds the client-side state of one user's library: the
// bookmark partitions, collections, tags and the main view criteria.
//
// Mutations are write-then-reflect: the gateway is called first and local
// state changes only after it confirms. The store lock is never held across
// a gateway call.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
)

// ViewState is the UI-facing criteria of the main bookmark view.
type ViewState struct {
	Collection string
	Tags       []string
	Search     string
	Sort       SortOrder
	Filter     FilterType
	Mode       ViewMode
}

// DefaultViewState selects every collection, newest first, as a grid.
func DefaultViewState() ViewState {
	return ViewState{
		Collection: model.AllCollectionID,
		Tags:       []string{},
		Sort:       SortDateNewest,
		Filter:     FilterAll,
		Mode:       ViewGrid,
	}
}

// Query returns the filter criteria of v.
func (v ViewState) Query() Query {
	return Query{
		Collection: v.Collection,
		Tags:       slices.Clone(v.Tags),
		Search:     v.Search,
		Filter:     v.Filter,
		Sort:       v.Sort,
	}
}

// BookmarkStore owns the Active, Archived and Trashed partitions.
type BookmarkStore struct {
	gw  gateway.BookmarkGateway
	log logger.Logger
	now func() time.Time

	mu       sync.RWMutex
	active   []model.Bookmark
	archived []model.Bookmark
	trashed  []model.Bookmark
	view     ViewState
	loading  int
	err      error
}

func NewBookmarkStore(gw gateway.BookmarkGateway, log logger.Logger) *BookmarkStore {
	if log == nil {
		log = logger.Nop()
	}
	return &BookmarkStore{
		gw:       gw,
		log:      log.With(logger.String("store", "bookmarks")),
		now:      time.Now,
		active:   []model.Bookmark{},
		archived: []model.Bookmark{},
		trashed:  []model.Bookmark{},
		view:     DefaultViewState(),
	}
}

// Err returns the last recorded failure, or nil after a success.
func (s *BookmarkStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Loading reports whether a partition fetch is in flight.
func (s *BookmarkStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// fail records err in the error slot and returns it.
func (s *BookmarkStore) fail(op string, err error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.log.Warn("bookmark operation failed", logger.String("op", op), logger.Error(err))
	return err
}

// Load replaces Active with the gateway's listing.
func (s *BookmarkStore) Load(ctx context.Context) error {
	return s.load(ctx, gateway.BookmarkFilter{}, "fetch bookmarks")
}

// LoadArchived replaces Archived with the gateway's listing.
func (s *BookmarkStore) LoadArchived(ctx context.Context) error {
	return s.load(ctx, gateway.BookmarkFilter{Archived: true}, "fetch archived")
}

// LoadTrashed replaces Trashed with the gateway's listing.
func (s *BookmarkStore) LoadTrashed(ctx context.Context) error {
	return s.load(ctx, gateway.BookmarkFilter{Trashed: true}, "fetch trashed")
}

func (s *BookmarkStore) load(ctx context.Context, f gateway.BookmarkFilter, op string) error {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()

	bs, err := s.gw.List(ctx, f)

	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
	if err != nil {
		return s.fail(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	*s.partition(f.State()) = cloneAll(bs)
	s.err = nil
	return nil
}

// Create sends the draft and prepends the confirmed bookmark to Active.
func (s *BookmarkStore) Create(ctx context.Context, d model.BookmarkDraft) (model.Bookmark, error) {
	if err := d.Validate(); err != nil {
		return model.Bookmark{}, s.fail("create", err)
	}

	b, err := s.gw.Create(ctx, d)
	if err != nil {
		return model.Bookmark{}, s.fail("create", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(b.ID)
	target := s.partition(model.StateOf(b))
	*target = slices.Insert(*target, 0, b.Clone())
	s.err = nil
	return b.Clone(), nil
}

// Update patches an Active bookmark and merges the confirmed result.
func (s *BookmarkStore) Update(ctx context.Context, id string, p model.BookmarkPatch) (model.Bookmark, error) {
	if _, err := s.require(model.StateActive, id); err != nil {
		return model.Bookmark{}, s.fail("update", err)
	}
	if err := p.Validate(); err != nil {
		return model.Bookmark{}, s.fail("update", err)
	}
	return s.send(ctx, "update", id, p)
}

// ToggleFavorite flips isFavorite of an Active bookmark. A bookmark outside
// Active yields a not-found error and no request.
func (s *BookmarkStore) ToggleFavorite(ctx context.Context, id string) (model.Bookmark, error) {
	b, err := s.require(model.StateActive, id)
	if err != nil {
		return model.Bookmark{}, s.fail("toggle favorite", err)
	}
	return s.send(ctx, "toggle favorite", id, model.FavoritePatch(!b.IsFavorite))
}

// Archive moves an Active bookmark to Archived.
func (s *BookmarkStore) Archive(ctx context.Context, id string) (model.Bookmark, error) {
	return s.transition(ctx, "archive", model.StateActive, id, model.ArchivePatch(s.now()))
}

// RestoreFromArchive moves an Archived bookmark back to Active.
func (s *BookmarkStore) RestoreFromArchive(ctx context.Context, id string) (model.Bookmark, error) {
	return s.transition(ctx, "restore from archive", model.StateArchived, id, model.UnarchivePatch())
}

// Trash moves an Active bookmark to Trashed.
func (s *BookmarkStore) Trash(ctx context.Context, id string) (model.Bookmark, error) {
	return s.transition(ctx, "trash", model.StateActive, id, model.TrashPatch(s.now()))
}

// RestoreFromTrash moves a Trashed bookmark back to Active.
func (s *BookmarkStore) RestoreFromTrash(ctx context.Context, id string) (model.Bookmark, error) {
	return s.transition(ctx, "restore from trash", model.StateTrashed, id, model.UntrashPatch())
}

// PermanentlyDelete removes a Trashed bookmark for good. Bookmarks in any
// other partition are refused without a request.
func (s *BookmarkStore) PermanentlyDelete(ctx context.Context, id string) error {
	if _, err := s.require(model.StateTrashed, id); err != nil {
		return s.fail("permanently delete", err)
	}
	if err := s.gw.Delete(ctx, id); err != nil {
		return s.fail("permanently delete", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
	s.err = nil
	return nil
}

func (s *BookmarkStore) transition(ctx context.Context, op string, from model.State, id string, p model.BookmarkPatch) (model.Bookmark, error) {
	if _, err := s.require(from, id); err != nil {
		return model.Bookmark{}, s.fail(op, err)
	}
	return s.send(ctx, op, id, p)
}

// send issues the update and reflects the confirmed bookmark locally.
func (s *BookmarkStore) send(ctx context.Context, op, id string, p model.BookmarkPatch) (model.Bookmark, error) {
	b, err := s.gw.Update(ctx, id, p)
	if err != nil {
		return model.Bookmark{}, s.fail(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reflectLocked(b)
	s.err = nil
	return b.Clone(), nil
}

// require returns the bookmark when it sits in partition st.
func (s *BookmarkStore) require(st model.State, id string) (model.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	part := *s.partition(st)
	i := model.IndexOfBookmark(part, id)
	if i < 0 {
		return model.Bookmark{}, model.NewNotFoundError(stateEntity(st), id)
	}
	return part[i].Clone(), nil
}

func stateEntity(st model.State) string {
	switch st {
	case model.StateArchived:
		return "Archived bookmark"
	case model.StateTrashed:
		return "Trashed bookmark"
	default:
		return "Bookmark"
	}
}

// reflectLocked stores b in the partition matching its state. A bookmark
// that stays put keeps its position; one that moves is appended to the
// target. Both happen under one lock so the move is never half-visible.
func (s *BookmarkStore) reflectLocked(b model.Bookmark) {
	to := model.StateOf(b)
	for _, st := range []model.State{model.StateActive, model.StateArchived, model.StateTrashed} {
		part := s.partition(st)
		i := model.IndexOfBookmark(*part, b.ID)
		if i < 0 {
			continue
		}
		if st == to {
			(*part)[i] = b.Clone()
			return
		}
		*part = slices.Delete(*part, i, i+1)
	}
	target := s.partition(to)
	*target = append(*target, b.Clone())
}

func (s *BookmarkStore) removeLocked(id string) {
	for _, st := range []model.State{model.StateActive, model.StateArchived, model.StateTrashed} {
		part := s.partition(st)
		*part = slices.DeleteFunc(*part, func(b model.Bookmark) bool { return b.ID == id })
	}
}

func (s *BookmarkStore) partition(st model.State) *[]model.Bookmark {
	switch st {
	case model.StateArchived:
		return &s.archived
	case model.StateTrashed:
		return &s.trashed
	default:
		return &s.active
	}
}

// DetachCollection clears collectionId on every local bookmark in the
// collection. The gateway has already done the same.
func (s *BookmarkStore) DetachCollection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, part := range []*[]model.Bookmark{&s.active, &s.archived, &s.trashed} {
		for i := range *part {
			if (*part)[i].InCollection(id) {
				(*part)[i].CollectionID = nil
			}
		}
	}
	if s.view.Collection == id {
		s.view.Collection = model.AllCollectionID
	}
}

// ForgetTag strips a deleted tag from every local bookmark and from the
// selected tag filter.
func (s *BookmarkStore) ForgetTag(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := func(t string) bool { return t == id }
	for _, part := range []*[]model.Bookmark{&s.active, &s.archived, &s.trashed} {
		for i := range *part {
			(*part)[i].Tags = slices.DeleteFunc((*part)[i].Tags, drop)
		}
	}
	s.view.Tags = slices.DeleteFunc(s.view.Tags, drop)
}

// Get looks id up in every partition.
func (s *BookmarkStore) Get(id string) (model.Bookmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, part := range [][]model.Bookmark{s.active, s.archived, s.trashed} {
		if i := model.IndexOfBookmark(part, id); i >= 0 {
			return part[i].Clone(), true
		}
	}
	return model.Bookmark{}, false
}

// Active returns a copy of the Active partition in store order.
func (s *BookmarkStore) Active() []model.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.active)
}

// Filtered is the main view: Active narrowed and sorted by the view state.
func (s *BookmarkStore) Filtered() []model.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterBookmarks(cloneAll(s.active), s.view.Query())
}

// Favorites is the favorites view over Active.
func (s *BookmarkStore) Favorites() []model.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FavoriteBookmarks(cloneAll(s.active), s.view.Search, s.view.Sort)
}

// Archived applies the search to Archived, keeping gateway order.
func (s *BookmarkStore) Archived() []model.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SearchBookmarks(cloneAll(s.archived), s.view.Search)
}

// Trashed applies the search to Trashed, keeping gateway order.
func (s *BookmarkStore) Trashed() []model.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SearchBookmarks(cloneAll(s.trashed), s.view.Search)
}

// View returns a copy of the current view state.
func (s *BookmarkStore) View() ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.view
	v.Tags = slices.Clone(s.view.Tags)
	return v
}

func (s *BookmarkStore) SetSelectedCollection(id string) {
	if id == "" {
		id = model.AllCollectionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Collection = id
}

// ToggleTag adds id to the selected tags, or removes it when present.
func (s *BookmarkStore) ToggleTag(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.view.Tags, id); i >= 0 {
		s.view.Tags = slices.Delete(s.view.Tags, i, i+1)
		return
	}
	s.view.Tags = append(s.view.Tags, id)
}

func (s *BookmarkStore) ClearTags() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Tags = []string{}
}

func (s *BookmarkStore) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Search = q
}

func (s *BookmarkStore) SetSortBy(o SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Sort = o
}

func (s *BookmarkStore) SetFilterType(f FilterType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Filter = f
}

func (s *BookmarkStore) SetViewMode(m ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Mode = m
}

func cloneAll(bs []model.Bookmark) []model.Bookmark {
	out := make([]model.Bookmark, len(bs))
	for i, b := range bs {
		out[i] = b.Clone()
	}
	return out
}
