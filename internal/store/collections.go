package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
)

// CollectionStore owns the user's collections plus the active total that
// backs the synthetic "All Bookmarks" entry.
type CollectionStore struct {
	gw  gateway.CollectionGateway
	log logger.Logger

	mu          sync.RWMutex
	collections []model.Collection
	activeTotal int
	err         error
}

func NewCollectionStore(gw gateway.CollectionGateway, log logger.Logger) *CollectionStore {
	if log == nil {
		log = logger.Nop()
	}
	return &CollectionStore{
		gw:          gw,
		log:         log.With(logger.String("store", "collections")),
		collections: []model.Collection{},
	}
}

func (s *CollectionStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *CollectionStore) fail(op string, err error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.log.Warn("collection operation failed", logger.String("op", op), logger.Error(err))
	return err
}

// Load replaces the collections and the active total from the gateway.
func (s *CollectionStore) Load(ctx context.Context) error {
	list, err := s.gw.List(ctx)
	if err != nil {
		return s.fail("fetch collections", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = slices.Clone(list.Collections)
	if s.collections == nil {
		s.collections = []model.Collection{}
	}
	s.activeTotal = list.ActiveTotal
	s.err = nil
	return nil
}

// List returns "All Bookmarks" followed by the persisted collections.
func (s *CollectionStore) List() []model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Collection, 0, len(s.collections)+1)
	out = append(out, model.AllCollection(s.activeTotal))
	return append(out, s.collections...)
}

// Collections returns the persisted collections only.
func (s *CollectionStore) Collections() []model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.collections)
}

// Get returns the collection with id, including the synthetic entry.
func (s *CollectionStore) Get(id string) (model.Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == model.AllCollectionID {
		return model.AllCollection(s.activeTotal), true
	}
	i := s.indexLocked(id)
	if i < 0 {
		return model.Collection{}, false
	}
	return s.collections[i], true
}

// FindByName matches a persisted collection name case-insensitively.
func (s *CollectionStore) FindByName(name string) (model.Collection, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.collections {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return model.Collection{}, false
}

// Create sends the draft and appends the confirmed collection with count 0.
// The returned id is usable for bookmark operations immediately.
func (s *CollectionStore) Create(ctx context.Context, d model.CollectionDraft) (model.Collection, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return model.Collection{}, s.fail("create", err)
	}

	c, err := s.gw.Create(ctx, d)
	if err != nil {
		return model.Collection{}, s.fail("create", err)
	}
	c.Count = 0

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = append(s.collections, c)
	s.err = nil
	return c, nil
}

// Update merges a patch into a known collection.
func (s *CollectionStore) Update(ctx context.Context, id string, p model.CollectionPatch) (model.Collection, error) {
	if _, ok := s.Get(id); !ok || id == model.AllCollectionID {
		return model.Collection{}, s.fail("update", model.NewNotFoundError("Collection", id))
	}
	if err := p.Validate(); err != nil {
		return model.Collection{}, s.fail("update", err)
	}

	c, err := s.gw.Update(ctx, id, p)
	if err != nil {
		return model.Collection{}, s.fail("update", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.collections[i] = c
	}
	s.err = nil
	return c, nil
}

// Delete removes a collection. The synthetic entry cannot be deleted.
// Bookmarks in the collection are detached by the gateway, not deleted.
func (s *CollectionStore) Delete(ctx context.Context, id string) error {
	if id == model.AllCollectionID {
		return s.fail("delete", model.NewValidationError("The All Bookmarks collection cannot be deleted"))
	}
	if _, ok := s.Get(id); !ok {
		return s.fail("delete", model.NewNotFoundError("Collection", id))
	}

	if err := s.gw.Delete(ctx, id); err != nil {
		return s.fail("delete", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.collections = slices.Delete(s.collections, i, i+1)
	}
	s.err = nil
	return nil
}

func (s *CollectionStore) indexLocked(id string) int {
	return slices.IndexFunc(s.collections, func(c model.Collection) bool { return c.ID == id })
}
