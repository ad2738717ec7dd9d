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

// TagStore owns the user's tags and their usage counts.
type TagStore struct {
	gw  gateway.TagGateway
	log logger.Logger

	mu   sync.RWMutex
	tags []model.Tag
	err  error
}

func NewTagStore(gw gateway.TagGateway, log logger.Logger) *TagStore {
	if log == nil {
		log = logger.Nop()
	}
	return &TagStore{
		gw:   gw,
		log:  log.With(logger.String("store", "tags")),
		tags: []model.Tag{},
	}
}

func (s *TagStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *TagStore) fail(op string, err error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.log.Warn("tag operation failed", logger.String("op", op), logger.Error(err))
	return err
}

func (s *TagStore) Load(ctx context.Context) error {
	tags, err := s.gw.List(ctx)
	if err != nil {
		return s.fail("fetch tags", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = slices.Clone(tags)
	if s.tags == nil {
		s.tags = []model.Tag{}
	}
	s.err = nil
	return nil
}

func (s *TagStore) List() []model.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tags)
}

func (s *TagStore) Get(id string) (model.Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Tag{}, false
	}
	return s.tags[i], true
}

// FindByName matches a tag name case-insensitively.
func (s *TagStore) FindByName(name string) (model.Tag, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tags {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return model.Tag{}, false
}

// Names maps tag ids to names, skipping unknown ids.
func (s *TagStore) Names(ids []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if i := s.indexLocked(id); i >= 0 {
			names = append(names, s.tags[i].Name)
		}
	}
	return names
}

func (s *TagStore) Create(ctx context.Context, d model.TagDraft) (model.Tag, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return model.Tag{}, s.fail("create", err)
	}

	t, err := s.gw.Create(ctx, d)
	if err != nil {
		return model.Tag{}, s.fail("create", err)
	}
	t.Count = 0

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, t)
	s.err = nil
	return t, nil
}

func (s *TagStore) Update(ctx context.Context, id string, p model.TagPatch) (model.Tag, error) {
	if _, ok := s.Get(id); !ok {
		return model.Tag{}, s.fail("update", model.NewNotFoundError("Tag", id))
	}
	if err := p.Validate(); err != nil {
		return model.Tag{}, s.fail("update", err)
	}

	t, err := s.gw.Update(ctx, id, p)
	if err != nil {
		return model.Tag{}, s.fail("update", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.tags[i] = t
	}
	s.err = nil
	return t, nil
}

// Delete removes the tag. The gateway drops its associations; callers
// holding bookmarks must strip the id themselves (see Workspace.DeleteTag).
func (s *TagStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.Get(id); !ok {
		return s.fail("delete", model.NewNotFoundError("Tag", id))
	}

	if err := s.gw.Delete(ctx, id); err != nil {
		return s.fail("delete", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.tags = slices.Delete(s.tags, i, i+1)
	}
	s.err = nil
	return nil
}

func (s *TagStore) indexLocked(id string) int {
	return slices.IndexFunc(s.tags, func(t model.Tag) bool { return t.ID == id })
}
