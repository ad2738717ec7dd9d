package tui

import "github.com/nikbrunner/marks/internal/model"

// EntryKind distinguishes collections from tags in the sidebar.
type EntryKind int

const (
	EntryCollection EntryKind = iota
	EntryTag
)

// Entry is one selectable row of the sidebar.
type Entry struct {
	Kind  EntryKind
	ID    string
	Name  string
	Icon  string
	Color string
	Count int
}

func (e Entry) IsTag() bool { return e.Kind == EntryTag }

// sidebarEntries lists "All Bookmarks", the collections, then the tags.
func (a App) sidebarEntries() []Entry {
	collections := a.ws.Collections.List()
	tags := a.ws.Tags.List()

	entries := make([]Entry, 0, len(collections)+len(tags))
	for _, c := range collections {
		entries = append(entries, Entry{
			Kind:  EntryCollection,
			ID:    c.ID,
			Name:  c.Name,
			Icon:  c.Icon,
			Color: c.Color,
			Count: c.Count,
		})
	}
	for _, t := range tags {
		entries = append(entries, Entry{
			Kind:  EntryTag,
			ID:    t.ID,
			Name:  t.Name,
			Color: t.Color,
			Count: t.Count,
		})
	}
	return entries
}

// collectionByID returns a persisted collection; "all" and unknown ids
// report false.
func (a App) collectionByID(id string) (model.Collection, bool) {
	if id == "" || id == model.AllCollectionID {
		return model.Collection{}, false
	}
	return a.ws.Collections.Get(id)
}
