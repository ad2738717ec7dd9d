package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/marks/internal/ai"
	"github.com/nikbrunner/marks/internal/model"
)

// loadedMsg reports the result of (re)loading the workspace.
type loadedMsg struct{ err error }

// opMsg reports the result of a mutation.
type opMsg struct {
	text string
	err  error
}

// suggestMsg carries an AI suggestion for the quick add flow.
type suggestMsg struct {
	url        string
	suggestion *ai.Suggestion
	err        error
}

// loadCmd fetches every partition, collections and tags.
func (a App) loadCmd() tea.Cmd {
	ctx, ws := a.ctx, a.ws
	return func() tea.Msg {
		return loadedMsg{err: ws.LoadAll(ctx)}
	}
}

// run executes fn off the update loop and reports text on success.
func (a App) run(text string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return opMsg{text: text, err: fn(ctx)}
	}
}

func (a App) suggestCmd(url string) tea.Cmd {
	ctx, client := a.ctx, a.ai
	library := ai.BuildContext(a.ws.Snapshot())
	return func() tea.Msg {
		s, err := client.Suggest(ctx, url, library)
		return suggestMsg{url: url, suggestion: s, err: err}
	}
}

// saveBookmarkCmd resolves the collection and tag names of the form and
// creates or updates the bookmark.
func (a App) saveBookmarkCmd(f FormState) tea.Cmd {
	ws := a.ws
	title, url := f.Value(fieldTitle), f.Value(fieldURL)
	description := f.Value(fieldDescription)
	collection := f.Value(fieldCollection)
	tagNames := f.TagNames()
	editID := f.EditID

	text := "Bookmark added"
	if editID != "" {
		text = "Bookmark updated"
	}
	return a.run(text, func(ctx context.Context) error {
		collectionID, tagIDs, err := ai.Resolve(ctx, ws, collection, tagNames)
		if err != nil {
			return err
		}
		if editID == "" {
			_, err = ws.CreateBookmark(ctx, model.BookmarkDraft{
				Title:        title,
				URL:          url,
				Description:  description,
				CollectionID: collectionID,
				Tags:         tagIDs,
			})
			return err
		}
		if tagIDs == nil {
			tagIDs = []string{}
		}
		_, err = ws.UpdateBookmark(ctx, editID, model.BookmarkPatch{
			Title:        &title,
			URL:          &url,
			Description:  &description,
			CollectionID: model.NullableFrom(collectionID),
			Tags:         tagIDs,
		})
		return err
	})
}

// saveCollectionCmd creates or updates a collection from the form.
func (a App) saveCollectionCmd(c CollectionFormState) tea.Cmd {
	ws := a.ws
	name := strings.TrimSpace(c.Name.Value())
	icon, color := c.Icon(), c.Color()
	editID := c.EditID

	if editID == "" {
		return a.run("Collection created", func(ctx context.Context) error {
			_, err := ws.Collections.Create(ctx, model.CollectionDraft{Name: name, Icon: icon, Color: color})
			return err
		})
	}
	return a.run("Collection updated", func(ctx context.Context) error {
		_, err := ws.Collections.Update(ctx, editID, model.CollectionPatch{Name: &name, Icon: &icon, Color: &color})
		return err
	})
}

// quickAddCmd creates a bookmark for url in the quick add collection,
// using the URL as title.
func (a App) quickAddCmd(url string) tea.Cmd {
	ws, collection := a.ws, a.quickAddCollection
	return a.run("Added to "+quickAddTarget(collection), func(ctx context.Context) error {
		var collectionID *string
		if collection != "" {
			c, err := ws.EnsureCollection(ctx, collection)
			if err != nil {
				return err
			}
			collectionID = &c.ID
		}
		_, err := ws.CreateBookmark(ctx, model.BookmarkDraft{Title: url, URL: url, CollectionID: collectionID})
		return err
	})
}

// acceptSuggestionCmd creates the bookmark an AI suggestion describes.
func (a App) acceptSuggestionCmd(url string, s ai.Suggestion) tea.Cmd {
	ws := a.ws
	return a.run("Added to "+quickAddTarget(s.Collection), func(ctx context.Context) error {
		collectionID, tagIDs, err := ai.Resolve(ctx, ws, s.Collection, s.Tags)
		if err != nil {
			return err
		}
		title := s.Title
		if title == "" {
			title = url
		}
		_, err = ws.CreateBookmark(ctx, model.BookmarkDraft{
			Title:        title,
			URL:          url,
			CollectionID: collectionID,
			Tags:         tagIDs,
		})
		return err
	})
}

func quickAddTarget(collection string) string {
	if collection == "" {
		return "Uncategorized"
	}
	return collection
}
