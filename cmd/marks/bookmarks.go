package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/ai"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/store"
	"github.com/nikbrunner/marks/internal/tui/layout"
)

var (
	addTitle       string
	addDescription string
	addCollection  string
	addTags        []string
	addFavorite    bool
	addAI          bool

	listArchived   bool
	listTrashed    bool
	listFavorites  bool
	listCollection string
	listTag        string
	listSort       string
	listJSON       bool
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a bookmark",
	Long: `Add a bookmark. Collections and tags are given by name and created
when missing. With --ai the title, collection and tags are suggested by
Claude (ANTHROPIC_API_KEY must be set); explicit flags win over suggestions.

Examples:
  marks add https://go.dev --title "Go" --collection Dev --tags go,lang
  marks add https://example.com/article --ai`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list [query]",
	Aliases: []string{"ls"},
	Short:   "List bookmarks",
	Long: `List active bookmarks, or the archive or trash.

Examples:
  marks list
  marks list --collection Dev --tag go
  marks list --archived
  marks list rust --sort title-asc --json`,
	Args: cobra.ArbitraryArgs,
	RunE: runList,
}

var openCmd = &cobra.Command{
	Use:   "open <id|query>",
	Short: "Open a bookmark in the browser",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuickSearch(cmd, strings.Join(args, " "))
	},
}

var favCmd = &cobra.Command{
	Use:   "fav <id|query>",
	Short: "Toggle the favorite flag of a bookmark",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBookmark(active, func(ctx context.Context, ws *store.Workspace, b model.Bookmark) (string, error) {
		updated, err := ws.Bookmarks.ToggleFavorite(ctx, b.ID)
		if err != nil {
			return "", err
		}
		if updated.IsFavorite {
			return "Added to favorites: " + updated.Title, nil
		}
		return "Removed from favorites: " + updated.Title, nil
	}),
}

var archiveCmd = &cobra.Command{
	Use:   "archive <id|query>",
	Short: "Move a bookmark to the archive",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBookmark(active, func(ctx context.Context, ws *store.Workspace, b model.Bookmark) (string, error) {
		if _, err := ws.Archive(ctx, b.ID); err != nil {
			return "", err
		}
		return "Archived: " + b.Title, nil
	}),
}

var trashCmd = &cobra.Command{
	Use:   "trash <id|query>",
	Short: "Move a bookmark to the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBookmark(active, func(ctx context.Context, ws *store.Workspace, b model.Bookmark) (string, error) {
		if _, err := ws.Trash(ctx, b.ID); err != nil {
			return "", err
		}
		return "Moved to trash: " + b.Title, nil
	}),
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id|query>",
	Short: "Restore a bookmark from the archive or the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBookmark(restorable, func(ctx context.Context, ws *store.Workspace, b model.Bookmark) (string, error) {
		var err error
		if model.IsTrashed(b) {
			_, err = ws.RestoreFromTrash(ctx, b.ID)
		} else {
			_, err = ws.RestoreFromArchive(ctx, b.ID)
		}
		if err != nil {
			return "", err
		}
		return "Restored: " + b.Title, nil
	}),
}

var purgeCmd = &cobra.Command{
	Use:   "purge <id|query>",
	Short: "Permanently delete a trashed bookmark",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBookmark(trashed, func(ctx context.Context, ws *store.Workspace, b model.Bookmark) (string, error) {
		if err := ws.PermanentlyDelete(ctx, b.ID); err != nil {
			return "", err
		}
		return "Deleted forever: " + b.Title, nil
	}),
}

func init() {
	rootCmd.AddCommand(addCmd, listCmd, openCmd, favCmd, archiveCmd, trashCmd, restoreCmd, purgeCmd)

	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "bookmark title (default: the URL)")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "description")
	addCmd.Flags().StringVarP(&addCollection, "collection", "c", "", "collection name")
	addCmd.Flags().StringSliceVarP(&addTags, "tags", "T", nil, "comma-separated tag names")
	addCmd.Flags().BoolVarP(&addFavorite, "favorite", "f", false, "mark as favorite")
	addCmd.Flags().BoolVar(&addAI, "ai", false, "ask Claude for title, collection and tags")

	listCmd.Flags().BoolVar(&listArchived, "archived", false, "list the archive")
	listCmd.Flags().BoolVar(&listTrashed, "trashed", false, "list the trash")
	listCmd.Flags().BoolVar(&listFavorites, "favorites", false, "list favorites only")
	listCmd.Flags().StringVarP(&listCollection, "collection", "c", "", "filter by collection name")
	listCmd.Flags().StringVar(&listTag, "tag", "", "filter by tag name")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "", "sort order (date-newest, date-oldest, title-asc, title-desc)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.Load(s.ctx); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	url := strings.TrimSpace(args[0])
	title, collection, tags := addTitle, addCollection, addTags
	if addAI {
		suggestion, err := suggest(s, url)
		if err != nil {
			return err
		}
		if title == "" {
			title = suggestion.Title
		}
		if collection == "" {
			collection = suggestion.Collection
		}
		if len(tags) == 0 {
			tags = suggestion.Tags
		}
	}
	if title == "" {
		title = url
	}

	collectionID, tagIDs, err := ai.Resolve(s.ctx, s.ws, collection, tags)
	if err != nil {
		return err
	}
	b, err := s.ws.CreateBookmark(s.ctx, model.BookmarkDraft{
		Title:        title,
		URL:          url,
		Description:  addDescription,
		CollectionID: collectionID,
		Tags:         tagIDs,
		IsFavorite:   addFavorite,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Bookmark added: %s\n", b.Title)
	fmt.Fprintf(out, "  ID: %s\n", b.ID)
	if name := s.ws.Snapshot().CollectionName(b.CollectionID); name != "" {
		fmt.Fprintf(out, "  Collection: %s\n", name)
	}
	if names := s.ws.Tags.Names(b.Tags); len(names) > 0 {
		fmt.Fprintf(out, "  Tags: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func suggest(s *session, url string) (*ai.Suggestion, error) {
	client, err := newAIClient(s.cfg)
	if err != nil {
		return nil, err
	}
	suggestion, err := client.Suggest(s.ctx, url, ai.BuildContext(s.ws.Snapshot()))
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	s.log.Debug("AI suggestion",
		logger.String("title", suggestion.Title),
		logger.String("collection", suggestion.Collection),
		logger.Strings("tags", suggestion.Tags))
	return suggestion, nil
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.LoadAll(s.ctx); err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}

	bm := s.ws.Bookmarks
	if listSort != "" {
		order, err := store.ParseSortOrder(listSort)
		if err != nil {
			return err
		}
		bm.SetSortBy(order)
	}
	if listCollection != "" {
		c, ok := s.ws.Collections.FindByName(listCollection)
		if !ok {
			return model.NewNotFoundError("Collection", listCollection)
		}
		bm.SetSelectedCollection(c.ID)
	}
	if listTag != "" {
		t, ok := s.ws.Tags.FindByName(listTag)
		if !ok {
			return model.NewNotFoundError("Tag", listTag)
		}
		bm.ToggleTag(t.ID)
	}
	bm.SetSearchQuery(strings.Join(args, " "))

	var bookmarks []model.Bookmark
	switch {
	case listTrashed:
		bookmarks = bm.Trashed()
	case listArchived:
		bookmarks = bm.Archived()
	case listFavorites:
		bookmarks = bm.Favorites()
	default:
		bookmarks = bm.Filtered()
	}

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(bookmarks)
	}
	return printBookmarks(cmd.OutOrStdout(), s.ws.Snapshot(), bookmarks)
}

func printBookmarks(out io.Writer, snap store.Snapshot, bookmarks []model.Bookmark) error {
	if len(bookmarks) == 0 {
		fmt.Fprintln(out, "No bookmarks found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tURL\tCOLLECTION\tTAGS")
	for _, b := range bookmarks {
		title := b.Title
		if b.IsFavorite {
			title = "* " + title
		}
		collection := snap.CollectionName(b.CollectionID)
		if collection == "" {
			collection = "-"
		}
		tags := "-"
		if names := snap.TagNames(b.Tags); len(names) > 0 {
			tags = "#" + strings.Join(names, " #")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.ID, truncate(title, 50), b.URL, collection, tags)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d bookmarks\n", len(bookmarks))
	return nil
}

// withBookmark builds a RunE that loads the library, resolves the
// arguments to one bookmark among candidates and applies op to it.
func withBookmark(
	candidates func(*store.Workspace) []model.Bookmark,
	op func(ctx context.Context, ws *store.Workspace, b model.Bookmark) (string, error),
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ws.LoadAll(s.ctx); err != nil {
			return fmt.Errorf("failed to load bookmarks: %w", err)
		}

		b, err := findBookmark(candidates(s.ws), strings.Join(args, " "))
		if err != nil {
			return err
		}
		msg, err := op(s.ctx, s.ws, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", msg)
		return nil
	}
}

func active(ws *store.Workspace) []model.Bookmark  { return ws.Bookmarks.Active() }
func trashed(ws *store.Workspace) []model.Bookmark { return ws.Bookmarks.Trashed() }

func restorable(ws *store.Workspace) []model.Bookmark {
	return append(ws.Bookmarks.Archived(), ws.Bookmarks.Trashed()...)
}

func truncate(s string, width int) string {
	out, _ := layout.TruncateText(s, width, layout.DefaultConfig().Text)
	return out
}

// findBookmark resolves arg as an id, an exact URL or a fuzzy query with a
// single match.
func findBookmark(bookmarks []model.Bookmark, arg string) (model.Bookmark, error) {
	arg = strings.TrimSpace(arg)
	if i := model.IndexOfBookmark(bookmarks, arg); i >= 0 {
		return bookmarks[i], nil
	}
	for _, b := range bookmarks {
		if b.URL == arg {
			return b, nil
		}
	}

	results := search.Fuzzy(bookmarks, arg)
	switch len(results) {
	case 0:
		return model.Bookmark{}, model.NewNotFoundError("Bookmark", arg)
	case 1:
		return results[0].Bookmark, nil
	}

	const shown = 5
	var titles []string
	for i, r := range results {
		if i == shown {
			titles = append(titles, "...")
			break
		}
		titles = append(titles, fmt.Sprintf("%s (%s)", r.Bookmark.Title, r.Bookmark.ID))
	}
	return model.Bookmark{}, model.NewValidationError("%q matches %d bookmarks: %s", arg, len(results), strings.Join(titles, ", "))
}
