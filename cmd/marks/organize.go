package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/ai"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
)

var (
	organizeAll   bool
	organizeApply bool
)

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Ask Claude where uncategorized bookmarks belong",
	Long: `Suggest a collection and tags for each uncategorized active bookmark (every
active bookmark with --all). Suggestions are printed; --apply moves the
bookmarks and creates missing collections and tags.

Requires ANTHROPIC_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: runOrganize,
}

func init() {
	rootCmd.AddCommand(organizeCmd)
	organizeCmd.Flags().BoolVar(&organizeAll, "all", false, "include bookmarks that already have a collection")
	organizeCmd.Flags().BoolVar(&organizeApply, "apply", false, "apply the suggestions")
}

func runOrganize(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	client, err := newAIClient(s.cfg)
	if err != nil {
		return err
	}
	if err := s.ws.Load(s.ctx); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	snap := s.ws.Snapshot()
	library := ai.BuildContext(snap)
	out := cmd.OutOrStdout()

	moved := 0
	for _, b := range snap.Bookmarks {
		if b.CollectionID != nil && !organizeAll {
			continue
		}

		tags := snap.TagNames(b.Tags)
		suggestion, err := client.Organize(s.ctx, b, snap.CollectionName(b.CollectionID), tags, library)
		if err != nil {
			return fmt.Errorf("failed to organize %q: %w", b.Title, err)
		}

		marker := ""
		if suggestion.IsNewCollection {
			marker = " (new)"
		}
		fmt.Fprintf(out, "%s\n  → %s%s", b.Title, suggestion.Collection, marker)
		if len(suggestion.Tags) > 0 {
			fmt.Fprintf(out, "  #%s", strings.Join(suggestion.Tags, " #"))
		}
		fmt.Fprintf(out, "  [%s]\n", suggestion.Confidence)

		if !organizeApply {
			continue
		}
		collectionID, tagIDs, err := ai.Resolve(s.ctx, s.ws, suggestion.Collection, suggestion.Tags)
		if err != nil {
			return err
		}
		if _, err := s.ws.UpdateBookmark(s.ctx, b.ID, model.BookmarkPatch{
			CollectionID: model.NullableFrom(collectionID),
			Tags:         model.NormalizeTags(slices.Concat(b.Tags, tagIDs)),
		}); err != nil {
			return err
		}
		s.log.Debug("organized bookmark", logger.String("id", b.ID), logger.String("collection", suggestion.Collection))
		moved++
	}

	if organizeApply {
		fmt.Fprintf(out, "✓ Organized %d bookmarks\n", moved)
	}
	return nil
}
