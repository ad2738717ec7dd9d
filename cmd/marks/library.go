package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/model"
)

var (
	collectionIcon  string
	collectionColor string
	tagColor        string
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"cols"},
	Short:   "List and manage collections",
	Args:    cobra.NoArgs,
	RunE:    runCollectionsList,
}

var collectionsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsAdd,
}

var collectionsRenameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runCollectionsRename,
}

var collectionsDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a collection; its bookmarks become uncategorized",
	Args:    cobra.ExactArgs(1),
	RunE:    runCollectionsDelete,
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List and manage tags",
	Args:  cobra.NoArgs,
	RunE:  runTagsList,
}

var tagsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagsAdd,
}

var tagsRenameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a tag",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagsRename,
}

var tagsDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a tag and remove it from every bookmark",
	Args:    cobra.ExactArgs(1),
	RunE:    runTagsDelete,
}

func init() {
	rootCmd.AddCommand(collectionsCmd, tagsCmd)
	collectionsCmd.AddCommand(collectionsAddCmd, collectionsRenameCmd, collectionsDeleteCmd)
	tagsCmd.AddCommand(tagsAddCmd, tagsRenameCmd, tagsDeleteCmd)

	collectionsAddCmd.Flags().StringVar(&collectionIcon, "icon", model.DefaultCollectionIcon, "icon name")
	collectionsAddCmd.Flags().StringVar(&collectionColor, "color", model.DefaultCollectionColor, "color name")
	tagsAddCmd.Flags().StringVar(&tagColor, "color", model.DefaultTagColor, "color name")
}

func runCollectionsList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.Load(s.ctx); err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}
	return printCollections(cmd.OutOrStdout(), s.ws.Collections.List())
}

func printCollections(out io.Writer, collections []model.Collection) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tICON\tCOLOR\tCOUNT")
	for _, c := range collections {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Icon, c.Color, c.Count)
	}
	return w.Flush()
}

func runCollectionsAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.ws.Collections.Create(s.ctx, model.CollectionDraft{
		Name:  args[0],
		Icon:  collectionIcon,
		Color: collectionColor,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Collection created: %s\n  ID: %s\n", c.Name, c.ID)
	return nil
}

func runCollectionsRename(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.Collections.Load(s.ctx); err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}
	c, ok := s.ws.Collections.FindByName(args[0])
	if !ok {
		return model.NewNotFoundError("Collection", args[0])
	}
	name := args[1]
	updated, err := s.ws.Collections.Update(s.ctx, c.ID, model.CollectionPatch{Name: &name})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Collection renamed: %s → %s\n", c.Name, updated.Name)
	return nil
}

func runCollectionsDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.LoadAll(s.ctx); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}
	c, ok := s.ws.Collections.FindByName(args[0])
	if !ok {
		return model.NewNotFoundError("Collection", args[0])
	}
	if err := s.ws.DeleteCollection(s.ctx, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Collection deleted: %s\n", c.Name)
	return nil
}

func runTagsList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.Tags.Load(s.ctx); err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}

	tags := s.ws.Tags.List()
	out := cmd.OutOrStdout()
	if len(tags) == 0 {
		fmt.Fprintln(out, "No tags found")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tCOUNT")
	for _, t := range tags {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", t.ID, t.Name, t.Color, t.Count)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d tags\n", len(tags))
	return nil
}

func runTagsAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.ws.Tags.Create(s.ctx, model.TagDraft{Name: args[0], Color: tagColor})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Tag created: %s\n  ID: %s\n", t.Name, t.ID)
	return nil
}

func runTagsRename(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.Tags.Load(s.ctx); err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	t, ok := s.ws.Tags.FindByName(args[0])
	if !ok {
		return model.NewNotFoundError("Tag", args[0])
	}
	name := args[1]
	updated, err := s.ws.Tags.Update(s.ctx, t.ID, model.TagPatch{Name: &name})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Tag renamed: %s → %s\n", t.Name, updated.Name)
	return nil
}

func runTagsDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.LoadAll(s.ctx); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}
	t, ok := s.ws.Tags.FindByName(args[0])
	if !ok {
		return model.NewNotFoundError("Tag", args[0])
	}
	if err := s.ws.DeleteTag(s.ctx, t.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Tag deleted: %s\n", t.Name)
	return nil
}
