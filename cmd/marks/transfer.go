package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/exporter"
	"github.com/nikbrunner/marks/internal/importer"
	"github.com/nikbrunner/marks/internal/model"
)

var (
	importCollection string
	importFlatten    bool

	exportArchived   bool
	exportCollection string
)

var importCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Import bookmarks from a browser HTML export",
	Long: `Import bookmarks from a Netscape bookmark file, as exported by every major
browser. Folders become collections and TAGS attributes become tags. URLs
already in the library are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export bookmarks to a browser-compatible HTML file",
	Long: `Export bookmarks as a Netscape bookmark file. Collections become folders.
The default path is ~/Downloads/bookmarks-export-YYYY-MM-DD.html.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(importCmd, exportCmd)

	importCmd.Flags().StringVarP(&importCollection, "collection", "c", "", "collection for bookmarks outside any folder")
	importCmd.Flags().BoolVar(&importFlatten, "flatten", false, "put every bookmark into --collection, ignoring folders")

	exportCmd.Flags().BoolVar(&exportArchived, "archived", false, "include archived bookmarks")
	exportCmd.Flags().StringVarP(&exportCollection, "collection", "c", "", "export one collection by name")
}

// runImport handles the import subcommand.
func runImport(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	entries, err := importer.ParseHTMLBookmarks(file)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.LoadAll(s.ctx); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	report, err := importer.Import(s.ctx, s.ws, entries, importer.Options{
		Collection: importCollection,
		Flatten:    importFlatten,
	})
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d bookmarks", report.Imported)
	if report.Skipped > 0 {
		fmt.Fprintf(out, " (%d duplicates skipped)", report.Skipped)
	}
	fmt.Fprintln(out)
	for _, f := range report.Failed {
		fmt.Fprintf(out, "  ✗ %s: %s\n", f.URL, model.MessageOf(f.Err))
	}
	if err != nil {
		return fmt.Errorf("import aborted: %w", err)
	}
	return nil
}

// runExport handles the export subcommand.
func runExport(cmd *cobra.Command, args []string) error {
	var outputPath string
	if len(args) > 0 {
		outputPath = args[0]
	} else {
		p, err := exporter.DefaultExportPath()
		if err != nil {
			return fmt.Errorf("failed to get default export path: %w", err)
		}
		outputPath = p
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.LoadAll(s.ctx); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	opts := exporter.Options{IncludeArchived: exportArchived}
	if exportCollection != "" {
		c, ok := s.ws.Collections.FindByName(exportCollection)
		if !ok {
			return model.NewNotFoundError("Collection", exportCollection)
		}
		opts.Collection = c.ID
	}

	snap := s.ws.Snapshot()
	html := exporter.ExportHTML(snap, opts)
	if err := os.WriteFile(outputPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", len(exporter.Selected(snap, opts)), outputPath)
	return nil
}
