package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/culler"
	"github.com/nikbrunner/marks/internal/logger"
)

var (
	cullTrash bool

	// cullClient overrides the address-filtering client; tests point it at
	// local servers.
	cullClient *http.Client
)

var cullCmd = &cobra.Command{
	Use:   "cull",
	Short: "Check active bookmarks for dead links",
	Long: `Check every active bookmark URL. A 404 or 410 marks a bookmark dead; timeouts,
DNS failures and 5xx responses are reported as unreachable. Domains listed in
cull.exclude_domains report 404s as possibly private instead of dead.

Only public addresses on ports 80 and 443 are contacted.

With --trash, dead bookmarks are moved to the trash.`,
	Args: cobra.NoArgs,
	RunE: runCull,
}

func init() {
	rootCmd.AddCommand(cullCmd)
	cullCmd.Flags().BoolVar(&cullTrash, "trash", false, "move dead bookmarks to the trash")
}

func runCull(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.Load(s.ctx); err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}

	bookmarks := s.ws.Bookmarks.Active()
	out := cmd.OutOrStdout()
	if len(bookmarks) == 0 {
		fmt.Fprintln(out, "No bookmarks to check")
		return nil
	}

	progress := cmd.ErrOrStderr()
	results := culler.Check(s.ctx, bookmarks, culler.Options{
		Concurrency:    s.cfg.Cull.Concurrency,
		Timeout:        s.cfg.Cull.Timeout,
		ExcludeDomains: s.cfg.Cull.ExcludeDomains,
		Client:         cullClient,
		OnProgress: func(completed, total int) {
			fmt.Fprintf(progress, "\rChecking %d/%d...", completed, total)
		},
	})
	fmt.Fprintln(progress)

	printCullResults(out, results)

	if !cullTrash {
		return nil
	}
	n, err := culler.TrashDead(s.ctx, s.ws, results)
	if n > 0 {
		s.log.Info("trashed dead bookmarks", logger.Int("count", n))
		fmt.Fprintf(out, "✓ Moved %d dead bookmarks to trash\n", n)
	}
	return err
}

func printCullResults(out io.Writer, results []culler.Result) {
	var dead, unreachable []culler.Result
	for _, r := range results {
		switch r.Status {
		case culler.Dead:
			dead = append(dead, r)
		case culler.Unreachable:
			unreachable = append(unreachable, r)
		}
	}

	if len(dead) > 0 {
		fmt.Fprintf(out, "Dead (%d):\n", len(dead))
		for _, r := range dead {
			fmt.Fprintf(out, "  %s  %s  [%d]\n", r.Bookmark.Title, r.Bookmark.URL, r.StatusCode)
		}
	}
	if len(unreachable) > 0 {
		fmt.Fprintf(out, "Unreachable (%d):\n", len(unreachable))
		for _, r := range unreachable {
			fmt.Fprintf(out, "  %s  %s  (%s)\n", r.Bookmark.Title, r.Bookmark.URL, r.Error)
		}
	}
	healthy := len(results) - len(dead) - len(unreachable)
	fmt.Fprintf(out, "Checked %d bookmarks: %d healthy, %d dead, %d unreachable\n",
		len(results), healthy, len(dead), len(unreachable))
}
