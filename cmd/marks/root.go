package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/ai"
	"github.com/nikbrunner/marks/internal/api"
	"github.com/nikbrunner/marks/internal/auth"
	"github.com/nikbrunner/marks/internal/config"
	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/picker"
	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/storage"
	"github.com/nikbrunner/marks/internal/store"
	"github.com/nikbrunner/marks/internal/tui"
)

var (
	cfgFile   string
	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:   "marks [query]",
	Short: "marks - vim-style bookmark manager",
	Long: `marks keeps bookmarks in collections and tags, with an archive and a trash.

Run without arguments to open the interactive TUI. Any other words are a
fuzzy search: a single match is opened in the browser, several open a picker.

Data lives in a local database (~/.config/marks/marks.db by default) or on a
marks server when backend is set to "remote" in ~/.config/marks/config.yaml.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return runQuickSearch(cmd, strings.Join(args, " "))
		}
		return runTUI(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default ~/.config/marks/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}

// session is an opened library: configuration, logger and a workspace
// bound to the configured backend.
type session struct {
	cfg   *config.Config
	log   logger.Logger
	ctx   context.Context
	ws    *store.Workspace
	close func() error
}

func (s *session) Close() {
	if err := s.close(); err != nil {
		s.log.Warn("failed to close backend", logger.Error(err))
	}
	_ = s.log.Sync()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if debugMode {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

func newAIClient(cfg *config.Config) (*ai.Client, error) {
	return ai.New(ai.Options{
		APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		Model:   cfg.AI.Model,
		BaseURL: cfg.AI.BaseURL,
	})
}

func storageOptions(cfg *config.Config, log logger.Logger) storage.Options {
	return storage.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		URL:    cfg.Database.URL,
		Logger: log,
	}
}

// openSession connects to the configured backend. Local databases are
// scoped to the configured user.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		gw      gateway.Gateway
		closeFn = func() error { return nil }
	)
	switch cfg.Backend {
	case config.BackendRemote:
		gw = api.NewClient(cfg.Remote.URL, cfg.Remote.Token).Gateway()
		log.Debug("using remote backend", logger.String("url", cfg.Remote.URL))
	default:
		db, err := storage.Open(storageOptions(cfg, log))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		gw = db.Gateway()
		closeFn = db.Close
		ctx = auth.WithUserID(ctx, cfg.User)
		log.Debug("using local backend", logger.String("driver", cfg.Database.Driver), logger.String("user", cfg.User))
	}

	ws := store.NewWorkspace(gw, log)
	if err := applyViewDefaults(ws, cfg.UI); err != nil {
		_ = closeFn()
		return nil, err
	}

	return &session{cfg: cfg, log: log, ctx: ctx, ws: ws, close: closeFn}, nil
}

func applyViewDefaults(ws *store.Workspace, ui config.UIConfig) error {
	sortBy, err := store.ParseSortOrder(ui.Sort)
	if err != nil {
		return fmt.Errorf("ui.sort: %w", err)
	}
	filter, err := store.ParseFilterType(ui.Filter)
	if err != nil {
		return fmt.Errorf("ui.filter: %w", err)
	}
	view, err := store.ParseViewMode(ui.View)
	if err != nil {
		return fmt.Errorf("ui.view: %w", err)
	}
	ws.Bookmarks.SetSortBy(sortBy)
	ws.Bookmarks.SetFilterType(filter)
	ws.Bookmarks.SetViewMode(view)
	return nil
}

// runTUI runs the full interactive TUI.
func runTUI(cmd *cobra.Command) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	// AI suggestions are optional; quick add falls back to the configured
	// collection without them.
	client, err := newAIClient(s.cfg)
	if err != nil {
		s.log.Debug("AI suggestions disabled", logger.Error(err))
		client = nil
	}

	app := tui.NewApp(tui.AppParams{
		Workspace:          s.ws,
		Context:            s.ctx,
		AI:                 client,
		QuickAddCollection: s.cfg.QuickAddCollection,
		Logger:             s.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(s.ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run app: %w", err)
	}
	return nil
}

// runQuickSearch performs a fuzzy search and opens the selected bookmark.
func runQuickSearch(cmd *cobra.Command, query string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ws.Load(s.ctx); err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}

	results := search.Fuzzy(s.ws.Bookmarks.Active(), query)
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
		return nil
	}

	var selected model.Bookmark
	if len(results) == 1 {
		selected = results[0].Bookmark
		fmt.Fprintf(out, "Opening: %s\n", selected.Title)
	} else {
		p := picker.New(results, query)
		finalModel, err := tea.NewProgram(p, tea.WithContext(s.ctx)).Run()
		if err != nil {
			return fmt.Errorf("failed to run picker: %w", err)
		}
		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			return nil
		}
		b, ok := finalPicker.Selected()
		if !ok {
			return nil
		}
		selected = b
	}

	return tui.OpenURL(selected.URL)
}
