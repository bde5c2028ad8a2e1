package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/dlcscan/internal/blocklist"
	"github.com/mmcdole/dlcscan/internal/config"
	"github.com/mmcdole/dlcscan/internal/discovery"
	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/log"
	"github.com/mmcdole/dlcscan/internal/provider"
	"github.com/mmcdole/dlcscan/internal/search"
	"github.com/mmcdole/dlcscan/internal/selection"
	"github.com/mmcdole/dlcscan/internal/store"
	"github.com/mmcdole/dlcscan/internal/tui"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// gameFlags collects repeated -game queries
type gameFlags []string

func (g *gameFlags) String() string { return strings.Join(*g, ",") }

func (g *gameFlags) Set(v string) error {
	*g = append(*g, v)
	return nil
}

type options struct {
	headless      bool
	all           bool
	platforms     string
	games         gameFlags
	initConfig    bool
	clearCache    bool
	refreshSource string
	forgetChoices bool
}

func main() {
	var showVersion bool
	var opts options
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&opts.headless, "headless", false, "scan without the terminal UI and print a summary")
	flag.BoolVar(&opts.all, "all", false, "scan every installed program")
	flag.StringVar(&opts.platforms, "platform", "", "comma-separated platforms to scan (steam,epic,ubisoft,paradox)")
	flag.Var(&opts.games, "game", "program name or platform:id to scan (repeatable)")
	flag.BoolVar(&opts.initConfig, "init-config", false, "write the effective configuration to config.yaml and exit")
	flag.BoolVar(&opts.clearCache, "clear-cache", false, "drop every cached metadata answer and saved state")
	flag.StringVar(&opts.refreshSource, "refresh", "", "drop cached answers of one metadata source (e.g. steamcmd)")
	flag.BoolVar(&opts.forgetChoices, "forget-choices", false, "forget saved add-on choices")
	flag.Parse()

	if showVersion {
		fmt.Printf("dlcscan %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.platforms != "" {
		cfg.Scan.Platforms = strings.Split(opts.platforms, ",")
	}

	if opts.initConfig {
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Println("Configuration saved.")
		return nil
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting dlcscan", "version", Version)

	db, err := store.Open(cfg.Cache.Path)
	if err != nil {
		logger.Warn("cache unavailable, continuing in memory", "error", err)
		db, _ = store.Open("")
	}
	defer db.Close()

	if err := maintainCache(db, opts); err != nil {
		return err
	}

	fs := afero.NewOsFs()
	providers, err := provider.NewProviders(cfg, fs, db, logger)
	if err != nil {
		return fmt.Errorf("failed to create providers: %w", err)
	}

	selections := selection.NewStore()
	orch := discovery.NewOrchestrator(providers, selections, blocklist.New(fs, cfg.BlockList, cfg.Scan.BlockProtected), logger)
	searchSvc := search.NewService(logger)

	headless := opts.headless || !term.IsTerminal(int(os.Stdout.Fd()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var requested []domain.ProgramKey
	if headless || opts.all || len(opts.games) > 0 {
		catalogCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		catalog, err := orch.Catalog(catalogCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to list installed programs: %w", err)
		}

		saved, _ := db.GetScanRequest()
		var unmatched []string
		requested, unmatched = resolveRequest(searchSvc, catalog, opts, headless, saved)
		for _, q := range unmatched {
			fmt.Fprintf(os.Stderr, "No installed program matches %q\n", q)
		}
	}

	if headless {
		return runHeadless(ctx, orch, selections, db, requested, cfg.Scan.BulkSelect, logger)
	}

	model := tui.NewModel(tui.Deps{
		Orchestrator: orch,
		Selections:   selections,
		Choices:      db,
		Requests:     db,
		Search:       searchSvc,
		BulkSelect:   cfg.Scan.BulkSelect,
		Logger:       logger,
		Requested:    requested,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// resolveRequest picks the programs to scan without the picker.
// -all wins, then -game queries; a headless run with neither falls back to
// the last saved request, then to every installed program.
func resolveRequest(svc *search.Service, catalog []discovery.CatalogEntry, opts options, headless bool, saved []domain.ProgramKey) ([]domain.ProgramKey, []string) {
	everything := func() []domain.ProgramKey {
		keys := make([]domain.ProgramKey, len(catalog))
		for i, e := range catalog {
			keys[i] = e.Key
		}
		return keys
	}

	switch {
	case opts.all:
		return everything(), nil
	case len(opts.games) > 0:
		return svc.Resolve(opts.games, catalog)
	case headless && len(saved) > 0:
		return saved, nil
	case headless:
		return everything(), nil
	}
	return nil, nil
}

// maintainCache applies the cache maintenance flags before a run
func maintainCache(db *store.Store, opts options) error {
	if opts.clearCache {
		if err := db.InvalidateAll(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	if opts.refreshSource != "" {
		if err := db.InvalidateSource(opts.refreshSource); err != nil {
			return fmt.Errorf("failed to refresh %s: %w", opts.refreshSource, err)
		}
	}
	if opts.forgetChoices {
		if err := db.ClearChoices(); err != nil {
			return fmt.Errorf("failed to forget choices: %w", err)
		}
	}
	return nil
}
