package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/vizinho/internal/codec"
	"github.com/mmcdole/vizinho/internal/config"
	"github.com/mmcdole/vizinho/internal/domain"
	"github.com/mmcdole/vizinho/internal/filter"
	"github.com/mmcdole/vizinho/internal/logging"
	"github.com/mmcdole/vizinho/internal/repository/memory"
	"github.com/mmcdole/vizinho/internal/repository/rest"
	"github.com/mmcdole/vizinho/internal/store"
	"github.com/mmcdole/vizinho/internal/tui"
	"github.com/mmcdole/vizinho/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

type options struct {
	configPath string
	link       string
	once       bool
	initConfig bool
	forget     bool
}

func main() {
	var opts options
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.configPath, "config", "", "path to config file")
	flag.StringVar(&opts.link, "link", "", "shared filter link to open, e.g. '?category=moveis'")
	flag.BoolVar(&opts.once, "once", false, "print matching listings and exit")
	flag.BoolVar(&opts.initConfig, "init-config", false, "write the default config file and exit")
	flag.BoolVar(&opts.forget, "forget", false, "clear the saved filters before starting")
	flag.Parse()

	if showVersion {
		fmt.Printf("vizinho %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.initConfig {
		if err := config.Save(config.DefaultConfig(), opts.configPath); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Println("✓ Configuration saved!")
		return nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		// Fall back to a discarding logger if file logging fails
		logger, logCloser = logging.Discard(), io.NopCloser(nil)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("starting vizinho", "version", Version, "fixtures", cfg.UsesFixtures())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	persist, err := store.NewFilterStore(cfg.Filters.StorePath, cfg.Repository.URL, cfg.User.ID,
		logger.With("component", "store"))
	if err != nil {
		return fmt.Errorf("failed to open filter store: %w", err)
	}
	defer persist.Close()

	if opts.forget {
		if err := persist.Clear(); err != nil {
			return fmt.Errorf("failed to clear saved filters: %w", err)
		}
		logger.Info("saved filters cleared")
	}

	interactive := !opts.once && term.IsTerminal(int(os.Stdout.Fd()))

	var events chan domain.Event
	var observer domain.Observer = domain.NoOpObserver{}
	if interactive {
		events = make(chan domain.Event, 64)
		observer = tui.NewChannelObserver(events)
	}

	filters := filter.New(filter.Config{
		Repository:        newRepository(cfg, logger),
		FilterStore:       persist,
		UserID:            cfg.User.ID,
		UserCondominiumID: cfg.User.CondominiumID,
		DefaultMaxPrice:   cfg.Filters.DefaultMaxPrice,
		MaxAttempts:       cfg.Retry.MaxAttempts,
		BaseDelay:         cfg.Retry.BaseDelay,
		Observer:          observer,
		Logger:            logger.With("component", "filters"),
		OnLink: func(v url.Values) {
			logger.Debug("link updated", "query", v.Encode())
		},
	})
	defer filters.Close()

	if err := filters.Init(ctx, codec.ParseLink(opts.link)); err != nil {
		return fmt.Errorf("failed to initialize filters: %w", err)
	}

	if !interactive {
		return printOnce(filters)
	}

	p := tea.NewProgram(tui.NewModel(ctx, filters, events), tea.WithAltScreen(), tea.WithContext(ctx))

	logger.Info("starting TUI")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	if link := filters.Link().Encode(); link != "" {
		fmt.Printf("Share these filters with: ?%s\n", link)
	}
	logger.Info("shutting down")
	return nil
}

func newRepository(cfg *config.Config, logger *slog.Logger) domain.ListingRepository {
	if cfg.UsesFixtures() {
		logger.Info("no repository configured, using built-in listings")
		return memory.New()
	}
	return rest.NewClient(cfg.Repository.URL, rest.Options{
		Token:   cfg.Repository.Token,
		UserID:  cfg.User.ID,
		Timeout: cfg.Repository.Timeout,
		Logger:  logger.With("component", "rest"),
	})
}

// printOnce waits for the initial load and prints the results.
func printOnce(filters *filter.Store) error {
	filters.Wait()
	view := filters.Listings()
	if view.HasError {
		return fmt.Errorf("could not load listings: %w", view.Err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, l := range view.Listings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Title, styles.FormatPrice(l.Price), l.Category, l.Status.Label())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d listings", len(view.Listings))
	if link := filters.Link().Encode(); link != "" {
		fmt.Printf(" for ?%s", link)
	}
	fmt.Println()
	return nil
}
