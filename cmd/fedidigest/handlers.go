package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/lmeyer/fedidigest/internal/builder"
	"github.com/lmeyer/fedidigest/internal/config"
	"github.com/lmeyer/fedidigest/internal/scheduler"
	"github.com/lmeyer/fedidigest/internal/store"
	"github.com/lmeyer/fedidigest/pkg/notify"
	"github.com/lmeyer/fedidigest/pkg/render"
	"github.com/lmeyer/fedidigest/pkg/server"
	"github.com/lmeyer/fedidigest/pkg/timeline"
)

type buildOpts struct {
	hours    int
	strategy string
	tone     string
	output   string
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// applyOverrides folds command-line flags into the config, then
// re-validates so a bad flag fails as early as a bad config file.
func applyOverrides(cfg *config.Config, opts buildOpts) error {
	if opts.hours > 0 {
		cfg.Mastodon.Hours = opts.hours
	}
	if opts.strategy != "" {
		cfg.Digest.Strategy = opts.strategy
	}
	if opts.tone != "" {
		cfg.Digest.Tone = opts.tone
	}
	if opts.output != "" {
		cfg.Output.Dir = opts.output
	}
	return cfg.Validate()
}

func buildSources(ctx context.Context, cfg *config.Config) ([]timeline.Source, *timeline.Filter, error) {
	if cfg.Mastodon.BaseURL == "" || cfg.Mastodon.Token == "" {
		return nil, nil, fmt.Errorf("mastodon credentials missing: set MASTODON_BASE_URL and MASTODON_TOKEN")
	}

	mastodon := timeline.NewMastodon(cfg.Mastodon.BaseURL, cfg.Mastodon.Token)
	self, err := mastodon.Me(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("verify mastodon credentials: %w", err)
	}

	sources := []timeline.Source{mastodon}
	if cfg.Feeds.Enabled && len(cfg.Feeds.Profiles) > 0 {
		feeds := make([]timeline.ProfileFeed, len(cfg.Feeds.Profiles))
		for i, f := range cfg.Feeds.Profiles {
			feeds[i] = timeline.ProfileFeed{Name: f.Name, URL: f.URL}
		}
		sources = append(sources, timeline.NewRSS(feeds))
	}

	return sources, timeline.NewFilter(self), nil
}

func buildNotifier(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier

	if cfg.Notify.Slack.Enabled && cfg.Notify.Slack.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlack(cfg.Notify.Slack.WebhookURL))
	}
	if cfg.Notify.Discord.Enabled && cfg.Notify.Discord.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewDiscord(cfg.Notify.Discord.WebhookURL))
	}
	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewWebhook(cfg.Notify.Webhook.URL, cfg.Notify.Webhook.Secret))
	}

	return notify.NewManager(notifiers)
}

func newBuilder(ctx context.Context, cfg *config.Config, db store.Store) (*builder.Builder, error) {
	sources, filter, err := buildSources(ctx, cfg)
	if err != nil {
		return nil, err
	}

	renderer, err := render.New(cfg.Mastodon.BaseURL)
	if err != nil {
		return nil, err
	}

	return builder.New(cfg, sources, filter, renderer, db, buildNotifier(cfg))
}

func runBuild(opts buildOpts) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyOverrides(cfg, opts); err != nil {
		return err
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	b, err := newBuilder(ctx, cfg, db)
	if err != nil {
		return err
	}

	_, err = b.Build(ctx)
	return err
}

func runDemo(output string) error {
	cfg, err := loadConfig()
	if err != nil {
		// Demo works without a config file too.
		cfg = config.Default()
	}
	if output != "" {
		cfg.Output.Dir = output
	}
	if cfg.Mastodon.BaseURL == "" {
		cfg.Mastodon.BaseURL = "https://mastodon.example"
	}

	renderer, err := render.New(cfg.Mastodon.BaseURL)
	if err != nil {
		return err
	}

	b, err := builder.New(cfg,
		[]timeline.Source{timeline.NewDemo()},
		timeline.NewFilter(""),
		renderer, nil, nil)
	if err != nil {
		return err
	}

	if _, err := b.Build(context.Background()); err != nil {
		return err
	}
	fmt.Printf("demo digest written to %s\n", cfg.Output.Dir)
	return nil
}

func runHistory(limit int, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background(), store.RunListOpts{Limit: limit})
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("no runs yet (build a digest first: fedidigest build)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tBUILT\tSTRATEGY\tTONE\tCONSIDERED\tSELECTED")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\n",
			r.ID, r.CreatedAt.Format(time.RFC3339),
			r.Strategy, r.Tone, r.TotalPosts, r.Selected)
	}
	return w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(db, cfg.Output.Dir, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b, err := newBuilder(ctx, cfg, db)
	if err != nil {
		return err
	}

	sched := scheduler.New(b, cfg.Schedule.ParseBuildInterval())
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	srv := server.New(db, cfg.Output.Dir, port)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
