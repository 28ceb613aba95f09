package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lmeyer/fedidigest/pkg/digest"
)

// Config is the root configuration.
type Config struct {
	Mastodon MastodonConfig `yaml:"mastodon"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Digest   DigestConfig   `yaml:"digest"`
	Tuning   digest.Tuning  `yaml:"tuning"`
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Server   ServerConfig   `yaml:"server"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// MastodonConfig configures the home timeline source.
type MastodonConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	Hours   int    `yaml:"hours"` // timeline window to fetch
}

// FeedsConfig configures optional public profile RSS feeds blended
// into each run.
type FeedsConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Profiles []FeedItem `yaml:"profiles"`
}

// FeedItem is a single profile feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DigestConfig selects the scoring strategy, tone, and categories.
type DigestConfig struct {
	Strategy   string            `yaml:"strategy"`
	Tone       string            `yaml:"tone"`
	Dedupe     *bool             `yaml:"dedupe"` // nil = true
	Categories []digest.Category `yaml:"categories"`
}

// DedupeEnabled returns the dedupe setting, defaulting to on.
func (d DigestConfig) DedupeEnabled() bool {
	return d.Dedupe == nil || *d.Dedupe
}

// OutputConfig configures where the rendered digest is published.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// DatabaseConfig configures the SQLite run archive.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig configures the daemon build interval.
type ScheduleConfig struct {
	BuildInterval string `yaml:"build_interval"`
}

// ParseBuildInterval returns the build interval as time.Duration.
func (s ScheduleConfig) ParseBuildInterval() time.Duration {
	d, err := time.ParseDuration(s.BuildInterval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// NotifyConfig configures digest publication announcements.
type NotifyConfig struct {
	PageURL string        `yaml:"page_url"` // public URL of the published page
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook announcements.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook announcements.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook announcements.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Mastodon: MastodonConfig{Hours: 12},
		Digest: DigestConfig{
			Strategy: "ExtendedWeighted",
			Tone:     "normal",
			Categories: []digest.Category{
				{Name: "Highlights", Capacity: 12},
				{Name: "Boosted Along", Capacity: 12, Conditions: []digest.Condition{
					{Field: "is_boost", Op: digest.OpEQ, Value: 1},
				}},
				{Name: "New Voices", Capacity: 6, Conditions: []digest.Condition{
					{Field: "author_age_hours", Op: digest.OpLT, Value: 30 * 24},
				}},
				{Name: "With Media", Capacity: 6, Conditions: []digest.Condition{
					{Field: "has_media", Op: digest.OpEQ, Value: 1},
				}},
			},
		},
		Tuning:   digest.DefaultTuning(),
		Output:   OutputConfig{Dir: "./render"},
		Database: DatabaseConfig{Path: "./fedidigest.db"},
		Schedule: ScheduleConfig{BuildInterval: "6h"},
		Server:   ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file, applies env var
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on configuration errors, before any fetch or
// scoring happens.
func (c *Config) Validate() error {
	if _, err := digest.ParseStrategy(c.Digest.Strategy); err != nil {
		return fmt.Errorf("digest.strategy: %w", err)
	}
	if _, err := digest.ParseTone(c.Digest.Tone); err != nil {
		return fmt.Errorf("digest.tone: %w", err)
	}
	if len(c.Digest.Categories) == 0 {
		return fmt.Errorf("digest.categories: at least one category required")
	}
	for _, cat := range c.Digest.Categories {
		if err := cat.Validate(); err != nil {
			return fmt.Errorf("digest.categories: %w", err)
		}
	}
	if c.Mastodon.Hours <= 0 || c.Mastodon.Hours > 24 {
		return fmt.Errorf("mastodon.hours: must be between 1 and 24, got %d", c.Mastodon.Hours)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MASTODON_BASE_URL"); v != "" {
		cfg.Mastodon.BaseURL = v
	}
	if v := os.Getenv("MASTODON_TOKEN"); v != "" {
		cfg.Mastodon.Token = v
	}
	if v := os.Getenv("FEDIDIGEST_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("FEDIDIGEST_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notify.Slack.WebhookURL = v
		cfg.Notify.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Notify.Discord.WebhookURL = v
		cfg.Notify.Discord.Enabled = true
	}
}
