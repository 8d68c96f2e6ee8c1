package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// envPrefix is the prefix for environment overrides. Double underscores
// separate nesting levels: M3UGEN_TMDB__API_KEY -> tmdb.api_key.
const envPrefix = "M3UGEN_"

// Config holds all application configuration.
type Config struct {
	Crawl    CrawlConfig    `koanf:"crawl" validate:"required"`
	TMDB     TMDBConfig     `koanf:"tmdb" validate:"required"`
	Playlist PlaylistConfig `koanf:"playlist" validate:"required"`
}

// CrawlConfig holds settings for the directory-listing crawl.
type CrawlConfig struct {
	BaseURL    string        `koanf:"base_url" validate:"required,url"`
	Extensions []string      `koanf:"extensions" validate:"required,min=1"`
	Timeout    time.Duration `koanf:"timeout" validate:"required"`
	MaxDepth   int           `koanf:"max_depth" validate:"required,min=1"`
}

// TMDBConfig holds settings for the metadata service. APIKey is not
// validated here: the crawl subcommand runs without it, so the build
// subcommand enforces its presence itself.
type TMDBConfig struct {
	APIKey      string        `koanf:"api_key"`
	APIBase     string        `koanf:"api_base" validate:"required,url"`
	Language    string        `koanf:"language" validate:"required"`
	ImageBase   string        `koanf:"image_base" validate:"required,url"`
	Timeout     time.Duration `koanf:"timeout" validate:"required"`
	Retries     int           `koanf:"retries" validate:"required,min=1"`
	Concurrency int           `koanf:"concurrency" validate:"required,min=1"`
}

// PlaylistConfig holds settings for category mapping and M3U output.
type PlaylistConfig struct {
	Output          string `koanf:"output" validate:"required"`
	CategoryDepth   int    `koanf:"category_depth" validate:"required,min=1"`
	DefaultCategory string `koanf:"default_category" validate:"required"`
}

// Defaults returns the configuration used when neither the config file
// nor the environment overrides a value.
func Defaults() Config {
	return Config{
		Crawl: CrawlConfig{
			BaseURL:    "http://ftp.ctgfun.com/",
			Extensions: []string{".mkv", ".mp4", ".avi", ".mov", ".m4v", ".ts", ".wmv", ".divx", ".flv"},
			Timeout:    20 * time.Second,
			MaxDepth:   25,
		},
		TMDB: TMDBConfig{
			APIBase:     "https://api.themoviedb.org/3",
			Language:    "en-US",
			ImageBase:   "https://image.tmdb.org/t/p/w500",
			Timeout:     10 * time.Second,
			Retries:     3,
			Concurrency: 4,
		},
		Playlist: PlaylistConfig{
			Output:          "output/playlist.m3u",
			CategoryDepth:   2,
			DefaultCategory: "Uncategorized",
		},
	}
}

// Load reads configuration from an optional YAML file and the
// environment, then validates it. A missing config file is not an
// error: defaults plus environment overrides are a complete surface.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	// Plain names honored for compatibility with existing deployments.
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		_ = k.Set("tmdb.api_key", v)
	}
	if v := os.Getenv("FTP_PUBLIC_URL"); v != "" {
		_ = k.Set("crawl.base_url", v)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if !strings.HasSuffix(cfg.Crawl.BaseURL, "/") {
		cfg.Crawl.BaseURL += "/"
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// ConfigFrom extracts the Config from the CLI command metadata.
func ConfigFrom(cmd *cli.Command) (*Config, error) {
	v, ok := cmd.Root().Metadata["config"]
	if !ok {
		return nil, fmt.Errorf("config not found in command metadata")
	}
	cfg, ok := v.(*Config)
	if !ok {
		return nil, fmt.Errorf("config has unexpected type %T", v)
	}
	return cfg, nil
}
