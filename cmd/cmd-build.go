package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/dirstream/m3ugen/internal/app"
	"github.com/dirstream/m3ugen/internal/crawl"
	"github.com/dirstream/m3ugen/internal/playlist"
	"github.com/dirstream/m3ugen/internal/tmdb"
)

// buildCommand returns the "build" CLI subcommand: the full
// crawl → enrich → emit pipeline.
func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Crawl the directory tree and write the playlist",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}
			if cfg.TMDB.APIKey == "" {
				return fmt.Errorf("TMDB API key is required (set TMDB_API_KEY)")
			}

			walker, err := crawl.NewWalker(cfg.Crawl)
			if err != nil {
				return err
			}

			slog.InfoContext(ctx, "crawl started", "base_url", cfg.Crawl.BaseURL)

			files, err := walker.Walk(ctx)
			if err != nil {
				return fmt.Errorf("crawl failed: %w", err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no video files found under %s", cfg.Crawl.BaseURL)
			}

			slog.InfoContext(ctx, "crawl complete", "files", len(files))

			client := tmdb.NewClient(cfg.TMDB)
			resolved := tmdb.ResolveAll(ctx, client, files, cfg.TMDB.Concurrency)

			entries := playlist.FromResolved(resolved, cfg.Playlist)

			if err := playlist.Write(cfg.Playlist.Output, playlist.Render(entries)); err != nil {
				return fmt.Errorf("writing playlist: %w", err)
			}

			var matched int
			for _, r := range resolved {
				if r.Found {
					matched++
				}
			}
			slog.InfoContext(ctx, "playlist written",
				"path", cfg.Playlist.Output,
				"matched", matched,
				"unmatched", len(resolved)-matched,
				"total", len(resolved),
			)
			return nil
		},
	}
}
