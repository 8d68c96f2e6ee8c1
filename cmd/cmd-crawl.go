package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/dirstream/m3ugen/internal/app"
	"github.com/dirstream/m3ugen/internal/crawl"
	"github.com/dirstream/m3ugen/internal/playlist"
)

// crawlCommand returns the "crawl" CLI subcommand: a dry run that
// lists discovered files without touching the metadata service.
func crawlCommand() *cli.Command {
	return &cli.Command{
		Name:  "crawl",
		Usage: "Crawl the directory tree and list discovered video files",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}

			walker, err := crawl.NewWalker(cfg.Crawl)
			if err != nil {
				return err
			}

			files, err := walker.Walk(ctx)
			if err != nil {
				return fmt.Errorf("crawl failed: %w", err)
			}

			for _, f := range files {
				category := playlist.Category(f.Segments, cfg.Playlist.CategoryDepth, cfg.Playlist.DefaultCategory)
				slog.InfoContext(ctx, "file found", "category", category, "name", f.Name, "url", f.URL.String())
			}
			slog.InfoContext(ctx, "crawl complete", "files", len(files))
			return nil
		},
	}
}
