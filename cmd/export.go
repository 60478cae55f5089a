package main

import (
	"context"

	"github.com/desertthunder/myflix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes favorites (or the whole catalog) to disk, optionally with
// poster images.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		All:        cmd.Bool("all"),
		Images:     cmd.Bool("images"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate-limit"),
	}

	r.logger.Info("starting export", "format", opts.Format, "all", opts.All)
	r.writePlain("Starting export...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchFavorites, tasks.FetchCatalog:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.WriteFiles:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.DownloadImages:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Export(ctx, progressCh, opts)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Movies: %d\n", result.TotalMovies)
	r.writePlain("Listing: %s\n", result.ListingFile)
	if len(result.Images) > 0 {
		r.writePlain("Images: %d downloaded, %d failed\n", len(result.Images)-result.FailedImages, result.FailedImages)
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	return nil
}
