package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/myflix/internal/formatter"
	"github.com/desertthunder/myflix/internal/models"
	"github.com/desertthunder/myflix/internal/services"
	"github.com/desertthunder/myflix/internal/session"
	"github.com/desertthunder/myflix/internal/shared"
	"golang.org/x/time/rate"
)

// ExportOpts contains configuration for catalog/favorites exports.
type ExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: myflix_export_{epoch})
	All        bool    // Export the whole catalog instead of just favorites
	Images     bool    // Download poster images alongside the listing
	NumWorkers int     // Concurrent image workers (default: 5)
	RateLimit  float64 // Requests per second for image downloads (default: 5)
}

// ImageResult records one poster download attempt.
type ImageResult struct {
	MovieID string `json:"movie_id"`
	Title   string `json:"title"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ExportResult summarizes a completed export.
type ExportResult struct {
	TotalMovies     int           `json:"total_movies"`
	ListingFile     string        `json:"listing_file"`
	Images          []ImageResult `json:"images,omitempty"`
	FailedImages    int           `json:"failed_images"`
	OutputDirectory string        `json:"output_directory"`
	ManifestPath    string        `json:"manifest_path"`
}

type imageJob struct {
	movie models.Movie
}

// Engine runs exports against the myFlix API.
type Engine struct {
	api   services.Service
	store session.Store
}

// NewEngine creates a new Engine with the provided dependencies.
func NewEngine(api services.Service, store session.Store) *Engine {
	return &Engine{api: api, store: store}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Export fetches the catalog (filtered to the signed-in user's favorites
// unless opts.All is set), writes a listing file in the requested format,
// optionally downloads poster images with a rate-limited worker pool, and
// writes a JSON manifest summarizing the run.
func (e *Engine) Export(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	user, ok := session.User(e.store)
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("myflix_export_%d", time.Now().Unix())
	}
	if opts.Format == "" {
		opts.Format = "json"
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	movies, err := e.collect(ctx, prog, user.ID, opts.All)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		TotalMovies:     len(movies),
		OutputDirectory: opts.OutputDir,
	}

	title := fmt.Sprintf("%s's favorites", user.Username)
	if opts.All {
		title = "myFlix catalog"
	}

	listing, err := e.writeListing(title, movies, opts)
	if err != nil {
		return nil, err
	}
	result.ListingFile = listing
	e.sendProgress(prog, writeFileUpdate(1, 1, listing))

	if opts.Images {
		result.Images = e.downloadImages(ctx, prog, movies, opts)
		for _, img := range result.Images {
			if !img.Success {
				result.FailedImages++
			}
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	return result, nil
}

// collect fetches the catalog and applies the favorites filter.
func (e *Engine) collect(ctx context.Context, prog chan<- ProgressUpdate, userID string, all bool) ([]models.Movie, error) {
	var members map[string]struct{}

	if !all {
		e.sendProgress(prog, fetchFavoritesUpdate(1, 2))
		ids, err := e.api.Favorites(ctx, userID)
		if err != nil {
			return nil, err
		}
		members = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			members[id] = struct{}{}
		}
	}

	e.sendProgress(prog, fetchCatalogUpdate(2, 2))
	catalog, err := e.api.Movies(ctx)
	if err != nil {
		return nil, err
	}

	if all {
		return catalog, nil
	}

	movies := make([]models.Movie, 0, len(members))
	for _, movie := range catalog {
		if _, ok := members[movie.ID]; ok {
			movies = append(movies, movie)
		}
	}
	return movies, nil
}

// writeListing writes the movie listing in the requested format.
func (e *Engine) writeListing(title string, movies []models.Movie, opts ExportOpts) (string, error) {
	if opts.Format == "json" {
		path := filepath.Join(opts.OutputDir, "movies.json")
		data, err := shared.MarshalJSON(movies, true)
		if err != nil {
			return "", fmt.Errorf("JSON marshal failed: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", fmt.Errorf("JSON write failed: %w", err)
		}
		return path, nil
	}

	ext := opts.Format
	if ext == "markdown" {
		ext = "md"
	}
	path := filepath.Join(opts.OutputDir, "movies."+ext)
	return formatter.WriteMoviesFile(title, movies, opts.Format, path)
}

// downloadImages fetches poster images concurrently, respecting the rate
// limit. Partial failures are recorded, not fatal.
func (e *Engine) downloadImages(ctx context.Context, prog chan<- ProgressUpdate, movies []models.Movie, opts ExportOpts) []ImageResult {
	var jobs []imageJob
	for _, movie := range movies {
		if movie.ImagePath != "" {
			jobs = append(jobs, imageJob{movie: movie})
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobCh := make(chan imageJob, len(jobs))
	resultCh := make(chan ImageResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				select {
				case <-ctx.Done():
					return
				default:
				}

				if err := limiter.Wait(ctx); err != nil {
					return
				}

				resultCh <- e.downloadOne(job, opts.OutputDir)
			}
		}()
	}

	for i, job := range jobs {
		e.sendProgress(prog, downloadImageUpdate(i+1, len(jobs), job.movie.Title))
		jobCh <- job
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]ImageResult, 0, len(jobs))
	completed := 0
	for res := range resultCh {
		completed++
		if res.Success {
			e.sendProgress(prog, imageCompletedUpdate(completed, len(jobs), res.Title))
		} else {
			e.sendProgress(prog, imageFailedUpdate(completed, len(jobs), res.Title, fmt.Errorf("%s", res.Error)))
		}
		results = append(results, res)
	}
	return results
}

// downloadOne fetches a single poster and writes it next to the listing.
func (e *Engine) downloadOne(job imageJob, outputDir string) ImageResult {
	result := ImageResult{MovieID: job.movie.ID, Title: job.movie.Title}

	data, err := formatter.DownloadImage(job.movie.ImagePath)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	path := filepath.Join(outputDir, fmt.Sprintf("%s%s", job.movie.ID, imageExt(job.movie.ImagePath)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		result.Error = err.Error()
		return result
	}

	result.File = path
	result.Success = true
	return result
}

func imageExt(url string) string {
	if ext := filepath.Ext(url); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".jpg"
}
