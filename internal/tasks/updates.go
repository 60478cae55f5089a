package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchFavorites Phase = iota
	FetchCatalog
	WriteFiles
	DownloadImages
)

func (p Phase) String() string {
	switch p {
	case FetchFavorites:
		return "fetch_favorites"
	case FetchCatalog:
		return "fetch_catalog"
	case WriteFiles:
		return "write_files"
	case DownloadImages:
		return "download_images"
	default:
		return ""
	}
}

func fetchFavoritesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    step,
		Total:   total,
		Message: "Fetching favorites from myFlix...",
	}
}

func fetchCatalogUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    step,
		Total:   total,
		Message: "Fetching movie catalog...",
	}
}

func writeFileUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Wrote %s", path),
	}
}

func downloadImageUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadImages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading poster: %s", step, total, title),
	}
}

func imageCompletedUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadImages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, title),
	}
}

func imageFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadImages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
