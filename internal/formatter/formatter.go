// package formatter provides functions to export movie data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/myflix/internal/models"
)

// ExportToCSV converts a movie list to CSV format with columns: ID, Title, Genre, Director, Description
func ExportToCSV(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Genre", "Director", "Description"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range movies {
		record := []string{
			movie.ID,
			movie.Title,
			movie.Genre.Name,
			movie.Director.Name,
			movie.Description,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a movie list to Markdown format under the given heading
func ExportToMarkdown(title string, movies []models.Movie) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n\n", len(movies)))

	for _, movie := range movies {
		buf.WriteString(fmt.Sprintf("## %s\n\n", movie.Title))
		if movie.Genre.Name != "" {
			buf.WriteString(fmt.Sprintf("**Genre**: %s\n", movie.Genre.Name))
		}
		if movie.Director.Name != "" {
			buf.WriteString(fmt.Sprintf("**Director**: %s\n", movie.Director.Name))
		}
		if movie.Description != "" {
			buf.WriteString(fmt.Sprintf("\n%s\n", movie.Description))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// ExportToText converts a movie list to plain text format
func ExportToText(title string, movies []models.Movie) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", title))
	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(movies)))

	for i, movie := range movies {
		buf.WriteString(fmt.Sprintf("%d. %s", i+1, movie.Title))
		if movie.Director.Name != "" {
			buf.WriteString(fmt.Sprintf(" — dir. %s", movie.Director.Name))
		}
		if movie.Genre.Name != "" {
			buf.WriteString(fmt.Sprintf(" [%s]", movie.Genre.Name))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// WriteMoviesFile renders movies in the given format (csv, markdown, txt)
// and writes the result to path, returning the written path.
func WriteMoviesFile(title string, movies []models.Movie, format, path string) (string, error) {
	var data []byte
	var err error

	switch format {
	case "csv":
		data, err = ExportToCSV(movies)
		if err != nil {
			return "", err
		}
	case "markdown":
		data = ExportToMarkdown(title, movies)
	case "txt":
		data = ExportToText(title, movies)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", format, err)
	}

	return path, nil
}

// DownloadImage downloads a poster image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}
