// package formatter renders movies and watchlist entries for display and
// exports watchlist data to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"watchlater/internal/models"
	"watchlater/internal/tasks"
)

const notAvailable = "N/A"

// FormatRuntime renders minutes as "2h 28m" or "45m".
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return notAvailable
	}

	hours := minutes / 60
	rem := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, rem)
	}
	return fmt.Sprintf("%dm", rem)
}

// FormatMoney renders a dollar amount with thousands separators.
func FormatMoney(amount int64) string {
	if amount <= 0 {
		return notAvailable
	}
	return "$" + groupDigits(strconv.FormatInt(amount, 10))
}

// FormatReleaseDate renders a provider "2006-01-02" date as "January 02, 2006".
func FormatReleaseDate(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return notAvailable
	}
	return parsed.Format("January 02, 2006")
}

// FormatVoteAverage renders a vote average to one decimal place.
func FormatVoteAverage(avg float64) string {
	if avg <= 0 {
		return notAvailable
	}
	return fmt.Sprintf("%.1f", avg)
}

// FormatVoteCount renders a vote count with thousands separators.
func FormatVoteCount(count int) string {
	if count <= 0 {
		return notAvailable
	}
	return groupDigits(strconv.Itoa(count))
}

// groupDigits inserts commas into a non-negative integer string.
func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}

	var buf bytes.Buffer
	lead := len(s) % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if buf.Len() > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}

// ExportToCSV converts watchlist items to CSV with columns:
// TMDB ID, Title, Release Date, Rating, Watched, Added At, Watched At
func ExportToCSV(items []tasks.WatchlistItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"TMDB ID", "Title", "Release Date", "Rating", "Watched", "Added At", "Watched At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		watchedAt := ""
		if item.Entry.WatchedAt != nil {
			watchedAt = item.Entry.WatchedAt.Format(time.RFC3339)
		}

		record := []string{
			strconv.Itoa(item.Movie.TMDBID),
			item.Movie.Title,
			item.Movie.ReleaseDate,
			FormatVoteAverage(item.Movie.VoteAverage),
			strconv.FormatBool(item.Entry.Watched),
			item.Entry.AddedAt.Format(time.RFC3339),
			watchedAt,
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

// ExportToMarkdown renders full movie details as Markdown with optional
// local poster and backdrop image references.
func ExportToMarkdown(movie *models.Movie, posterFilename, backdropFilename string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", movie.Title))

	if posterFilename != "" {
		buf.WriteString(fmt.Sprintf("![Poster](%s)\n\n", posterFilename))
	}

	if movie.Overview != "" {
		buf.WriteString(movie.Overview + "\n\n")
	}

	buf.WriteString(fmt.Sprintf("**Released**: %s\n", FormatReleaseDate(movie.ReleaseDate)))
	buf.WriteString(fmt.Sprintf("**Runtime**: %s\n", FormatRuntime(movie.Runtime)))
	buf.WriteString(fmt.Sprintf("**Rating**: %s (%s votes)\n", FormatVoteAverage(movie.VoteAverage), FormatVoteCount(movie.VoteCount)))
	buf.WriteString(fmt.Sprintf("**Budget**: %s\n", FormatMoney(movie.Budget)))
	buf.WriteString(fmt.Sprintf("**Revenue**: %s\n", FormatMoney(movie.Revenue)))

	if movie.OriginalTitle != "" && movie.OriginalTitle != movie.Title {
		buf.WriteString(fmt.Sprintf("**Original title**: %s (%s)\n", movie.OriginalTitle, movie.OriginalLanguage))
	}

	if backdropFilename != "" {
		buf.WriteString(fmt.Sprintf("\n![Backdrop](%s)\n", backdropFilename))
	}

	return buf.Bytes()
}

// ExportToText converts watchlist items to a plain text listing.
func ExportToText(items []tasks.WatchlistItem) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Watchlist (%d movies)\n\n", len(items)))

	for i, item := range items {
		mark := " "
		if item.Entry.Watched {
			mark = "x"
		}
		buf.WriteString(fmt.Sprintf("%d. [%s] %s (%s) • rated %s\n",
			i+1, mark, item.Movie.Title, FormatReleaseDate(item.Movie.ReleaseDate),
			FormatVoteAverage(item.Movie.VoteAverage)))
	}

	return buf.Bytes()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
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

// MovieExportResult contains information about files created by WriteMovieExport
type MovieExportResult struct {
	Directory  string
	Files      []string
	PosterFile string
}

// WriteMovieExport writes movie details to {dir}/README.md, optionally
// downloading the poster to {dir}/poster.jpg and the backdrop to
// {dir}/backdrop.jpg first.
//
// The directory name defaults to the TMDB id.
func WriteMovieExport(movie *models.Movie, outputDir string, posterURL, backdropURL string) (*MovieExportResult, error) {
	if outputDir == "" {
		outputDir = strconv.Itoa(movie.TMDBID)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MovieExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	posterFilename := saveImage(outputDir, "poster.jpg", posterURL, result)
	if posterFilename != "" {
		result.PosterFile = fmt.Sprintf("%s/%s", outputDir, posterFilename)
	}
	backdropFilename := saveImage(outputDir, "backdrop.jpg", backdropURL, result)

	mdData := ExportToMarkdown(movie, posterFilename, backdropFilename)

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// saveImage downloads an image into the export directory, recording the
// written path on result. Failures are warnings; the export carries on
// without the image.
func saveImage(outputDir, filename, url string, result *MovieExportResult) string {
	if url == "" {
		return ""
	}

	imageData, err := DownloadImage(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to download %s: %v\n", filename, err)
		return ""
	}

	path := fmt.Sprintf("%s/%s", outputDir, filename)
	if err := os.WriteFile(path, imageData, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save %s: %v\n", filename, err)
		return ""
	}

	result.Files = append(result.Files, path)
	return filename
}
