// package formatter renders the playlist catalog in various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/playlister/internal/models"
	"github.com/desertthunder/playlister/internal/shared"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"

	descriptionLimit = 30
)

// Formats lists the names accepted by [Render].
var Formats = []string{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// Render dispatches to the exporter for format.
func Render(format string, playlists []models.Playlist) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return ExportToText(playlists)
	case FormatMarkdown, "md":
		return ExportToMarkdown(playlists)
	case FormatCSV:
		return ExportToCSV(playlists)
	case FormatJSON:
		return shared.MarshalJSON(playlists, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// ExportToCSV converts playlists to CSV format with columns: ID, Name, Description, URI, Tracks, Cover
func ExportToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Description", "URI", "Tracks", "Cover"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range playlists {
		record := []string{
			p.ID,
			p.Name,
			p.Description,
			p.URI,
			strconv.Itoa(p.TrackCount),
			p.Cover(),
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

// ExportToMarkdown converts playlists to a Markdown document with one section per playlist
func ExportToMarkdown(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Playlists\n\n")
	if len(playlists) == 0 {
		buf.WriteString("No playlists found\n")
		return buf.Bytes(), nil
	}

	for _, p := range playlists {
		buf.WriteString(fmt.Sprintf("## %s\n\n", p.Name))
		if cover := p.Cover(); cover != "" {
			buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", cover))
		}
		if p.Description != "" {
			buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", p.Description))
		}
		buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", p.TrackCount))
		buf.WriteString(fmt.Sprintf("**URI**: `%s`\n\n", p.URI))
	}

	return buf.Bytes(), nil
}

// ExportToText converts playlists to numbered plain text lines in the style of the catalog cards
func ExportToText(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	if len(playlists) == 0 {
		buf.WriteString("No playlists found\n")
		return buf.Bytes(), nil
	}

	for i, p := range playlists {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, p.Name, p.ID))
		buf.WriteString(fmt.Sprintf("   Playlist • %s\n", shared.Truncate(p.Description, descriptionLimit)))
	}

	return buf.Bytes(), nil
}

// WriteExport renders playlists in format and writes them to path.
func WriteExport(playlists []models.Playlist, format, path string) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	data, err := Render(format, playlists)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
