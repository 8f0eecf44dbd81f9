// package formatter provides functions to export a genre listing to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

// ParseFormat resolves a user supplied format name. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
}

// Listing is the exported view of a genre listing after some number of pages.
type Listing struct {
	Genre     models.GenreInfo `json:"genre"`
	Pages     int              `json:"pages"`
	Exhausted bool             `json:"exhausted"`
	Lyrics    []models.Lyric   `json:"lyrics"`
}

type jsonLyric struct {
	models.Lyric
	Route string `json:"route"`
}

type jsonListing struct {
	Genre     models.GenreInfo `json:"genre"`
	Pages     int              `json:"pages"`
	Exhausted bool             `json:"exhausted"`
	Count     int              `json:"count"`
	Lyrics    []jsonLyric      `json:"lyrics"`
}

// ExportToJSON converts a Listing to indented JSON, adding the detail route to every lyric
func ExportToJSON(listing *Listing) ([]byte, error) {
	out := jsonListing{
		Genre:     listing.Genre,
		Pages:     listing.Pages,
		Exhausted: listing.Exhausted,
		Count:     len(listing.Lyrics),
		Lyrics:    make([]jsonLyric, 0, len(listing.Lyrics)),
	}
	for _, lyric := range listing.Lyrics {
		out.Lyrics = append(out.Lyrics, jsonLyric{Lyric: lyric, Route: lyric.Route(listing.Genre.Path)})
	}
	return shared.MarshalJSON(out, true)
}

// ExportToCSV converts a Listing to CSV format with columns: Slug, Title, Genre, Route, Preview
func ExportToCSV(listing *Listing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Slug", "Title", "Genre", "Route", "Preview"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, lyric := range listing.Lyrics {
		record := []string{
			lyric.Slug,
			lyric.Title,
			lyric.Genre,
			lyric.Route(listing.Genre.Path),
			lyric.Preview,
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

// ExportToMarkdown converts a Listing to Markdown. Rows link to siteURL joined with the lyric route
// when siteURL is set, otherwise to the bare route.
func ExportToMarkdown(listing *Listing, siteURL string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", titleOf(listing)))
	buf.WriteString(fmt.Sprintf("**Lyrics**: %d\n", len(listing.Lyrics)))
	buf.WriteString(fmt.Sprintf("**Pages**: %d\n", listing.Pages))
	if listing.Exhausted {
		buf.WriteString("**Complete**: yes\n\n")
	} else {
		buf.WriteString("**Complete**: no\n\n")
	}

	for i, lyric := range listing.Lyrics {
		link := lyric.Route(listing.Genre.Path)
		if siteURL != "" {
			u, err := shared.RouteURL(siteURL, link)
			if err != nil {
				return nil, err
			}
			link = u
		}
		buf.WriteString(fmt.Sprintf("%d. [%s](%s) %s\n", i+1, lyric.Title, link, strings.ToUpper(lyric.Genre)))
		if lyric.Preview != "" {
			buf.WriteString(fmt.Sprintf("   > %s\n", firstLine(lyric.Preview)))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Listing to plain text format
func ExportToText(listing *Listing) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Genre: %s\n", titleOf(listing)))
	buf.WriteString(fmt.Sprintf("Lyrics: %d\n\n", len(listing.Lyrics)))

	for i, lyric := range listing.Lyrics {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, lyric.Title, lyric.Route(listing.Genre.Path)))
	}

	return buf.Bytes(), nil
}

// Export renders listing in the given format.
func Export(listing *Listing, format Format, siteURL string) ([]byte, error) {
	if listing == nil {
		return nil, fmt.Errorf("%w: listing is nil", shared.ErrMissingArgument)
	}

	switch format {
	case FormatJSON:
		return ExportToJSON(listing)
	case FormatCSV:
		return ExportToCSV(listing)
	case FormatMarkdown:
		return ExportToMarkdown(listing, siteURL)
	case FormatText:
		return ExportToText(listing)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
}

// WriteExport writes listing to path in the given format and returns the path written.
//
// Defaults to {genre}_lyrics.{ext} as the filename.
func WriteExport(listing *Listing, format Format, siteURL, path string) (string, error) {
	data, err := Export(listing, format, siteURL)
	if err != nil {
		return "", err
	}

	if path == "" {
		genre := listing.Genre.Path
		if genre == "" {
			genre = "listing"
		}
		path = fmt.Sprintf("%s_lyrics.%s", genre, format.Extension())
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

func titleOf(listing *Listing) string {
	if listing.Genre.Title != "" {
		return listing.Genre.Title
	}
	return listing.Genre.Path
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
