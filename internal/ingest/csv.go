// Package ingest parses export CSV files into play records. It is the
// boundary collaborator for the analysis core: rows without a track id are
// rejected here and never reach the aggregators.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdewey/soundscope/internal/model"
)

// Options supplies defaults for columns the export may not carry.
type Options struct {
	// DefaultSource is used when the file has no source/playlist column;
	// typically the file name.
	DefaultSource  string
	DefaultAddedBy string
}

// Result is one file's parse outcome.
type Result struct {
	Records []model.PlayRecord
	// Skipped counts rows dropped for a missing track id.
	Skipped int
}

// columnAliases maps the header names seen across export variants to
// canonical column keys.
var columnAliases = map[string]string{
	"track_id":           "id",
	"id":                 "id",
	"spotify_track_id":   "id",
	"uri":                "id",
	"track_name":         "track",
	"track":              "track",
	"name":               "track",
	"artist_name":        "artist",
	"artist":             "artist",
	"artists":            "artist",
	"album_name":         "album",
	"album":              "album",
	"genres":             "genres",
	"genre":              "genres",
	"artist_genres":      "genres",
	"release_date":       "release_date",
	"album_release_date": "release_date",
	"added_at":           "added_at",
	"date_added":         "added_at",
	"played_at":          "played_at",
	"ts":                 "played_at",
	"end_time":           "played_at",
	"popularity":         "popularity",
	"track_popularity":   "popularity",
	"valence":            "valence",
	"energy":             "energy",
	"danceability":       "danceability",
	"acousticness":       "acousticness",
	"instrumentalness":   "instrumentalness",
	"tempo":              "tempo",
	"source":             "source",
	"playlist":           "source",
	"playlist_name":      "source",
	"added_by":           "added_by",
	"user":               "added_by",
}

// ReadFile parses one export file. The file name becomes the default
// source when the rows carry none.
func ReadFile(path string, opts Options) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	if opts.DefaultSource == "" {
		opts.DefaultSource = filepath.Base(path)
	}
	return Read(f, opts)
}

// Read parses CSV export rows into play records.
func Read(r io.Reader, opts Options) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if canon, ok := columnAliases[key]; ok {
			if _, taken := cols[canon]; !taken {
				cols[canon] = i
			}
		}
	}
	if _, ok := cols["id"]; !ok {
		return Result{}, fmt.Errorf("export has no track id column (header: %s)", strings.Join(header, ","))
	}

	var result Result
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("reading row: %w", err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		id := field("id")
		if id == "" {
			result.Skipped++
			continue
		}

		rec := model.PlayRecord{
			ID:           id,
			Track:        field("track"),
			Artist:       field("artist"),
			Album:        field("album"),
			RawGenres:    field("genres"),
			ReleaseDate:  parseDate(field("release_date")),
			AddedAt:      parseDate(field("added_at")),
			PlayedAt:     parseDate(field("played_at")),
			Popularity:   parseInt(field("popularity")),
			Valence:      parseFloat(field("valence")),
			Energy:       parseFloat(field("energy")),
			Dance:        parseFloat(field("danceability")),
			Acoustic:     parseFloat(field("acousticness")),
			Instrumental: parseFloat(field("instrumentalness")),
			Tempo:        parseFloat(field("tempo")),
			Source:       field("source"),
			AddedBy:      field("added_by"),
		}
		if rec.Source == "" {
			rec.Source = opts.DefaultSource
		}
		if rec.AddedBy == "" {
			rec.AddedBy = opts.DefaultAddedBy
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// OriginRow is one artist in the flat origin table.
type OriginRow struct {
	Artist    string
	Country   string
	Continent string
}

// ReadOrigins parses the offline artist-origin table: artist, country,
// continent columns, header optional.
func ReadOrigins(r io.Reader) ([]OriginRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []OriginRow
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("reading origin row: %w", err)
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), "artist") {
				continue
			}
		}
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		o := OriginRow{Artist: strings.TrimSpace(row[0]), Country: strings.TrimSpace(row[1])}
		if len(row) > 2 {
			o.Continent = strings.TrimSpace(row[2])
		}
		out = append(out, o)
	}
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseDate tolerates the timestamp shapes the export variants use. A row
// with an unparsable date keeps a zero time and simply drops out of
// date-dependent aggregates downstream.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006-01",
		"2006",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
