package model

import (
	"strings"
	"time"
)

// PlayRecord is one imported play/add event. Records reaching the analysis
// packages always have a non-empty ID; the importer drops rows without one.
type PlayRecord struct {
	ID          string
	Track       string
	Artist      string
	Album       string
	RawGenres   string
	ReleaseDate time.Time
	AddedAt     time.Time
	PlayedAt    time.Time
	Popularity  int
	Valence     float64
	Energy      float64
	Dance       float64
	Acoustic    float64
	Instrumental float64
	Tempo       float64
	Source      string
	AddedBy     string
}

// PrimaryArtist returns the first artist on the record. Exports list
// collaborations comma-separated with the primary artist first.
func (r PlayRecord) PrimaryArtist() string {
	if i := strings.Index(r.Artist, ","); i >= 0 {
		return strings.TrimSpace(r.Artist[:i])
	}
	return strings.TrimSpace(r.Artist)
}

// FeaturedArtists returns the remaining artists after the primary one.
func (r PlayRecord) FeaturedArtists() []string {
	parts := strings.Split(r.Artist, ",")
	if len(parts) < 2 {
		return nil
	}
	var out []string
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
