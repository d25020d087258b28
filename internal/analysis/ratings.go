package analysis

import (
	"math"
	"sort"

	"github.com/pdewey/soundscope/internal/genre"
	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/window"
)

// RatingsConfig controls the per-playlist debug ratings.
type RatingsConfig struct {
	Window window.Config
	// MinTracks is the smallest playlist that gets rated at all.
	MinTracks int
	// DeepCutPopularity is the popularity at or below which a track counts
	// as a deep cut.
	DeepCutPopularity int
}

func DefaultRatingsConfig() RatingsConfig {
	return RatingsConfig{
		Window:            window.DefaultConfig(),
		MinTracks:         5,
		DeepCutPopularity: 20,
	}
}

// RatePlaylists scores each named grouping (the record's source playlist)
// on cohesion, variety, rarity and creativity. Groupings below MinTracks
// are skipped. Results are ordered by overall score descending, name
// ascending on ties.
func RatePlaylists(records []model.PlayRecord, cfg RatingsConfig) []PlaylistRating {
	if cfg.MinTracks == 0 {
		cfg.MinTracks = 5
	}
	if cfg.DeepCutPopularity == 0 {
		cfg.DeepCutPopularity = 20
	}

	groups := make(map[string][]model.PlayRecord)
	for _, r := range window.Filter(records, cfg.Window) {
		if r.Source == "" {
			continue
		}
		groups[r.Source] = append(groups[r.Source], r)
	}

	out := make([]PlaylistRating, 0, len(groups))
	for name, members := range groups {
		tracks := window.UniqueTracks(members)
		if len(tracks) < cfg.MinTracks {
			continue
		}
		out = append(out, ratePlaylist(name, tracks, cfg))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Overall != out[j].Overall {
			return out[i].Overall > out[j].Overall
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func ratePlaylist(name string, tracks []model.PlayRecord, cfg RatingsConfig) PlaylistRating {
	trackCount := len(tracks)
	denom := float64(trackCount)
	if denom == 0 {
		denom = 1
	}

	artistCounts := make(map[string]int, trackCount)
	genreCounts := make(map[string]int)
	deepCuts := 0
	for _, r := range tracks {
		artistCounts[r.PrimaryArtist()]++
		for _, g := range genre.Normalize(r.RawGenres) {
			genreCounts[g]++
		}
		if r.Popularity > 0 && r.Popularity <= cfg.DeepCutPopularity {
			deepCuts++
		}
	}

	// Cohesion leans on the single most common artist and genre.
	topArtistShare := float64(maxCount(artistCounts)) / denom
	topGenreShare := float64(maxCount(genreCounts)) / denom
	cohesion := (0.55*topArtistShare + 0.45*topGenreShare) * 100

	variety := float64(len(artistCounts)) / denom * 100
	rarity := 100 - meanPopularity(tracks)

	genreSpread := float64(len(genreCounts)) / math.Sqrt(denom) * 100
	if genreSpread > 100 {
		genreSpread = 100
	}
	deepCutShare := float64(deepCuts) / denom * 100
	creativity := 0.6*genreSpread + 0.4*deepCutShare

	overall := 0.45*cohesion + 0.15*variety + 0.25*rarity + 0.15*creativity

	return PlaylistRating{
		Name:       name,
		Tracks:     trackCount,
		Variety:    clamp100(variety),
		Rarity:     clamp100(rarity),
		Cohesion:   clamp100(cohesion),
		Creativity: clamp100(creativity),
		Overall:    clamp100(overall),
	}
}

func maxCount(counts map[string]int) int {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	return max
}
