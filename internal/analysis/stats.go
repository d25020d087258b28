package analysis

import (
	"sort"
	"time"

	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/window"
)

// Rarity selection modes.
const (
	RarityTopN       = "top-n"
	RarityPercentile = "percentile"
)

// StatsConfig controls the library summary. Zero values fall back to the
// defaults from DefaultStatsConfig.
type StatsConfig struct {
	Window           window.Config
	TopGenreLimit    int
	WeightedAverages bool
	RarityMode       string
	RarityCount      int
	RarityPercent    float64
}

func DefaultStatsConfig() StatsConfig {
	return StatsConfig{
		Window:           window.DefaultConfig(),
		TopGenreLimit:    10,
		WeightedAverages: true,
		RarityMode:       RarityTopN,
		RarityCount:      25,
		RarityPercent:    5,
	}
}

// BuildStats produces the overall library summary.
func BuildStats(records []model.PlayRecord, cfg StatsConfig) Stats {
	if cfg.TopGenreLimit == 0 {
		cfg.TopGenreLimit = 10
	}
	if cfg.RarityMode == "" {
		cfg.RarityMode = RarityTopN
	}
	if cfg.RarityCount == 0 {
		cfg.RarityCount = 25
	}
	if cfg.RarityPercent == 0 {
		cfg.RarityPercent = 5
	}

	windowed := window.Filter(records, cfg.Window)
	tracks := window.UniqueTracks(windowed)

	stats := Stats{
		TopUniqueGenres: topCounts(countGenresPerTrack(tracks), cfg.TopGenreLimit),
		DiscoveryTrend:  window.DiscoveriesByMonth(windowed),
		RareTracks:      rareTracks(tracks, cfg),
		Taste:           tasteVector(windowed, tracks, cfg.WeightedAverages),
		PlaylistRater:   libraryRater(windowed, tracks),
		ActivityTrend:   window.PlaysByMonth(windowed),
	}

	stats.Meta = Meta{
		Hash:      snapshotHash(windowed),
		Rows:      len(windowed),
		Generated: time.Now().UTC().Format(time.RFC3339),
	}
	if start, end, ok := window.Span(windowed); ok {
		stats.Meta.Window = Window{
			Start: start.Format("2006-01-02"),
			End:   end.Format("2006-01-02"),
		}
	}
	return stats
}

// rareTracks picks the least popular unique tracks: either the lowest N or
// the lowest P percent, ascending by popularity. Tracks with popularity 0
// are treated as missing data and skipped.
func rareTracks(tracks []model.PlayRecord, cfg StatsConfig) []RareTrack {
	candidates := make([]model.PlayRecord, 0, len(tracks))
	for _, r := range tracks {
		if r.Popularity > 0 {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Popularity < candidates[j].Popularity
	})

	n := cfg.RarityCount
	if cfg.RarityMode == RarityPercentile {
		n = int(float64(len(candidates)) * cfg.RarityPercent / 100)
		if n < 1 && len(candidates) > 0 {
			n = 1
		}
	}
	if n > len(candidates) {
		n = len(candidates)
	}

	out := make([]RareTrack, 0, n)
	for _, r := range candidates[:n] {
		out = append(out, RareTrack{Name: r.Track, Artist: r.Artist, Popularity: r.Popularity})
	}
	return out
}

// tasteVector averages audio features over unique tracks. When weighted
// averaging is on, a track's weight is its play count in the full record
// set; otherwise every track weighs 1.
func tasteVector(records, tracks []model.PlayRecord, weighted bool) TasteVector {
	playCounts := make(map[string]int, len(tracks))
	if weighted {
		for _, r := range records {
			playCounts[r.ID]++
		}
	}

	var v TasteVector
	total := 0.0
	for _, r := range tracks {
		w := 1.0
		if weighted {
			if c := playCounts[r.ID]; c > 0 {
				w = float64(c)
			}
		}
		v.AvgValence += r.Valence * w
		v.AvgEnergy += r.Energy * w
		v.AvgDanceability += r.Dance * w
		v.AcousticBias += r.Acoustic * w
		v.InstrumentalBias += r.Instrumental * w
		total += w
	}
	if total == 0 {
		total = 1
	}
	v.AvgValence /= total
	v.AvgEnergy /= total
	v.AvgDanceability /= total
	v.AcousticBias /= total
	v.InstrumentalBias /= total
	return v
}

// libraryRater scores the library as if it were one big playlist.
func libraryRater(records, tracks []model.PlayRecord) RaterScore {
	trackCount := len(tracks)
	denom := trackCount
	if denom == 0 {
		denom = 1
	}

	artists := make(map[string]bool, trackCount)
	for _, r := range tracks {
		artists[r.PrimaryArtist()] = true
	}
	variety := float64(len(artists)) / float64(denom) * 100
	if variety > 100 {
		variety = 100
	}

	rarity := 100 - meanPopularity(tracks)
	cohesion := (1 - normalizedEntropy(countGenreOccurrences(records))) * 100
	creativity := 0.6*variety + 0.4*rarity
	overall := 0.35*rarity + 0.35*cohesion + 0.15*variety + 0.15*creativity

	return RaterScore{
		Variety:     clamp100(variety),
		RarityScore: clamp100(rarity),
		Cohesion:    clamp100(cohesion),
		Creativity:  clamp100(creativity),
		Overall:     clamp100(overall),
	}
}
