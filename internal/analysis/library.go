package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/pdewey/soundscope/internal/genre"
	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/window"
)

// LibraryConfig controls the time-depth report.
type LibraryConfig struct {
	Window        window.Config
	TopGenreLimit int
	// VintageYears is the release age, in years, past which a track counts
	// as vintage.
	VintageYears int
	// Now anchors the vintage split; zero means time.Now.
	Now time.Time
}

func DefaultLibraryConfig() LibraryConfig {
	return LibraryConfig{
		Window:        window.DefaultConfig(),
		TopGenreLimit: 10,
		VintageYears:  10,
	}
}

const (
	genreArtistGenres   = 8
	genreArtistPerGenre = 5
)

// BuildLibraryReport computes release time-depth, the vintage/modern genre
// contrast, a listen-year decade histogram, and per-genre top artists.
func BuildLibraryReport(records []model.PlayRecord, cfg LibraryConfig) LibraryReport {
	if cfg.TopGenreLimit == 0 {
		cfg.TopGenreLimit = 10
	}
	if cfg.VintageYears == 0 {
		cfg.VintageYears = 10
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}

	windowed := window.Filter(records, cfg.Window)
	tracks := window.UniqueTracks(windowed)

	report := LibraryReport{
		TopGenres:     topCounts(countGenresPerTrack(tracks), cfg.TopGenreLimit),
		ListenDecades: listenDecades(windowed),
		GenreArtists:  genreTopArtists(tracks),
	}

	vintageCutoff := now.AddDate(-cfg.VintageYears, 0, 0)
	var vintage, modern []model.PlayRecord
	for _, r := range tracks {
		if r.ReleaseDate.IsZero() {
			continue
		}
		if report.EarliestRelease == "" || r.ReleaseDate.Format("2006-01-02") < report.EarliestRelease {
			report.EarliestRelease = r.ReleaseDate.Format("2006-01-02")
		}
		if r.ReleaseDate.Format("2006-01-02") > report.LatestRelease {
			report.LatestRelease = r.ReleaseDate.Format("2006-01-02")
		}
		if r.ReleaseDate.Before(vintageCutoff) || r.ReleaseDate.Equal(vintageCutoff) {
			vintage = append(vintage, r)
		} else {
			modern = append(modern, r)
		}
	}

	report.VintageGenres = topCounts(countGenresPerTrack(vintage), cfg.TopGenreLimit)
	report.ModernGenres = topCounts(countGenresPerTrack(modern), cfg.TopGenreLimit)
	report.GenreContrast = clamp100((1 - jaccard(report.VintageGenres, report.ModernGenres)) * 100)
	return report
}

// jaccard measures overlap between two top-genre sets.
func jaccard(a, b []GenreCount) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	set := make(map[string]bool, len(a))
	for _, g := range a {
		set[g.Genre] = true
	}
	inter := 0
	union := len(set)
	for _, g := range b {
		if set[g.Genre] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

func listenDecades(records []model.PlayRecord) []DecadeCount {
	counts := make(map[int]int)
	for _, r := range window.UniquePlays(records) {
		d, _ := window.EffectiveDate(r)
		counts[d.Year()/10*10]++
	}
	out := make([]DecadeCount, 0, len(counts))
	for decade, c := range counts {
		out = append(out, DecadeCount{Decade: fmt.Sprintf("%ds", decade), Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Decade < out[j].Decade })
	return out
}

// genreTopArtists breaks the top genres down into their most-mentioned
// artists.
func genreTopArtists(tracks []model.PlayRecord) []GenreArtists {
	mentions := make(map[string]map[string]int)
	for _, r := range tracks {
		artist := r.PrimaryArtist()
		if artist == "" {
			continue
		}
		for _, g := range genre.Normalize(r.RawGenres) {
			if mentions[g] == nil {
				mentions[g] = make(map[string]int)
			}
			mentions[g][artist]++
		}
	}

	totals := make(map[string]int, len(mentions))
	for g, m := range mentions {
		for _, c := range m {
			totals[g] += c
		}
	}
	top := topCounts(totals, genreArtistGenres)

	out := make([]GenreArtists, 0, len(top))
	for _, gc := range top {
		out = append(out, GenreArtists{
			Genre:   gc.Genre,
			Artists: rankedKeys(mentions[gc.Genre], genreArtistPerGenre),
		})
	}
	return out
}
