// Package playlist scores named playlists on flow, consistency, diversity
// and share metrics, and gates the rare feature on the results.
package playlist

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdewey/soundscope/internal/genre"
	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/origin"
	"github.com/pdewey/soundscope/internal/window"
)

// Final score weight schedule. Deliberately distinct from the library rater
// and the ratings engine: each produces externally observed numbers.
const (
	weightFlow           = 0.30
	weightConsistency    = 0.20
	weightGenreDiversity = 0.18
	weightEraDiversity   = 0.12
	weightNotMainstream  = 0.10
	weightNiche          = 0.10
)

// ArtistCluster is a named set of large artists whose dominance dampens a
// playlist's score.
type ArtistCluster struct {
	Name    string
	Penalty float64
	Artists []string
}

// Config holds every scoring threshold. Values are read-only once the
// scorer runs; callers wanting different heuristics pass a different Config.
type Config struct {
	Window window.Config
	// TrackCap bounds how many leading tracks are considered, so oversized
	// playlists cannot bias the shares.
	TrackCap  int
	MinTracks int
	SoftCap   int
	// FlowScale is the consecutive-track feature distance mapped to flow 0.
	FlowScale float64
	// GenreDiversityRef is the distinct-genre count mapped to diversity 100.
	GenreDiversityRef int
	// EraBuckets are the starting years of the configured era bands; years
	// before the first bucket fall into it.
	EraBuckets []int
	EraScale   float64

	MainstreamPopularity int
	NichePopularity      int

	MegastarCeiling float64
	MegastarPenalty float64
	FeaturedWeight  float64

	ReplayPenalty float64

	PrimaryCountry        string
	InternationalRate     float64
	InternationalBonusCap float64
	UnknownOriginBonus    float64

	DampenerShare float64
	Clusters      []ArtistCluster
}

func DefaultConfig() Config {
	return Config{
		Window:               window.DefaultConfig(),
		TrackCap:             80,
		MinTracks:            12,
		SoftCap:              65,
		FlowScale:            0.8,
		GenreDiversityRef:    16,
		EraBuckets:           []int{0, 1970, 1980, 1990, 2000, 2010, 2020},
		EraScale:             25,
		MainstreamPopularity: 70,
		NichePopularity:      30,
		MegastarCeiling:      25,
		MegastarPenalty:      12,
		FeaturedWeight:       0.25,
		ReplayPenalty:        8,
		PrimaryCountry:       "United States",
		InternationalRate:    0.15,
		InternationalBonusCap: 6,
		UnknownOriginBonus:   1,
		DampenerShare:        18,
		Clusters: []ArtistCluster{
			{Name: "mainstream pop", Penalty: 4, Artists: []string{
				"Taylor Swift", "Ariana Grande", "Ed Sheeran", "Justin Bieber",
				"Billie Eilish", "Dua Lipa", "Olivia Rodrigo", "Harry Styles",
			}},
			{Name: "top-tier EDM", Penalty: 3, Artists: []string{
				"David Guetta", "Calvin Harris", "Marshmello", "Martin Garrix",
				"The Chainsmokers", "Tiësto", "Zedd", "Kygo",
			}},
			{Name: "modern mainstream country", Penalty: 3, Artists: []string{
				"Morgan Wallen", "Luke Combs", "Luke Bryan", "Florida Georgia Line",
				"Zach Bryan", "Jason Aldean", "Kane Brown",
			}},
		},
	}
}

// Metrics are the per-playlist components behind a score. Percentages and
// scores alike are integers.
type Metrics struct {
	Flow               int `yaml:"flow" json:"flow"`
	Consistency        int `yaml:"consistency" json:"consistency"`
	GenreDiversity     int `yaml:"genre_diversity" json:"genreDiversity"`
	EraDiversity       int `yaml:"era_diversity" json:"eraDiversity"`
	MainstreamShare    int `yaml:"mainstream_share" json:"mainstreamShare"`
	NicheShare         int `yaml:"niche_share" json:"nicheShare"`
	MegastarShare      int `yaml:"megastar_share" json:"megastarShare"`
	ReplayPenalty      int `yaml:"replay_penalty" json:"replayPenalty"`
	InternationalBonus int `yaml:"international_bonus" json:"internationalBonus"`
}

// Score is one playlist's result, with human-readable reasons for every
// adjustment that fired.
type Score struct {
	Name    string   `yaml:"name" json:"name"`
	Size    int      `yaml:"size" json:"size"`
	Score   int      `yaml:"score" json:"score"`
	Reasons []string `yaml:"reasons" json:"reasons"`
	Metrics Metrics  `yaml:"metrics" json:"metrics"`
}

// ScorePlaylists scores every named playlist in the record set, descending
// by score with name tiebreak. resolver may be nil, in which case every
// artist resolves to an unknown origin.
func ScorePlaylists(records []model.PlayRecord, resolver origin.Resolver, cfg Config) []Score {
	if resolver == nil {
		resolver = (*origin.Table)(nil)
	}
	groups := make(map[string][]model.PlayRecord)
	var names []string
	for _, r := range window.Filter(records, cfg.Window) {
		if r.Source == "" {
			continue
		}
		if _, ok := groups[r.Source]; !ok {
			names = append(names, r.Source)
		}
		groups[r.Source] = append(groups[r.Source], r)
	}

	out := make([]Score, 0, len(names))
	for _, name := range names {
		out = append(out, scoreOne(name, groups[name], resolver, cfg))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func scoreOne(name string, records []model.PlayRecord, resolver origin.Resolver, cfg Config) Score {
	tracks := window.UniqueTracks(records)
	size := len(tracks)
	if cfg.TrackCap > 0 && len(tracks) > cfg.TrackCap {
		tracks = tracks[:cfg.TrackCap]
	}

	var reasons []string
	m := Metrics{
		Flow:           flowScore(tracks, cfg),
		Consistency:    consistencyShare(tracks),
		GenreDiversity: genreDiversity(tracks, cfg),
		EraDiversity:   eraDiversity(tracks, cfg),
	}
	m.MainstreamShare, m.NicheShare = popularityShares(tracks, cfg)
	m.MegastarShare = megastarShare(tracks, cfg)

	score := weightFlow*float64(m.Flow) +
		weightConsistency*math.Min(float64(m.Consistency), 100) +
		weightGenreDiversity*float64(m.GenreDiversity) +
		weightEraDiversity*float64(m.EraDiversity) +
		weightNotMainstream*float64(100-m.MainstreamShare) +
		weightNiche*float64(m.NicheShare)

	if float64(m.MegastarShare) >= cfg.MegastarCeiling {
		score -= cfg.MegastarPenalty
		reasons = append(reasons, fmt.Sprintf(
			"megastar share %d%% at or above %.0f%%: -%.0f",
			m.MegastarShare, cfg.MegastarCeiling, cfg.MegastarPenalty))
	}

	if hasReplay(tracks) {
		score -= cfg.ReplayPenalty
		m.ReplayPenalty = int(math.Round(cfg.ReplayPenalty))
		reasons = append(reasons, fmt.Sprintf(
			"repeated track+artist pair: -%.0f", cfg.ReplayPenalty))
	}

	for _, cl := range cfg.Clusters {
		share := clusterShare(tracks, cl)
		if share > cfg.DampenerShare {
			score -= cl.Penalty
			reasons = append(reasons, fmt.Sprintf(
				"%s cluster at %.0f%% share: -%.0f", cl.Name, share, cl.Penalty))
		}
	}

	bonus, bonusReasons := internationalBonus(tracks, resolver, cfg)
	score += bonus
	m.InternationalBonus = int(math.Round(bonus))
	reasons = append(reasons, bonusReasons...)

	if size < cfg.MinTracks && score > float64(cfg.SoftCap) {
		score = float64(cfg.SoftCap)
		reasons = append(reasons, fmt.Sprintf(
			"fewer than %d tracks: score capped at %d", cfg.MinTracks, cfg.SoftCap))
	}

	return Score{
		Name:    name,
		Size:    size,
		Score:   clampInt(score),
		Reasons: reasons,
		Metrics: m,
	}
}

// flowScore inverts the average danceability/energy/valence distance
// between consecutive tracks: tighter transitions score higher.
func flowScore(tracks []model.PlayRecord, cfg Config) int {
	if len(tracks) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(tracks); i++ {
		a, b := tracks[i-1], tracks[i]
		dd := a.Dance - b.Dance
		de := a.Energy - b.Energy
		dv := a.Valence - b.Valence
		total += math.Sqrt(dd*dd + de*de + dv*dv)
	}
	avg := total / float64(len(tracks)-1)
	scale := cfg.FlowScale
	if scale <= 0 {
		scale = 0.8
	}
	return clampInt((1 - avg/scale) * 100)
}

// consistencyShare is the percentage of tracks whose primary genre matches
// the playlist's single most common primary genre.
func consistencyShare(tracks []model.PlayRecord) int {
	counts := make(map[string]int)
	total := 0
	for _, r := range tracks {
		if g := genre.Primary(r.RawGenres); g != "" {
			counts[g]++
			total++
		}
	}
	if total == 0 {
		return 0
	}
	top := 0
	for _, c := range counts {
		if c > top {
			top = c
		}
	}
	return clampInt(float64(top) / float64(total) * 100)
}

func genreDiversity(tracks []model.PlayRecord, cfg Config) int {
	distinct := make(map[string]bool)
	for _, r := range tracks {
		for _, g := range genre.Normalize(r.RawGenres) {
			distinct[g] = true
		}
	}
	ref := cfg.GenreDiversityRef
	if ref <= 0 {
		ref = 16
	}
	v := math.Log2(1+float64(len(distinct))) / math.Log2(1+float64(ref)) * 100
	return clampInt(v)
}

func eraDiversity(tracks []model.PlayRecord, cfg Config) int {
	buckets := cfg.EraBuckets
	if len(buckets) == 0 {
		return 0
	}
	touched := make(map[int]bool)
	for _, r := range tracks {
		if r.ReleaseDate.IsZero() {
			continue
		}
		year := r.ReleaseDate.Year()
		bucket := buckets[0]
		for _, b := range buckets {
			if year >= b {
				bucket = b
			}
		}
		touched[bucket] = true
	}
	scale := cfg.EraScale
	if scale <= 0 {
		scale = 25
	}
	return clampInt(float64(len(touched)) * scale)
}

func popularityShares(tracks []model.PlayRecord, cfg Config) (mainstream, niche int) {
	if len(tracks) == 0 {
		return 0, 0
	}
	m, n := 0, 0
	for _, r := range tracks {
		switch {
		case r.Popularity >= cfg.MainstreamPopularity:
			m++
		case r.Popularity > 0 && r.Popularity < cfg.NichePopularity:
			n++
		}
	}
	denom := float64(len(tracks))
	return clampInt(float64(m) / denom * 100), clampInt(float64(n) / denom * 100)
}

// megastarShare finds the largest weighted artist contribution. Featured
// artists count at a fraction of a primary credit.
func megastarShare(tracks []model.PlayRecord, cfg Config) int {
	weights := make(map[string]float64)
	total := 0.0
	fw := cfg.FeaturedWeight
	if fw == 0 {
		fw = 0.25
	}
	for _, r := range tracks {
		if p := r.PrimaryArtist(); p != "" {
			weights[p]++
			total++
		}
		for _, f := range r.FeaturedArtists() {
			weights[f] += fw
			total += fw
		}
	}
	if total == 0 {
		return 0
	}
	max := 0.0
	for _, w := range weights {
		if w > max {
			max = w
		}
	}
	return clampInt(max / total * 100)
}

// hasReplay reports whether any exact track+artist pair repeats within the
// capped window.
func hasReplay(tracks []model.PlayRecord) bool {
	type key struct{ track, artist string }
	seen := make(map[key]bool, len(tracks))
	for _, r := range tracks {
		k := key{r.Track, r.Artist}
		if seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}

func clusterShare(tracks []model.PlayRecord, cl ArtistCluster) float64 {
	if len(tracks) == 0 {
		return 0
	}
	members := make(map[string]bool, len(cl.Artists))
	for _, a := range cl.Artists {
		members[a] = true
	}
	hits := 0
	for _, r := range tracks {
		if members[r.PrimaryArtist()] {
			hits++
		}
	}
	return float64(hits) / float64(len(tracks)) * 100
}

func internationalBonus(tracks []model.PlayRecord, resolver origin.Resolver, cfg Config) (float64, []string) {
	if len(tracks) == 0 {
		return 0, nil
	}
	intl, unknown := 0, 0
	for _, r := range tracks {
		switch info := resolver.Lookup(r.PrimaryArtist()); info.Country {
		case origin.Unknown:
			unknown++
		case cfg.PrimaryCountry:
		default:
			intl++
		}
	}

	var reasons []string
	bonus := 0.0
	if intl > 0 {
		share := float64(intl) / float64(len(tracks)) * 100
		b := math.Min(share*cfg.InternationalRate, cfg.InternationalBonusCap)
		bonus += b
		reasons = append(reasons, fmt.Sprintf(
			"international tracks at %.0f%%: +%.1f", share, b))
	}
	if unknown > 0 && cfg.UnknownOriginBonus > 0 {
		bonus += cfg.UnknownOriginBonus
		reasons = append(reasons, fmt.Sprintf(
			"%d tracks of unknown origin: +%.0f", unknown, cfg.UnknownOriginBonus))
	}
	return bonus, reasons
}

func clampInt(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
