// Package taste builds a weighted personal taste profile with recency and
// source-influence controls.
package taste

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/pdewey/soundscope/internal/genre"
	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/origin"
	"github.com/pdewey/soundscope/internal/window"
)

// Overall score weight schedule.
const (
	weightCohesion         = 0.30
	weightRarity           = 0.25
	weightVariety          = 0.15
	weightExploration      = 0.15
	weightInternationality = 0.10
	weightEraBalance       = 0.05
)

// Config holds the taste-profile parameters.
type Config struct {
	Window window.Config
	// MinRows is a hard floor: below it the profile is provisional and no
	// score is computed.
	MinRows int
	// RecencyBoostCap caps the per-record recency boost; the boost halves
	// every RecencyHalfLife.
	RecencyBoostCap float64
	RecencyHalfLife time.Duration
	// OwnerAliases, when non-empty, downweights records contributed by
	// anyone else by NotOwnerFactor.
	OwnerAliases   []string
	NotOwnerFactor float64
	// SourceShareCap bounds any single source's share of total weight;
	// records beyond the cap lose influence entirely.
	SourceShareCap   float64
	NichePopularity  int
	PrimaryCountry   string
	// Now anchors recency and exploration; zero means time.Now.
	Now time.Time
}

func DefaultConfig() Config {
	return Config{
		Window:          window.DefaultConfig(),
		MinRows:         300,
		RecencyBoostCap: 0.10,
		RecencyHalfLife: 18 * 30 * 24 * time.Hour, // ~1.5 years
		NotOwnerFactor:  0.5,
		SourceShareCap:  0.35,
		NichePopularity: 30,
		PrimaryCountry:  "United States",
	}
}

// Metrics are the profile's seven named scores.
type Metrics struct {
	Variety          int `yaml:"variety" json:"variety"`
	Cohesion         int `yaml:"cohesion" json:"cohesion"`
	Rarity           int `yaml:"rarity" json:"rarity"`
	Exploration      int `yaml:"exploration" json:"exploration"`
	Internationality int `yaml:"internationality" json:"internationality"`
	EraBalance       int `yaml:"era_balance" json:"eraBalance"`
	NicheShare       int `yaml:"niche_share" json:"nicheShare"`
}

type GenreCount struct {
	Genre string `yaml:"genre" json:"genre"`
	Count int    `yaml:"count" json:"count"`
}

type Breakdowns struct {
	ByDecade          map[string]int      `yaml:"by_decade" json:"byDecade"`
	By5Y              map[string]int      `yaml:"by_5y" json:"by5y"`
	Countries         map[string]int      `yaml:"countries" json:"countries"`
	Continents        map[string]int      `yaml:"continents" json:"continents"`
	TopGenres         []GenreCount        `yaml:"top_genres" json:"topGenres"`
	FavoritesPerGenre map[string][]string `yaml:"favorites_per_genre" json:"favoritesPerGenre"`
}

type Profile struct {
	Label       string     `yaml:"label" json:"label"`
	Score       int        `yaml:"score" json:"score"`
	Metrics     Metrics    `yaml:"metrics" json:"metrics"`
	Breakdowns  Breakdowns `yaml:"breakdowns" json:"breakdowns"`
	Evidence    []string   `yaml:"evidence" json:"evidence"`
	Provisional bool       `yaml:"provisional,omitempty" json:"provisional,omitempty"`
	RudeMessage string     `yaml:"rude_message,omitempty" json:"rudeMessage,omitempty"`
}

var rudeMessages = []string{
	"That is not a listening history, that is a rounding error. Come back with more rows.",
	"We score taste, not tasting notes. Import the rest of your library first.",
	"A profile built on this little data would be fiction. Feed the importer.",
	"Not enough plays to tell taste from shuffle. Try again with a real export.",
}

// Builder computes taste profiles. The resolver is injected so tests can
// supply a fixed table; rng picks among canned remarks and is seeded by the
// caller for deterministic output.
type Builder struct {
	resolver origin.Resolver
	rng      *rand.Rand
}

func NewBuilder(resolver origin.Resolver, rng *rand.Rand) *Builder {
	if resolver == nil {
		resolver = (*origin.Table)(nil)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Builder{resolver: resolver, rng: rng}
}

// Build produces the taste profile for a record set.
func (b *Builder) Build(records []model.PlayRecord, cfg Config) Profile {
	// The floor applies to what the caller supplied, before any windowing.
	if len(records) < cfg.MinRows {
		return Profile{
			Label:       "Provisional",
			Provisional: true,
			RudeMessage: rudeMessages[b.rng.Intn(len(rudeMessages))],
		}
	}
	records = window.Filter(records, cfg.Window)

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}

	weights, capped := b.weigh(records, cfg, now)

	m := Metrics{}
	genreWeights := make(map[string]float64)
	var weightTotal, popWeighted, nicheWeighted, intlWeighted float64
	for i, r := range records {
		w := weights[i]
		if w == 0 {
			continue
		}
		weightTotal += w
		for _, g := range genre.Normalize(r.RawGenres) {
			genreWeights[g] += w
		}
		popWeighted += float64(r.Popularity) * w
		if r.Popularity > 0 && r.Popularity < cfg.NichePopularity {
			nicheWeighted += w
		}
		if info := b.resolver.Lookup(r.PrimaryArtist()); info.Country != cfg.PrimaryCountry {
			// Unknown origins count as non-primary.
			intlWeighted += w
		}
	}
	denom := weightTotal
	if denom == 0 {
		denom = 1
	}

	m.Variety = clamp100(float64(len(genreWeights)) * 4)
	m.Cohesion = clamp100((1 - weightedEntropy(genreWeights)) * 100)
	m.Rarity = clamp100(100 - popWeighted/denom)
	m.Exploration = clamp100(exploration(records))
	m.Internationality = clamp100(intlWeighted / denom * 100)
	m.EraBalance = clamp100(eraBalance(records, weights) * 100)
	m.NicheShare = clamp100(nicheWeighted / denom * 100)

	score := weightCohesion*float64(m.Cohesion) +
		weightRarity*float64(m.Rarity) +
		weightVariety*float64(m.Variety) +
		weightExploration*float64(m.Exploration) +
		weightInternationality*float64(m.Internationality) +
		weightEraBalance*float64(m.EraBalance)

	profile := Profile{
		Label:      personaLabel(m),
		Score:      clamp100(score),
		Metrics:    m,
		Breakdowns: b.breakdowns(records),
	}

	profile.Evidence = append(profile.Evidence, fmt.Sprintf(
		"%d rows considered, %d genres in play", len(records), len(genreWeights)))
	for _, src := range capped {
		profile.Evidence = append(profile.Evidence, fmt.Sprintf(
			"source %q hit the %.0f%% influence cap; later rows ignored",
			src, cfg.SourceShareCap*100))
	}
	if m.NicheShare > 0 {
		profile.Evidence = append(profile.Evidence, fmt.Sprintf(
			"%d%% of weighted listening sits under popularity %d",
			m.NicheShare, cfg.NichePopularity))
	}
	return profile
}

// weigh assigns each record its influence weight: 1 plus a capped,
// exponentially decaying recency boost, downweighted for non-owner
// contributors, then zeroed once the record's source has already spent its
// share of total weight. Base weights are fixed before capping so the cap
// does not depend on iteration order.
func (b *Builder) weigh(records []model.PlayRecord, cfg Config, now time.Time) ([]float64, []string) {
	base := make([]float64, len(records))
	total := 0.0
	for i, r := range records {
		w := 1.0
		if d, ok := window.EffectiveDate(r); ok && cfg.RecencyHalfLife > 0 {
			age := now.Sub(d)
			if age < 0 {
				age = 0
			}
			boost := cfg.RecencyBoostCap * math.Exp2(-age.Hours()/cfg.RecencyHalfLife.Hours())
			w += math.Min(boost, cfg.RecencyBoostCap)
		}
		if len(cfg.OwnerAliases) > 0 && !isOwner(r.AddedBy, cfg.OwnerAliases) {
			w *= cfg.NotOwnerFactor
		}
		base[i] = w
		total += w
	}

	if cfg.SourceShareCap <= 0 || cfg.SourceShareCap >= 1 {
		return base, nil
	}
	limit := cfg.SourceShareCap * total
	spent := make(map[string]float64)
	cappedSet := make(map[string]bool)
	out := make([]float64, len(records))
	for i, r := range records {
		if spent[r.Source] >= limit {
			if r.Source != "" {
				cappedSet[r.Source] = true
			}
			continue
		}
		out[i] = base[i]
		spent[r.Source] += base[i]
	}
	capped := make([]string, 0, len(cappedSet))
	for src := range cappedSet {
		capped = append(capped, src)
	}
	sort.Strings(capped)
	return out, capped
}

func isOwner(contributor string, owners []string) bool {
	for _, o := range owners {
		if strings.EqualFold(strings.TrimSpace(contributor), strings.TrimSpace(o)) {
			return true
		}
	}
	return false
}

// exploration measures the share of distinct artists first seen in the most
// recent fifth of the observed time span. No spread means no exploration.
func exploration(records []model.PlayRecord) float64 {
	firstSeen := make(map[string]time.Time)
	for _, r := range records {
		d, ok := window.EffectiveDate(r)
		if !ok {
			continue
		}
		artist := r.PrimaryArtist()
		if artist == "" {
			continue
		}
		if prev, ok := firstSeen[artist]; !ok || d.Before(prev) {
			firstSeen[artist] = d
		}
	}
	if len(firstSeen) == 0 {
		return 0
	}
	start, end, ok := window.Span(records)
	if !ok || !end.After(start) {
		return 0
	}
	span := end.Sub(start)
	threshold := end.Add(-time.Duration(float64(span) * 0.2))
	recent := 0
	for _, d := range firstSeen {
		if d.After(threshold) {
			recent++
		}
	}
	return float64(recent) / float64(len(firstSeen)) * 100
}

// eraBalance is the evenness of weighted listening across 5-year release
// bands, in [0,1].
func eraBalance(records []model.PlayRecord, weights []float64) float64 {
	bands := make(map[int]float64)
	for i, r := range records {
		if weights[i] == 0 || r.ReleaseDate.IsZero() {
			continue
		}
		bands[r.ReleaseDate.Year()/5*5] += weights[i]
	}
	keyed := make(map[string]float64, len(bands))
	for band, w := range bands {
		keyed[fmt.Sprintf("%d", band)] = w
	}
	return weightedEntropy(keyed)
}

func (b *Builder) breakdowns(records []model.PlayRecord) Breakdowns {
	tracks := window.UniqueTracks(records)

	out := Breakdowns{
		ByDecade:   make(map[string]int),
		By5Y:       make(map[string]int),
		Countries:  make(map[string]int),
		Continents: make(map[string]int),
	}
	genreCounts := make(map[string]int)
	for _, r := range tracks {
		if !r.ReleaseDate.IsZero() {
			y := r.ReleaseDate.Year()
			out.ByDecade[fmt.Sprintf("%ds", y/10*10)]++
			out.By5Y[fmt.Sprintf("%d-%d", y/5*5, y/5*5+4)]++
		}
		info := b.resolver.Lookup(r.PrimaryArtist())
		out.Countries[info.Country]++
		out.Continents[info.Continent]++
		for _, g := range genre.Normalize(r.RawGenres) {
			genreCounts[g]++
		}
	}

	out.TopGenres = topGenres(genreCounts, 10)
	out.FavoritesPerGenre = favoritesPerGenre(records)
	return out
}

// favoritesPerGenre selects, per genre, the artists mentioned at least
// max(3, 5% of the genre's mentions) times, keeping the top 20% of
// qualifiers by count.
func favoritesPerGenre(records []model.PlayRecord) map[string][]string {
	mentions := make(map[string]map[string]int)
	totals := make(map[string]int)
	for _, r := range records {
		artist := r.PrimaryArtist()
		if artist == "" {
			continue
		}
		for _, g := range genre.Normalize(r.RawGenres) {
			if mentions[g] == nil {
				mentions[g] = make(map[string]int)
			}
			mentions[g][artist]++
			totals[g]++
		}
	}

	out := make(map[string][]string)
	for g, byArtist := range mentions {
		floor := int(math.Ceil(float64(totals[g]) * 0.05))
		if floor < 3 {
			floor = 3
		}
		var qualifying []GenreCount
		for artist, c := range byArtist {
			if c >= floor {
				qualifying = append(qualifying, GenreCount{Genre: artist, Count: c})
			}
		}
		if len(qualifying) == 0 {
			continue
		}
		sort.Slice(qualifying, func(i, j int) bool {
			if qualifying[i].Count != qualifying[j].Count {
				return qualifying[i].Count > qualifying[j].Count
			}
			return qualifying[i].Genre < qualifying[j].Genre
		})
		keep := int(math.Ceil(float64(len(qualifying)) * 0.2))
		names := make([]string, 0, keep)
		for _, q := range qualifying[:keep] {
			names = append(names, q.Genre)
		}
		out[g] = names
	}
	return out
}

// personaLabel evaluates an ordered rule list and returns the first match.
func personaLabel(m Metrics) string {
	switch {
	case m.Rarity >= 60 && m.Exploration >= 60:
		return "Deep-Cut Connoisseur"
	case m.Cohesion >= 70 && m.Variety <= 40:
		return "Cohesive Devotee"
	case m.Internationality >= 50:
		return "Border-Crossing Listener"
	case m.Exploration >= 65:
		return "Restless Discoverer"
	case m.Variety >= 70 && m.EraBalance >= 60:
		return "Era-Hopping Eclectic"
	case m.Rarity >= 65:
		return "Obscurity Miner"
	default:
		return "Balanced Explorer"
	}
}

func topGenres(counts map[string]int, limit int) []GenreCount {
	out := make([]GenreCount, 0, len(counts))
	for g, c := range counts {
		out = append(out, GenreCount{Genre: g, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Genre < out[j].Genre
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// weightedEntropy is normalized Shannon entropy over a weight table, in
// [0,1]. Accumulation into the table first keeps the result independent of
// input ordering.
func weightedEntropy(weights map[string]float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 || len(weights) < 2 {
		return 0
	}
	h := 0.0
	for _, w := range weights {
		if w <= 0 {
			continue
		}
		p := w / total
		h -= p * math.Log2(p)
	}
	return h / math.Log2(float64(len(weights)))
}

func clamp100(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
