package taste

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/origin"
	"github.com/pdewey/soundscope/internal/window"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Window = window.Config{DropPreCutoff: false}
	cfg.Now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return cfg
}

func newBuilder() *Builder {
	return NewBuilder(nil, rand.New(rand.NewSource(42)))
}

func uniformRecords(n int, at time.Time) []model.PlayRecord {
	var out []model.PlayRecord
	for i := 0; i < n; i++ {
		out = append(out, model.PlayRecord{
			ID:         fmt.Sprintf("t%d", i),
			Track:      fmt.Sprintf("track %d", i),
			Artist:     fmt.Sprintf("artist %d", i%40),
			RawGenres:  []string{"ambient", "jazz", "folk", "techno"}[i%4],
			Popularity: 50,
			PlayedAt:   at,
			Source:     fmt.Sprintf("list-%d", i%5),
		})
	}
	return out
}

func TestRowFloorBoundary(t *testing.T) {
	cfg := testConfig()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	exact := newBuilder().Build(uniformRecords(cfg.MinRows, at), cfg)
	if exact.Provisional {
		t.Error("exactly MinRows records must not be provisional")
	}

	under := newBuilder().Build(uniformRecords(cfg.MinRows-1, at), cfg)
	if !under.Provisional {
		t.Fatal("one fewer than MinRows must be provisional")
	}
	if under.RudeMessage == "" {
		t.Error("provisional profile needs a non-empty rude message")
	}
	if under.Score != 0 || under.Metrics != (Metrics{}) {
		t.Error("provisional profile must carry zeroed metrics")
	}
}

func TestRudeMessageDeterministicWithSeed(t *testing.T) {
	cfg := testConfig()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := newBuilder().Build(uniformRecords(10, at), cfg)
	b := newBuilder().Build(uniformRecords(10, at), cfg)
	if a.RudeMessage != b.RudeMessage {
		t.Errorf("same seed should pick the same remark: %q vs %q", a.RudeMessage, b.RudeMessage)
	}
}

// 500 records with identical timestamps and popularity 50: rarity is 50 and
// exploration zero, since there is no time spread.
func TestUniformSnapshot(t *testing.T) {
	cfg := testConfig()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	profile := newBuilder().Build(uniformRecords(500, at), cfg)

	if profile.Provisional {
		t.Fatal("500 records should compute a real profile")
	}
	if profile.Metrics.Rarity != 50 {
		t.Errorf("rarity = %d, want 50", profile.Metrics.Rarity)
	}
	if profile.Metrics.Exploration != 0 {
		t.Errorf("exploration = %d, want 0 with no time spread", profile.Metrics.Exploration)
	}
	if profile.Score < 0 || profile.Score > 100 {
		t.Errorf("score %d out of bounds", profile.Score)
	}
	if profile.Label == "" {
		t.Error("expected a persona label")
	}
}

func TestMetricBounds(t *testing.T) {
	cfg := testConfig()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	m := newBuilder().Build(uniformRecords(400, at), cfg).Metrics
	for name, v := range map[string]int{
		"variety": m.Variety, "cohesion": m.Cohesion, "rarity": m.Rarity,
		"exploration": m.Exploration, "internationality": m.Internationality,
		"eraBalance": m.EraBalance, "nicheShare": m.NicheShare,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s = %d out of [0,100]", name, v)
		}
	}
}

func TestOwnerAliasDownweight(t *testing.T) {
	cfg := testConfig()
	cfg.MinRows = 10
	cfg.SourceShareCap = 0 // isolate the alias factor
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	records := uniformRecords(20, at)
	for i := range records {
		records[i].AddedBy = "stranger"
		records[i].Popularity = 80
	}
	// Ten rows of rare music contributed by the owner.
	for i := 0; i < 10; i++ {
		records[i].AddedBy = "me"
		records[i].Popularity = 10
	}

	b := newBuilder()
	withOwners := cfg
	withOwners.OwnerAliases = []string{"ME"}
	downweighted := b.Build(records, withOwners).Metrics.Rarity
	neutral := b.Build(records, cfg).Metrics.Rarity

	// Downweighting the stranger's mainstream rows should raise rarity.
	if downweighted <= neutral {
		t.Errorf("rarity with owner aliases = %d, want > %d", downweighted, neutral)
	}
}

func TestSourceShareCap(t *testing.T) {
	cfg := testConfig()
	cfg.MinRows = 10
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// One source floods 90% of the rows with mainstream pop; the capped
	// share keeps it from drowning the rare remainder.
	var records []model.PlayRecord
	for i := 0; i < 90; i++ {
		records = append(records, model.PlayRecord{
			ID: fmt.Sprintf("flood-%d", i), Artist: "Flood", RawGenres: "pop",
			Popularity: 90, PlayedAt: at, Source: "flood-list",
		})
	}
	for i := 0; i < 10; i++ {
		records = append(records, model.PlayRecord{
			ID: fmt.Sprintf("rare-%d", i), Artist: "Obscure", RawGenres: "ambient",
			Popularity: 5, PlayedAt: at, Source: "crate-digs",
		})
	}

	capped := newBuilder().Build(records, cfg)

	uncapped := cfg
	uncapped.SourceShareCap = 0
	baseline := newBuilder().Build(records, uncapped)

	// Capping the flood's influence must shift rarity toward the rare tail.
	if capped.Metrics.Rarity <= baseline.Metrics.Rarity {
		t.Errorf("capped rarity = %d, want above uncapped %d",
			capped.Metrics.Rarity, baseline.Metrics.Rarity)
	}
	if !containsSubstring(capped.Evidence, "influence cap") {
		t.Errorf("expected cap evidence, got %v", capped.Evidence)
	}
}

func TestExplorationRecentDiscoveries(t *testing.T) {
	cfg := testConfig()
	cfg.MinRows = 10

	var records []model.PlayRecord
	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// Half the artists first appear at the very end of the span.
	for i := 0; i < 20; i++ {
		at := early
		if i >= 10 {
			at = late
		}
		records = append(records, model.PlayRecord{
			ID: fmt.Sprintf("t%d", i), Artist: fmt.Sprintf("artist %d", i),
			RawGenres: "rock", Popularity: 40, PlayedAt: at, Source: "mix",
		})
	}
	m := newBuilder().Build(records, cfg).Metrics
	if m.Exploration != 50 {
		t.Errorf("exploration = %d, want 50", m.Exploration)
	}
}

func TestInternationalityUnknownCountsAsNonPrimary(t *testing.T) {
	cfg := testConfig()
	cfg.MinRows = 10
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	records := uniformRecords(20, at)
	resolver := origin.NewTable(nil) // everyone unknown
	profile := NewBuilder(resolver, rand.New(rand.NewSource(1))).Build(records, cfg)
	if profile.Metrics.Internationality != 100 {
		t.Errorf("internationality = %d, want 100 when all origins unknown", profile.Metrics.Internationality)
	}
}

func TestFavoritesPerGenre(t *testing.T) {
	var records []model.PlayRecord
	// "heavy" mentioned 10 times in jazz, others once or twice.
	for i := 0; i < 10; i++ {
		records = append(records, model.PlayRecord{
			ID: fmt.Sprintf("h%d", i), Artist: "Heavy", RawGenres: "jazz",
		})
	}
	for i := 0; i < 8; i++ {
		records = append(records, model.PlayRecord{
			ID: fmt.Sprintf("l%d", i), Artist: fmt.Sprintf("light %d", i), RawGenres: "jazz",
		})
	}

	favorites := favoritesPerGenre(records)
	jazz := favorites["jazz"]
	if len(jazz) != 1 || jazz[0] != "Heavy" {
		t.Errorf("jazz favorites = %v, want just Heavy", jazz)
	}
}

func TestPersonaLabelOrder(t *testing.T) {
	cases := []struct {
		m    Metrics
		want string
	}{
		{Metrics{Rarity: 60, Exploration: 60}, "Deep-Cut Connoisseur"},
		{Metrics{Cohesion: 70, Variety: 40}, "Cohesive Devotee"},
		// First rule wins even when a later one also matches.
		{Metrics{Rarity: 70, Exploration: 70, Cohesion: 90, Variety: 10}, "Deep-Cut Connoisseur"},
		{Metrics{}, "Balanced Explorer"},
	}
	for _, tc := range cases {
		if got := personaLabel(tc.m); got != tc.want {
			t.Errorf("personaLabel(%+v) = %q, want %q", tc.m, got, tc.want)
		}
	}
}

func containsSubstring(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
