package analysis

import (
	"testing"
	"time"

	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/window"
)

func noCutoff() window.Config {
	return window.Config{DropPreCutoff: false}
}

func playedAt(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestBuildStatsTopGenres(t *testing.T) {
	records := []model.PlayRecord{
		{ID: "1", RawGenres: "rock|indie rock", PlayedAt: playedAt(2020, 1, 1)},
		{ID: "1", RawGenres: "rock|indie rock", PlayedAt: playedAt(2020, 2, 1)}, // replay, same track
		{ID: "2", RawGenres: "rock", PlayedAt: playedAt(2020, 1, 2)},
		{ID: "3", RawGenres: "jazz", PlayedAt: playedAt(2020, 1, 3)},
	}
	cfg := DefaultStatsConfig()
	cfg.Window = noCutoff()

	stats := BuildStats(records, cfg)
	if len(stats.TopUniqueGenres) == 0 || stats.TopUniqueGenres[0].Genre != "rock" {
		t.Fatalf("top genre = %v, want rock first", stats.TopUniqueGenres)
	}
	// Unique-track counting: the replayed track contributes rock once.
	if stats.TopUniqueGenres[0].Count != 2 {
		t.Errorf("rock count = %d, want 2", stats.TopUniqueGenres[0].Count)
	}
	if stats.Meta.Rows != 4 {
		t.Errorf("meta rows = %d, want 4", stats.Meta.Rows)
	}
	if stats.Meta.Window.Start != "2020-01-01" {
		t.Errorf("window start = %q", stats.Meta.Window.Start)
	}
}

func TestRareTracksTopN(t *testing.T) {
	cfg := DefaultStatsConfig()
	cfg.Window = noCutoff()
	cfg.RarityCount = 2

	records := []model.PlayRecord{
		{ID: "1", Track: "a", Popularity: 50},
		{ID: "2", Track: "b", Popularity: 5},
		{ID: "3", Track: "c", Popularity: 10},
		{ID: "4", Track: "zero", Popularity: 0}, // missing data, skipped
	}
	stats := BuildStats(records, cfg)
	if len(stats.RareTracks) != 2 {
		t.Fatalf("got %d rare tracks, want 2", len(stats.RareTracks))
	}
	if stats.RareTracks[0].Name != "b" || stats.RareTracks[1].Name != "c" {
		t.Errorf("rare tracks = %v, want ascending popularity b,c", stats.RareTracks)
	}
}

func TestRareTracksPercentile(t *testing.T) {
	cfg := DefaultStatsConfig()
	cfg.Window = noCutoff()
	cfg.RarityMode = RarityPercentile
	cfg.RarityPercent = 10

	var records []model.PlayRecord
	for i := 0; i < 40; i++ {
		records = append(records, model.PlayRecord{
			ID:         string(rune('a' + i)),
			Track:      string(rune('a' + i)),
			Popularity: i + 1,
		})
	}
	stats := BuildStats(records, cfg)
	if len(stats.RareTracks) != 4 {
		t.Errorf("got %d rare tracks, want 4 (10%% of 40)", len(stats.RareTracks))
	}
}

// Decreasing a track's popularity must never drop it from a rarity
// selection it was already in.
func TestRaritySelectionMonotonic(t *testing.T) {
	cfg := DefaultStatsConfig()
	cfg.Window = noCutoff()
	cfg.RarityCount = 3

	records := []model.PlayRecord{
		{ID: "1", Track: "a", Popularity: 30},
		{ID: "2", Track: "b", Popularity: 20},
		{ID: "3", Track: "c", Popularity: 40},
		{ID: "4", Track: "d", Popularity: 90},
	}
	before := BuildStats(records, cfg)
	if !containsRare(before.RareTracks, "c") {
		t.Fatal("expected c in the rare selection")
	}

	records[2].Popularity = 10
	after := BuildStats(records, cfg)
	if !containsRare(after.RareTracks, "c") {
		t.Error("lowering popularity removed c from the rare selection")
	}
}

func containsRare(tracks []RareTrack, name string) bool {
	for _, rt := range tracks {
		if rt.Name == name {
			return true
		}
	}
	return false
}

func TestTasteVectorWeighted(t *testing.T) {
	cfg := DefaultStatsConfig()
	cfg.Window = noCutoff()

	records := []model.PlayRecord{
		{ID: "1", Valence: 1.0, PlayedAt: playedAt(2020, 1, 1)},
		{ID: "1", Valence: 1.0, PlayedAt: playedAt(2020, 1, 2)},
		{ID: "1", Valence: 1.0, PlayedAt: playedAt(2020, 1, 3)},
		{ID: "2", Valence: 0.0, PlayedAt: playedAt(2020, 1, 4)},
	}

	weighted := BuildStats(records, cfg)
	if got := weighted.Taste.AvgValence; got != 0.75 {
		t.Errorf("weighted valence = %v, want 0.75", got)
	}

	cfg.WeightedAverages = false
	uniform := BuildStats(records, cfg)
	if got := uniform.Taste.AvgValence; got != 0.5 {
		t.Errorf("uniform valence = %v, want 0.5", got)
	}
}

func TestTasteVectorEmptyInput(t *testing.T) {
	cfg := DefaultStatsConfig()
	stats := BuildStats(nil, cfg)
	if stats.Taste != (TasteVector{}) {
		t.Errorf("empty input should yield a zero taste vector, got %+v", stats.Taste)
	}
	if stats.PlaylistRater.Overall < 0 || stats.PlaylistRater.Overall > 100 {
		t.Errorf("rater overall out of bounds: %d", stats.PlaylistRater.Overall)
	}
}

func TestLibraryRaterBounds(t *testing.T) {
	cfg := DefaultStatsConfig()
	cfg.Window = noCutoff()

	records := []model.PlayRecord{
		{ID: "1", Artist: "A", RawGenres: "ambient", Popularity: 10},
		{ID: "2", Artist: "A", RawGenres: "ambient", Popularity: 12},
		{ID: "3", Artist: "B", RawGenres: "noise", Popularity: 3},
	}
	rater := BuildStats(records, cfg).PlaylistRater
	for name, v := range map[string]int{
		"variety":    rater.Variety,
		"rarity":     rater.RarityScore,
		"cohesion":   rater.Cohesion,
		"creativity": rater.Creativity,
		"overall":    rater.Overall,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s = %d, out of [0,100]", name, v)
		}
	}
	if rater.RarityScore != 92 {
		t.Errorf("rarity = %d, want 92 (100 - mean 8.33 rounded)", rater.RarityScore)
	}
}

func TestSnapshotHashOrderIndependent(t *testing.T) {
	a := []model.PlayRecord{{ID: "x"}, {ID: "y"}, {ID: "z"}}
	b := []model.PlayRecord{{ID: "z"}, {ID: "x"}, {ID: "y"}}
	if snapshotHash(a) != snapshotHash(b) {
		t.Error("hash should not depend on record order")
	}
	if snapshotHash(a) == snapshotHash(a[:2]) {
		t.Error("hash should depend on the record set")
	}
}
