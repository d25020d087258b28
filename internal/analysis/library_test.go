package analysis

import (
	"testing"
	"time"

	"github.com/pdewey/soundscope/internal/model"
)

func TestBuildLibraryReportContrast(t *testing.T) {
	cfg := DefaultLibraryConfig()
	cfg.Window = noCutoff()
	cfg.Now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	records := []model.PlayRecord{
		{ID: "1", Artist: "Old A", RawGenres: "classic rock", ReleaseDate: playedAt(1975, 5, 1)},
		{ID: "2", Artist: "Old B", RawGenres: "soul", ReleaseDate: playedAt(1982, 5, 1)},
		{ID: "3", Artist: "New A", RawGenres: "hyperpop", ReleaseDate: playedAt(2023, 5, 1)},
		{ID: "4", Artist: "New B", RawGenres: "hyperpop", ReleaseDate: playedAt(2024, 5, 1)},
	}
	report := BuildLibraryReport(records, cfg)

	if report.EarliestRelease != "1975-05-01" || report.LatestRelease != "2024-05-01" {
		t.Errorf("release span = %s..%s", report.EarliestRelease, report.LatestRelease)
	}
	// Disjoint vintage/modern genre sets: full contrast.
	if report.GenreContrast != 100 {
		t.Errorf("contrast = %d, want 100 for disjoint genre sets", report.GenreContrast)
	}
}

func TestBuildLibraryReportSharedGenres(t *testing.T) {
	cfg := DefaultLibraryConfig()
	cfg.Window = noCutoff()
	cfg.Now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	records := []model.PlayRecord{
		{ID: "1", RawGenres: "rock", ReleaseDate: playedAt(1980, 1, 1)},
		{ID: "2", RawGenres: "rock", ReleaseDate: playedAt(2023, 1, 1)},
	}
	report := BuildLibraryReport(records, cfg)
	// Identical sets: zero contrast.
	if report.GenreContrast != 0 {
		t.Errorf("contrast = %d, want 0 for identical genre sets", report.GenreContrast)
	}
}

func TestListenDecades(t *testing.T) {
	cfg := DefaultLibraryConfig()
	cfg.Window = noCutoff()

	records := []model.PlayRecord{
		{ID: "1", PlayedAt: playedAt(2009, 3, 1)},
		{ID: "2", PlayedAt: playedAt(2014, 3, 1)},
		{ID: "3", PlayedAt: playedAt(2016, 3, 1)},
	}
	report := BuildLibraryReport(records, cfg)
	if len(report.ListenDecades) != 2 {
		t.Fatalf("decades = %v", report.ListenDecades)
	}
	if report.ListenDecades[0].Decade != "2000s" || report.ListenDecades[0].Count != 1 {
		t.Errorf("first decade = %+v", report.ListenDecades[0])
	}
	if report.ListenDecades[1].Decade != "2010s" || report.ListenDecades[1].Count != 2 {
		t.Errorf("second decade = %+v", report.ListenDecades[1])
	}
}

func TestGenreTopArtists(t *testing.T) {
	cfg := DefaultLibraryConfig()
	cfg.Window = noCutoff()

	records := []model.PlayRecord{
		{ID: "1", Artist: "A", RawGenres: "jazz"},
		{ID: "2", Artist: "A", RawGenres: "jazz"},
		{ID: "3", Artist: "B", RawGenres: "jazz"},
		{ID: "4", Artist: "C", RawGenres: "folk"},
	}
	report := BuildLibraryReport(records, cfg)
	if len(report.GenreArtists) != 2 {
		t.Fatalf("genre artists = %v", report.GenreArtists)
	}
	if report.GenreArtists[0].Genre != "jazz" {
		t.Errorf("most mentioned genre = %q, want jazz", report.GenreArtists[0].Genre)
	}
	if report.GenreArtists[0].Artists[0] != "A" {
		t.Errorf("top jazz artist = %q, want A", report.GenreArtists[0].Artists[0])
	}
}
