package analysis

import "github.com/pdewey/soundscope/internal/window"

// Stats is the whole-library summary report.
type Stats struct {
	TopUniqueGenres []GenreCount        `yaml:"top_unique_genres" json:"topUniqueGenres"`
	DiscoveryTrend  []window.MonthCount `yaml:"discovery_trend" json:"discoveryTrend"`
	RareTracks      []RareTrack         `yaml:"rare_tracks" json:"rareTracks"`
	Taste           TasteVector         `yaml:"taste" json:"taste"`
	PlaylistRater   RaterScore          `yaml:"playlist_rater" json:"playlistRater"`
	ActivityTrend   []window.MonthCount `yaml:"activity_trend" json:"activityTrend"`
	Meta            Meta                `yaml:"meta" json:"meta"`
}

type GenreCount struct {
	Genre string `yaml:"genre" json:"genre"`
	Count int    `yaml:"count" json:"count"`
}

type RareTrack struct {
	Name       string `yaml:"name" json:"name"`
	Artist     string `yaml:"artist" json:"artist"`
	Popularity int    `yaml:"popularity" json:"pop"`
}

// TasteVector holds per-feature means over unique tracks.
type TasteVector struct {
	AvgValence       float64 `yaml:"avg_valence" json:"avgValence"`
	AvgEnergy        float64 `yaml:"avg_energy" json:"avgEnergy"`
	AvgDanceability  float64 `yaml:"avg_danceability" json:"avgDanceability"`
	AcousticBias     float64 `yaml:"acoustic_bias" json:"acousticBias"`
	InstrumentalBias float64 `yaml:"instrumental_bias" json:"instrumentalBias"`
}

// RaterScore is the library-wide playlist-rater summary.
type RaterScore struct {
	Variety     int `yaml:"variety" json:"variety"`
	RarityScore int `yaml:"rarity_score" json:"rarityScore"`
	Cohesion    int `yaml:"cohesion" json:"cohesion"`
	Creativity  int `yaml:"creativity" json:"creativity"`
	Overall     int `yaml:"overall" json:"overall"`
}

type Meta struct {
	Hash      string `yaml:"hash" json:"hash"`
	Rows      int    `yaml:"rows" json:"rows"`
	Window    Window `yaml:"window" json:"window"`
	Generated string `yaml:"generated" json:"generated"`
}

type Window struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// LibraryReport contrasts the vintage and modern halves of the library.
type LibraryReport struct {
	EarliestRelease string         `yaml:"earliest_release" json:"earliestRelease"`
	LatestRelease   string         `yaml:"latest_release" json:"latestRelease"`
	ListenDecades   []DecadeCount  `yaml:"listen_decades" json:"listenDecades"`
	TopGenres       []GenreCount   `yaml:"top_genres" json:"topGenres"`
	VintageGenres   []GenreCount   `yaml:"vintage_genres" json:"vintageGenres"`
	ModernGenres    []GenreCount   `yaml:"modern_genres" json:"modernGenres"`
	GenreContrast   int            `yaml:"genre_contrast" json:"genreContrast"`
	GenreArtists    []GenreArtists `yaml:"genre_artists" json:"genreArtists"`
}

type DecadeCount struct {
	Decade string `yaml:"decade" json:"decade"`
	Count  int    `yaml:"count" json:"count"`
}

type GenreArtists struct {
	Genre   string   `yaml:"genre" json:"genre"`
	Artists []string `yaml:"artists" json:"artists"`
}

// PlaylistRating is the per-playlist debug rating.
type PlaylistRating struct {
	Name       string `yaml:"name" json:"name"`
	Tracks     int    `yaml:"tracks" json:"tracks"`
	Variety    int    `yaml:"variety" json:"variety"`
	Rarity     int    `yaml:"rarity" json:"rarity"`
	Cohesion   int    `yaml:"cohesion" json:"cohesion"`
	Creativity int    `yaml:"creativity" json:"creativity"`
	Overall    int    `yaml:"overall" json:"overall"`
}
