/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/pdewey/soundscope/internal/analysis"
	"github.com/pdewey/soundscope/internal/model"
	"github.com/pdewey/soundscope/internal/origin"
	"github.com/pdewey/soundscope/internal/playlist"
	"github.com/pdewey/soundscope/internal/taste"
	"github.com/pdewey/soundscope/internal/window"
)

// Analysis is one report section: a header row plus data rows, with a
// trailing summary line. BodyOverride replaces the table entirely.
type Analysis struct {
	results      [][]string
	summary      string
	BodyOverride string
}

type Analyser interface {
	GetResults(records []model.PlayRecord, origins *origin.Table, win window.Config) (Analysis, error)

	GetName() string
}

type Configurable interface {
	Configure(params map[string]string) error
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if a.BodyOverride != "" {
		fmt.Fprintln(out, a.BodyOverride)
	} else if len(a.results) > 1 {
		table := tablewriter.NewWriter(out)
		table.Header(a.results[0])
		for _, row := range a.results[1:] {
			if err := table.Append(row); err != nil {
				return fmt.Sprintf("Error rendering table: %v", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

type StatsAnalyser struct {
	Config analysis.StatsConfig
}

func (a *StatsAnalyser) GetName() string { return "Library stats" }

func (a *StatsAnalyser) Configure(params map[string]string) error {
	for k, v := range params {
		switch k {
		case "top_genres":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parsing top_genres: %w", err)
			}
			a.Config.TopGenreLimit = n
		case "rarity_count":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parsing rarity_count: %w", err)
			}
			a.Config.RarityCount = n
		default:
			return fmt.Errorf("unknown param %q", k)
		}
	}
	return nil
}

func (a *StatsAnalyser) GetResults(records []model.PlayRecord, origins *origin.Table, win window.Config) (Analysis, error) {
	cfg := a.Config
	cfg.Window = win
	stats := analysis.BuildStats(records, cfg)

	results := [][]string{{"Genre", "Tracks"}}
	for _, g := range stats.TopUniqueGenres {
		results = append(results, []string{g.Genre, strconv.Itoa(g.Count)})
	}
	summary := fmt.Sprintf("%d rows in window. Library rating %d (rarity %d, cohesion %d).",
		stats.Meta.Rows, stats.PlaylistRater.Overall, stats.PlaylistRater.RarityScore, stats.PlaylistRater.Cohesion)
	return Analysis{results: results, summary: summary}, nil
}

type RareTracksAnalyser struct {
	Config analysis.StatsConfig
}

func (a *RareTracksAnalyser) GetName() string { return "Rare tracks" }

func (a *RareTracksAnalyser) Configure(params map[string]string) error {
	for k, v := range params {
		switch k {
		case "mode":
			a.Config.RarityMode = v
		case "count":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parsing count: %w", err)
			}
			a.Config.RarityCount = n
		default:
			return fmt.Errorf("unknown param %q", k)
		}
	}
	return nil
}

func (a *RareTracksAnalyser) GetResults(records []model.PlayRecord, origins *origin.Table, win window.Config) (Analysis, error) {
	cfg := a.Config
	cfg.Window = win
	stats := analysis.BuildStats(records, cfg)

	results := [][]string{{"Track", "Artist", "Popularity"}}
	for _, t := range stats.RareTracks {
		results = append(results, []string{t.Name, t.Artist, strconv.Itoa(t.Popularity)})
	}
	return Analysis{
		results: results,
		summary: fmt.Sprintf("%d rare tracks surfaced.", len(stats.RareTracks)),
	}, nil
}

type RatingsAnalyser struct {
	Config analysis.RatingsConfig
}

func (a *RatingsAnalyser) GetName() string { return "Playlist ratings" }

func (a *RatingsAnalyser) GetResults(records []model.PlayRecord, origins *origin.Table, win window.Config) (Analysis, error) {
	cfg := a.Config
	cfg.Window = win
	ratings := analysis.RatePlaylists(records, cfg)

	results := [][]string{{"Playlist", "Tracks", "Cohesion", "Rarity", "Overall"}}
	for _, r := range ratings {
		results = append(results, []string{
			r.Name,
			strconv.Itoa(r.Tracks),
			strconv.Itoa(r.Cohesion),
			strconv.Itoa(r.Rarity),
			strconv.Itoa(r.Overall),
		})
	}
	return Analysis{
		results: results,
		summary: fmt.Sprintf("%d playlists rated.", len(ratings)),
	}, nil
}

type PlaylistScoreAnalyser struct {
	Config playlist.Config
	Gate   playlist.GateConfig
}

func (a *PlaylistScoreAnalyser) GetName() string { return "Playlist scores" }

func (a *PlaylistScoreAnalyser) GetResults(records []model.PlayRecord, origins *origin.Table, win window.Config) (Analysis, error) {
	cfg := a.Config
	cfg.Window = win
	scores := playlist.ScorePlaylists(records, origins, cfg)
	eligibility := playlist.EvaluateGate(scores, a.Gate)

	results := [][]string{{"Playlist", "Size", "Score", "Flow", "Consistency"}}
	for _, s := range scores {
		results = append(results, []string{
			s.Name,
			strconv.Itoa(s.Size),
			strconv.Itoa(s.Score),
			strconv.Itoa(s.Metrics.Flow),
			strconv.Itoa(s.Metrics.Consistency),
		})
	}
	summary := "Rare feature locked."
	if eligibility.Eligible {
		summary = "Rare feature unlocked."
	}
	if len(eligibility.SuggestedTop3) > 0 {
		summary += " Best candidates: " + strings.Join(eligibility.SuggestedTop3, ", ") + "."
	}
	return Analysis{results: results, summary: summary}, nil
}

type TasteAnalyser struct {
	Config taste.Config
}

func (a *TasteAnalyser) GetName() string { return "Taste profile" }

func (a *TasteAnalyser) GetResults(records []model.PlayRecord, origins *origin.Table, win window.Config) (Analysis, error) {
	cfg := a.Config
	cfg.Window = win
	profile := taste.NewBuilder(origins, nil).Build(records, cfg)

	if profile.Provisional {
		return Analysis{BodyOverride: profile.RudeMessage, summary: "Profile is provisional."}, nil
	}

	results := [][]string{
		{"Metric", "Score"},
		{"Variety", strconv.Itoa(profile.Metrics.Variety)},
		{"Cohesion", strconv.Itoa(profile.Metrics.Cohesion)},
		{"Rarity", strconv.Itoa(profile.Metrics.Rarity)},
		{"Exploration", strconv.Itoa(profile.Metrics.Exploration)},
		{"Internationality", strconv.Itoa(profile.Metrics.Internationality)},
		{"Era balance", strconv.Itoa(profile.Metrics.EraBalance)},
	}
	return Analysis{
		results: results,
		summary: fmt.Sprintf("%s, overall %d.", profile.Label, profile.Score),
	}, nil
}

func getActionFromName(actionName string) (Analyser, error) {
	// Recreating the map every call is fine. Pointers required for Configure.
	actionMap := map[string]Analyser{
		"stats":           &StatsAnalyser{Config: analysis.DefaultStatsConfig()},
		"rare-tracks":     &RareTracksAnalyser{Config: analysis.DefaultStatsConfig()},
		"ratings":         &RatingsAnalyser{Config: analysis.DefaultRatingsConfig()},
		"playlist-scores": &PlaylistScoreAnalyser{Config: playlist.DefaultConfig(), Gate: playlist.DefaultGateConfig()},
		"taste":           &TasteAnalyser{Config: taste.DefaultConfig()},
	}

	action, ok := actionMap[actionName]
	if !ok {
		return nil, fmt.Errorf("invalid analysis name: %s", actionName)
	}

	return action, nil
}
