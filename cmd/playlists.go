package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdewey/soundscope/internal/playlist"
)

var (
	playlistTrackCap       int
	playlistMinTracks      int
	playlistReplayPenalty  float64
	playlistPrimaryCountry string
	playlistShowReasons    bool

	gateMinPlaylists int
	gateMinTracks    int
	gateMinScore     int
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "Scores every playlist and evaluates rare eligibility",
	Long: `Computes the rich per-playlist score (flow, consistency, diversity, shares,
penalties, bonuses) and runs the rare-eligibility gate over the results.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runPlaylists())
	},
}

func init() {
	rootCmd.AddCommand(playlistsCmd)

	playlistsCmd.Flags().IntVar(&playlistTrackCap, "track_cap", 80, "Leading tracks considered per playlist")
	playlistsCmd.Flags().IntVar(&playlistMinTracks, "min_tracks", 12, "Playlists below this size are soft-capped")
	playlistsCmd.Flags().Float64Var(&playlistReplayPenalty, "replay_penalty", 8, "Penalty for a repeated track+artist pair")
	playlistsCmd.Flags().StringVar(&playlistPrimaryCountry, "primary_country", "United States", "Home country for the international bonus")
	playlistsCmd.Flags().BoolVar(&playlistShowReasons, "reasons", false, "Print the reason strings under each playlist")

	playlistsCmd.Flags().IntVar(&gateMinPlaylists, "gate_playlists", 3, "Qualifying playlists needed for rare eligibility")
	playlistsCmd.Flags().IntVar(&gateMinTracks, "gate_tracks", 10, "Minimum tracks for a playlist to qualify")
	playlistsCmd.Flags().IntVar(&gateMinScore, "gate_score", 82, "Minimum score for a playlist to qualify")
}

func runPlaylists() error {
	cfg := playlist.DefaultConfig()
	win, err := windowConfig()
	if err != nil {
		return err
	}
	cfg.Window = win
	cfg.TrackCap = playlistTrackCap
	cfg.MinTracks = playlistMinTracks
	cfg.ReplayPenalty = playlistReplayPenalty
	cfg.PrimaryCountry = playlistPrimaryCountry

	gateCfg := playlist.GateConfig{
		MinPlaylists: gateMinPlaylists,
		MinTracks:    gateMinTracks,
		MinScore:     gateMinScore,
	}

	records, origins, err := loadLibrary()
	if err != nil {
		return err
	}

	scores := playlist.ScorePlaylists(records, origins, cfg)
	eligibility := playlist.EvaluateGate(scores, gateCfg)

	if structuredFormat() {
		return writeStructured(os.Stdout, struct {
			Playlists   []playlist.Score     `yaml:"playlists" json:"playlists"`
			Eligibility playlist.Eligibility `yaml:"rare_eligibility" json:"rareEligibility"`
		}{scores, eligibility})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Playlist", "Size", "Score", "Flow", "Consistency", "Genre Div", "Era Div", "Megastar"})
	for _, s := range scores {
		table.Append([]string{
			s.Name,
			strconv.Itoa(s.Size),
			strconv.Itoa(s.Score),
			strconv.Itoa(s.Metrics.Flow),
			strconv.Itoa(s.Metrics.Consistency),
			strconv.Itoa(s.Metrics.GenreDiversity),
			strconv.Itoa(s.Metrics.EraDiversity),
			strconv.Itoa(s.Metrics.MegastarShare),
		})
	}
	table.Render()

	if playlistShowReasons {
		for _, s := range scores {
			if len(s.Reasons) == 0 {
				continue
			}
			fmt.Printf("\n%s:\n  %s\n", s.Name, strings.Join(s.Reasons, "\n  "))
		}
	}

	if eligibility.Eligible {
		fmt.Println("\nRare feature: UNLOCKED")
	} else {
		fmt.Printf("\nRare feature: locked (need %d playlists with %d+ tracks scoring %d+)\n",
			gateCfg.MinPlaylists, gateCfg.MinTracks, gateCfg.MinScore)
	}
	if len(eligibility.SuggestedTop3) > 0 {
		fmt.Printf("Best candidates: %s\n", strings.Join(eligibility.SuggestedTop3, ", "))
	}
	return nil
}
