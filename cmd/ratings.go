package cmd

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdewey/soundscope/internal/analysis"
)

var (
	ratingsMinTracks int
	ratingsDeepCut   int
)

var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Prints the per-playlist debug ratings",
	Long: `Rates every imported playlist on cohesion, variety, rarity and creativity.
This is the diagnostic view; the "playlists" command computes the richer score.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runRatings())
	},
}

func init() {
	rootCmd.AddCommand(ratingsCmd)

	ratingsCmd.Flags().IntVar(&ratingsMinTracks, "min_tracks", 5, "Smallest playlist that gets rated")
	ratingsCmd.Flags().IntVar(&ratingsDeepCut, "deep_cut_popularity", 20, "Popularity at or below which a track is a deep cut")
}

func runRatings() error {
	cfg := analysis.DefaultRatingsConfig()
	win, err := windowConfig()
	if err != nil {
		return err
	}
	cfg.Window = win
	cfg.MinTracks = ratingsMinTracks
	cfg.DeepCutPopularity = ratingsDeepCut

	records, _, err := loadLibrary()
	if err != nil {
		return err
	}

	ratings := analysis.RatePlaylists(records, cfg)
	if structuredFormat() {
		return writeStructured(os.Stdout, ratings)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Playlist", "Tracks", "Cohesion", "Variety", "Rarity", "Creativity", "Overall"})
	for _, r := range ratings {
		table.Append([]string{
			r.Name,
			strconv.Itoa(r.Tracks),
			strconv.Itoa(r.Cohesion),
			strconv.Itoa(r.Variety),
			strconv.Itoa(r.Rarity),
			strconv.Itoa(r.Creativity),
			strconv.Itoa(r.Overall),
		})
	}
	table.Render()
	return nil
}
