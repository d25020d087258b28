package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdewey/soundscope/internal/analysis"
)

var (
	statsTopGenres     int
	statsUnweighted    bool
	statsRarityMode    string
	statsRarityCount   int
	statsRarityPercent float64
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints the library summary",
	Long: `Summarizes the imported library: top genres, discovery and activity trends,
the rarest tracks, the average taste vector, and the library-wide playlist rating.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runStats())
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVar(&statsTopGenres, "top_genres", 10, "How many top genres to list")
	statsCmd.Flags().BoolVar(&statsUnweighted, "unweighted", false, "Average audio features uniformly instead of by play count")
	statsCmd.Flags().StringVar(&statsRarityMode, "rarity_mode", analysis.RarityTopN, "Rarity selection: top-n or percentile")
	statsCmd.Flags().IntVar(&statsRarityCount, "rarity_count", 25, "Track count for top-n rarity selection")
	statsCmd.Flags().Float64Var(&statsRarityPercent, "rarity_percent", 5, "Percent for percentile rarity selection")
}

func statsConfig() (analysis.StatsConfig, error) {
	cfg := analysis.DefaultStatsConfig()
	win, err := windowConfig()
	if err != nil {
		return cfg, err
	}
	cfg.Window = win
	cfg.TopGenreLimit = statsTopGenres
	cfg.WeightedAverages = !statsUnweighted
	cfg.RarityMode = statsRarityMode
	cfg.RarityCount = statsRarityCount
	cfg.RarityPercent = statsRarityPercent
	return cfg, nil
}

func runStats() error {
	cfg, err := statsConfig()
	if err != nil {
		return err
	}
	records, _, err := loadLibrary()
	if err != nil {
		return err
	}

	stats := analysis.BuildStats(records, cfg)
	if structuredFormat() {
		return writeStructured(os.Stdout, stats)
	}
	printStats(stats)
	return nil
}

func printStats(stats analysis.Stats) {
	fmt.Printf("Library snapshot %s: %d rows, window %s to %s\n\n",
		stats.Meta.Hash, stats.Meta.Rows, stats.Meta.Window.Start, stats.Meta.Window.End)

	fmt.Println("Top genres:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Genre", "Tracks"})
	for _, g := range stats.TopUniqueGenres {
		table.Append([]string{g.Genre, strconv.Itoa(g.Count)})
	}
	table.Render()

	fmt.Println("\nRarest tracks:")
	table = tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Track", "Artist", "Popularity"})
	for _, r := range stats.RareTracks {
		table.Append([]string{r.Name, r.Artist, strconv.Itoa(r.Popularity)})
	}
	table.Render()

	t := stats.Taste
	fmt.Printf("\nTaste vector: valence %.2f, energy %.2f, danceability %.2f, acoustic %.2f, instrumental %.2f\n",
		t.AvgValence, t.AvgEnergy, t.AvgDanceability, t.AcousticBias, t.InstrumentalBias)

	r := stats.PlaylistRater
	fmt.Printf("Library rating: overall %d (variety %d, rarity %d, cohesion %d, creativity %d)\n",
		r.Overall, r.Variety, r.RarityScore, r.Cohesion, r.Creativity)

	if len(stats.DiscoveryTrend) > 0 {
		first := stats.DiscoveryTrend[0]
		last := stats.DiscoveryTrend[len(stats.DiscoveryTrend)-1]
		fmt.Printf("Discoveries: %d months tracked, %s (%d) to %s (%d)\n",
			len(stats.DiscoveryTrend), first.Month, first.Count, last.Month, last.Count)
	}
	if len(stats.ActivityTrend) > 0 {
		fmt.Printf("Activity: %d months of plays recorded\n", len(stats.ActivityTrend))
	}
}
