package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdewey/soundscope/internal/analysis"
)

var libraryVintageYears int

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Prints the library time-depth report",
	Long: `Contrasts the vintage and modern halves of the library: release span,
listen decades, per-bucket top genres, a genre contrast score, and the top
artists behind each major genre.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runLibrary())
	},
}

func init() {
	rootCmd.AddCommand(libraryCmd)

	libraryCmd.Flags().IntVar(&libraryVintageYears, "vintage_years", 10, "Release age, in years, past which a track counts as vintage")
}

func runLibrary() error {
	cfg := analysis.DefaultLibraryConfig()
	win, err := windowConfig()
	if err != nil {
		return err
	}
	cfg.Window = win
	cfg.VintageYears = libraryVintageYears

	records, _, err := loadLibrary()
	if err != nil {
		return err
	}

	report := analysis.BuildLibraryReport(records, cfg)
	if structuredFormat() {
		return writeStructured(os.Stdout, report)
	}

	fmt.Printf("Releases span %s to %s, genre contrast %d/100\n\n",
		report.EarliestRelease, report.LatestRelease, report.GenreContrast)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Decade", "Plays"})
	for _, d := range report.ListenDecades {
		table.Append([]string{d.Decade, strconv.Itoa(d.Count)})
	}
	table.Render()

	fmt.Println("\nVintage genres vs modern genres:")
	table = tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Vintage", "Modern"})
	for i := 0; i < len(report.VintageGenres) || i < len(report.ModernGenres); i++ {
		var vintage, modern string
		if i < len(report.VintageGenres) {
			vintage = report.VintageGenres[i].Genre
		}
		if i < len(report.ModernGenres) {
			modern = report.ModernGenres[i].Genre
		}
		table.Append([]string{vintage, modern})
	}
	table.Render()

	fmt.Println("\nTop artists per genre:")
	table = tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Genre", "Artists"})
	for _, ga := range report.GenreArtists {
		table.Append([]string{ga.Genre, strings.Join(ga.Artists, ", ")})
	}
	table.Render()
	return nil
}
