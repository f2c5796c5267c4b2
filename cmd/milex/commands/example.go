package commands

import (
	"milex-scraper/internal/scraper"
	"milex-scraper/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

const (
	exampleCountry = "LTU"
	exampleYear    = 2024
)

func init() {
	rootCmd.AddCommand(exampleCmd)
}

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Scrapes Lithuania 2024 and prints the stored record.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, st := openStore()
		defer st.Close()

		runScrape(cmd.Context(), newScraper(cfg, st), scraper.Options{
			Countries:   []string{exampleCountry},
			Years:       []int{exampleYear},
			Concurrency: 1,
		})

		record, ok, err := st.Get(cmd.Context(), exampleCountry, exampleYear)
		if err != nil {
			serviceutil.Fatal("failed to read record", err)
		}
		if !ok {
			// failed pages are only in the status log
			printStatus(cmd.Context(), st, exampleCountry, exampleYear)
			return
		}
		printRecord(st.Taxonomy(), record)
	},
}
