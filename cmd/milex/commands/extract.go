package commands

import (
	"encoding/json"
	"milex-scraper/internal/extract"
	"milex-scraper/internal/match"
	"milex-scraper/lib/util/serviceutil"
	"os"

	"github.com/spf13/cobra"
)

var (
	extractCountry *string
	extractYear    *int
	extractURL     *string
)

func init() {
	extractCountry = extractCmd.Flags().String("country", "", "The country code to stamp on the record.")
	extractYear = extractCmd.Flags().Int("year", 0, "The year to stamp on the record.")
	extractURL = extractCmd.Flags().String("url", "", "The page link to stamp on the record.")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <page.html> [--country C] [--year Y] [--url U]",
	Short: "Extracts a saved report page and prints the record as JSON.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, tax := loadConfig()

		contents, err := os.ReadFile(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read page", err)
		}
		extractor := extract.NewExtractor(tax, extract.Options{
			Subcategory: match.SubcategoryOptions{SimilarityThreshold: cfg.FuzzyThreshold},
		})
		record, err := extractor.Extract(extract.Page{
			Country: *extractCountry,
			Year:    *extractYear,
			URL:     *extractURL,
			HTML:    string(contents),
		})
		if err != nil {
			serviceutil.Fatal("failed to extract page", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(record)
		if err != nil {
			serviceutil.Fatal("failed to write record", err)
		}
	},
}
