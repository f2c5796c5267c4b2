package commands

import (
	"context"
	"errors"
	"fmt"
	"milex-scraper/internal/components/telemetry"
	"milex-scraper/internal/config"
	"milex-scraper/internal/extract"
	"milex-scraper/internal/fetch"
	"milex-scraper/internal/match"
	"milex-scraper/internal/milex"
	"milex-scraper/internal/scraper"
	"milex-scraper/internal/store"
	libtelemetry "milex-scraper/lib/telemetry"
	"milex-scraper/lib/util/restyutil"
	"milex-scraper/lib/util/serviceutil"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeCountries   *[]string
	scrapeStartYear   *int
	scrapeEndYear     *int
	scrapeYear        *int
	scrapeNoResume    *bool
	scrapeConcurrency *int
	scrapeDelay       *float64
)

func init() {
	flags := scrapeCmd.Flags()
	scrapeCountries = flags.StringSlice("countries", nil, "ISO alpha-3 codes to scrape, defaults to every UN member.")
	scrapeStartYear = flags.Int("start-year", 0, "First reporting year, overrides start_year.")
	scrapeEndYear = flags.Int("end-year", 0, "Last reporting year, overrides end_year.")
	scrapeYear = flags.Int("year", 0, "Scrape a single reporting year.")
	scrapeNoResume = flags.Bool("no-resume", false, "Scrape country-years that are already stored.")
	scrapeConcurrency = flags.Int("concurrency", 0, "Pages in flight, overrides concurrency.")
	scrapeDelay = flags.Float64("delay", 0, "Seconds between requests, overrides delay_seconds.")
	rootCmd.AddCommand(scrapeCmd)
}

func newScraper(cfg config.Config, st *store.Store) *scraper.Scraper {
	tel := telemetry.SlogAPI{}
	opts := fetch.Options{
		BaseURL:          cfg.BaseURL,
		Timeout:          cfg.RequestTimeout(),
		UserAgent:        cfg.UserAgent,
		CloudflareBypass: cfg.CloudflareBypass,
	}
	if cfg.SaveDir != "" {
		out, err := restyutil.NewFilesystemOutput(cfg.SaveDir)
		if err != nil {
			serviceutil.Fatal("failed to create save_dir", err)
		}
		opts.Save = &out
	}
	fetcher := fetch.NewHTTPFetcher(opts, tel)
	extractor := extract.NewExtractor(st.Taxonomy(), extract.Options{
		Subcategory: match.SubcategoryOptions{SimilarityThreshold: cfg.FuzzyThreshold},
	})
	return scraper.New(fetcher, extractor, st, tel, newClock(cfg))
}

// runScrape runs a scrape with the progress lines and the closing summary
// printed to stdout.
func runScrape(ctx context.Context, s *scraper.Scraper, opts scraper.Options) scraper.Summary {
	libtelemetry.InstrumentPerfStats(ctx)

	opts.OnResult = printResult
	summary, err := s.Run(ctx, opts)
	if err != nil {
		serviceutil.Fatal("failed to scrape", err)
	}
	printSummary(summary)
	return summary
}

func printResult(r scraper.PageResult) {
	switch r.Status {
	case milex.StatusFailed:
		fmt.Printf("[%d/%d] %s %d: %s (%s)\n", r.Index, r.Total, r.Country, r.Year, r.Status, r.Error)
	default:
		fmt.Printf(
			"[%d/%d] %s %d: %s, %d fields in %.1fs\n",
			r.Index, r.Total, r.Country, r.Year, r.Status, r.Fields, r.Elapsed.Seconds(),
		)
	}
}

func printSummary(s scraper.Summary) {
	t := newTable()
	t.SetTitle("Run %s", s.RunID)
	t.AppendRows([]table.Row{
		{"Planned", s.Planned},
		{"Skipped (stored)", s.Skipped},
		{"Attempted", s.Attempted()},
	})
	t.AppendSeparator()
	for _, status := range []milex.Status{milex.StatusSuccess, milex.StatusNoData, milex.StatusFailed} {
		t.AppendRow(table.Row{string(status), s.Counts[status]})
	}
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Duration", scraper.FormatDuration(s.Duration)},
		{"Average page", fmt.Sprintf("%.2fs", s.AveragePage().Seconds())},
	})
	if s.Interrupted {
		t.AppendFooter(table.Row{"Interrupted", "rerun to resume"})
	}
	t.Render()
}

func scrapeYears(cfg config.Config) ([]int, error) {
	if *scrapeYear != 0 {
		return []int{*scrapeYear}, nil
	}
	start, end := cfg.StartYear, cfg.EndYear
	if *scrapeStartYear != 0 {
		start = *scrapeStartYear
	}
	if *scrapeEndYear != 0 {
		end = *scrapeEndYear
	}
	if start > end {
		return nil, fmt.Errorf("start year %d is after end year %d", start, end)
	}
	return config.YearRange(start, end), nil
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--countries LTU,FRA] [--start-year Y] [--end-year Y | --year Y]",
	Short: "Scrapes report pages into the database, resuming a previous run by default.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, st := openStore()
		defer st.Close()

		var (
			countries []string
			err       error
		)
		if len(*scrapeCountries) > 0 {
			countries, err = config.ParseCountries(*scrapeCountries)
		} else {
			countries, err = cfg.Countries()
		}
		if err != nil {
			serviceutil.Fatal("failed to read countries", err)
		}
		years, err := scrapeYears(cfg)
		if err != nil {
			serviceutil.Fatal("invalid year range", err)
		}

		concurrency := cfg.Concurrency
		if *scrapeConcurrency != 0 {
			concurrency = *scrapeConcurrency
		}
		delay := cfg.Delay()
		if cmd.Flags().Changed("delay") {
			if *scrapeDelay < 0 {
				serviceutil.Fatal("invalid delay", errors.New("delay is negative"))
			}
			delay = time.Duration(*scrapeDelay * float64(time.Second))
		}

		runScrape(cmd.Context(), newScraper(cfg, st), scraper.Options{
			Countries:   countries,
			Years:       years,
			Resume:      !*scrapeNoResume,
			Concurrency: concurrency,
			Delay:       delay,
		})
	},
}
