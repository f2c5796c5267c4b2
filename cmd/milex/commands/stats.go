package commands

import (
	"fmt"
	"milex-scraper/lib/util/serviceutil"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(failedCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints database totals and the scrape progress.",
	Run: func(cmd *cobra.Command, args []string) {
		_, st := openStore()
		defer st.Close()

		stats, err := st.Stats(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to read stats", err)
		}

		years := "-"
		if stats.Records > 0 {
			years = fmt.Sprintf("%d-%d", stats.MinYear, stats.MaxYear)
		}
		t := newTable()
		t.SetTitle("Database")
		t.AppendRows([]table.Row{
			{"Records", stats.Records},
			{"Countries", stats.Countries},
			{"Years", years},
			{"With total expenditure", stats.WithData},
			{"Nil reports", stats.NilReports},
		})
		t.Render()

		if len(stats.Progress) == 0 {
			return
		}
		progress := newTable()
		progress.SetTitle("Scrape progress")
		progress.AppendHeader(table.Row{"Status", "Country-years"})
		for _, c := range stats.Progress {
			progress.AppendRow(table.Row{string(c.Status), c.Count})
		}
		progress.Render()
	},
}

var failedCmd = &cobra.Command{
	Use:   "failed",
	Short: "Lists the country-years whose last attempt failed.",
	Run: func(cmd *cobra.Command, args []string) {
		_, st := openStore()
		defer st.Close()

		entries, err := st.Failed(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to read status log", err)
		}
		if len(entries) == 0 {
			fmt.Println("no failed pages")
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"Country", "Year", "Last attempt", "Error"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Country, e.Year, e.LastAttempt.Format(time.DateTime), e.Error})
		}
		t.AppendFooter(table.Row{"Failed", len(entries)})
		t.Render()
	},
}
