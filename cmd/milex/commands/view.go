package commands

import (
	"context"
	"errors"
	"fmt"
	"milex-scraper/internal/config"
	"milex-scraper/internal/store"
	"milex-scraper/internal/taxonomy"
	"milex-scraper/lib/util/serviceutil"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(viewCmd)
}

func printRecord(tax taxonomy.Taxonomy, r store.StoredRecord) {
	t := newTable()
	t.SetTitle("%s %d", r.Country, r.Year)
	total := "-"
	if r.TotalExpenditureAll != nil {
		total = strconv.FormatFloat(*r.TotalExpenditureAll, 'f', -1, 64)
	}
	t.AppendRows([]table.Row{
		{"National currency", orNone(r.NationalCurrency)},
		{"Unit of measure", orNone(r.UnitOfMeasure)},
		{"Total expenditure", total},
		{"Explanatory remarks", orNone(r.ExplanatoryRemarks)},
		{"Nil report", orNone(r.NilReportExpenditure)},
		{"Page", r.PageLink},
		{"Scraped at", r.ScrapedAt.Format(time.RFC3339)},
	})
	t.Render()

	if len(r.FieldData) == 0 {
		fmt.Println("no field data")
		return
	}
	fields := newTable()
	fields.AppendHeader(table.Row{"Field", "Value"})
	for _, field := range tax.Fields() {
		value, ok := r.FieldData[field]
		if !ok {
			continue
		}
		fields.AppendRow(table.Row{field, strconv.FormatFloat(value, 'f', -1, 64)})
	}
	fields.AppendFooter(table.Row{"Fields", len(r.FieldData)})
	fields.Render()
}

func printStatus(ctx context.Context, st *store.Store, country string, year int) {
	entry, ok, err := st.Status(ctx, country, year)
	if err != nil {
		serviceutil.Fatal("failed to read status", err)
	}
	if !ok {
		fmt.Printf("%s %d has not been scraped\n", country, year)
		return
	}
	fmt.Printf("%s %d: %s at %s", country, year, entry.Status, entry.LastAttempt.Format(time.RFC3339))
	if entry.Error != "" {
		fmt.Printf(" (%s)", entry.Error)
	}
	fmt.Println()
}

var viewCmd = &cobra.Command{
	Use:   "view <country> <year>",
	Short: "Prints the stored record of one country-year.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		countries, err := config.ParseCountries(args[:1])
		if err != nil {
			serviceutil.Fatal("invalid country", err)
		}
		year, err := strconv.Atoi(args[1])
		if err != nil {
			serviceutil.Fatal("invalid year", errors.New(args[1]))
		}

		_, st := openStore()
		defer st.Close()

		record, ok, err := st.Get(cmd.Context(), countries[0], year)
		if err != nil {
			serviceutil.Fatal("failed to read record", err)
		}
		if !ok {
			printStatus(cmd.Context(), st, countries[0], year)
			return
		}
		printRecord(st.Taxonomy(), record)
	},
}
