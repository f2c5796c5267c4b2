package commands

import (
	"fmt"
	"milex-scraper/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:       "list <countries|years|categories>",
	Short:     "Lists stored countries, stored years or the field taxonomy.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"countries", "years", "categories"},
	Run: func(cmd *cobra.Command, args []string) {
		if args[0] == "categories" {
			_, tax := loadConfig()
			t := newTable()
			t.AppendHeader(table.Row{"#", "Category"})
			for i, c := range tax.Categories() {
				t.AppendRow(table.Row{i + 1, c})
			}
			t.Render()

			t = newTable()
			t.AppendHeader(table.Row{"#", "Subcategory"})
			for i, s := range tax.Subcategories() {
				t.AppendRow(table.Row{i + 1, s})
			}
			t.AppendFooter(table.Row{"Fields", tax.Size()})
			t.Render()
			return
		}

		_, st := openStore()
		defer st.Close()

		t := newTable()
		switch args[0] {
		case "countries":
			countries, err := st.Countries(cmd.Context())
			if err != nil {
				serviceutil.Fatal("failed to list countries", err)
			}
			t.AppendHeader(table.Row{"Country", "Years", "First", "Last"})
			for _, c := range countries {
				t.AppendRow(table.Row{c.Country, c.Years, c.First, c.Last})
			}
			t.AppendFooter(table.Row{"Total", len(countries)})
		case "years":
			years, err := st.Years(cmd.Context())
			if err != nil {
				serviceutil.Fatal("failed to list years", err)
			}
			t.AppendHeader(table.Row{"Year", "Countries"})
			for _, y := range years {
				t.AppendRow(table.Row{y.Year, y.Countries})
			}
			t.AppendFooter(table.Row{"Total", len(years)})
		}
		if t.Length() == 0 {
			fmt.Println("the database is empty")
			return
		}
		t.Render()
	},
}
