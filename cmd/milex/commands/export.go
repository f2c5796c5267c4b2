package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"milex-scraper/internal/export"
	"milex-scraper/lib/util/serviceutil"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput *string

type exportFormat struct {
	suffix string
	write  func(ctx context.Context, w io.Writer, src export.Source) (export.Result, error)
}

var exportFormats = map[string]exportFormat{
	"csv":     {suffix: ".csv", write: export.WriteCSV},
	"summary": {suffix: "_summary.csv", write: export.WriteSummaryCSV},
	"xlsx":    {suffix: ".xlsx", write: export.WriteXLSX},
}

func init() {
	exportOutput = exportCmd.Flags().StringP("output", "o", "milex_data", "The output path without extension.")
	rootCmd.AddCommand(exportCmd)
}

func writeExport(ctx context.Context, path string, format exportFormat, src export.Source) (res export.Result, err error) {
	f, err := os.Create(path)
	if err != nil {
		return export.Result{}, err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return format.write(ctx, f, src)
}

var exportCmd = &cobra.Command{
	Use:       "export <csv|summary|xlsx|all> [-o <path>]",
	Short:     "Exports the stored records as flat tables.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"csv", "summary", "xlsx", "all"},
	Run: func(cmd *cobra.Command, args []string) {
		_, st := openStore()
		defer st.Close()

		names := []string{args[0]}
		if args[0] == "all" {
			names = []string{"csv", "summary", "xlsx"}
		}
		for _, name := range names {
			format := exportFormats[name]
			path := *exportOutput + format.suffix
			res, err := writeExport(cmd.Context(), path, format, st)
			if err != nil {
				serviceutil.Fatal("failed to export "+name, err)
			}
			slog.Info(
				"exported",
				"path", path,
				"rows", res.Rows,
				"countries", res.Countries,
				"columns", res.Columns,
			)
		}
	},
}
