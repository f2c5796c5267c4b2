package commands

import (
	"context"
	"milex-scraper/internal/components/chrono"
	"milex-scraper/internal/components/telemetry"
	"milex-scraper/internal/config"
	"milex-scraper/internal/store"
	"milex-scraper/internal/taxonomy"
	"milex-scraper/lib/util/serviceutil"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	verbose    *bool
	configPath *string
)

var rootCmd = &cobra.Command{
	Use:   "milex",
	Short: "milex scrapes the UN military expenditure reports into a local database.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file, a missing file means defaults.")
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig() (config.Config, taxonomy.Taxonomy) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	tax, err := taxonomy.Load(cfg.FieldsFile)
	if err != nil {
		serviceutil.Fatal("failed to load fields", err)
	}
	return cfg, tax
}

func newClock(cfg config.Config) chrono.StandardImpl {
	clock, err := chrono.NewStandardImpl(cfg.Timezone)
	if err != nil {
		serviceutil.Fatal("failed to create clock", err)
	}
	return clock
}

// openStore loads the config and opens its database, the caller closes the
// store.
func openStore() (config.Config, *store.Store) {
	cfg, tax := loadConfig()
	st, err := store.Open(cfg.Database, tax, newClock(cfg))
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	return cfg, st
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func orNone(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
