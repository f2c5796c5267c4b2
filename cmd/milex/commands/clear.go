package commands

import (
	"errors"
	"log/slog"
	"milex-scraper/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var clearYes *bool

func init() {
	clearYes = clearCmd.Flags().Bool("yes", false, "Confirm deleting every record and status entry.")
	rootCmd.AddCommand(clearCmd)
}

var clearCmd = &cobra.Command{
	Use:   "clear --yes",
	Short: "Deletes every stored record and the status log.",
	Run: func(cmd *cobra.Command, args []string) {
		if !*clearYes {
			serviceutil.Fatal("refusing to clear the database", errors.New("pass --yes to confirm"))
		}

		cfg, st := openStore()
		defer st.Close()

		err := st.Clear(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to clear database", err)
		}
		slog.Info("database cleared", "db", cfg.Database.String())
	},
}
