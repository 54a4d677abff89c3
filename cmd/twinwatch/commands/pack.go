package commands

import (
	"log/slog"
	"twinwatch/lib/serviceutil"
	"twinwatch/lib/sitepack"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(packCmd)
}

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Assembles the publishable site directory from the index page and the report.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		err := sitepack.Pack(sitepack.Options{
			DocsDir:    cfg.DocsDir,
			IndexFile:  "index.html",
			ReportFile: cfg.ReportFile(),
		})
		if err != nil {
			serviceutil.Fatal("failed to pack site", err)
		}
		slog.Info("site packed", "dir", cfg.DocsDir)
	},
}
