package commands

import (
	"log/slog"
	"twinwatch/lib/serviceutil"
	"twinwatch/services/partycolors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(colorsCmd)
}

var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "Extracts brand colors from party icons and updates the party data file.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		results, err := partycolors.Extract(cmd.Context(), cfg.PartyDataFile(), cfg.PartyIconsDir())
		if err != nil {
			serviceutil.Fatal("failed to extract party colors", err)
		}

		var updated, noIcon, noColor int
		for _, r := range results {
			switch r.Status {
			case partycolors.StatusUpdated:
				color.Green("  ✓ %s (%s): %s -> %s", r.PartyCode, r.PartyName, r.OldColor, r.NewColor)
				updated++
			case partycolors.StatusNoIcon:
				color.Yellow("  ⚠ %s (%s): no icon found", r.PartyCode, r.PartyName)
				noIcon++
			case partycolors.StatusNoColor:
				color.Yellow("  ⚠ %s (%s): no usable color (too light, dark or gray)", r.PartyCode, r.PartyName)
				noColor++
			}
		}

		slog.Info(
			"party colors updated",
			"path", cfg.PartyDataFile(),
			"updated", updated,
			"no_icon", noIcon,
			"no_color", noColor,
		)
	},
}
