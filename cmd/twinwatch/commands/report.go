package commands

import (
	"log/slog"
	"os"
	"twinwatch/cmd/twinwatch/utils"
	"twinwatch/lib/ectapi"
	"twinwatch/lib/resultstore"
	"twinwatch/lib/serviceutil"
	"twinwatch/lib/sitedata"
	"twinwatch/services/anomaly"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Scans the collected results for twin number matches and writes the anomaly report.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		mp, err := resultstore.NewStore[ectapi.MPEntry](cfg.MPDir())
		if err != nil {
			serviceutil.Fatal("failed to open mp store", err)
		}
		pl, err := resultstore.NewStore[ectapi.PLEntry](cfg.PLDir())
		if err != nil {
			serviceutil.Fatal("failed to open pl store", err)
		}

		provinces, err := sitedata.LoadProvinceNames(cfg.CommonDataFile())
		if os.IsNotExist(err) {
			slog.Warn("no common data file, reporting province ids only", "path", cfg.CommonDataFile())
			provinces = nil
		} else if err != nil {
			serviceutil.Fatal("failed to read common data", err)
		}

		svc := anomaly.NewService(mp, pl, provinces)
		matches, err := svc.Scan(cmd.Context())
		if err != nil {
			serviceutil.Fatal("scan failed", err)
		}

		report := anomaly.BuildReport(matches)
		err = anomaly.WriteReport(cfg.ReportFile(), report)
		if err != nil {
			serviceutil.Fatal("failed to write report", err)
		}
		slog.Info("report written", "path", cfg.ReportFile(), "flagged", len(matches))

		printSummary(report)
	},
}

func printSummary(report anomaly.Report) {
	{
		t := utils.NewTable()
		t.SetTitle("Top Provinces by Ghost Votes")
		t.AppendHeader(table.Row{"Province", "Areas", "Ghost Votes"})
		for _, p := range head(report.ProvinceStats, 5) {
			t.AppendRow(table.Row{p.Name, p.Count, p.TotalGhostVotes})
		}
		t.Render()
	}
	{
		t := utils.NewTable()
		t.SetTitle("Top Winning Parties Involved")
		t.AppendHeader(table.Row{"Party", "Areas", "Ghost Votes"})
		for _, p := range head(report.MPPartyStats, 5) {
			t.AppendRow(table.Row{p.PartyCode, p.Count, p.TotalGhostVotes})
		}
		t.Render()
	}
	{
		t := utils.NewTable()
		t.SetTitle("Top Anomalies by Twin Party Votes")
		t.AppendHeader(table.Row{"Area", "MP Num", "Twin Party", "Twin Rank", "Twin PL Votes", "Twin MP Votes"})
		for _, a := range head(report.Anomalies, 10) {
			t.AppendRow(table.Row{
				a.AreaCode, a.MPWinnerNumber, a.PLTwinParty,
				a.PLTwinRank, a.PLTwinVotes, a.MPTwinCandidateVotes,
			})
		}
		t.Render()
	}
}

func head[T any](rows []T, n int) []T {
	if len(rows) < n {
		return rows
	}
	return rows[:n]
}
