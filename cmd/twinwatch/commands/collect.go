package commands

import (
	"fmt"
	"log/slog"
	"time"
	"twinwatch/lib/ectapi"
	"twinwatch/lib/restyutil"
	"twinwatch/lib/resultstore"
	"twinwatch/lib/serviceutil"
	"twinwatch/services/collector"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetches constituency and party list results for every area and stores them on disk.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		if cfg.BaseUrl == "" {
			serviceutil.Fatal("failed to read config", fmt.Errorf("base_url is required"))
		}

		if *verbose {
			ectapi.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/ect"))
		}
		client, err := ectapi.NewClient(ectapi.ClientOptions{
			BaseUrl: cfg.BaseUrl,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize api client", err)
		}

		mp, err := resultstore.NewStore[ectapi.MPEntry](cfg.MPDir())
		if err != nil {
			serviceutil.Fatal("failed to open mp store", err)
		}
		pl, err := resultstore.NewStore[ectapi.PLEntry](cfg.PLDir())
		if err != nil {
			serviceutil.Fatal("failed to open pl store", err)
		}

		svc := collector.NewService(client, mp, pl, collector.Options{
			ProvinceStart: cfg.Provinces.Start,
			ProvinceEnd:   cfg.Provinces.End,
			MaxSeq:        cfg.MaxSeq,
			Delay:         time.Duration(cfg.DelayMs) * time.Millisecond,
		})

		t1 := time.Now()
		manifest, err := svc.Run(cmd.Context())
		t2 := time.Now()
		if err != nil {
			serviceutil.Fatal("collection aborted", err)
		}

		slog.Info(
			"collection time",
			"seconds", t2.Sub(t1).Seconds(),
			"requests", manifest.Requests,
			"failures", len(manifest.Failures),
		)
	},
}
