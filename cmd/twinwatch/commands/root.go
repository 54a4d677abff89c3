package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"twinwatch/lib/configutil"
	"twinwatch/lib/serviceutil"
	"twinwatch/lib/telemetry"

	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl   string `json:"base_url"`
	DataDir   string `json:"data_dir"`
	DocsDir   string `json:"docs_dir"`
	DelayMs   int    `json:"delay_ms"`
	Provinces struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"provinces"`
	MaxSeq int `json:"max_seq"`
}

func (c Config) MPDir() string {
	return filepath.Join(c.DataDir, "mp")
}

func (c Config) PLDir() string {
	return filepath.Join(c.DataDir, "pl")
}

func (c Config) ReportFile() string {
	return filepath.Join(c.DataDir, "anomaly_report.json")
}

// the site directory doubles as the source of truth for province and
// party display data, served as static JSON next to the report
func (c Config) CommonDataFile() string {
	return filepath.Join(c.DocsDir, "data", "common-data.json")
}

func (c Config) PartyDataFile() string {
	return filepath.Join(c.DocsDir, "data", "party-data.json")
}

func (c Config) PartyIconsDir() string {
	return filepath.Join(c.DocsDir, "img")
}

var verbose *bool
var configPath *string

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enables debug logging and HTTP exchange dumps.")
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read.")
}

func readConfig() Config {
	cfg, err := configutil.Read[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.DocsDir == "" {
		cfg.DocsDir = "docs"
	}
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "twinwatch",
	Short: "twinwatch collects unofficial election results and scans them for twin number anomalies.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
