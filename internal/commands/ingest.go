package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ptrwatch-dev/ptrwatch/internal/config"
	"github.com/ptrwatch-dev/ptrwatch/internal/fetch"
	"github.com/ptrwatch-dev/ptrwatch/internal/ingest"
	"github.com/ptrwatch-dev/ptrwatch/internal/logging"
	"github.com/ptrwatch-dev/ptrwatch/internal/pdftext"
	"github.com/ptrwatch-dev/ptrwatch/internal/store"
)

func newIngestCommand() *cobra.Command {
	var configPath string
	var dir string
	var doFetch bool
	var year string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Parse downloaded filings and store the transactions",
		Long: "Scans the download directory for report PDFs, parses each one,\n" +
			"and stores new reports and transactions in the database. Documents\n" +
			"already in the database are skipped; documents that fail to parse\n" +
			"are logged and do not stop the run. With --fetch, downloads the\n" +
			"filing year first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefault(configPath)
			if dir != "" {
				cfg.Fetch.DownloadDir = dir
			}
			return runIngest(cmd, cfg, doFetch, year)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", configFileName, "config file path")
	cmd.Flags().StringVar(&dir, "dir", "", "report directory (default: config download_dir)")
	cmd.Flags().BoolVar(&doFetch, "fetch", false, "download the filing year before ingesting")
	cmd.Flags().StringVar(&year, "year", "", "filing year for --fetch")

	return cmd
}

func runIngest(cmd *cobra.Command, cfg *config.Config, doFetch bool, year string) error {
	logger := logging.Setup(cfg.Logging.Level)

	if doFetch {
		client := fetch.NewClient(
			fetch.WithRequestInterval(cfg.Fetch.RequestInterval),
			fetch.WithTimeout(cfg.Fetch.Timeout),
		)
		params := fetch.SearchParams{FilingYear: filingYearOr(year, cfg)}
		paths, err := client.DownloadAll(cmd.Context(), params, cfg.Fetch.DownloadDir)
		if err != nil && len(paths) == 0 {
			return err
		}
		if err != nil {
			logger.Warn("some downloads failed", "error", err)
		}
		logger.Info("filings downloaded", "count", len(paths), "dir", cfg.Fetch.DownloadDir)
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ing := ingest.New(st, pdftext.ExtractFile, logger,
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithRunLog(cfg.Ingest.LogDir),
	)

	sum, err := ing.Run(cmd.Context(), cfg.Fetch.DownloadDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Scanned %d filings: %d stored, %d already known, %d failed\n",
		sum.Scanned, sum.Stored, sum.Skipped, sum.Failed)
	for reason, n := range sum.FailuresByReason {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", reason, n)
	}
	return nil
}
