package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptrwatch-dev/ptrwatch/internal/config"
	"github.com/ptrwatch-dev/ptrwatch/internal/fetch"
)

func newFetchCommand() *cobra.Command {
	var configPath string
	var lastName string
	var year string
	var state string
	var district string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download PTR filings from the House Clerk's disclosure site",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefault(configPath)
			return runFetch(cmd, cfg, fetch.SearchParams{
				LastName:   lastName,
				FilingYear: filingYearOr(year, cfg),
				State:      state,
				District:   district,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", configFileName, "config file path")
	cmd.Flags().StringVar(&lastName, "last-name", "", "member last name filter")
	cmd.Flags().StringVar(&year, "year", "", "filing year (default: config, then current year)")
	cmd.Flags().StringVar(&state, "state", "", "state abbreviation filter, e.g. CA")
	cmd.Flags().StringVar(&district, "district", "", "district number filter")

	return cmd
}

func runFetch(cmd *cobra.Command, cfg *config.Config, params fetch.SearchParams) error {
	client := fetch.NewClient(
		fetch.WithRequestInterval(cfg.Fetch.RequestInterval),
		fetch.WithTimeout(cfg.Fetch.Timeout),
	)

	paths, err := client.DownloadAll(cmd.Context(), params, cfg.Fetch.DownloadDir)
	if err != nil && len(paths) == 0 {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: some downloads failed: %v\n", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d filings to %s\n", len(paths), cfg.Fetch.DownloadDir)
	return nil
}

// loadConfigOrDefault loads the config file, falling back to defaults when
// it does not exist. A present-but-broken file is still an error surfaced
// at command run time, not silently ignored.
func loadConfigOrDefault(path string) *config.Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		return config.Default()
	}
	return cfg
}

func filingYearOr(flagYear string, cfg *config.Config) string {
	if flagYear != "" {
		return flagYear
	}
	if cfg.Fetch.FilingYear != "" {
		return cfg.Fetch.FilingYear
	}
	return strconv.Itoa(time.Now().Year())
}
