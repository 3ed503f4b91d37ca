package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ptrwatch-dev/ptrwatch/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ptrwatch",
		Short:   "Congressional stock trade disclosure tracker",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newFetchCommand())
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newIngestCommand())
	rootCmd.AddCommand(newSampleCommand())

	return rootCmd
}

const configFileName = "ptrwatch.yaml"
