package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ptrwatch-dev/ptrwatch/internal/parse"
	"github.com/ptrwatch-dev/ptrwatch/internal/pdftext"
)

func newSampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample <report.pdf>",
		Short: "Extract cleansed text from a report PDF for rule development",
		Long: "Extracts the text layer of a report PDF, applies the same text\n" +
			"cleansing the parser uses, and writes it next to the PDF as a .txt\n" +
			"file. Useful when a document fails to parse and the rules need\n" +
			"extending.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, args[0])
		},
	}

	return cmd
}

func runSample(cmd *cobra.Command, pdfPath string) error {
	text, err := pdftext.ExtractFile(pdfPath)
	if err != nil {
		return err
	}
	cleansed := parse.Cleanse(text)

	out := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".txt"
	if err := os.WriteFile(out, []byte(cleansed), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(cleansed), out)
	return nil
}
