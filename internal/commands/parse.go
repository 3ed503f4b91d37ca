package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ptrwatch-dev/ptrwatch/internal/model"
	"github.com/ptrwatch-dev/ptrwatch/internal/parse"
	"github.com/ptrwatch-dev/ptrwatch/internal/pdftext"
)

func newParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <report.pdf|report.txt>",
		Short: "Parse a single report and print the extracted transactions",
		Long: "Parses one periodic transaction report and prints the report\n" +
			"header and every extracted transaction. A .txt argument is read\n" +
			"as already-extracted text, which is handy with the output of\n" +
			"the sample command.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0])
		},
	}

	return cmd
}

func runParse(cmd *cobra.Command, path string) error {
	text, err := documentText(path)
	if err != nil {
		return err
	}

	result, err := parse.Parse(text)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	printReport(cmd.OutOrStdout(), result)
	return nil
}

// documentText reads path as extracted text or as a PDF, by extension.
func documentText(path string) (string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".txt") {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	}
	return pdftext.ExtractFile(path)
}

const dateLayout = "2006-01-02"

func printReport(w io.Writer, result *parse.Result) {
	r := result.Report
	fmt.Fprintf(w, "Report %d  %s  signed %s\n",
		r.ID, r.RepresentativeName, r.SignedDate.Format(dateLayout))
	fmt.Fprintf(w, "Transactions: %d\n", len(r.Transactions))

	for _, txn := range r.Transactions {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  [%d] %s\n", txn.ID, assetLine(txn))
		fmt.Fprintf(w, "      %s on %s, notified %s, $%s - $%s\n",
			typeLine(txn),
			txn.TransactionDate.Format(dateLayout),
			txn.NotificationDate.Format(dateLayout),
			txn.AmountMin.StringFixed(0),
			txn.AmountMax.StringFixed(0))
		if txn.FilingStatus != "" {
			fmt.Fprintf(w, "      filing status: %s\n", txn.FilingStatus)
		}
		if txn.SubholdingOf != "" {
			fmt.Fprintf(w, "      subholding of: %s\n", txn.SubholdingOf)
		}
		if txn.Description != "" {
			fmt.Fprintf(w, "      description: %s\n", txn.Description)
		}
		if txn.Comment != "" {
			fmt.Fprintf(w, "      comment: %s\n", txn.Comment)
		}
	}

	for _, flag := range result.Flags {
		fmt.Fprintf(w, "\nFLAG: %s near %q\n", flag.Note, flag.Span)
	}
}

func assetLine(txn model.Transaction) string {
	line := txn.AssetName
	if txn.AssetTicker != "" {
		line += " (" + txn.AssetTicker + ")"
	}
	if txn.AssetType != "" {
		line += " [" + txn.AssetType + "]"
	}
	if txn.OwnerCode != "" {
		line = string(txn.OwnerCode) + " " + line
	}
	return line
}

func typeLine(txn model.Transaction) string {
	// Qualifiers folded into the type name, like "sale-partial", are not
	// repeated.
	if txn.TypeQualifier != "" && !strings.Contains(string(txn.Type), txn.TypeQualifier) {
		return fmt.Sprintf("%s (%s)", txn.Type, txn.TypeQualifier)
	}
	return string(txn.Type)
}
