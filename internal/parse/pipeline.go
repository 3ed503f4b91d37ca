// Package parse turns one document's extracted text into a validated
// report aggregate.
//
// A parse is synchronous, CPU-bound, and holds no state across documents,
// so callers may run one parse per goroutine with no coordination. The
// same input text always yields the same report, the same identifiers, or
// the same failure; retrying without changing the rules is pointless.
package parse

import (
	"github.com/ptrwatch-dev/ptrwatch/internal/id"
	"github.com/ptrwatch-dev/ptrwatch/internal/model"
)

// Result is the outcome of a successful parse: the immutable report
// aggregate plus any spans flagged for human review. Failed parses expose
// nothing partial.
type Result struct {
	Report *model.Report
	Flags  []Flag
}

// Parse runs the full pipeline over one document's raw text: cleanse,
// segment, build each table region, assemble. On failure it returns a
// *Error tagged with one of the Reason codes and no report.
func Parse(text string) (*Result, error) {
	cleansed := Cleanse(text)
	if cleansed == "" {
		return nil, &Error{Reason: ReasonNoExtractableText}
	}

	hdr, perr := segmentHeader(cleansed)
	if perr != nil {
		return nil, perr
	}

	regions := segmentRegions(cleansed)
	if len(regions) == 0 && !noActivity(cleansed) {
		return nil, &Error{Reason: ReasonNoTransactionRegion, Rule: "table-markers-v1"}
	}

	var txns []model.Transaction
	var flags []Flag
	for _, region := range regions {
		rt, rf, perr := buildRegion(region)
		if perr != nil {
			return nil, perr
		}
		txns = append(txns, rt...)
		flags = append(flags, rf...)
	}

	reportID := id.ReportID(hdr.filingID)
	for i := range txns {
		txns[i].ReportID = reportID
		txns[i].ID = id.TransactionID(reportID, txns[i].AssetName, txns[i].TransactionDate)
	}

	report := &model.Report{
		ID:                 reportID,
		RepresentativeName: hdr.name,
		SignedDate:         hdr.signed,
		Transactions:       txns,
	}
	return &Result{Report: report, Flags: flags}, nil
}
