// Package id derives stable identifiers for reports and transactions.
//
// Identifiers are computed from document content, never assigned by a
// store, so re-parsing byte-identical input yields byte-identical IDs and
// storage-level insert-or-ignore completes the idempotence story.
package id

import (
	"fmt"
	"hash/crc32"
	"time"
)

// canonicalDate is the layout used when folding dates into identity keys.
// Changing it changes every derived transaction ID.
const canonicalDate = "2006-01-02"

// ReportID derives a report's identifier from the filing ID printed on the
// document. Filing IDs are already unique per filing, so they pass through.
func ReportID(filingID int64) int64 {
	return filingID
}

// TransactionID derives a transaction's identifier from the triple that
// defines its logical identity. Two transactions sharing all three inputs
// are the same transaction and collapse to one ID.
func TransactionID(reportID int64, assetName string, transactionDate time.Time) int64 {
	key := fmt.Sprintf("%d-%s-%s", reportID, assetName, transactionDate.Format(canonicalDate))
	return int64(crc32.ChecksumIEEE([]byte(key)))
}
