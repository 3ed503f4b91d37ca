package model

import "time"

// Report is one filer's periodic transaction report: the header fields plus
// the transactions disclosed in it, in document order.
//
// A report with zero transactions is valid (a filer may report no activity)
// but still carries its header fields.
type Report struct {
	ID                 int64 // derived from the filing ID printed on the document
	RepresentativeName string
	SignedDate         time.Time
	Transactions       []Transaction
}
