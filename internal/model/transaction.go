package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a disclosed trade.
type TransactionType string

const (
	TypePurchase    TransactionType = "purchase"
	TypeSale        TransactionType = "sale"
	TypeSalePartial TransactionType = "sale-partial"
	TypeExchange    TransactionType = "exchange"
)

// FilingStatus is the "F S:" sub-section value of a transaction.
type FilingStatus string

const (
	FilingStatusNew       FilingStatus = "new"
	FilingStatusAmended   FilingStatus = "amended"
	FilingStatusDuplicate FilingStatus = "duplicate"
)

// OwnerCode marks account ownership of a transaction's asset. The set of
// codes used by the clerk's office is known to be incomplete here; tokens
// that look like owner codes but are not in this set are surfaced as parse
// flags rather than stripped.
type OwnerCode string

const (
	OwnerJoint     OwnerCode = "JT"
	OwnerSpouse    OwnerCode = "SP"
	OwnerDependent OwnerCode = "DC"
)

// KnownOwnerCode reports whether tok is a recognized owner code.
func KnownOwnerCode(tok string) bool {
	switch OwnerCode(tok) {
	case OwnerJoint, OwnerSpouse, OwnerDependent:
		return true
	}
	return false
}

// Transaction is one disclosed trade from a report's transaction table.
// Optional fields are zero-valued when the document does not carry them;
// absence is never guessed into a value.
type Transaction struct {
	ID       int64 // content hash of (report ID, asset name, transaction date)
	ReportID int64

	AssetName   string
	AssetType   string // bracketed type code, e.g. "ST"; empty when undeterminable
	AssetTicker string // not required for a transaction to be valid

	Type          TransactionType
	TypeQualifier string // parenthetical qualifier, e.g. "partial"

	TransactionDate  time.Time
	NotificationDate time.Time

	// Disclosed dollar range. AmountMin < AmountMax for every parsed range.
	AmountMin decimal.Decimal
	AmountMax decimal.Decimal

	FilingStatus FilingStatus
	SubholdingOf string
	Description  string
	Comment      string
	OwnerCode    OwnerCode

	// MatchText is the exact source substring the record was derived from,
	// kept for auditability and re-parsing after rule changes.
	MatchText string
}
