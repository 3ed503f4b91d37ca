// Package extract provides stateless field extractors for the semantic
// fields of a periodic transaction report: filing identifiers, calendar
// dates, disclosed dollar ranges, and transaction type codes.
//
// Each extractor locates one field inside a text window and returns the
// typed value or reports absence. Absence is a first-class result, never an
// error: heuristic misses are expected and the caller decides whether a
// missing field fails the record.
//
// The exported *Pattern constants are uncompiled fragments meant for
// embedding in larger patterns (such as the transaction anchor); the
// extractors carry their own compiled forms with capture groups. A new
// document variant should extend one extractor's accepted lexical forms
// rather than fork the patterns downstream.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ptrwatch-dev/ptrwatch/internal/model"
)

// Pattern fragments for embedding.
const (
	// DatePattern matches the slash layout of the clerk's PDFs and the
	// dashed layout seen in newer documents.
	DatePattern = `(?:\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2})`

	// TypePattern matches any single-letter type code plus an optional
	// parenthetical qualifier. It is deliberately looser than the known
	// code set so an unknown code still anchors a transaction and surfaces
	// as a field failure instead of a missed record.
	TypePattern = `[A-Z](?:\s*\([a-z ]+\))?`

	// AmountPattern accepts a lone dollar bound so an anchor with a
	// malformed range is still recognized; AmountRange then rejects it.
	AmountPattern = `\$[\d,]+(?:\s*-\s*\$[\d,]+)?`
)

var (
	filingIDRe = regexp.MustCompile(`Filing ID #(\d+)`)
	dateRe     = regexp.MustCompile(DatePattern)
	amountRe   = regexp.MustCompile(`\$([\d,]+)\s*-\s*\$([\d,]+)`)
	typeRe     = regexp.MustCompile(`^([A-Z])(?:\s*\(([a-z ]+)\))?$`)
)

var dateLayouts = []string{"1/2/2006", "2006-01-02"}

// FilingID locates the first filing identifier in s. Unlike dollar ranges,
// an identifier is a valid singleton: one integer is all there is.
func FilingID(s string) (int64, bool) {
	m := filingIDRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	var n int64
	for _, c := range m[1] {
		n = n*10 + int64(c-'0')
	}
	return n, true
}

// Date locates the first calendar date in s.
func Date(s string) (time.Time, bool) {
	m := dateRe.FindString(s)
	if m == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, m); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AmountRange locates a disclosed dollar range in s and returns its bounds.
// A lone bound with no partner is not a range, and neither is an inverted
// one: both report absence so the caller can fail the field instead of
// guessing a value.
func AmountRange(s string) (min, max decimal.Decimal, ok bool) {
	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, decimal.Zero, false
	}

	min, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	max, err = decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}

	if !min.LessThan(max) {
		return decimal.Zero, decimal.Zero, false
	}
	return min, max, true
}

// TransactionType interprets a raw type code captured from an anchor. A
// parenthetical qualifier (e.g. "S (partial)") is part of the code's
// lexical form, not a match failure: it is returned separately and, for
// partial sales, folded into the type itself.
func TransactionType(raw string) (model.TransactionType, string, bool) {
	m := typeRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", "", false
	}
	code, qualifier := m[1], m[2]

	var typ model.TransactionType
	switch code {
	case "P":
		typ = model.TypePurchase
	case "S":
		typ = model.TypeSale
	case "E":
		typ = model.TypeExchange
	default:
		return "", "", false
	}

	if typ == model.TypeSale && qualifier == "partial" {
		typ = model.TypeSalePartial
	}
	return typ, qualifier, true
}

// FilingStatus normalizes an "F S:" sub-section value. Known statuses map
// to their canonical form; anything else passes through lowercased, since
// the status is free text on the document and new wordings show up.
func FilingStatus(raw string) model.FilingStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "new":
		return model.FilingStatusNew
	case "amended":
		return model.FilingStatusAmended
	case "duplicate":
		return model.FilingStatusDuplicate
	}
	return model.FilingStatus(strings.ToLower(strings.TrimSpace(raw)))
}
