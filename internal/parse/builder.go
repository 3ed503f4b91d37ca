package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ptrwatch-dev/ptrwatch/internal/extract"
	"github.com/ptrwatch-dev/ptrwatch/internal/model"
)

// anchorRe marks the start of one transaction: the structurally reliable
// tuple of type code, transaction date, notification date, and amount range
// that co-occurs per transaction. Everything else about a row is free text.
var anchorRe = regexp.MustCompile(
	`(` + extract.TypePattern + `)\s+(` + extract.DatePattern + `)\s+(` + extract.DatePattern + `)\s+(` + extract.AmountPattern + `)`)

// Sub-section labels trailing a transaction's anchor. \b keeps "D:" from
// matching inside words like "ID:".
var subLabelRe = regexp.MustCompile(`\b(F S:|S O:|D:|C:)`)

// assetTailRe recognizes the terminal "(TICKER) [TYPE]" of an asset, used
// to find where a trailing sub-section's free text ends and the next row's
// asset begins. Ticker alphabets are uppercase, which keeps parenthesized
// prose out of the ticker group.
var assetTailRe = regexp.MustCompile(`(?:\(([A-Z0-9.&/ -]{1,12})\)\s*)?\[([A-Z~]{1,5})\]\s*$`)

// assetRe splits one row's asset text into name, optional ticker, and
// optional bracketed type. Neither the ticker nor the type is required for
// a row to be valid.
var assetRe = regexp.MustCompile(`^(.+?)(?:\s*\(([A-Z0-9.&/ -]{1,12})\))?(?:\s*\[([A-Z~]{1,5})\])?$`)

const anchorRule = "anchor-v1"

// buildRegion partitions one transaction-table region into records: every
// anchor defines a boundary, the text between two anchors is attributed
// back to the earlier row's sub-sections and forward to the later row's
// asset name, and each record's fields are extracted from its own chunk.
func buildRegion(region string) ([]model.Transaction, []Flag, *Error) {
	ms := anchorRe.FindAllStringSubmatchIndex(region, -1)
	if len(ms) == 0 {
		return nil, nil, &Error{Reason: ReasonUnrecognizedAnchor, Span: region, Rule: anchorRule}
	}

	var flags []Flag

	// Boundary pass: split the text trailing each anchor into that row's
	// sub-sections and the next row's asset text. Attribution is strictly
	// positional: a labeled sub-section belongs to the row immediately
	// preceding its appearance, never the next row's asset name.
	chunkStarts := make([]int, len(ms)) // where each row's asset text begins
	chunkEnds := make([]int, len(ms))   // where each row's sub-sections end
	trailings := make([]trailing, len(ms))
	for i, m := range ms {
		end := len(region)
		if i+1 < len(ms) {
			end = ms[i+1][0]
		}
		tr, trFlags := splitTrailing(region[m[1]:end], i == len(ms)-1)
		trailings[i] = tr
		flags = append(flags, trFlags...)

		// tr.nextAsset is always a suffix of the trailing text.
		chunkEnds[i] = end - len(tr.nextAsset)
		if i+1 < len(ms) {
			chunkStarts[i+1] = chunkEnds[i]
		}
	}

	// Extraction pass: one record per anchor, from its own chunk.
	txns := make([]model.Transaction, 0, len(ms))
	for i, m := range ms {
		assetText := region[chunkStarts[i]:m[0]]
		matchText := strings.TrimSpace(region[chunkStarts[i]:chunkEnds[i]])

		txn, txnFlags, perr := buildTransaction(region, m, assetText, trailings[i], matchText)
		if perr != nil {
			return nil, nil, perr
		}
		flags = append(flags, txnFlags...)
		txns = append(txns, txn)
	}

	if len(txns) != len(ms) {
		return nil, nil, &Error{Reason: ReasonInternal, Detail: "anchor count mismatch"}
	}
	return txns, flags, nil
}

// trailing is the attributed text between one anchor and the next.
type trailing struct {
	filingStatus string
	subholding   string
	description  string
	comment      string
	nextAsset    string // the following row's raw asset text; suffix of the input
}

// splitTrailing attributes the text between two anchors. Labeled
// sub-sections at the front belong to the preceding row; the remainder is
// the next row's asset text.
func splitTrailing(t string, last bool) (trailing, []Flag) {
	var tr trailing
	var flags []Flag

	labels := subLabelRe.FindAllStringSubmatchIndex(t, -1)
	if len(labels) == 0 {
		if last {
			if s := strings.TrimSpace(t); s != "" {
				flags = append(flags, Flag{Span: s, Note: "unattributed text after final transaction"})
			}
		}
		tr.nextAsset = t
		return tr, flags
	}

	if pre := strings.TrimSpace(t[:labels[0][0]]); pre != "" {
		flags = append(flags, Flag{Span: pre, Note: "unattributed text before sub-section label"})
	}

	for k, lab := range labels {
		valEnd := len(t)
		if k+1 < len(labels) {
			valEnd = labels[k+1][0]
		}
		val := t[lab[1]:valEnd]

		if k == len(labels)-1 && !last {
			val, tr.nextAsset = splitValueFromAsset(val)
		}

		val = strings.TrimSpace(val)
		switch t[lab[2]:lab[3]] {
		case "F S:":
			tr.filingStatus = val
		case "S O:":
			tr.subholding = val
		case "D:":
			tr.description = val
		case "C:":
			tr.comment = val
		}
	}
	return tr, flags
}

// splitValueFromAsset separates the final sub-section's free text from the
// next row's asset text. The asset is the longest run of name-like tokens
// (capitalized, all-caps, or numeric) before a "(TICKER) [TYPE]" tail, but
// the sub-section always keeps its first word: a value like "New" is
// name-like yet belongs to the label it follows. Without a recognizable
// tail the whole text stays with the value and the next row fails asset
// extraction explicitly instead of silently absorbing it.
func splitValueFromAsset(val string) (sub, asset string) {
	tail := assetTailRe.FindStringIndex(val)
	if tail == nil {
		return val, ""
	}

	head := val[:tail[0]]
	cut := len(head)
	for cut > 0 {
		trimmed := strings.TrimRight(head[:cut], " ")
		if trimmed == "" {
			cut = 0
			break
		}
		ws := strings.LastIndex(trimmed, " ")
		tok := head[ws+1 : len(trimmed)]
		if !nameLike(tok) {
			break
		}
		cut = ws + 1
		if ws < 0 {
			cut = 0
			break
		}
	}

	if strings.TrimSpace(val[:cut]) == "" {
		// Give the first word back to the sub-section value.
		rest := strings.TrimLeft(val, " ")
		word := strings.IndexByte(rest, ' ')
		if word < 0 {
			return val, ""
		}
		cut = len(val) - len(rest) + word + 1
	}
	return val[:cut], val[cut:]
}

func nameLike(tok string) bool {
	if tok == "" {
		return false
	}
	r := tok[0]
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// buildTransaction extracts one record's fields from its anchor match and
// attributed text.
func buildTransaction(region string, m []int, assetText string, tr trailing, matchText string) (model.Transaction, []Flag, *Error) {
	rawType := region[m[2]:m[3]]
	rawTxDate := region[m[4]:m[5]]
	rawNotifDate := region[m[6]:m[7]]
	rawAmount := region[m[8]:m[9]]

	typ, qualifier, ok := extract.TransactionType(rawType)
	if !ok {
		return model.Transaction{}, nil, &Error{Reason: ReasonFieldExtraction, Span: matchText, Rule: anchorRule, Detail: "transaction type code " + strconv.Quote(rawType) + " not recognized"}
	}

	txDate, ok := extract.Date(rawTxDate)
	if !ok {
		return model.Transaction{}, nil, &Error{Reason: ReasonFieldExtraction, Span: matchText, Rule: anchorRule, Detail: "transaction date did not parse"}
	}
	notifDate, ok := extract.Date(rawNotifDate)
	if !ok {
		return model.Transaction{}, nil, &Error{Reason: ReasonFieldExtraction, Span: matchText, Rule: anchorRule, Detail: "notification date did not parse"}
	}

	amountMin, amountMax, ok := extract.AmountRange(rawAmount)
	if !ok {
		return model.Transaction{}, nil, &Error{Reason: ReasonFieldExtraction, Span: matchText, Rule: anchorRule, Detail: "amount range requires both bounds"}
	}

	var flags []Flag
	ownerCode, name, ownerFlags := splitOwnerCode(assetText)
	flags = append(flags, ownerFlags...)

	am := assetRe.FindStringSubmatch(strings.TrimSpace(name))
	if am == nil || strings.TrimSpace(am[1]) == "" {
		return model.Transaction{}, nil, &Error{Reason: ReasonFieldExtraction, Span: matchText, Rule: anchorRule, Detail: "asset name is required"}
	}

	if notifDate.Before(txDate) {
		flags = append(flags, Flag{Span: matchText, Note: "notification date precedes transaction date"})
	}

	var status model.FilingStatus
	if tr.filingStatus != "" {
		status = extract.FilingStatus(tr.filingStatus)
	}

	return model.Transaction{
		AssetName:        strings.TrimSpace(am[1]),
		AssetTicker:      strings.TrimSpace(am[2]),
		AssetType:        am[3],
		Type:             typ,
		TypeQualifier:    qualifier,
		TransactionDate:  txDate,
		NotificationDate: notifDate,
		AmountMin:        amountMin,
		AmountMax:        amountMax,
		FilingStatus:     status,
		SubholdingOf:     tr.subholding,
		Description:      tr.description,
		Comment:          tr.comment,
		OwnerCode:        ownerCode,
		MatchText:        matchText,
	}, flags, nil
}

var ownerShapeRe = regexp.MustCompile(`^[A-Z]{2}$`)

// splitOwnerCode strips a recognized owner code from the front of an asset
// text. A token that merely looks like an owner code is kept in the name
// and flagged instead: the known-code set is incomplete, but so is the
// world of two-letter name prefixes, and corrupting a name is the worse
// failure.
func splitOwnerCode(assetText string) (model.OwnerCode, string, []Flag) {
	s := strings.TrimSpace(assetText)
	tok, rest, found := strings.Cut(s, " ")
	if !found {
		return "", s, nil
	}
	if model.KnownOwnerCode(tok) {
		return model.OwnerCode(tok), rest, nil
	}
	if ownerShapeRe.MatchString(tok) {
		return "", s, []Flag{{Span: s, Note: "possible unrecognized owner code " + strconv.Quote(tok)}}
	}
	return "", s, nil
}
