package parse

import (
	"errors"
	"fmt"
)

// Reason classifies why a document failed to parse. Every reason is fatal
// to the one document only; a batch driver logs it and moves on.
type Reason string

const (
	// ReasonNoExtractableText means the source yielded no usable text at
	// all, e.g. an image-only scan that was never converted.
	ReasonNoExtractableText Reason = "no-extractable-text"

	// ReasonHeaderNotFound means the header fields could not be located;
	// the document likely matches no known report archetype.
	ReasonHeaderNotFound Reason = "header-not-found"

	// ReasonNoTransactionRegion means no transaction table was located and
	// the document carries no "no transactions" boilerplate either.
	ReasonNoTransactionRegion Reason = "no-transaction-region"

	// ReasonUnrecognizedAnchor means a table region exists but no
	// transaction boundaries were recognized in it: a layout variant that
	// needs a new or adjusted pattern rule, not a data problem.
	ReasonUnrecognizedAnchor Reason = "unrecognized-anchor"

	// ReasonFieldExtraction means an anchor matched but a required field
	// inside it failed all known patterns.
	ReasonFieldExtraction Reason = "field-extraction"

	// ReasonInternal marks an invariant violation inside the parser
	// itself. The others mean "fix a rule"; this one means "possible
	// implementation bug" and deserves a different alert.
	ReasonInternal Reason = "internal"
)

// Error is a tagged parse failure: the reason, the offending text span for
// diagnostics, and the rule set that was attempted.
type Error struct {
	Reason Reason
	Span   string
	Rule   string
	Detail string
}

func (e *Error) Error() string {
	msg := string(e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Rule != "" {
		msg += fmt.Sprintf(" (rule set %s)", e.Rule)
	}
	if e.Span != "" {
		msg += fmt.Sprintf(" near %q", snippet(e.Span))
	}
	return msg
}

// ReasonOf returns the failure reason carried by err, or "" when err is not
// a parse failure.
func ReasonOf(err error) Reason {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}

// Flag marks a text span for human review without failing the parse.
// Unrecognized owner-code-shaped tokens and out-of-order dates land here.
type Flag struct {
	Span string
	Note string
}

const snippetLen = 80

func snippet(s string) string {
	if len(s) <= snippetLen {
		return s
	}
	return s[:snippetLen] + "..."
}
