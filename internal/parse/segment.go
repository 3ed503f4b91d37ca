package parse

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ptrwatch-dev/ptrwatch/internal/extract"
)

// Marker variants observed across document revisions. A new layout variant
// extends one of these slices; nothing downstream forks.
var (
	tableStartRes = []*regexp.Regexp{
		regexp.MustCompile(`ID\s+Owner\s+Asset\s+Transaction\s+Type\s+Date\s+Notification\s+Date\s+Amount\s+Cap\.\s+Gains\s+>\s+\$200\?`),
		regexp.MustCompile(`ID\s+Owner\s+Asset\s+Transaction\s+Type\s+Date\s+Notification\s+Date\s+Amount`),
	}
	tableFooterRes = []*regexp.Regexp{
		regexp.MustCompile(`\*\s*For the complete list of asset type`),
		regexp.MustCompile(`Asset class details available`),
	}
	noActivityRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)no transactions? (?:to (?:report|disclose)|reported|disclosed)`),
	}
)

var (
	filingIDMarkRe  = regexp.MustCompile(`Filing ID #\d+`)
	signatureRe     = regexp.MustCompile(`Signed:\s*Hon\.\s*(.+?)\s*,\s*(` + extract.DatePattern + `)`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
)

// Cleanse normalizes raw extracted text: NUL bytes dropped, whitespace runs
// collapsed to a single space.
func Cleanse(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(whitespaceRunRe.ReplaceAllString(s, " "))
}

type header struct {
	filingID int64
	name     string
	signed   time.Time
}

// segmentHeader locates the header fields. The filing ID is searched on its
// own because its position (end of the first page once text is extracted)
// is more reliable than its surrounding context; the header region is the
// content up to and including that first occurrence, and the signature line
// is searched within it.
func segmentHeader(text string) (header, *Error) {
	loc := filingIDMarkRe.FindStringIndex(text)
	if loc == nil {
		return header{}, &Error{Reason: ReasonHeaderNotFound, Rule: "header-v1", Detail: "filing ID not found"}
	}
	region := text[:loc[1]]

	filingID, ok := extract.FilingID(region)
	if !ok {
		return header{}, &Error{Reason: ReasonInternal, Span: region, Detail: "filing ID marker matched but extraction failed"}
	}

	m := signatureRe.FindStringSubmatch(region)
	if m == nil {
		return header{}, &Error{Reason: ReasonHeaderNotFound, Span: region, Rule: "header-v1", Detail: "signature line not found"}
	}
	signed, ok := extract.Date(m[2])
	if !ok {
		return header{}, &Error{Reason: ReasonFieldExtraction, Span: m[0], Rule: "header-v1", Detail: "signing date did not parse"}
	}

	return header{filingID: filingID, name: m[1], signed: signed}, nil
}

// segmentRegions returns the transaction-table regions of text in document
// order. Each region starts after a table-start marker and ends at the last
// footer occurrence before the next start marker or end of document; the
// page-break boilerplate between a mid-table footer and the next repeated
// table header is removed rather than truncating the region there.
func segmentRegions(text string) []string {
	starts := findMarkers(tableStartRes, text)
	if len(starts) == 0 {
		return nil
	}

	// Start markers after the first are page-break repeats of the same
	// table's header, so the table reads as one region; scrubRegion folds
	// the pages together. An empty table yields no region at all.
	var regions []string
	if body := scrubRegion(text[starts[0].end:]); body != "" {
		regions = append(regions, body)
	}
	return regions
}

// noActivity reports whether the document carries explicit boilerplate for
// a filing with nothing disclosed. Distinguishes "filer reported nothing"
// from "we failed to find the table".
func noActivity(text string) bool {
	for _, re := range noActivityRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// scrubRegion removes boilerplate from a table body: the stretch from each
// footer marker to the next repeated table header (or to the end for the
// final footer), repeated table headers themselves, and the stray filing ID
// that text extraction drops at page boundaries.
func scrubRegion(body string) string {
	for {
		f := findFirst(tableFooterRes, body)
		if f == nil {
			break
		}
		next := findFirst(tableStartRes, body[f.end:])
		if next == nil {
			body = body[:f.start]
			break
		}
		body = body[:f.start] + " " + body[f.end+next.end:]
	}
	for _, re := range tableStartRes {
		body = re.ReplaceAllString(body, " ")
	}
	body = filingIDMarkRe.ReplaceAllString(body, " ")
	return Cleanse(body)
}

type marker struct {
	start, end int
}

// findMarkers matches every variant and merges overlaps, preferring the
// longest match at each position (one variant's text is a prefix of
// another's).
func findMarkers(res []*regexp.Regexp, s string) []marker {
	var all []marker
	for _, re := range res {
		for _, m := range re.FindAllStringIndex(s, -1) {
			all = append(all, marker{m[0], m[1]})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end > all[j].end
	})

	var merged []marker
	lastEnd := -1
	for _, m := range all {
		if m.start <= lastEnd {
			continue
		}
		merged = append(merged, m)
		lastEnd = m.end
	}
	return merged
}

func findFirst(res []*regexp.Regexp, s string) *marker {
	var best *marker
	for _, re := range res {
		m := re.FindStringIndex(s)
		if m == nil {
			continue
		}
		if best == nil || m[0] < best.start || (m[0] == best.start && m[1] > best.end) {
			best = &marker{m[0], m[1]}
		}
	}
	return best
}
