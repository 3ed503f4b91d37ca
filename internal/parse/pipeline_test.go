package parse

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptrwatch-dev/ptrwatch/internal/id"
	"github.com/ptrwatch-dev/ptrwatch/internal/model"
)

func readFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/ptr_two_transactions.txt")
	require.NoError(t, err)
	return string(data)
}

func TestParse_EndToEnd(t *testing.T) {
	res, err := Parse(readFixture(t))
	require.NoError(t, err)

	report := res.Report
	assert.Equal(t, int64(12345), report.ID)
	assert.Equal(t, "A. Representative", report.RepresentativeName)
	assert.True(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC).Equal(report.SignedDate))
	require.Len(t, report.Transactions, 2)

	first := report.Transactions[0]
	assert.Equal(t, "ACME Corp", first.AssetName)
	assert.Equal(t, "ACME", first.AssetTicker)
	assert.Equal(t, "ST", first.AssetType)
	assert.Equal(t, model.OwnerJoint, first.OwnerCode)
	assert.Equal(t, model.TypePurchase, first.Type)
	assert.True(t, time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC).Equal(first.TransactionDate))
	assert.True(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC).Equal(first.NotificationDate))
	assert.Equal(t, "1001", first.AmountMin.String())
	assert.Equal(t, "15000", first.AmountMax.String())
	assert.Equal(t, model.FilingStatusNew, first.FilingStatus)

	second := report.Transactions[1]
	assert.Equal(t, "Global Fund", second.AssetName)
	assert.Empty(t, second.AssetTicker)
	assert.Equal(t, model.TypeSalePartial, second.Type)
	assert.Equal(t, "partial", second.TypeQualifier)
	assert.Equal(t, "Sold to rebalance", second.Description)
	assert.Equal(t, "15001", second.AmountMin.String())
	assert.Equal(t, "50000", second.AmountMax.String())

	// Identity is content-derived and distinct per transaction.
	assert.Equal(t, int64(12345), first.ReportID)
	assert.Equal(t, id.TransactionID(12345, "ACME Corp", first.TransactionDate), first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestParse_Deterministic(t *testing.T) {
	text := readFixture(t)

	a, err := Parse(text)
	require.NoError(t, err)
	b, err := Parse(text)
	require.NoError(t, err)

	assert.Equal(t, a.Report, b.Report)
	assert.Equal(t, a.Flags, b.Flags)
}

func TestParse_TransactionCountMatchesAnchors(t *testing.T) {
	res, err := Parse(readFixture(t))
	require.NoError(t, err)
	assert.Len(t, res.Report.Transactions, 2)
}

func TestParse_NoExtractableText(t *testing.T) {
	for _, input := range []string{"", "   ", "\x00\x00", "\n\t "} {
		_, err := Parse(input)
		require.Error(t, err)
		assert.Equal(t, ReasonNoExtractableText, ReasonOf(err), "input: %q", input)
	}
}

const signedHeader = "PERIODIC TRANSACTION REPORT Digitally Signed: Hon. B. Member , 01/02/2023 Filing ID #555"

func TestParse_NoTransactionRegion(t *testing.T) {
	_, err := Parse(signedHeader + " some closing boilerplate")
	require.Error(t, err)
	assert.Equal(t, ReasonNoTransactionRegion, ReasonOf(err))
}

func TestParse_ZeroTransactionsDisclosed(t *testing.T) {
	// Explicit "nothing to report" boilerplate is a valid report with an
	// empty transaction list, not a failure.
	res, err := Parse(signedHeader + " The filer had no transactions to report for this period.")
	require.NoError(t, err)
	assert.Equal(t, int64(555), res.Report.ID)
	assert.Equal(t, "B. Member", res.Report.RepresentativeName)
	assert.Empty(t, res.Report.Transactions)
}

func TestParse_UnrecognizedAnchor(t *testing.T) {
	text := signedHeader +
		" ID Owner Asset Transaction Type Date Notification Date Amount Cap. Gains > $200?" +
		" rows in a layout no rule recognizes" +
		" * For the complete list of asset type abbreviations, see the reference page."
	_, err := Parse(text)
	require.Error(t, err)
	assert.Equal(t, ReasonUnrecognizedAnchor, ReasonOf(err))
}

func TestParse_FieldExtractionError(t *testing.T) {
	text := signedHeader +
		" ID Owner Asset Transaction Type Date Notification Date Amount Cap. Gains > $200?" +
		" Alpha Inc [ST] P 01/10/2023 02/01/2023 $15,000 F S: New" +
		" * For the complete list of asset type abbreviations, see the reference page."
	_, err := Parse(text)
	require.Error(t, err)
	assert.Equal(t, ReasonFieldExtraction, ReasonOf(err))
}

func TestParse_HeaderNotFound(t *testing.T) {
	_, err := Parse("a scanned page with unrecognized structure and no filing identifier")
	require.Error(t, err)
	assert.Equal(t, ReasonHeaderNotFound, ReasonOf(err))
}

func TestReasonOf_NonParseError(t *testing.T) {
	assert.Equal(t, Reason(""), ReasonOf(os.ErrNotExist))
}

func TestError_Message(t *testing.T) {
	e := &Error{Reason: ReasonFieldExtraction, Span: "some offending span", Rule: "anchor-v1", Detail: "amount range requires both bounds"}
	msg := e.Error()
	assert.Contains(t, msg, "field-extraction")
	assert.Contains(t, msg, "both bounds")
	assert.Contains(t, msg, "anchor-v1")
	assert.Contains(t, msg, "offending span")
}
