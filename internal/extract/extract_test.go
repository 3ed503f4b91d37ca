package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptrwatch-dev/ptrwatch/internal/model"
)

func TestFilingID(t *testing.T) {
	id, ok := FilingID("FINANCIAL DISCLOSURE REPORT Filing ID #20026190 P e r i o d i c")
	require.True(t, ok)
	assert.Equal(t, int64(20026190), id)
}

func TestFilingID_FirstOccurrenceWins(t *testing.T) {
	id, ok := FilingID("Filing ID #111 some noise Filing ID #222")
	require.True(t, ok)
	assert.Equal(t, int64(111), id)
}

func TestFilingID_Absent(t *testing.T) {
	_, ok := FilingID("no identifier in this window")
	assert.False(t, ok)
}

func TestDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"notified 01/10/2023 by mail", time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)},
		{"1/9/2023", time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC)},
		{"signed 2023-03-01", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := Date(tt.input)
		require.True(t, ok, "input: %s", tt.input)
		assert.True(t, tt.want.Equal(got), "input: %s", tt.input)
	}
}

func TestDate_Absent(t *testing.T) {
	_, ok := Date("no date here, just 12345 and $6,789")
	assert.False(t, ok)
}

func TestAmountRange(t *testing.T) {
	min, max, ok := AmountRange("Amount $1,001 - $15,000 Cap.")
	require.True(t, ok)
	assert.Equal(t, "1001", min.String())
	assert.Equal(t, "15000", max.String())
}

func TestAmountRange_SingleBoundIsNotARange(t *testing.T) {
	_, _, ok := AmountRange("Amount $15,000 Cap.")
	assert.False(t, ok)
}

func TestAmountRange_InvertedBoundsRejected(t *testing.T) {
	_, _, ok := AmountRange("$15,000 - $1,001")
	assert.False(t, ok)
}

func TestAmountRange_EqualBoundsRejected(t *testing.T) {
	_, _, ok := AmountRange("$15,000 - $15,000")
	assert.False(t, ok)
}

func TestAmountRange_Absent(t *testing.T) {
	_, _, ok := AmountRange("no money mentioned")
	assert.False(t, ok)
}

func TestTransactionType(t *testing.T) {
	tests := []struct {
		raw           string
		wantType      model.TransactionType
		wantQualifier string
	}{
		{"P", model.TypePurchase, ""},
		{"S", model.TypeSale, ""},
		{"S (partial)", model.TypeSalePartial, "partial"},
		{"S(partial)", model.TypeSalePartial, "partial"},
		{"E", model.TypeExchange, ""},
	}
	for _, tt := range tests {
		typ, qualifier, ok := TransactionType(tt.raw)
		require.True(t, ok, "raw: %s", tt.raw)
		assert.Equal(t, tt.wantType, typ, "raw: %s", tt.raw)
		assert.Equal(t, tt.wantQualifier, qualifier, "raw: %s", tt.raw)
	}
}

func TestTransactionType_UnknownCode(t *testing.T) {
	_, _, ok := TransactionType("X")
	assert.False(t, ok)
}

func TestTransactionType_QualifierOnUnknownCode(t *testing.T) {
	_, _, ok := TransactionType("Q (partial)")
	assert.False(t, ok)
}

func TestFilingStatus(t *testing.T) {
	assert.Equal(t, model.FilingStatusNew, FilingStatus("New"))
	assert.Equal(t, model.FilingStatusAmended, FilingStatus(" Amended "))
	assert.Equal(t, model.FilingStatus("corrected copy"), FilingStatus("Corrected Copy"))
}
