package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptrwatch-dev/ptrwatch/internal/parse"
	"github.com/ptrwatch-dev/ptrwatch/internal/runlog"
	"github.com/ptrwatch-dev/ptrwatch/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ptr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// writePDFs drops empty placeholder files; the fake extractor keys off the
// file name, not the bytes.
func writePDFs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF"), 0o644))
	}
}

func fixtureText(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/ptr_two_transactions.txt")
	require.NoError(t, err)
	return string(data)
}

func TestScanPDFs(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "20012345.pdf", "20067890.PDF")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := ScanPDFs(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "20012345.pdf", files[0].Name)
	assert.Equal(t, filepath.Join(dir, "20012345.pdf"), files[0].Path)
}

func TestScanPDFs_MissingDir(t *testing.T) {
	files, err := ScanPDFs(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRun_StoresParsedReports(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "20012345.pdf")
	st := openStore(t)
	text := fixtureText(t)

	ing := New(st, func(string) (string, error) { return text, nil }, quietLogger())
	sum, err := ing.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Scanned)
	assert.Equal(t, 1, sum.Stored)
	assert.Zero(t, sum.Failed)

	n, err := st.CountTransactions()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_SecondRunSkips(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "20012345.pdf")
	st := openStore(t)
	text := fixtureText(t)
	ing := New(st, func(string) (string, error) { return text, nil }, quietLogger())

	_, err := ing.Run(context.Background(), dir)
	require.NoError(t, err)
	sum, err := ing.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Skipped)
	assert.Zero(t, sum.Stored)
}

func TestRun_BadDocumentDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "bad.pdf", "good.pdf", "scan.pdf")
	st := openStore(t)
	text := fixtureText(t)

	extract := func(path string) (string, error) {
		switch filepath.Base(path) {
		case "good.pdf":
			return text, nil
		case "scan.pdf":
			return "", nil // image-only scan, no text layer
		default:
			return "", fmt.Errorf("corrupt xref table")
		}
	}

	ing := New(st, extract, quietLogger(), WithWorkers(2))
	sum, err := ing.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Scanned)
	assert.Equal(t, 1, sum.Stored)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, 1, sum.FailuresByReason[parse.ReasonNoExtractableText])

	n, err := st.CountReports()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRun_WritesRunLog(t *testing.T) {
	dir := t.TempDir()
	logRoot := t.TempDir()
	writePDFs(t, dir, "good.pdf", "scan.pdf")
	st := openStore(t)
	text := fixtureText(t)

	extract := func(path string) (string, error) {
		if filepath.Base(path) == "scan.pdf" {
			return "", nil
		}
		return text, nil
	}

	ing := New(st, extract, quietLogger(), WithRunLog(logRoot))
	_, err := ing.Run(context.Background(), dir)
	require.NoError(t, err)

	entries, err := runlog.Read(logRoot)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byFile := map[string]runlog.Entry{}
	for _, e := range entries {
		byFile[e.File] = e
	}
	assert.Equal(t, runlog.OutcomeStored, byFile["good.pdf"].Outcome)
	assert.NotZero(t, byFile["good.pdf"].ReportID)
	assert.Equal(t, runlog.OutcomeFailed, byFile["scan.pdf"].Outcome)
	assert.Equal(t, string(parse.ReasonNoExtractableText), byFile["scan.pdf"].Reason)
}

func TestRun_EmptyDir(t *testing.T) {
	st := openStore(t)
	ing := New(st, func(string) (string, error) { return "", nil }, quietLogger())

	sum, err := ing.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, sum.Scanned)
}
