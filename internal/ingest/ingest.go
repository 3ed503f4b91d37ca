// Package ingest drives the batch pipeline: scan a directory of report
// PDFs, parse each one, and persist the results. One malformed document
// never aborts the batch; its failure is recorded and the run moves on.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ptrwatch-dev/ptrwatch/internal/parse"
	"github.com/ptrwatch-dev/ptrwatch/internal/runlog"
	"github.com/ptrwatch-dev/ptrwatch/internal/store"
)

// TextExtractor turns a PDF file into the plain text the parser consumes.
// Injectable so tests can feed text fixtures without real PDFs.
type TextExtractor func(path string) (string, error)

// FileInfo describes one PDF in the scan directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Outcome is the result of ingesting one document.
type Outcome struct {
	File     string
	ReportID int64
	Stats    store.WriteStats
	Err      error
}

// Summary aggregates a run.
type Summary struct {
	Scanned          int
	Stored           int
	Skipped          int
	Failed           int
	FailuresByReason map[parse.Reason]int
}

// Ingestor wires the extractor, parser, and store together.
type Ingestor struct {
	store   *store.Store
	extract TextExtractor
	logger  *slog.Logger
	workers int
	logRoot string
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithWorkers bounds parse concurrency. Values below 1 mean serial.
func WithWorkers(n int) Option {
	return func(ing *Ingestor) {
		if n > 0 {
			ing.workers = n
		}
	}
}

// WithRunLog appends per-document outcomes to <root>/logs/run-log.csv.
func WithRunLog(root string) Option {
	return func(ing *Ingestor) { ing.logRoot = root }
}

func New(st *store.Store, extract TextExtractor, logger *slog.Logger, opts ...Option) *Ingestor {
	ing := &Ingestor{
		store:   st,
		extract: extract,
		logger:  logger,
		workers: 1,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// ScanPDFs returns the PDF files directly under dir.
func ScanPDFs(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading report dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// Run ingests every PDF under dir and returns the run summary. Parsing runs
// on a bounded worker pool; database writes are serialized by the store.
func (ing *Ingestor) Run(ctx context.Context, dir string) (Summary, error) {
	files, err := ScanPDFs(dir)
	if err != nil {
		return Summary{}, err
	}

	jobs := make(chan FileInfo)
	results := make(chan Outcome)

	var workers sync.WaitGroup
	for i := 0; i < ing.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for f := range jobs {
				results <- ing.ingestOne(f)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		workers.Wait()
		close(results)
	}()

	var outcomes []Outcome
	for out := range results {
		outcomes = append(outcomes, out)
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	if ing.logRoot != "" {
		if err := ing.appendRunLog(outcomes); err != nil {
			ing.logger.Warn("run log write failed", "error", err)
		}
	}
	return summarize(outcomes), nil
}

func (ing *Ingestor) ingestOne(f FileInfo) Outcome {
	out := Outcome{File: f.Name}

	text, err := ing.extract(f.Path)
	if err != nil {
		out.Err = fmt.Errorf("extracting text: %w", err)
		ing.logger.Error("text extraction failed", "file", f.Name, "error", err)
		return out
	}

	result, err := parse.Parse(text)
	if err != nil {
		out.Err = err
		ing.logger.Error("parse failed",
			"file", f.Name,
			"reason", string(parse.ReasonOf(err)),
			"error", err)
		return out
	}
	out.ReportID = result.Report.ID

	for _, flag := range result.Flags {
		ing.logger.Warn("parse flag", "file", f.Name, "note", flag.Note, "span", flag.Span)
	}

	stats, err := ing.store.SaveReport(result.Report)
	if err != nil {
		out.Err = fmt.Errorf("storing report %d: %w", result.Report.ID, err)
		ing.logger.Error("store failed", "file", f.Name, "report_id", result.Report.ID, "error", err)
		return out
	}
	out.Stats = stats

	ing.logger.Info("document ingested",
		"file", f.Name,
		"report_id", result.Report.ID,
		"transactions", len(result.Report.Transactions),
		"written", stats.TransactionsWritten,
		"skipped", stats.TransactionsSkipped)
	return out
}

func (ing *Ingestor) appendRunLog(outcomes []Outcome) error {
	now := time.Now().UTC()
	entries := make([]runlog.Entry, 0, len(outcomes))
	for _, out := range outcomes {
		e := runlog.Entry{
			Timestamp: now,
			File:      out.File,
			ReportID:  out.ReportID,
		}
		switch {
		case out.Err != nil:
			e.Outcome = runlog.OutcomeFailed
			e.Reason = string(parse.ReasonOf(out.Err))
			e.Detail = out.Err.Error()
		case out.Stats.ReportsSkipped > 0:
			e.Outcome = runlog.OutcomeSkipped
		default:
			e.Outcome = runlog.OutcomeStored
		}
		entries = append(entries, e)
	}
	return runlog.Append(ing.logRoot, entries)
}

func summarize(outcomes []Outcome) Summary {
	s := Summary{
		Scanned:          len(outcomes),
		FailuresByReason: make(map[parse.Reason]int),
	}
	for _, out := range outcomes {
		switch {
		case out.Err != nil:
			s.Failed++
			s.FailuresByReason[parse.ReasonOf(out.Err)]++
		case out.Stats.ReportsSkipped > 0:
			s.Skipped++
		default:
			s.Stored++
		}
	}
	return s
}
