// Package store persists parsed reports to SQLite.
//
// Both tables are keyed by the parser's content-derived identifiers and
// written with INSERT OR IGNORE, so re-ingesting a document that was
// already stored is a no-op: the parser's identity derivation and the
// store's conflict handling together make ingestion idempotent.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ptrwatch-dev/ptrwatch/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	report_id INTEGER PRIMARY KEY,
	representative_name TEXT NOT NULL,
	signed_date TEXT NOT NULL,
	ingested_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	transaction_id INTEGER PRIMARY KEY,
	report_id INTEGER NOT NULL REFERENCES reports(report_id),
	asset_name TEXT NOT NULL,
	asset_type TEXT,
	asset_ticker TEXT,
	transaction_type TEXT NOT NULL,
	type_qualifier TEXT,
	transaction_date TEXT NOT NULL,
	notification_date TEXT NOT NULL,
	amount_min INTEGER NOT NULL,
	amount_max INTEGER NOT NULL,
	filing_status TEXT,
	subholding_of TEXT,
	description TEXT,
	comment TEXT,
	owner_code TEXT,
	match_text TEXT NOT NULL,
	ingested_at TEXT NOT NULL
);
`

const dateFormat = "2006-01-02"

// Store wraps the reports database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// WriteStats reports what one save actually inserted. Skipped rows were
// already present under the same identifier.
type WriteStats struct {
	ReportsWritten      int
	TransactionsWritten int
	ReportsSkipped      int
	TransactionsSkipped int
}

// SaveReport writes a report and its transactions atomically. Rows whose
// identifiers already exist are left untouched.
func (s *Store) SaveReport(r *model.Report) (WriteStats, error) {
	var stats WriteStats

	tx, err := s.db.Begin()
	if err != nil {
		return stats, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	res, err := tx.Exec(
		`INSERT OR IGNORE INTO reports (report_id, representative_name, signed_date, ingested_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.RepresentativeName, r.SignedDate.Format(dateFormat), now,
	)
	if err != nil {
		return stats, fmt.Errorf("inserting report %d: %w", r.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return stats, fmt.Errorf("counting report insert: %w", err)
	}
	stats.ReportsWritten = int(n)
	stats.ReportsSkipped = 1 - int(n)

	for _, t := range r.Transactions {
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO transactions (
				transaction_id, report_id, asset_name, asset_type, asset_ticker,
				transaction_type, type_qualifier, transaction_date, notification_date,
				amount_min, amount_max, filing_status, subholding_of, description,
				comment, owner_code, match_text, ingested_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ReportID, t.AssetName, t.AssetType, t.AssetTicker,
			string(t.Type), t.TypeQualifier,
			t.TransactionDate.Format(dateFormat), t.NotificationDate.Format(dateFormat),
			t.AmountMin.IntPart(), t.AmountMax.IntPart(),
			string(t.FilingStatus), t.SubholdingOf, t.Description,
			t.Comment, string(t.OwnerCode), t.MatchText, now,
		)
		if err != nil {
			return stats, fmt.Errorf("inserting transaction %d: %w", t.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return stats, fmt.Errorf("counting transaction insert: %w", err)
		}
		stats.TransactionsWritten += int(n)
		stats.TransactionsSkipped += 1 - int(n)
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("committing: %w", err)
	}
	return stats, nil
}

// CountReports returns the number of stored reports.
func (s *Store) CountReports() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting reports: %w", err)
	}
	return n, nil
}

// CountTransactions returns the number of stored transactions.
func (s *Store) CountTransactions() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return n, nil
}
